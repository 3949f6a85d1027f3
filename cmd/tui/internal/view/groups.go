package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/spendsense/spendsense/internal/group"
)

type groupsState int

const (
	groupsStateBrowse groupsState = iota
	groupsStateCreate
	groupsStateJoin
)

type GroupsModel struct {
	CommonModel
	groupService *group.Service
	userID       uuid.UUID

	state  groupsState
	table  table.Model
	groups []*group.Group
	form   *huh.Form

	loading bool
	err     error
	status  string

	// Form bindings
	formName  string
	formShort bool
	formCode  string
}

func NewGroupsModel(groupSvc *group.Service, userID uuid.UUID) GroupsModel {
	columns := []table.Column{
		{Title: "Name", Width: 30},
		{Title: "Invite Code", Width: 12},
		{Title: "Role", Width: 8},
		{Title: "Created", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return GroupsModel{
		groupService: groupSvc,
		userID:       userID,
		table:        t,
	}
}

func (m GroupsModel) Title() string { return "My Groups" }
func (m GroupsModel) ShortHelp() string {
	if m.state != groupsStateBrowse {
		return "Navigate form | Esc: cancel"
	}
	return "Esc: back | Enter: open feed | c: create | j: join | D: delete | r: refresh"
}

func (m GroupsModel) Init() tea.Cmd {
	return m.loadGroupsCmd()
}

func (m GroupsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadGroupsMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.groups = msg.groups
		m.refreshTable()
		return m, nil

	case groupActionMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = msg.status
		}
		m.state = groupsStateBrowse
		m.form = nil
		m.table.Focus()
		return m, m.loadGroupsCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if m.state == groupsStateBrowse {
		return m.updateBrowse(msg)
	}

	return m.updateForm(msg)
}

func (m GroupsModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadGroupsCmd()
		case "enter":
			idx := m.table.Cursor()
			if idx >= 0 && idx < len(m.groups) {
				g := m.groups[idx]
				return m, func() tea.Msg { return OpenFeedMsg{Group: g} }
			}
			return m, nil
		case "c":
			return m.enterCreateMode()
		case "j":
			return m.enterJoinMode()
		case "D":
			return m, m.deleteCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m GroupsModel) enterCreateMode() (tea.Model, tea.Cmd) {
	m.formName = ""
	m.formShort = false

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Group Name").
				Value(&m.formName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name cannot be empty")
					}
					return nil
				}),

			huh.NewConfirm().
				Key("short").
				Title("Short numeric invite code?").
				Value(&m.formShort),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = groupsStateCreate
	m.table.Blur()
	return m, m.form.Init()
}

func (m GroupsModel) enterJoinMode() (tea.Model, tea.Cmd) {
	m.formCode = ""

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("code").
				Title("Invite Code").
				Value(&m.formCode).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("code cannot be empty")
					}
					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = groupsStateJoin
	m.table.Blur()
	return m, m.form.Init()
}

func (m GroupsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = groupsStateBrowse
			m.form = nil
			m.table.Focus()
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == groupsStateCreate {
		return m, m.createCmd()
	}

	return m, m.joinCmd()
}

func (m GroupsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading groups...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := tableView

	if m.state != groupsStateBrowse && m.form != nil {
		title := "Create Group"
		if m.state == groupsStateJoin {
			title = "Join Group"
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(fmt.Sprintf("%s\n\n%s", title, m.form.View()))

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *GroupsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.groups))
	for _, g := range m.groups {
		role := "member"
		if g.OwnerID == m.userID {
			role = "owner"
		}
		rows = append(rows, table.Row{
			g.Name,
			g.InviteCode,
			role,
			FormatDate(g.CreatedAt),
		})
	}
	m.table.SetRows(rows)
}

// Messages

type loadGroupsMsg struct {
	groups []*group.Group
	err    error
}

func (m GroupsModel) loadGroupsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		groups, err := m.groupService.ListForUser(ctx, m.userID)
		return loadGroupsMsg{groups: groups, err: err}
	}
}

type groupActionMsg struct {
	status string
	err    error
}

func (m GroupsModel) createCmd() tea.Cmd {
	name := m.formName
	short := m.formShort

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		g, err := m.groupService.Create(ctx, m.userID, name, short)
		if err != nil {
			return groupActionMsg{err: err}
		}

		return groupActionMsg{status: fmt.Sprintf("Created %q, invite code %s", g.Name, g.InviteCode)}
	}
}

func (m GroupsModel) joinCmd() tea.Cmd {
	code := m.formCode

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		g, err := m.groupService.Join(ctx, m.userID, code)
		if err != nil {
			return groupActionMsg{err: err}
		}

		return groupActionMsg{status: fmt.Sprintf("Joined %q", g.Name)}
	}
}

func (m GroupsModel) deleteCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.groups) {
		return nil
	}

	g := m.groups[idx]

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if _, err := m.groupService.Delete(ctx, g.ID, m.userID); err != nil {
			return groupActionMsg{err: err}
		}

		return groupActionMsg{status: fmt.Sprintf("Deleted %q", g.Name)}
	}
}
