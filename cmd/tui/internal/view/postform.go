package view

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/spendsense/spendsense/internal/group"
	"github.com/spendsense/spendsense/internal/post"
	"github.com/spendsense/spendsense/internal/similarity"
)

// ComposePostMsg asks the root model to open the post form for a group.
type ComposePostMsg struct {
	Group *group.Group
}

// PostCreatedMsg reports the outcome of the form back to the feed.
type PostCreatedMsg struct {
	Status string
}

type postFormState int

const (
	postFormStateCompose postFormState = iota
	postFormStateConfirm
)

// PostFormModel collects a prospective purchase and runs the duplicate
// check before submitting. When the check finds a similar earlier item the
// user gets the chance to skip the purchase outright.
type PostFormModel struct {
	CommonModel
	postService *post.Service
	group       *group.Group
	userID      uuid.UUID

	state   postFormState
	form    *huh.Form
	verdict similarity.Verdict
	status  string

	// Form bindings
	formItem   string
	formLink   string
	formPrice  string
	formReason string
	formHours  string
	formSkip   bool
}

func NewPostFormModel(postSvc *post.Service, g *group.Group, userID uuid.UUID) PostFormModel {
	m := PostFormModel{
		postService: postSvc,
		group:       g,
		userID:      userID,
		formHours:   "24",
	}
	m.form = m.composeForm()

	return m
}

func (m PostFormModel) Title() string { return "Post an Item" }
func (m PostFormModel) ShortHelp() string {
	return "Navigate form | Esc: cancel"
}

func (m *PostFormModel) composeForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("item").
				Title("Item").
				Value(&m.formItem).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("item name cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("price").
				Title("Price").
				Placeholder("129.99").
				Value(&m.formPrice).
				Validate(func(s string) error {
					v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
					if err != nil || v <= 0 {
						return fmt.Errorf("enter a positive amount")
					}
					return nil
				}),

			huh.NewInput().
				Key("link").
				Title("Link (optional)").
				Placeholder("https://...").
				Value(&m.formLink),

			huh.NewInput().
				Key("reason").
				Title("Why do you want it?").
				Value(&m.formReason),

			huh.NewInput().
				Key("hours").
				Title("Voting window (hours)").
				Value(&m.formHours).
				Validate(func(s string) error {
					if s == "" {
						return nil
					}
					if _, err := strconv.Atoi(strings.TrimSpace(s)); err != nil {
						return fmt.Errorf("enter a whole number of hours")
					}
					return nil
				}),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m *PostFormModel) confirmForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("skip").
				Title(fmt.Sprintf("You've posted %q before. Skip this one and bank the price?", m.verdict.Matched)).
				Affirmative("Skip it").
				Negative("Post anyway").
				Value(&m.formSkip),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (m PostFormModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m PostFormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case duplicateCheckMsg:
		m.verdict = msg.verdict

		if msg.verdict.Kind == similarity.KindMatch {
			m.state = postFormStateConfirm
			m.formSkip = false
			m.form = m.confirmForm()

			return m, m.form.Init()
		}

		return m, m.createCmd(false)

	case createResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			m.state = postFormStateCompose
			m.form = m.composeForm()

			return m, m.form.Init()
		}

		return m, func() tea.Msg { return PostCreatedMsg{Status: msg.status} }

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == postFormStateConfirm {
		return m, m.createCmd(m.formSkip)
	}

	return m, m.checkCmd()
}

func (m PostFormModel) View() string {
	title := fmt.Sprintf("Post an item to %s", m.group.Name)

	content := title + "\n\n" + m.form.View()

	if m.status != "" {
		content = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Render(m.status) +
			"\n\n" + content
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(content)
}

func (m PostFormModel) priceCents() int64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(m.formPrice), 64)
	return int64(math.Round(v * 100))
}

// Messages

type duplicateCheckMsg struct {
	verdict similarity.Verdict
}

func (m PostFormModel) checkCmd() tea.Cmd {
	item := m.formItem

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		verdict, err := m.postService.CheckDuplicate(ctx, m.userID, item)
		if err != nil {
			// Advisory only; treat a failed lookup as no match.
			verdict = similarity.Verdict{Kind: similarity.KindNoMatch}
		}

		return duplicateCheckMsg{verdict: verdict}
	}
}

type createResultMsg struct {
	status string
	err    error
}

func (m PostFormModel) createCmd(skip bool) tea.Cmd {
	hours, _ := strconv.Atoi(strings.TrimSpace(m.formHours))

	params := post.CreateParams{
		GroupID:       m.group.ID,
		UserID:        m.userID,
		ItemName:      m.formItem,
		ItemLink:      m.formLink,
		Price:         m.priceCents(),
		Reason:        m.formReason,
		VotingWindow:  time.Duration(hours) * time.Hour,
		SkipDuplicate: skip,
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		p, _, err := m.postService.Create(ctx, params)
		if err != nil {
			return createResultMsg{err: err}
		}

		if p.Status == post.StatusDecided {
			return createResultMsg{status: fmt.Sprintf("Skipped %q, %s added to savings",
				p.ItemName, FormatAmount(p.Price))}
		}

		return createResultMsg{status: fmt.Sprintf("Posted %q, voting open until %s",
			p.ItemName, p.Deadline.Local().Format("Jan 2 15:04"))}
	}
}
