package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/spendsense/spendsense/internal/group"
	"github.com/spendsense/spendsense/internal/images"
	"github.com/spendsense/spendsense/internal/post"
	"github.com/spendsense/spendsense/internal/similarity"
)

// feedEntry pairs a post with the data the table shows next to it.
type feedEntry struct {
	post    *post.Post
	counts  post.VoteCounts
	verdict similarity.Verdict
}

type FeedModel struct {
	CommonModel
	postService *post.Service
	images      *images.Store
	group       *group.Group
	userID      uuid.UUID

	table   table.Model
	entries []feedEntry

	loading bool
	err     error
	status  string
}

func NewFeedModel(postSvc *post.Service, images *images.Store, g *group.Group, userID uuid.UUID) FeedModel {
	columns := []table.Column{
		{Title: "Item", Width: 28},
		{Title: "Price", Width: 10},
		{Title: "Poster", Width: 14},
		{Title: "Votes +/-/o", Width: 12},
		{Title: "Status", Width: 10},
		{Title: "Deadline", Width: 10},
		{Title: "Note", Width: 24},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(14),
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

	return FeedModel{
		postService: postSvc,
		images:      images,
		group:       g,
		userID:      userID,
		table:       t,
	}
}

func (m FeedModel) Title() string { return "Group Feed" }
func (m FeedModel) ShortHelp() string {
	return "Esc: back | p: post item | 1/2/3: vote buy/don't/neutral | B/S: decide bought/skipped | X: delete | r: refresh"
}

func (m FeedModel) Init() tea.Cmd {
	return m.loadFeedCmd()
}

func (m FeedModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadFeedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.entries = msg.entries
		m.refreshTable()
		return m, nil

	case feedActionMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = msg.status
		}
		return m, m.loadFeedCmd()

	case PostCreatedMsg:
		m.status = msg.Status
		return m, m.loadFeedCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadFeedCmd()
		case "p":
			g := m.group
			return m, func() tea.Msg { return ComposePostMsg{Group: g} }
		case "1":
			return m, m.voteCmd(post.VoteBuy)
		case "2":
			return m, m.voteCmd(post.VoteDontBuy)
		case "3":
			return m, m.voteCmd(post.VoteNeutral)
		case "B":
			return m, m.decideCmd(post.DecisionBought)
		case "S":
			return m, m.decideCmd(post.DecisionSkipped)
		case "X":
			return m, m.deleteCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m FeedModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading feed...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	header := fmt.Sprintf("%s  (invite code %s)", m.group.Name, m.group.InviteCode)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Bold(true).Render(header),
		tableView,
	)

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *FeedModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.entries))

	for _, e := range m.entries {
		p := e.post

		status := string(p.Status)
		if p.Status == post.StatusDecided {
			status = string(p.Decision)
		}

		note := ""
		if e.verdict.Kind == similarity.KindMatch {
			note = fmt.Sprintf("seen before: %s", e.verdict.Matched)
		}

		rows = append(rows, table.Row{
			p.ItemName,
			FormatAmount(p.Price),
			p.PosterName,
			fmt.Sprintf("%d/%d/%d", e.counts.Buy, e.counts.DontBuy, e.counts.Neutral),
			status,
			FormatDeadline(p.Deadline),
			note,
		})
	}

	m.table.SetRows(rows)
}

func (m FeedModel) selected() *post.Post {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.entries) {
		return nil
	}

	return m.entries[idx].post
}

// Messages

type loadFeedMsg struct {
	entries []feedEntry
	err     error
}

func (m FeedModel) loadFeedCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		posts, err := m.postService.List(ctx, m.group.ID)
		if err != nil {
			return loadFeedMsg{err: err}
		}

		entries := make([]feedEntry, 0, len(posts))

		for _, p := range posts {
			counts, _, err := m.postService.VoteSummary(ctx, p.ID)
			if err != nil {
				return loadFeedMsg{err: err}
			}

			entries = append(entries, feedEntry{
				post:    p,
				counts:  counts,
				verdict: m.postService.Annotation(ctx, p),
			})
		}

		return loadFeedMsg{entries: entries}
	}
}

type feedActionMsg struct {
	status string
	err    error
}

func (m FeedModel) voteCmd(kind post.VoteKind) tea.Cmd {
	p := m.selected()
	if p == nil {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.postService.Vote(ctx, p.ID, m.userID, kind, ""); err != nil {
			return feedActionMsg{err: err}
		}

		return feedActionMsg{status: fmt.Sprintf("Voted %s on %q", kind, p.ItemName)}
	}
}

func (m FeedModel) decideCmd(decision post.Decision) tea.Cmd {
	p := m.selected()
	if p == nil {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		decided, err := m.postService.Decide(ctx, p.ID, m.userID, decision)
		if err != nil {
			return feedActionMsg{err: err}
		}

		if decided.Decision == post.DecisionSkipped {
			return feedActionMsg{status: fmt.Sprintf("Skipped %q, %s added to savings",
				decided.ItemName, FormatAmount(decided.Price))}
		}

		return feedActionMsg{status: fmt.Sprintf("Recorded %q as bought", decided.ItemName)}
	}
}

func (m FeedModel) deleteCmd() tea.Cmd {
	p := m.selected()
	if p == nil {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		imagePath, err := m.postService.Delete(ctx, p.ID, m.userID)
		if err != nil {
			return feedActionMsg{err: err}
		}

		m.images.Remove(imagePath)

		return feedActionMsg{status: fmt.Sprintf("Deleted %q", p.ItemName)}
	}
}
