package view

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/spendsense/spendsense/internal/savings"
)

type SavingsModel struct {
	CommonModel
	savingsService *savings.Service
	userID         uuid.UUID

	total   int64
	loading bool
	err     error
}

func NewSavingsModel(savingsSvc *savings.Service, userID uuid.UUID) SavingsModel {
	return SavingsModel{
		savingsService: savingsSvc,
		userID:         userID,
		loading:        true,
	}
}

func (m SavingsModel) Title() string     { return "Savings" }
func (m SavingsModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m SavingsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m SavingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadSavingsMsg:
		m.loading = false
		m.total = msg.total
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m SavingsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading savings...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	badge := savings.BadgeFor(m.total)
	badgeLine := "No badge yet"
	if badge != savings.BadgeNone {
		badgeLine = fmt.Sprintf("Badge: %s", badge)
	}

	content := fmt.Sprintf("Total saved by skipping: %s\n\n%s",
		lipgloss.NewStyle().Bold(true).Render(FormatAmount(m.total)),
		badgeLine,
	)

	return lipgloss.NewStyle().
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Render(content)
}

// Messages

type loadSavingsMsg struct {
	total int64
	err   error
}

func (m SavingsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		total, err := m.savingsService.Total(ctx, m.userID)
		return loadSavingsMsg{total: total, err: err}
	}
}
