package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/spendsense/spendsense/internal/user"
)

type LoginModel struct {
	CommonModel
	userService *user.Service

	form   *huh.Form
	status string

	// Form bindings
	formMode     string
	formEmail    string
	formName     string
	formPassword string
}

func NewLoginModel(userSvc *user.Service) LoginModel {
	m := LoginModel{
		userService: userSvc,
		formMode:    "login",
	}
	m.form = m.newForm()

	return m
}

func (m LoginModel) Title() string     { return "Sign In" }
func (m LoginModel) ShortHelp() string { return "Navigate form | Ctrl+C: quit" }

func (m *LoginModel) newForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("mode").
				Title("Account").
				Options(
					huh.NewOption("Log in", "login"),
					huh.NewOption("Sign up", "signup"),
				).
				Value(&m.formMode),

			huh.NewInput().
				Key("email").
				Title("Email").
				Value(&m.formEmail).
				Validate(func(s string) error {
					if !strings.Contains(s, "@") {
						return fmt.Errorf("enter a valid email address")
					}
					return nil
				}),

			huh.NewInput().
				Key("name").
				Title("Name (sign up only)").
				Value(&m.formName),

			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&m.formPassword).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("password cannot be empty")
					}
					return nil
				}),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m LoginModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(authResultMsg); ok {
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			m.formPassword = ""
			m.form = m.newForm()

			return m, m.form.Init()
		}

		return m, func() tea.Msg { return SignedInMsg{User: msg.user} }
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.authCmd()
}

func (m LoginModel) View() string {
	content := "SpendSense\n\n" + m.form.View()

	if m.status != "" {
		content = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Render(m.status) +
			"\n\n" + content
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(content)
}

type authResultMsg struct {
	user *user.User
	err  error
}

func (m LoginModel) authCmd() tea.Cmd {
	mode := m.formMode
	email := m.formEmail
	name := m.formName
	password := m.formPassword

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if mode == "signup" {
			u, err := m.userService.SignUp(ctx, user.SignUpParams{
				Email:    email,
				Name:     name,
				Password: password,
			})

			return authResultMsg{user: u, err: err}
		}

		u, err := m.userService.Authenticate(ctx, email, password)

		return authResultMsg{user: u, err: err}
	}
}
