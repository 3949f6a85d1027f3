package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/spendsense/spendsense/cmd/tui/internal/view"
	"github.com/spendsense/spendsense/internal/config"
	"github.com/spendsense/spendsense/internal/database"
	"github.com/spendsense/spendsense/internal/group"
	groupStore "github.com/spendsense/spendsense/internal/group/store"
	"github.com/spendsense/spendsense/internal/images"
	"github.com/spendsense/spendsense/internal/notify"
	"github.com/spendsense/spendsense/internal/post"
	postStore "github.com/spendsense/spendsense/internal/post/store"
	"github.com/spendsense/spendsense/internal/savings"
	savingsStore "github.com/spendsense/spendsense/internal/savings/store"
	"github.com/spendsense/spendsense/internal/user"
	userStore "github.com/spendsense/spendsense/internal/user/store"
)

type model struct {
	userService    *user.Service
	groupService   *group.Service
	postService    *post.Service
	savingsService *savings.Service
	imageStore     *images.Store

	currentUser *user.User
	currentView View

	loginView    view.LoginModel
	groupsView   view.GroupsModel
	feedView     view.FeedModel
	postFormView view.PostFormModel
	savingsView  view.SavingsModel
}

type View int

const (
	ViewLogin    View = 0
	ViewMenu     View = 1
	ViewGroups   View = 2
	ViewFeed     View = 3
	ViewPostForm View = 4
	ViewSavings  View = 5
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	imageStore, err := images.NewStore(cfg.Uploads.Dir)
	if err != nil {
		slog.Error("failed to prepare upload directory", "error", err)
		os.Exit(1)
	}

	userSvc := user.NewService(userStore.New(db))
	groupSvc := group.NewService(groupStore.New(db))
	savingsSvc := savings.NewService(savingsStore.New(db))
	notifySvc := notify.NewService(notify.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		AppName:  cfg.App.Name,
	}, groupSvc, userSvc)
	postSvc := post.NewService(postStore.New(db), savingsSvc, notifySvc, cfg.Similarity.CreateThreshold)

	return model{
		userService:    userSvc,
		groupService:   groupSvc,
		postService:    postSvc,
		savingsService: savingsSvc,
		imageStore:     imageStore,
		currentView:    ViewLogin,
		loginView:      view.NewLoginModel(userSvc),
	}
}

func (m model) Init() tea.Cmd {
	return m.loginView.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewGroups
				m.groupsView = view.NewGroupsModel(m.groupService, m.currentUser.ID)

				return m, m.groupsView.Init()
			case "2":
				m.currentView = ViewSavings
				m.savingsView = view.NewSavingsModel(m.savingsService, m.currentUser.ID)

				return m, m.savingsView.Init()
			}
		}

	case view.SignedInMsg:
		m.currentUser = msg.User
		m.currentView = ViewMenu

		return m, nil

	case view.OpenFeedMsg:
		m.currentView = ViewFeed
		m.feedView = view.NewFeedModel(m.postService, m.imageStore, msg.Group, m.currentUser.ID)

		return m, m.feedView.Init()

	case view.ComposePostMsg:
		m.currentView = ViewPostForm
		m.postFormView = view.NewPostFormModel(m.postService, msg.Group, m.currentUser.ID)

		return m, m.postFormView.Init()

	case view.PostCreatedMsg:
		m.currentView = ViewFeed

		var newModel tea.Model
		newModel, cmd = m.feedView.Update(msg)
		m.feedView = newModel.(view.FeedModel)

		return m, cmd

	case view.BackMsg:
		switch m.currentView {
		case ViewFeed:
			m.currentView = ViewGroups
			return m, m.groupsView.Init()
		case ViewPostForm:
			m.currentView = ViewFeed
			return m, m.feedView.Init()
		default:
			m.currentView = ViewMenu
			return m, nil
		}
	}

	switch m.currentView {
	case ViewLogin:
		var newModel tea.Model
		newModel, cmd = m.loginView.Update(msg)
		m.loginView = newModel.(view.LoginModel)
	case ViewGroups:
		var newModel tea.Model
		newModel, cmd = m.groupsView.Update(msg)
		m.groupsView = newModel.(view.GroupsModel)
	case ViewFeed:
		var newModel tea.Model
		newModel, cmd = m.feedView.Update(msg)
		m.feedView = newModel.(view.FeedModel)
	case ViewPostForm:
		var newModel tea.Model
		newModel, cmd = m.postFormView.Update(msg)
		m.postFormView = newModel.(view.PostFormModel)
	case ViewSavings:
		var newModel tea.Model
		newModel, cmd = m.savingsView.Update(msg)
		m.savingsView = newModel.(view.SavingsModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"SpendSense\n\n"+
				"Hi "+m.currentUser.Name+"\n\n"+
				"1. My Groups\n"+
				"2. Savings\n\n"+
				"q. Quit",
		)
	case ViewGroups:
		return m.groupsView.View()
	case ViewFeed:
		return m.feedView.View()
	case ViewPostForm:
		return m.postFormView.View()
	case ViewSavings:
		return m.savingsView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
