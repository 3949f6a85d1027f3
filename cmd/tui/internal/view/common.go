package view

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/spendsense/spendsense/internal/group"
	"github.com/spendsense/spendsense/internal/user"
)

type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// SignedInMsg is emitted by the login view once the user is authenticated.
type SignedInMsg struct {
	User *user.User
}

// OpenFeedMsg asks the root model to open a group's feed.
type OpenFeedMsg struct {
	Group *group.Group
}
