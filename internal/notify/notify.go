// Package notify emails group members when something happens in their
// group. Delivery is best effort: failures are logged and never surface to
// the flows that trigger them.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spendsense/spendsense/internal/group"
	"github.com/spendsense/spendsense/internal/post"
	"github.com/spendsense/spendsense/internal/user"
)

// MemberLister supplies the recipients for a group.
type MemberLister interface {
	Members(ctx context.Context, groupID uuid.UUID) ([]*group.Member, error)
}

// UserGetter resolves the poster for the message body.
type UserGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type Config struct {
	Host     string // empty disables sending
	Port     int
	User     string
	Password string
	From     string
	AppName  string
}

type Service struct {
	cfg    Config
	groups MemberLister
	users  UserGetter
}

func NewService(cfg Config, groups MemberLister, users UserGetter) *Service {
	if cfg.From == "" {
		cfg.From = cfg.User
	}

	return &Service{cfg: cfg, groups: groups, users: users}
}

// Enabled reports whether SMTP is configured.
func (s *Service) Enabled() bool {
	return s.cfg.Host != ""
}

// NewPost emails every member of the post's group about the new item.
// It returns immediately; sending happens in the background.
func (s *Service) NewPost(ctx context.Context, p *post.Post) {
	if !s.Enabled() {
		return
	}

	members, err := s.groups.Members(ctx, p.GroupID)
	if err != nil {
		slog.Warn("listing members for notification failed", "group_id", p.GroupID, "error", err)
		return
	}

	poster, err := s.users.Get(ctx, p.UserID)
	if err != nil {
		slog.Warn("resolving poster for notification failed", "post_id", p.ID, "error", err)
		return
	}

	var recipients []string

	for _, m := range members {
		if m.Email != "" {
			recipients = append(recipients, m.Email)
		}
	}

	if len(recipients) == 0 {
		return
	}

	subject := fmt.Sprintf("%s: %s posted %q", s.cfg.AppName, poster.Name, p.ItemName)
	body := NewPostBody(p)

	go s.send(recipients, subject, body)
}

// NewPostBody renders the plain-text message for a new post.
func NewPostBody(p *post.Post) string {
	link := p.ItemLink
	if link == "" {
		link = "(no link provided)"
	}

	var b strings.Builder

	b.WriteString("New item posted in your group.\n\n")
	fmt.Fprintf(&b, "Item: %s\n", p.ItemName)
	fmt.Fprintf(&b, "Price: %.2f\n", float64(p.Price)/100.0)

	if p.Reason != "" {
		fmt.Fprintf(&b, "Reason: %s\n", p.Reason)
	}

	fmt.Fprintf(&b, "Link: %s\n", link)
	fmt.Fprintf(&b, "Vote before: %s\n", p.Deadline.UTC().Format(time.RFC1123))
	b.WriteString("\nOpen the app to vote.\n")

	return b.String()
}

func (s *Service) send(recipients []string, subject, body string) {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.cfg.From, strings.Join(recipients, ", "), subject, body)

	if err := smtp.SendMail(addr, auth, s.cfg.From, recipients, []byte(msg)); err != nil {
		slog.Warn("sending notification email failed", "error", err)
	}
}
