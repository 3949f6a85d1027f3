package notify_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spendsense/spendsense/internal/notify"
	"github.com/spendsense/spendsense/internal/post"
)

func TestNewPostBody(t *testing.T) {
	deadline := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

	p := &post.Post{
		ItemName: "Nike Air Max 270",
		ItemLink: "https://example.com/shoes",
		Price:    1299900,
		Reason:   "Running",
		Deadline: deadline,
	}

	body := notify.NewPostBody(p)

	assert.Contains(t, body, "Item: Nike Air Max 270")
	assert.Contains(t, body, "Price: 12999.00")
	assert.Contains(t, body, "Reason: Running")
	assert.Contains(t, body, "Link: https://example.com/shoes")
	assert.Contains(t, body, deadline.Format(time.RFC1123))
}

func TestNewPostBody_NoLinkNoReason(t *testing.T) {
	p := &post.Post{
		ItemName: "Desk Lamp",
		Price:    250000,
		Deadline: time.Now(),
	}

	body := notify.NewPostBody(p)

	assert.Contains(t, body, "Link: (no link provided)")
	assert.NotContains(t, body, "Reason:")
}

func TestService_Enabled(t *testing.T) {
	disabled := notify.NewService(notify.Config{}, nil, nil)
	assert.False(t, disabled.Enabled())

	enabled := notify.NewService(notify.Config{Host: "smtp.example.com"}, nil, nil)
	assert.True(t, enabled.Enabled())
}
