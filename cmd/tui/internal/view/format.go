package view

import (
	"context"
	"fmt"
	"time"
)

const dbTimeout = 5 * time.Second

// FormatAmount formats an amount stored as cents into a human-readable string.
func FormatAmount(cents int64) string {
	return fmt.Sprintf("%.2f", float64(cents)/100.0)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatDeadline renders how much voting time is left.
func FormatDeadline(deadline time.Time) string {
	left := time.Until(deadline)
	if left <= 0 {
		return "closed"
	}

	if left < time.Hour {
		return fmt.Sprintf("%dm left", int(left.Minutes()))
	}

	return fmt.Sprintf("%dh left", int(left.Hours()))
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
