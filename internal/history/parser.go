// Package history bulk-loads a user's past purchases from a CSV export so
// the duplicate nudge has something to work with from day one.
package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spendsense/spendsense/internal/encoding"
	"github.com/spendsense/spendsense/internal/post"
)

// Entry is one past purchase parsed from the file.
type Entry struct {
	ItemName string
	Price    int64 // cents
	Date     time.Time
	Decision post.Decision
}

// RowError reports a row that could not be parsed. Line is 1-based within
// the file.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Expected columns, in order: item, price, date[, decision].
const (
	colItem = iota
	colPrice
	colDate
	colDecision
)

// Parse reads a history CSV. The first row may be a header ("item,...") and
// is skipped if so. Rows that fail to parse are reported individually and
// do not abort the rest of the file.
func Parse(r io.Reader) ([]Entry, []RowError, error) {
	utf8r, err := encoding.Reader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("detecting encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("reading csv: %w", err)
	}

	var (
		entries []Entry
		rowErrs []RowError
	)

	for i, row := range rows {
		line := i + 1

		if i == 0 && looksLikeHeader(row) {
			continue
		}

		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}

		entry, err := parseRow(row)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Err: err})
			continue
		}

		entries = append(entries, entry)
	}

	return entries, rowErrs, nil
}

func looksLikeHeader(row []string) bool {
	return len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "item")
}

func parseRow(row []string) (Entry, error) {
	if len(row) <= colDate {
		return Entry{}, fmt.Errorf("expected at least 3 columns, got %d", len(row))
	}

	item := strings.TrimSpace(row[colItem])
	if item == "" {
		return Entry{}, fmt.Errorf("empty item name")
	}

	price, err := parsePrice(strings.TrimSpace(row[colPrice]))
	if err != nil {
		return Entry{}, fmt.Errorf("bad price %q: %w", row[colPrice], err)
	}

	if price <= 0 {
		return Entry{}, fmt.Errorf("price must be positive")
	}

	date, err := time.Parse(time.DateOnly, strings.TrimSpace(row[colDate]))
	if err != nil {
		return Entry{}, fmt.Errorf("bad date %q: %w", row[colDate], err)
	}

	decision := post.DecisionBought

	if len(row) > colDecision {
		switch d := post.Decision(strings.ToLower(strings.TrimSpace(row[colDecision]))); d {
		case post.DecisionBought, post.DecisionSkipped:
			decision = d
		case "":
		default:
			return Entry{}, fmt.Errorf("bad decision %q", row[colDecision])
		}
	}

	return Entry{ItemName: item, Price: price, Date: date, Decision: decision}, nil
}

// parsePrice converts "129.99", "129,99" or "1.299,50" into cents.
func parsePrice(s string) (int64, error) {
	clean := s

	if strings.Contains(clean, ",") {
		// European format: dots are thousands separators.
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	}

	val, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, err
	}

	return int64(math.Round(val * 100)), nil
}
