package history_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendsense/spendsense/internal/history"
	"github.com/spendsense/spendsense/internal/post"
)

func TestParse(t *testing.T) {
	input := strings.Join([]string{
		"item,price,date,decision",
		"Bluetooth Headphones,2499.00,2025-06-01,bought",
		"Nike Air Max 270,12999.50,2025-07-15,skipped",
		"Desk Lamp,450,2025-08-02",
	}, "\n")

	entries, rowErrs, err := history.Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, entries, 3)

	assert.Equal(t, history.Entry{
		ItemName: "Bluetooth Headphones",
		Price:    249900,
		Date:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Decision: post.DecisionBought,
	}, entries[0])

	assert.Equal(t, int64(1299950), entries[1].Price)
	assert.Equal(t, post.DecisionSkipped, entries[1].Decision)

	// Missing decision column defaults to bought.
	assert.Equal(t, post.DecisionBought, entries[2].Decision)
	assert.Equal(t, int64(45000), entries[2].Price)
}

func TestParse_EuropeanPrices(t *testing.T) {
	input := "Espresso Machine,\"1.299,50\",2025-05-20,bought\n"

	entries, rowErrs, err := history.Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(129950), entries[0].Price)
}

func TestParse_BadRowsReportedWithLines(t *testing.T) {
	input := strings.Join([]string{
		"item,price,date",
		"Good Item,100,2025-01-01",
		",100,2025-01-02",
		"Bad Price,abc,2025-01-03",
		"Bad Date,100,01/02/2025",
		"Bad Decision,100,2025-01-04,maybe",
	}, "\n")

	entries, rowErrs, err := history.Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	require.Len(t, rowErrs, 4)

	assert.Equal(t, 3, rowErrs[0].Line)
	assert.Equal(t, 4, rowErrs[1].Line)
	assert.Equal(t, 5, rowErrs[2].Line)
	assert.Equal(t, 6, rowErrs[3].Line)
	assert.ErrorContains(t, rowErrs[2], "bad date")
}

func TestParse_Empty(t *testing.T) {
	entries, rowErrs, err := history.Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, rowErrs)
}
