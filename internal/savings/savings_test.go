package savings_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spendsense/spendsense/internal/savings"
)

func TestBadgeFor(t *testing.T) {
	type testCase struct {
		name  string
		total int64
		want  savings.Badge
	}

	tests := []testCase{
		{name: "Zero", total: 0, want: savings.BadgeNone},
		{name: "JustBelowFirstRung", total: 99_999, want: savings.BadgeNone},
		{name: "FirstRungExact", total: 100_000, want: savings.BadgeImpulseRookie},
		{name: "MidLadder", total: 700_000, want: savings.BadgeMindfulSaver},
		{name: "SecondRungExact", total: 500_000, want: savings.BadgeMindfulSaver},
		{name: "ThirdRung", total: 2_000_000, want: savings.BadgeBudgetPro},
		{name: "TopRung", total: 5_000_000, want: savings.BadgeFrugalMaster},
		{name: "AboveTop", total: 99_000_000, want: savings.BadgeFrugalMaster},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, savings.BadgeFor(tt.total))
		})
	}
}
