// Package savings tracks the money each user kept by skipping purchases and
// the badges those totals unlock.
package savings

// Badge is a rank earned by accumulated savings.
type Badge string

const (
	BadgeNone          Badge = ""
	BadgeImpulseRookie Badge = "Impulse Rookie"
	BadgeMindfulSaver  Badge = "Mindful Saver"
	BadgeBudgetPro     Badge = "Budget Pro"
	BadgeFrugalMaster  Badge = "Frugal Master"
)

// ladder maps minimum totals (in cents) to badges, ascending.
var ladder = []struct {
	Threshold int64
	Badge     Badge
}{
	{100_000, BadgeImpulseRookie},
	{500_000, BadgeMindfulSaver},
	{2_000_000, BadgeBudgetPro},
	{5_000_000, BadgeFrugalMaster},
}

// BadgeFor returns the highest badge the total qualifies for, or BadgeNone
// below the first rung.
func BadgeFor(totalCents int64) Badge {
	earned := BadgeNone

	for _, rung := range ladder {
		if totalCents >= rung.Threshold {
			earned = rung.Badge
		}
	}

	return earned
}
