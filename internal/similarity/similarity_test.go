package similarity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spendsense/spendsense/internal/similarity"
)

func TestEvaluate(t *testing.T) {
	type args struct {
		history   []string
		candidate string
		threshold float64
	}

	type testCase struct {
		name string
		args args
		want similarity.Verdict
	}

	tests := []testCase{
		{
			name: "EmptyHistory",
			args: args{history: nil, candidate: "Headphones", threshold: 0.6},
			want: similarity.Verdict{Kind: similarity.KindNoHistory},
		},
		{
			name: "EmptyHistoryWinsOverBlankCandidate",
			args: args{history: []string{}, candidate: "   ", threshold: 0.6},
			want: similarity.Verdict{Kind: similarity.KindNoHistory},
		},
		{
			name: "ExactMatchDifferentCase",
			args: args{
				history:   []string{"Bluetooth Headphones"},
				candidate: "bluetooth headphones",
				threshold: 0.6,
			},
			want: similarity.Verdict{Kind: similarity.KindMatch, Matched: "Bluetooth Headphones"},
		},
		{
			name: "OriginalCasingPreservedAtHighThreshold",
			args: args{history: []string{"Nike Shoes"}, candidate: "nike shoes", threshold: 0.9},
			want: similarity.Verdict{Kind: similarity.KindMatch, Matched: "Nike Shoes"},
		},
		{
			name: "UnrelatedItem",
			args: args{
				history:   []string{"Bluetooth Headphones"},
				candidate: "Gaming Laptop",
				threshold: 0.6,
			},
			want: similarity.Verdict{Kind: similarity.KindNoMatch},
		},
		{
			name: "CloseVariantClearsThreshold",
			args: args{
				history:   []string{"iPhone 13 Case", "Desk Lamp"},
				candidate: "iPhone 13 Cover",
				threshold: 0.6,
			},
			want: similarity.Verdict{Kind: similarity.KindMatch, Matched: "iPhone 13 Case"},
		},
		{
			name: "BlankCandidateWithHistory",
			args: args{history: []string{"Desk Lamp"}, candidate: "  \t ", threshold: 0.6},
			want: similarity.Verdict{Kind: similarity.KindNoMatch},
		},
		{
			name: "EmptyHistoryEntriesAreHarmless",
			args: args{history: []string{"", "", ""}, candidate: "Headphones", threshold: 0.6},
			want: similarity.Verdict{Kind: similarity.KindNoMatch},
		},
		{
			name: "ExactThresholdCounts",
			args: args{history: []string{"abcd"}, candidate: "bcde", threshold: 0.75},
			want: similarity.Verdict{Kind: similarity.KindMatch, Matched: "abcd"},
		},
		{
			name: "JustAboveThresholdRejected",
			args: args{history: []string{"abcd"}, candidate: "bcde", threshold: 0.76},
			want: similarity.Verdict{Kind: similarity.KindNoMatch},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := similarity.Evaluate(tt.args.history, tt.args.candidate, tt.args.threshold)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_BestMatchWinsOverEarlierEntry(t *testing.T) {
	// "Red Shoes" scores higher against the candidate than "Red Shoe", so the
	// best-match stage must pick it even though "Red Shoe" comes first.
	history := []string{"Red Shoe", "Red Shoes"}

	got := similarity.Evaluate(history, "Red Shoes!", 0.6)
	assert.Equal(t, similarity.KindMatch, got.Kind)
	assert.Equal(t, "Red Shoes", got.Matched)
}

func TestEvaluate_TieBreakIsStable(t *testing.T) {
	// Both entries clear the threshold; repeated calls must keep returning
	// the same winner.
	history := []string{"Red Shoes", "Red Shoe"}

	first := similarity.Evaluate(history, "Red Shoes!", 0.6)
	assert.Equal(t, similarity.KindMatch, first.Kind)

	for range 10 {
		got := similarity.Evaluate(history, "Red Shoes!", 0.6)
		assert.Equal(t, first, got)
	}
}

func TestEvaluate_ThresholdMonotonicity(t *testing.T) {
	// Lowering the threshold can never turn a match into a non-match.
	history := []string{"Bluetooth Headphones", "Desk Lamp", "iPhone 13 Case"}
	candidates := []string{"bluetooth headphone", "iPhone 13 Cover", "desk lamps"}

	for _, c := range candidates {
		for hi := 0.9; hi >= 0.1; hi -= 0.1 {
			if similarity.Evaluate(history, c, hi).Kind != similarity.KindMatch {
				continue
			}

			for lo := hi - 0.1; lo >= 0; lo -= 0.1 {
				got := similarity.Evaluate(history, c, lo)
				assert.Equal(t, similarity.KindMatch, got.Kind,
					"candidate %q matched at %.1f but not at %.1f", c, hi, lo)
			}
		}
	}
}

func TestRatio(t *testing.T) {
	type testCase struct {
		name string
		a, b string
		want float64
	}

	tests := []testCase{
		{name: "Identical", a: "red shoes", b: "red shoes", want: 1.0},
		{name: "BothEmpty", a: "", b: "", want: 1.0},
		{name: "OneEmpty", a: "red shoes", b: "", want: 0.0},
		{name: "Disjoint", a: "abc", b: "xyz", want: 0.0},
		// Longest block "bcd", nothing else matches: 2*3/8.
		{name: "SharedBlock", a: "abcd", b: "bcde", want: 0.75},
		// "iphone 13 c" (11) plus the stray "e" (1): 2*12/29.
		{name: "Decomposition", a: "iphone 13 case", b: "iphone 13 cover", want: 24.0 / 29.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, similarity.Ratio(tt.a, tt.b), 1e-12)
		})
	}
}

func TestRatio_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"bluetooth headphones", "gaming laptop"},
		{"red shoes", "red shoe"},
		{"iphone 13 case", "iphone 13 cover"},
	}

	for _, p := range pairs {
		assert.InDelta(t, similarity.Ratio(p[0], p[1]), similarity.Ratio(p[1], p[0]), 1e-12)
	}
}
