// Package similarity decides whether a newly posted item name repeats
// something the user already posted. It powers the "you already posted
// something similar" nudge shown during post creation and next to posts
// in the group feed.
package similarity

import "strings"

// DefaultThreshold is the ratio at or above which two item names are
// considered the same purchase intent.
const DefaultThreshold = 0.6

// Kind is the three-way outcome of a history check.
type Kind string

const (
	KindNoHistory Kind = "no_history"
	KindMatch     Kind = "match"
	KindNoMatch   Kind = "no_match"
)

// Verdict is the result of Evaluate. Matched carries the original-case
// history entry and is set only when Kind is KindMatch.
type Verdict struct {
	Kind    Kind
	Matched string
}

// Evaluate checks candidate against the user's past item names.
//
// Comparison is case-insensitive; the reported match keeps the casing the
// history entry was stored with. Two stages run in order:
//
//  1. Best-match selection: every history entry at or above threshold is
//     considered and the highest-ratio one wins, ties going to the entry
//     that appears first in history. Cheap upper bounds prune entries that
//     cannot reach the threshold before the full ratio is computed.
//  2. Fallback scan: if stage 1 selected nothing, history is walked in
//     order and the first entry whose ratio clears the threshold wins.
//
// Stage 1 wins whenever it fires, even if stage 2 would have returned an
// earlier entry. Evaluate never fails: an empty history yields KindNoHistory
// and a blank candidate yields KindNoMatch.
func Evaluate(history []string, candidate string, threshold float64) Verdict {
	if len(history) == 0 {
		return Verdict{Kind: KindNoHistory}
	}

	cand := strings.ToLower(strings.TrimSpace(candidate))
	if cand == "" {
		return Verdict{Kind: KindNoMatch}
	}

	lowered := make([]string, len(history))
	for i, h := range history {
		lowered[i] = strings.ToLower(h)
	}

	if i, ok := bestMatch(lowered, cand, threshold); ok {
		return Verdict{Kind: KindMatch, Matched: history[i]}
	}

	for i, h := range lowered {
		if Ratio(h, cand) >= threshold {
			return Verdict{Kind: KindMatch, Matched: history[i]}
		}
	}

	return Verdict{Kind: KindNoMatch}
}

// bestMatch returns the index of the highest-ratio entry at or above
// threshold, or false when none qualifies. Earlier entries win ties.
func bestMatch(entries []string, candidate string, threshold float64) (int, bool) {
	cand := []rune(candidate)

	best := -1

	var bestRatio float64

	for i, e := range entries {
		entry := []rune(e)

		if lengthRatio(entry, cand) < threshold {
			continue
		}

		if quickRatio(entry, cand) < threshold {
			continue
		}

		r := ratio(entry, cand)
		if r < threshold {
			continue
		}

		if best == -1 || r > bestRatio {
			best = i
			bestRatio = r
		}
	}

	return best, best != -1
}

// Ratio is the similarity of two strings in [0, 1]: twice the total length
// of their matching blocks over the combined length. Identical strings score
// 1, strings with no characters in common score 0.
func Ratio(a, b string) float64 {
	return ratio([]rune(a), []rune(b))
}

func ratio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1.0
	}

	return 2.0 * float64(totalMatching(a, b)) / float64(total)
}

// lengthRatio is the best ratio the two strings could reach given only
// their lengths. It is an upper bound on ratio.
func lengthRatio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1.0
	}

	shorter := len(a)
	if len(b) < shorter {
		shorter = len(b)
	}

	return 2.0 * float64(shorter) / float64(total)
}

// quickRatio is an upper bound on ratio computed from character counts
// alone, ignoring order.
func quickRatio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1.0
	}

	avail := make(map[rune]int, len(b))
	for _, r := range b {
		avail[r]++
	}

	matches := 0

	for _, r := range a {
		if avail[r] > 0 {
			avail[r]--
			matches++
		}
	}

	return 2.0 * float64(matches) / float64(total)
}

type span struct {
	alo, ahi int
	blo, bhi int
}

// totalMatching sums the lengths of the matching blocks of a and b:
// the longest contiguous common block is found first, then the regions
// before and after it are decomposed the same way.
func totalMatching(a, b []rune) int {
	// Positions of each rune in b, ascending.
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	matched := 0
	queue := []span{{0, len(a), 0, len(b)}}

	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, size := longestMatch(a, b2j, s)
		if size == 0 {
			continue
		}

		matched += size

		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}

		if i+size < s.ahi && j+size < s.bhi {
			queue = append(queue, span{i + size, s.ahi, j + size, s.bhi})
		}
	}

	return matched
}

// longestMatch finds the longest block of a[s.alo:s.ahi] that also occurs
// in b[s.blo:s.bhi], returning its start in a, start in b, and length.
// Of equally long blocks the one starting earliest in a wins, and of those
// the one starting earliest in b.
func longestMatch(a []rune, b2j map[rune][]int, s span) (int, int, int) {
	besti, bestj, bestsize := s.alo, s.blo, 0

	// runlen[j] is the length of the common run ending at a[i], b[j].
	runlen := make(map[int]int)

	for i := s.alo; i < s.ahi; i++ {
		newRunlen := make(map[int]int)

		for _, j := range b2j[a[i]] {
			if j < s.blo {
				continue
			}

			if j >= s.bhi {
				break
			}

			k := runlen[j-1] + 1
			newRunlen[j] = k

			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}

		runlen = newRunlen
	}

	return besti, bestj, bestsize
}
