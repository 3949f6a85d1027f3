package group

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInviteCode(t *testing.T) {
	t.Run("LongCodeIsUppercaseHex", func(t *testing.T) {
		for range 200 {
			assert.Regexp(t, `^[0-9A-F]{8}$`, newInviteCode(false))
		}
	})

	t.Run("ShortCodeDigitsAreUniform", func(t *testing.T) {
		const codes = 100_000

		var counts [10]int
		for range codes {
			for _, c := range newInviteCode(true) {
				counts[c-'0']++
			}
		}

		// A draw that reduces raw bytes modulo 10 lands digits 6-9 about
		// 2.3% under their share, which at this sample size drifts well
		// past the tolerance below.
		mean := float64(codes * 6 / 10)
		for d, n := range counts {
			require.InDeltaf(t, mean, float64(n), mean*0.02, "digit %d", d)
		}
	})
}
