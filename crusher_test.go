// SPDX-License-Identifier: GPL-2.0-only
// Source: github.com/patterncrush/crush

package crush

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrusher_Run_FindsObviousRepeat(t *testing.T) {
	opts := DefaultPackerOptions()
	opts.Strategy = StrategyCrusher
	c := newCrusher(opts)

	result := c.Run("abcabcabc")
	require.NotEmpty(t, result.Replacements)
	assert.Less(t, byteLen(result.FinalText), byteLen("abcabcabc"))
}

func TestCrusher_Run_NoRepeatsYieldsNoReplacements(t *testing.T) {
	opts := DefaultPackerOptions()
	c := newCrusher(opts)

	result := c.Run("abcdefgh")
	assert.Empty(t, result.Replacements)
	assert.Equal(t, "abcdefgh", result.FinalText)
}

func TestCrusher_Run_RespectsMaxReplacements(t *testing.T) {
	opts := DefaultPackerOptions()
	opts.MaxReplacements = 1

	c := newCrusher(opts)
	result := c.Run("abcabcabc xyzxyzxyz 123123123")
	assert.LessOrEqual(t, len(result.Replacements), 1)
}

func TestCrusher_Choose_HeuristicMostCopies(t *testing.T) {
	opts := DefaultPackerOptions()
	opts.Heuristic = HeuristicMostCopies
	c := newCrusher(opts)

	few := &Pattern{Copies: 2, Gain: 1}
	many := &Pattern{Copies: 9, Gain: 1}
	chosen := c.choose([]*Pattern{few, many})
	assert.Same(t, many, chosen)
}

func TestCrusher_Choose_HeuristicLongest(t *testing.T) {
	opts := DefaultPackerOptions()
	opts.Heuristic = HeuristicLongest
	c := newCrusher(opts)

	short := &Pattern{Len: 2, Gain: 1}
	long := &Pattern{Len: 20, Gain: 1}
	chosen := c.choose([]*Pattern{short, long})
	assert.Same(t, long, chosen)
}

func TestCrusher_Choose_HeuristicDensity(t *testing.T) {
	opts := DefaultPackerOptions()
	opts.Heuristic = HeuristicDensity
	c := newCrusher(opts)

	lowDensity := &Pattern{Gain: 2, Len: 10}
	highDensity := &Pattern{Gain: 8, Len: 10}
	chosen := c.choose([]*Pattern{lowDensity, highDensity})
	assert.Same(t, highDensity, chosen)
}

func TestCrusher_PickBy_SkipsClearedAndNonPositiveGain(t *testing.T) {
	cleared := &Pattern{Copies: 100, Gain: 1, Cleared: true}
	negative := &Pattern{Copies: 50, Gain: -1}
	live := &Pattern{Copies: 5, Gain: 1}

	got := pickBy([]*Pattern{cleared, negative, live}, func(p *Pattern) float64 { return float64(p.Copies) })
	assert.Same(t, live, got)
}

func TestNextFreeToken(t *testing.T) {
	used := newTokenSet()
	used.add(1)
	token, ok := nextFreeToken("", '`', used)
	require.True(t, ok)
	assert.NotEqual(t, byte(1), token)
}

func TestNextFreeToken_Exhausted(t *testing.T) {
	var full []byte
	for b := 1; b <= 126; b++ {
		bb := byte(b)
		if bb == '`' || bb == '\r' || bb == '\\' {
			continue
		}
		full = append(full, bb)
	}
	_, ok := nextFreeToken(string(full), '`', newTokenSet())
	assert.False(t, ok)
}
