// SPDX-License-Identifier: GPL-2.0-only
// Source: github.com/patterncrush/crush

package crush

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPack_EmptyInput(t *testing.T) {
	_, err := Pack("", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyInput))
}

func TestPack_CrusherStrategy_RoundTrips(t *testing.T) {
	opts := DefaultPackerOptions()
	opts.Strategy = StrategyCrusher

	out, err := Pack("abcabcabcabcabc", opts)
	require.NoError(t, err)
	require.Len(t, out, 1)

	data := out[0]
	assert.Equal(t, "crusher", data.Strategy)
	assert.NotEmpty(t, data.Result[1].Output)
	assert.Equal(t, "Final check: passed", data.Result[1].Details)
}

func TestPack_BeamStrategy_RoundTrips(t *testing.T) {
	opts := DefaultPackerOptions()
	opts.Strategy = StrategyBeam

	out, err := Pack("she sells sea shells by the sea shore", opts)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "beam", out[0].Strategy)
}

func TestPack_DigitStrategy_RoundTrips(t *testing.T) {
	opts := DefaultPackerOptions()
	opts.Strategy = StrategyDigit

	out, err := Pack("abcabcabcabcabc", opts)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "digit", out[0].Strategy)
	assert.NotEmpty(t, out[0].Replacements)
}

func TestPack_DigitStrategy_ReservedCharsFails(t *testing.T) {
	opts := DefaultPackerOptions()
	opts.Strategy = StrategyDigit

	_, err := Pack("has a 5 in it", opts)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDigitInputReservedChars))
}

func TestPack_NoRepeats_ReturnsTrivialResult(t *testing.T) {
	opts := DefaultPackerOptions()
	opts.Strategy = StrategyCrusher

	out, err := Pack("abcdefgh", opts)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "no gain found", out[0].Result[0].Details)
	assert.Equal(t, "abcdefgh", out[0].Result[0].Output)
}

func TestPack_StrategyAll_RunsEveryStrategy(t *testing.T) {
	opts := DefaultPackerOptions()
	opts.Strategy = StrategyAll

	out, err := Pack("abcabcabcabcabc xyzxyzxyz", opts)
	require.NoError(t, err)
	require.Len(t, out, 3)

	names := map[string]bool{}
	for _, d := range out {
		names[d.Strategy] = true
	}
	assert.True(t, names["crusher"])
	assert.True(t, names["beam"])
	assert.True(t, names["digit"])
}

func TestPack_NilOptionsUsesDefaults(t *testing.T) {
	out, err := Pack("abcabcabcabcabc", nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "beam", out[0].Strategy)
}

func TestRemapTokens(t *testing.T) {
	remap := map[byte]byte{0x01: 0x02}
	assert.Equal(t, "a\x02b", remapTokens("a\x01b", remap))
	assert.Equal(t, "unchanged", remapTokens("unchanged", nil))
}

func TestRevertClearedTokens(t *testing.T) {
	cleared := []Replacement{{Token: 0x01, Pattern: &Pattern{Original: "abc"}}}
	assert.Equal(t, "xabcabcy", revertClearedTokens("x\x01\x01y", cleared))
	assert.Equal(t, "no tokens here", revertClearedTokens("no tokens here", cleared))
}

func TestPack_DigitStrategy_PipeInInputStillRoundTrips(t *testing.T) {
	opts := DefaultPackerOptions()
	opts.Strategy = StrategyDigit

	out, err := Pack("x|yzx|yzx|yz", opts)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.NotEmpty(t, out[0].Replacements)
	assert.Equal(t, "Final check: passed", out[0].Result[1].Details)
	assert.Contains(t, out[0].Result[1].Output, "x|yz")
}

func TestTrivialPackerData(t *testing.T) {
	data := trivialPackerData(StrategyCrusher, "xy")
	assert.Equal(t, "xy", data.Result[0].Output)
	assert.Equal(t, "xy", data.Result[1].Output)
}

func TestErrorPackerData(t *testing.T) {
	data := errorPackerData(StrategyBeam, "xy", ErrNoFreeTokens)
	assert.Equal(t, -1, data.Result[0].Length)
	assert.Contains(t, data.Result[0].Details, "no tokens available")
}
