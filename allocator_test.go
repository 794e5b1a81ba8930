// SPDX-License-Identifier: GPL-2.0-only
// Source: github.com/patterncrush/crush

package crush

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func provisionalReplacement(str string, copies int, delim byte) Replacement {
	p := newPattern(str, copies, delim)
	sc := &Scorer{GainFactor: 1}
	sc.Apply(p)
	return Replacement{Token: 0, Pattern: p, Copies: p.Copies, Gain: p.Gain, Score: p.Score}
}

func TestAllocator_Allocate_BindsSimpleReplacement(t *testing.T) {
	a := newAllocator(DefaultPackerOptions())
	original := "abcabcabc"
	reps := []Replacement{provisionalReplacement("abc", 3, '`')}

	result, err := a.Allocate(original, reps)
	require.NoError(t, err)
	require.Len(t, result.Replacements, 1)
	assert.NotZero(t, result.Replacements[0].Token)
	assert.NotContains(t, original, string(result.Replacements[0].Token), "assigned token must be absent from the original text")
}

func TestAllocator_Allocate_EmptyProvisionalList(t *testing.T) {
	a := newAllocator(DefaultPackerOptions())
	result, err := a.Allocate("anything", nil)
	require.NoError(t, err)
	assert.Empty(t, result.Replacements)
	assert.Empty(t, result.CharClass)
}

func TestAllocator_Allocate_NoFreeTokensFails(t *testing.T) {
	a := newAllocator(DefaultPackerOptions())
	var full []byte
	for b := 1; b <= 126; b++ {
		bb := byte(b)
		if bb == '\r' || bb == '\n' {
			continue
		}
		full = append(full, bb)
	}
	original := string(full)
	reps := []Replacement{provisionalReplacement("x", 2, '`')}

	_, err := a.Allocate(original, reps)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoFreeTokens))
}

func TestAllocator_BuildDependencyGraph_ContainmentEdges(t *testing.T) {
	a := newAllocator(DefaultPackerOptions())
	outer := provisionalReplacement("abcdef", 2, '`')
	inner := provisionalReplacement("abc", 2, '`')
	inner.Pattern.Token, outer.Pattern.Token = 1, 2

	a.buildDependencyGraph([]Replacement{inner, outer})
	assert.True(t, outer.Pattern.Depends.has(1), "outer's Original contains inner's Original")
	assert.True(t, inner.Pattern.UsedBy.has(2))
}

func TestAllocator_Allocate_BindsContainedBeforeContainer(t *testing.T) {
	// spec.md §8: "j is bound before i where i's original contains j's
	// original" — here " sea" contains "sea", so "sea" must get the lower
	// NewOrder (and so appear earlier in the packed literal) than " sea".
	a := newAllocator(DefaultPackerOptions())
	original := "she sells sea shells by the sea shore sea"
	contained := provisionalReplacement("sea", 3, '`')
	container := provisionalReplacement(" sea", 3, '`')

	// buildDependencyGraph keys edges off each Pattern's provisional
	// Token, which provisionalReplacement otherwise leaves at the zero
	// value for every pattern — give contained and container distinct
	// nonzero provisional tokens, on both the Replacement and its Pattern,
	// the way real search output always does.
	contained.Token, contained.Pattern.Token = 1, 1
	container.Token, container.Pattern.Token = 2, 2

	result, err := a.Allocate(original, []Replacement{container, contained})
	require.NoError(t, err)
	require.Len(t, result.Replacements, 2)

	var containedOrder, containerOrder int = -1, -1
	for _, r := range result.Replacements {
		switch r.Pattern.Original {
		case "sea":
			containedOrder = r.Pattern.NewOrder
		case " sea":
			containerOrder = r.Pattern.NewOrder
		}
	}
	require.NotEqual(t, -1, containedOrder, "the contained pattern must have bound")
	require.NotEqual(t, -1, containerOrder, "the container pattern must have bound")
	assert.Less(t, containedOrder, containerOrder, "the contained pattern's definition must be written before the container's")
}

func TestAllocator_DiscoverRanges_ExcludesPresentBytes(t *testing.T) {
	a := newAllocator(DefaultPackerOptions())
	ranges := a.discoverRanges("abc")
	for _, r := range ranges {
		for b := int(r.First); b <= int(r.Last); b++ {
			assert.NotEqual(t, byte('a'), byte(b))
			assert.NotEqual(t, byte('b'), byte(b))
			assert.NotEqual(t, byte('c'), byte(b))
		}
	}
}

func TestAllocator_BuildRange_TrimsCRLF(t *testing.T) {
	a := newAllocator(DefaultPackerOptions())
	r := a.buildRange('\r', 'a')
	assert.NotEqual(t, byte('\r'), r.First)
}

func TestAllocator_OrderRanges_DescendingByKey(t *testing.T) {
	a := newAllocator(DefaultPackerOptions())
	small := TokenRange{First: 1, Last: 1, Count: 1, Cost: 1, OneByteTokenCount: 1}
	large := TokenRange{First: 10, Last: 20, Count: 11, Cost: 5, OneByteTokenCount: 11}
	ranges := []TokenRange{small, large}
	a.orderRanges(ranges)
	assert.Equal(t, large.First, ranges[0].First)
}

func TestAllocator_BuildClass_LoneHyphenPrepended(t *testing.T) {
	a := newAllocator(DefaultPackerOptions())
	ranges := []TokenRange{{First: '-', Last: '-', Count: 1}, {First: 'a', Last: 'c', Count: 3}}
	class := a.buildClass(ranges)
	assert.Equal(t, "-a-c", class)
}

func TestTokenRange_ClassString(t *testing.T) {
	single := TokenRange{First: 'a', Last: 'a', Count: 1}
	assert.Equal(t, "a", single.classString())

	span := TokenRange{First: 'a', Last: 'c', Count: 3}
	assert.Equal(t, "a-c", span.classString())
}

func TestEscapeForClass(t *testing.T) {
	assert.Equal(t, "\\^", escapeForClass('^'))
	assert.Equal(t, "\\]", escapeForClass(']'))
	assert.Equal(t, "\\\\", escapeForClass('\\'))
	assert.Equal(t, "\\-", escapeForClass('-'))
	assert.Equal(t, "a", escapeForClass('a'))
}
