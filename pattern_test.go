// SPDX-License-Identifier: GPL-2.0-only
// Source: github.com/patterncrush/crush

package crush

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenSet(t *testing.T) {
	s := newTokenSet()
	assert.True(t, s.empty())

	s.add('a')
	s.add('b')
	assert.False(t, s.empty())
	assert.True(t, s.has('a'))
	assert.False(t, s.has('c'))

	s.remove('a')
	assert.False(t, s.has('a'))
	assert.True(t, s.has('b'))
}

func TestNewPattern(t *testing.T) {
	p := newPattern("abc", 3, '`')
	assert.Equal(t, "abc", p.Str)
	assert.Equal(t, "abc", p.Original)
	assert.Equal(t, 3, p.Copies)
	assert.Equal(t, 3, p.Len)
	assert.Equal(t, -1, p.NewOrder)
	assert.True(t, p.Depends.empty())
	assert.True(t, p.UsedBy.empty())
	assert.False(t, p.Bound)
}

func TestNewPattern_EscapedLen(t *testing.T) {
	p := newPattern("a`b", 2, '`')
	assert.Equal(t, 4, p.Len, "delimiter occurrence costs an extra escape byte")
}

func TestFreeTokenAlphabet(t *testing.T) {
	alphabet := freeTokenAlphabet("abc", '`')
	for _, b := range alphabet {
		assert.NotEqual(t, byte('a'), b)
		assert.NotEqual(t, byte('b'), b)
		assert.NotEqual(t, byte('c'), b)
		assert.NotEqual(t, byte('`'), b)
		assert.NotEqual(t, byte('\\'), b)
		assert.NotEqual(t, byte('\r'), b)
	}
	require.NotEmpty(t, alphabet)
}

func TestFreeTokenAlphabet_ExhaustedWhenFull(t *testing.T) {
	var full []byte
	for b := 1; b <= 126; b++ {
		bb := byte(b)
		if bb == '`' || bb == '\r' || bb == '\\' {
			continue
		}
		full = append(full, bb)
	}
	alphabet := freeTokenAlphabet(string(full), '`')
	assert.Empty(t, alphabet)
}

func TestExpandOriginal(t *testing.T) {
	defs := map[byte]string{'\x01': "hello"}
	assert.Equal(t, "say hello now", expandOriginal("say \x01 now", defs))
	assert.Equal(t, "unchanged", expandOriginal("unchanged", defs))
	assert.Equal(t, "unchanged", expandOriginal("unchanged", nil))
}

// expandOriginal never re-scans a substituted definition: callers are
// required to keep tokenDefs fully expanded as they insert new entries
// (pattern.go's doc comment), so a later definition referencing an
// earlier token must already carry that token's expansion, not the
// raw token byte.
func TestExpandOriginal_BuiltSequentially(t *testing.T) {
	defs := map[byte]string{}

	first := expandOriginal("ab", defs) // no tokens yet
	defs['\x01'] = first

	second := expandOriginal("\x01\x01", defs) // references token 1, already expanded
	defs['\x02'] = second

	assert.Equal(t, "abab", defs['\x02'])
}
