// SPDX-License-Identifier: GPL-2.0-only
// Source: github.com/patterncrush/crush

package crush

// tokenSet is a small multiset of token bytes, used for Pattern's
// depends/usedBy edges. Modelled as a map rather than pointers so that
// clearing a retired pattern's token from every other pattern is a pure
// value operation, independent of any reference cycle (spec.md §9,
// "Mutually recursive patterns").
type tokenSet map[byte]struct{}

func newTokenSet() tokenSet {
	return make(tokenSet)
}

func (s tokenSet) add(b byte) {
	s[b] = struct{}{}
}

func (s tokenSet) remove(b byte) {
	delete(s, b)
}

func (s tokenSet) has(b byte) bool {
	_, ok := s[b]
	return ok
}

func (s tokenSet) empty() bool {
	return len(s) == 0
}

// Pattern is a candidate repeated substring, a.k.a. Match (spec.md §3).
type Pattern struct {
	// Str is the substring as it currently appears in the working text.
	Str string
	// Original is Str with every token it contains recursively expanded
	// back to the substring it replaces, as found in the original input.
	Original string
	// Token is the byte assigned to this pattern. Zero until bound.
	Token byte
	// Bound reports whether Token has been assigned.
	Bound bool
	// Copies is the occurrence count in the current text.
	Copies int
	// Len is the escaped byte length of Str.
	Len int
	// Gain is the net byte saving of applying this substitution,
	// computed by Scorer.Gain.
	Gain int
	// Score is the weighted tie-break value computed by Scorer.Score.
	Score float64
	// Depends holds the tokens of patterns that must be bound before
	// this one (this pattern's Original contains their Original).
	Depends tokenSet
	// UsedBy holds the tokens of patterns that depend on this one.
	UsedBy tokenSet
	// Cleared is true once this pattern is retired, either bound or
	// dominated by the allocator.
	Cleared bool
	// NewOrder is the index at which the allocator finally bound this
	// pattern, or -1 if unbound.
	NewOrder int
}

// newPattern returns a Pattern for the given substring, with empty
// dependency sets and NewOrder unset.
func newPattern(str string, copies int, delim byte) *Pattern {
	return &Pattern{
		Str:      str,
		Original: str,
		Copies:   copies,
		Len:      escapedByteLen(str, delim),
		Depends:  newTokenSet(),
		UsedBy:   newTokenSet(),
		NewOrder: -1,
	}
}

// freeTokenAlphabet returns the printable bytes absent from text, in
// ascending order, excluding the backtick, CR, backslash and the
// configured delimiter (spec.md §4.4 Crusher step 1).
func freeTokenAlphabet(text string, delim byte) []byte {
	var seen [256]bool
	for i := 0; i < len(text); i++ {
		seen[text[i]] = true
	}

	var out []byte
	for b := 1; b <= 126; b++ {
		bb := byte(b)
		if seen[bb] {
			continue
		}
		if bb == '`' || bb == '\r' || bb == '\\' || bb == delim {
			continue
		}
		out = append(out, bb)
	}
	return out
}

// Replacement is a Pattern whose Token has been bound, as it appears in
// the ordered replacement list returned by a search strategy.
type Replacement struct {
	Token   byte
	Pattern *Pattern
	Copies  int
	Gain    int
	Score   float64
}

// SearchResult is what a search strategy (Crusher, BeamSearchSolver,
// DigitReplacer) hands to the token allocator: the fully tokenized
// working text, the ordered replacement list, and (for the beam) the
// recorded search graph.
type SearchResult struct {
	FinalText    string
	Replacements []Replacement
	Graph        *SearchGraph
	TotalGain    int
}

// expandOriginal replaces every byte in s that is a key of tokenDefs
// with its mapped definition, one pass. Safe as a byte-level scan
// because token bytes are always in 1..126 while UTF-8 continuation and
// lead bytes for non-ASCII runes are always >= 128, and because
// tokenDefs values are themselves always free of token bytes (Original
// strings are defined to be fully expanded at creation time).
func expandOriginal(s string, tokenDefs map[byte]string) string {
	if len(tokenDefs) == 0 {
		return s
	}
	needsExpand := false
	for i := 0; i < len(s); i++ {
		if _, ok := tokenDefs[s[i]]; ok {
			needsExpand = true
			break
		}
	}
	if !needsExpand {
		return s
	}

	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if def, ok := tokenDefs[c]; ok {
			out = append(out, def...)
		} else {
			out = append(out, c)
		}
	}
	return string(out)
}

// SearchState is one beam node: a partial solution under construction
// (spec.md §3, "Search state (beam)").
type SearchState struct {
	NodeID       int
	Text         string
	Tokens       []byte
	Replacements []Replacement
	Available    []*Pattern
	Gain         int
	Predicted    float64
	Depth        int
	ParentID     int
}
