// SPDX-License-Identifier: GPL-2.0-only
// Source: github.com/patterncrush/crush

package crush

// Analyser enumerates repeated substrings in a text and recounts a
// fixed set of patterns against a mutated text (spec.md §4.1),
// generalizing the teacher's fillPrefixArray/findall scan-by-length
// shape from a fixed 3-byte minimum match to variable-length substrings
// whose length is itself the object of search.
type Analyser struct {
	Delim byte
}

func newAnalyser(delim byte) *Analyser {
	return &Analyser{Delim: delim}
}

// maxPatternLen returns the length cap used by Enumerate: min(100, n/2).
func maxPatternLen(n int) int {
	limit := n / 2
	if limit > 100 {
		limit = 100
	}
	return limit
}

// Enumerate scans text ascending by length from 2 up to maxPatternLen,
// returning every substring that occurs at least twice, skipping any
// substring whose boundaries would split a UTF-16 surrogate pair.
func (a *Analyser) Enumerate(text string) []*Pattern {
	u := toCodeUnits(text)
	maxLen := maxPatternLen(len(u))
	if maxLen < 2 {
		return nil
	}

	seen := make(map[string]bool)
	var out []*Pattern

	for length := 2; length <= maxLen; length++ {
		for start := 0; start+length <= len(u); start++ {
			if splitsSurrogate(u, start, start+length) {
				continue
			}
			sub := u[start : start+length]
			key := sub.String()
			if seen[key] {
				continue
			}
			seen[key] = true

			copies := countNonOverlapping(u, sub)
			if copies < 2 {
				continue
			}
			out = append(out, newPattern(key, copies, a.Delim))
		}
	}
	return out
}

// Recount re-counts each pattern's non-overlapping occurrences against
// text, dropping (via the returned slice, omitting them) any pattern
// whose count falls below 2 or whose recomputed gain becomes <= 0.
func (a *Analyser) Recount(patterns []*Pattern, text string) []*Pattern {
	u := toCodeUnits(text)
	out := make([]*Pattern, 0, len(patterns))
	for _, p := range patterns {
		if p.Cleared {
			continue
		}
		sub := toCodeUnits(p.Str)
		p.Copies = countNonOverlapping(u, sub)
		if p.Copies < 2 {
			continue
		}
		p.Gain = Gain(p.Copies, p.Len)
		if p.Gain <= 0 {
			continue
		}
		out = append(out, p)
	}
	return out
}

// countNonOverlapping counts non-overlapping occurrences of sub within
// text, scanning left to right and skipping past each match.
func countNonOverlapping(text, sub codeUnits) int {
	if len(sub) == 0 || len(sub) > len(text) {
		return 0
	}
	count := 0
	i := 0
	for i+len(sub) <= len(text) {
		if equalUnits(text[i:i+len(sub)], sub) {
			count++
			i += len(sub)
			continue
		}
		i++
	}
	return count
}

func equalUnits(a, b codeUnits) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
