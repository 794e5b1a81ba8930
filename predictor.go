// SPDX-License-Identifier: GPL-2.0-only
// Source: github.com/patterncrush/crush

package crush

// Predictor estimates the additional gain obtainable beyond the next
// beam-search step, by greedily projecting forward a bounded number of
// steps. Grounded on compress9x.go's minLazyMatchGain bounded look-ahead,
// which compares the gain of continuing past a match against stopping
// now (spec.md §4.3).
type Predictor struct {
	Analyser *Analyser
	Scorer   *Scorer
	Depth    int
	Discount float64
	Delim    byte

	cache map[string]float64
}

func newPredictor(an *Analyser, sc *Scorer, depth int, discount float64) *Predictor {
	return &Predictor{
		Analyser: an,
		Scorer:   sc,
		Depth:    depth,
		Discount: discount,
		Delim:    an.Delim,
		cache:    make(map[string]float64),
	}
}

// Predict returns the cumulative discounted gain projected by greedily
// applying the best available pattern against text, up to depth times,
// skipping tokens already used on this path. Results are memoised by
// text (spec.md §4.3, "cached by text key").
func (p *Predictor) Predict(text string, patterns []*Pattern, used tokenSet, depth int) float64 {
	if depth <= 0 {
		return 0
	}
	if v, ok := p.cache[text]; ok {
		return v
	}

	live := p.Analyser.Recount(clonePatterns(patterns), text)
	best := p.Scorer.Best(live)
	if best == nil {
		p.cache[text] = 0
		return 0
	}

	alphabet := freeTokenAlphabet(text, p.Delim)
	var token byte
	found := false
	for _, b := range alphabet {
		if !used.has(b) {
			token = b
			found = true
			break
		}
	}
	if !found {
		p.cache[text] = 0
		return 0
	}

	nextText := replaceAllPattern(text, best.Str, token)
	used.add(token)
	rest := p.Predict(nextText, live, used, depth-1)
	used.remove(token)

	v := float64(best.Gain) + p.Discount*rest
	p.cache[text] = v
	return v
}

// clonePatterns returns a shallow copy of the pattern slice so that the
// predictor's speculative recounting never mutates the caller's live set.
func clonePatterns(patterns []*Pattern) []*Pattern {
	out := make([]*Pattern, len(patterns))
	for i, p := range patterns {
		cp := *p
		cp.Depends = newTokenSet()
		cp.UsedBy = newTokenSet()
		out[i] = &cp
	}
	return out
}

// replaceAllPattern replaces every non-overlapping occurrence of pat in
// text with the single byte token, operating over code units so that
// multi-byte runes in pat are matched intact.
func replaceAllPattern(text, pat string, token byte) string {
	u := toCodeUnits(text)
	p := toCodeUnits(pat)
	if len(p) == 0 {
		return text
	}

	out := make(codeUnits, 0, len(u))
	i := 0
	for i < len(u) {
		if i+len(p) <= len(u) && equalUnits(u[i:i+len(p)], p) {
			out = append(out, uint16(token))
			i += len(p)
			continue
		}
		out = append(out, u[i])
		i++
	}
	return out.String()
}
