// SPDX-License-Identifier: GPL-2.0-only
// Source: github.com/patterncrush/crush

package crush

// maxCrushIterations is the safety counter that aborts a crusher run
// that somehow never terminates on its own (spec.md §4.4, "a safety
// counter aborts any branch that exceeds a global iteration budget").
const maxCrushIterations = 100000

// Crusher is the single-pass greedy search strategy: at each step it
// picks the highest-ranked still-available pattern, binds it to a fresh
// token, rewrites the text, and repeats. Grounded directly on
// tscrunch.go's crunch() pick-apply-repeat loop.
type Crusher struct {
	Analyser *Analyser
	Scorer   *Scorer
	Options  *PackerOptions
}

func newCrusher(opts *PackerOptions) *Crusher {
	return &Crusher{
		Analyser: newAnalyser(opts.Delimiter),
		Scorer:   newScorer(opts),
		Options:  opts,
	}
}

// Run executes the crusher strategy against input and returns the
// resulting SearchResult.
func (c *Crusher) Run(input string) *SearchResult {
	text := input
	tokenDefs := make(map[byte]string)
	used := newTokenSet()
	var reps []Replacement
	totalGain := 0

	patterns := c.Analyser.Enumerate(text)

	for iter := 0; iter < maxCrushIterations; iter++ {
		if len(reps) >= c.Options.MaxReplacements {
			break
		}
		if iter > 0 {
			patterns = c.Analyser.Recount(patterns, text)
		}
		for _, p := range patterns {
			c.Scorer.Apply(p)
		}

		chosen := c.choose(patterns)
		if chosen == nil || chosen.Gain <= 0 {
			break
		}

		token, ok := nextFreeToken(text, c.Options.Delimiter, used)
		if !ok {
			break
		}

		original := expandOriginal(chosen.Str, tokenDefs)
		tokenDefs[token] = original
		used.add(token)

		chosen.Token = token
		chosen.Bound = true
		chosen.Original = original
		chosen.Cleared = true

		reps = append(reps, Replacement{
			Token:   token,
			Pattern: chosen,
			Copies:  chosen.Copies,
			Gain:    chosen.Gain,
			Score:   chosen.Score,
		})
		totalGain += chosen.Gain

		text = replaceAllPattern(text, chosen.Str, token)
	}

	return &SearchResult{FinalText: text, Replacements: reps, TotalGain: totalGain}
}

// choose applies the configured heuristic to pick the next pattern to
// bind (spec.md §4.4, "BALANCED, MOST_COPIES, LONGEST, DENSITY,
// ADAPTIVE, ADAPTIVE_GAIN").
func (c *Crusher) choose(patterns []*Pattern) *Pattern {
	switch c.Options.Heuristic {
	case HeuristicMostCopies:
		return pickBy(patterns, func(p *Pattern) float64 { return float64(p.Copies) })
	case HeuristicLongest:
		return pickBy(patterns, func(p *Pattern) float64 { return float64(p.Len) })
	case HeuristicDensity:
		return pickBy(patterns, func(p *Pattern) float64 {
			if p.Len == 0 {
				return 0
			}
			return float64(p.Gain) / float64(p.Len)
		})
	case HeuristicAdaptive:
		return c.pickAdaptive(patterns, false)
	case HeuristicAdaptiveGain:
		return c.pickAdaptive(patterns, true)
	default: // HeuristicBalanced
		return c.Scorer.Best(patterns)
	}
}

// pickBy returns the live (not cleared, gain > 0) pattern maximizing
// key, breaking ties by insertion order (first found wins).
func pickBy(patterns []*Pattern, key func(*Pattern) float64) *Pattern {
	var best *Pattern
	var bestKey float64
	for _, p := range patterns {
		if p.Cleared || p.Gain <= 0 {
			continue
		}
		k := key(p)
		if best == nil || k > bestKey {
			best, bestKey = p, k
		}
	}
	return best
}

// pickAdaptive re-evaluates every other heuristic and keeps whichever
// one's candidate has the highest gain (byGainOnly) or weighted score.
func (c *Crusher) pickAdaptive(patterns []*Pattern, byGainOnly bool) *Pattern {
	candidates := []*Pattern{
		c.Scorer.Best(patterns),
		pickBy(patterns, func(p *Pattern) float64 { return float64(p.Copies) }),
		pickBy(patterns, func(p *Pattern) float64 { return float64(p.Len) }),
		pickBy(patterns, func(p *Pattern) float64 {
			if p.Len == 0 {
				return 0
			}
			return float64(p.Gain) / float64(p.Len)
		}),
	}

	var winner *Pattern
	for _, cand := range candidates {
		if cand == nil {
			continue
		}
		if winner == nil {
			winner = cand
			continue
		}
		if byGainOnly {
			if cand.Gain > winner.Gain {
				winner = cand
			}
		} else if c.Scorer.Less(winner, cand) {
			winner = cand
		}
	}
	return winner
}

// nextFreeToken returns the first printable byte absent from text and
// from used, or ok=false if the alphabet is exhausted.
func nextFreeToken(text string, delim byte, used tokenSet) (byte, bool) {
	for _, b := range freeTokenAlphabet(text, delim) {
		if !used.has(b) {
			return b, true
		}
	}
	return 0, false
}
