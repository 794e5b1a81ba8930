// SPDX-License-Identifier: GPL-2.0-only
// Source: github.com/patterncrush/crush

package crush

// Scorer computes a Pattern's gain and weighted tie-break score using
// the configurable weights carried by PackerOptions (spec.md §4.2),
// generalizing the teacher's per-match tokenCost/cost helpers
// (tscrunch.go's tokenCost, miny.go's Encoder.cost) to a weighted blend
// of gain, length and copy count.
type Scorer struct {
	GainFactor       float64
	LengthFactor     float64
	CopiesFactor     float64
	TiebreakerFactor float64
}

// newScorer builds a Scorer from the crush* weights in opts.
func newScorer(opts *PackerOptions) *Scorer {
	return &Scorer{
		GainFactor:       opts.CrushGainFactor,
		LengthFactor:     opts.CrushLengthFactor,
		CopiesFactor:     opts.CrushCopiesFactor,
		TiebreakerFactor: opts.CrushTiebreakerFactor,
	}
}

// Gain computes the greedy/beam-stage gain formula: one byte for the
// token list entry, one for the delimiter between packed literal and
// token list, and two amortised bytes for placing the substring itself
// in the decoder.
func Gain(copies, length int) int {
	return copies*length - copies - length - 2
}

// AllocatorGain computes the token-allocator-stage gain, which accounts
// for a token costing more than one output byte (only the backslash
// token, tokenCost 2, in this design — see spec.md §9 "Tokens and
// multi-byte encodings").
func AllocatorGain(copies, length, tokenCost int) int {
	return copies*(length-tokenCost) - length - 2*tokenCost
}

// Score computes the weighted tie-break value.
func (s *Scorer) Score(gain, length, copies int) float64 {
	return s.GainFactor*float64(gain) + s.LengthFactor*float64(length) + s.CopiesFactor*float64(copies)
}

// Apply sets p.Gain and p.Score from p.Copies and p.Len using the
// greedy/beam-stage gain formula.
func (s *Scorer) Apply(p *Pattern) {
	p.Gain = Gain(p.Copies, p.Len)
	p.Score = s.Score(p.Gain, p.Len, p.Copies)
}

// Less reports whether a ranks strictly below b under the scorer's
// tie-break order: higher score wins, then higher gain, then higher
// TiebreakerFactor*copies.
func (s *Scorer) Less(a, b *Pattern) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	if a.Gain != b.Gain {
		return a.Gain < b.Gain
	}
	return s.TiebreakerFactor*float64(a.Copies) < s.TiebreakerFactor*float64(b.Copies)
}

// Best returns the highest-ranked pattern with Gain > 0 among
// candidates, or nil if none qualifies. Ties are broken by Less, which
// in turn falls back to insertion order (spec.md §5, "ties... broken by
// insertion order").
func (s *Scorer) Best(candidates []*Pattern) *Pattern {
	var best *Pattern
	for _, p := range candidates {
		if p.Cleared || p.Gain <= 0 {
			continue
		}
		if best == nil || s.Less(best, p) {
			best = p
		}
	}
	return best
}
