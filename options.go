// SPDX-License-Identifier: GPL-2.0-only
// Source: github.com/patterncrush/crush

package crush

// Strategy selects which search strategy Pack runs.
type Strategy int

const (
	// StrategyUnset is the zero value, standing for "no strategy
	// explicitly chosen"; withDefaults fills it in with StrategyBeam.
	// It is never a valid value to run Pack with directly.
	StrategyUnset Strategy = iota
	// StrategyCrusher runs the single-pass greedy search (§4.4 Crusher).
	StrategyCrusher
	// StrategyBeam runs the beam search with look-ahead prediction.
	StrategyBeam
	// StrategyDigit runs the digit-token variant.
	StrategyDigit
	// StrategyAll runs every strategy and returns one PackerData per strategy.
	StrategyAll
)

// Heuristic names the step-3 tie-break rule used by the Crusher.
type Heuristic int

const (
	// HeuristicBalanced uses the scorer's weighted score directly.
	HeuristicBalanced Heuristic = iota
	// HeuristicMostCopies prefers the pattern with the highest occurrence count.
	HeuristicMostCopies
	// HeuristicLongest prefers the longest pattern.
	HeuristicLongest
	// HeuristicDensity prefers the highest gain-per-byte-of-pattern.
	HeuristicDensity
	// HeuristicAdaptive re-evaluates all other heuristics at each step and
	// keeps the candidate ranked highest by the scorer's weighted order.
	HeuristicAdaptive
	// HeuristicAdaptiveGain is HeuristicAdaptive with the candidates ranked
	// by raw gain instead of the weighted score.
	HeuristicAdaptiveGain
)

// PackerOptions configures Pack. A nil value, or any zero-valued field
// within a non-nil value, falls back to its DefaultPackerOptions default;
// CrushGainFactor, CrushLengthFactor and CrushCopiesFactor fall back
// together, and only when all three are zero.
type PackerOptions struct {
	// Strategy selects the search strategy. Default StrategyBeam. The
	// zero value is StrategyUnset, not StrategyCrusher, so a caller who
	// leaves this field unset in a partial struct literal gets the
	// documented default rather than silently getting the crusher.
	Strategy Strategy
	// Heuristic selects the Crusher's step-3 tie-break rule. Default HeuristicBalanced.
	Heuristic Heuristic

	// UseES6 selects the shorter decoder loop, which assigns G in the
	// `for(_=…;G=…;)` condition, over the legacy `var`-declared
	// `for(…;;){…break…}` loop. Default true. A nil value falls back to the
	// default; a non-nil value is used as-is, so a caller can still
	// explicitly request the legacy form with UseES6: boolPtr(false).
	UseES6 *bool

	// BeamWidth is the beam's frontier width W. Default 5.
	BeamWidth int
	// BranchFactor is the number of top candidates expanded per beam state. Default 20.
	BranchFactor int
	// MaxReplacements caps the number of bound replacements. Default 100.
	MaxReplacements int
	// LookAheadDepth is the gain predictor's recursion depth cap. Default 150.
	LookAheadDepth int
	// PrioritizeHighestGain, when true, ranks the beam by cumulative actual
	// gain instead of predicted score.
	PrioritizeHighestGain bool
	// LookAheadDiscount is the per-step discount applied to predicted
	// look-ahead gain, in [0.8, 1.0]. Default 0.9 (see spec.md Open Questions).
	LookAheadDiscount float64

	// CrushGainFactor, CrushLengthFactor, CrushCopiesFactor and
	// CrushTiebreakerFactor are the scorer's weights (§4.2).
	CrushGainFactor       float64
	CrushLengthFactor     float64
	CrushCopiesFactor     float64
	CrushTiebreakerFactor float64

	// MaxInt is the digit-variant token count. Default 10; values above 10
	// are treated as 10, since the tokens are the single digits 0..9.
	MaxInt int
	// MaxStates bounds the digit worker's explored-state budget. Default 500000.
	MaxStates int
	// TimeLimitMS bounds the digit worker's wall-clock budget in
	// milliseconds. Default 600000 (10 minutes).
	TimeLimitMS int
	// WaitingForTrigger, when true, makes the digit worker wait for a
	// Resume call before it starts searching.
	WaitingForTrigger bool

	// Delimiter is the string delimiter byte used to quote the packed
	// literal in the decoder template. Default '`'.
	Delimiter byte
	// VarName is the decoder's working-variable name. Default "_".
	VarName string
}

// boolPtr returns a pointer to b, for PackerOptions.UseES6 literals.
func boolPtr(b bool) *bool { return &b }

// DefaultPackerOptions returns the default option set described in spec.md §6.
func DefaultPackerOptions() *PackerOptions {
	return &PackerOptions{
		Strategy:              StrategyBeam,
		Heuristic:             HeuristicBalanced,
		UseES6:                boolPtr(true),
		BeamWidth:             5,
		BranchFactor:          20,
		MaxReplacements:       100,
		LookAheadDepth:        150,
		PrioritizeHighestGain: false,
		LookAheadDiscount:     0.9,
		CrushGainFactor:       1.0,
		CrushLengthFactor:     0.0,
		CrushCopiesFactor:     0.0,
		CrushTiebreakerFactor: 1.0,
		MaxInt:                10,
		MaxStates:             500000,
		TimeLimitMS:           600000,
		WaitingForTrigger:     false,
		Delimiter:             '`',
		VarName:               "_",
	}
}

// withDefaults returns a copy of opts with every zero-valued field filled
// in from DefaultPackerOptions, following the teacher's
// "nil options means defaults" convention (DefaultCompressOptions /
// DefaultDecompressOptions) generalized to per-field fallback since this
// option set is much larger than the teacher's single Level field.
func (o *PackerOptions) withDefaults() *PackerOptions {
	d := DefaultPackerOptions()
	if o == nil {
		return d
	}

	out := *o
	if out.Strategy == StrategyUnset {
		out.Strategy = d.Strategy
	}
	if out.UseES6 == nil {
		out.UseES6 = d.UseES6
	}
	if out.BeamWidth == 0 {
		out.BeamWidth = d.BeamWidth
	}
	if out.BranchFactor == 0 {
		out.BranchFactor = d.BranchFactor
	}
	if out.MaxReplacements == 0 {
		out.MaxReplacements = d.MaxReplacements
	}
	if out.LookAheadDepth == 0 {
		out.LookAheadDepth = d.LookAheadDepth
	}
	if out.LookAheadDiscount == 0 {
		out.LookAheadDiscount = d.LookAheadDiscount
	}
	if out.CrushGainFactor == 0 && out.CrushLengthFactor == 0 && out.CrushCopiesFactor == 0 {
		out.CrushGainFactor = d.CrushGainFactor
		out.CrushLengthFactor = d.CrushLengthFactor
		out.CrushCopiesFactor = d.CrushCopiesFactor
	}
	if out.CrushTiebreakerFactor == 0 {
		out.CrushTiebreakerFactor = d.CrushTiebreakerFactor
	}
	if out.MaxInt == 0 {
		out.MaxInt = d.MaxInt
	}
	if out.MaxStates == 0 {
		out.MaxStates = d.MaxStates
	}
	if out.TimeLimitMS == 0 {
		out.TimeLimitMS = d.TimeLimitMS
	}
	if out.Delimiter == 0 {
		out.Delimiter = d.Delimiter
	}
	if out.VarName == "" {
		out.VarName = d.VarName
	}

	return &out
}
