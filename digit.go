// SPDX-License-Identifier: GPL-2.0-only
// Source: github.com/patterncrush/crush

package crush

import (
	"fmt"
	"sort"
	"strconv"
)

// DigitReplacer is the numeric-token search strategy: it uses the
// decimal digits as tokens (0..9; a MaxInt above 10 is capped at the
// ten single digits), so the decoder can dispatch on `\d` instead of a hand-built
// character class (spec.md §4.4, "Digit-Replacer variant"). Grounded on
// miny.go's PackAll/MinpackFindCacheSize goroutine-per-config pattern,
// here driving a single background-capable beam-shaped search instead
// of evaluating several independent configs.
type DigitReplacer struct {
	Analyser *Analyser
	Options  *PackerOptions
}

func newDigitReplacer(opts *PackerOptions) *DigitReplacer {
	return &DigitReplacer{Analyser: newAnalyser(opts.Delimiter), Options: opts}
}

// checkReservedChars enforces the digit variant's hard precondition:
// the input must not already contain a decimal digit, since digits are
// the token alphabet (spec.md §4.4, §7 "Input precondition violated").
func (d *DigitReplacer) checkReservedChars(input string) error {
	for i := 0; i < len(input); i++ {
		c := input[i]
		if c >= '0' && c <= '9' {
			return fmt.Errorf("%w: %q", ErrDigitInputReservedChars, string(c))
		}
	}
	return nil
}

// digitBudget mirrors maxCrushIterations for the digit search's own
// safety counter.
const digitBudget = 100000

// digitTokenCost is the byte cost of a digit token in the decoder's
// `/\d/g` replace call: always exactly one digit, regardless of
// Options.MaxInt, since Run clamps the actual token supply to the ten
// single digits (see the clamp below) — a variable-width cost model
// doesn't apply here the way it does for the allocator's byte tokens.
const digitTokenCost = 1

// Run executes the digit-token search against input. budget, when
// non-nil, is checked once per iteration so a background worker (see
// worker.go) can enforce state-count and wall-clock limits; Run itself
// never blocks or sleeps.
func (d *DigitReplacer) Run(input string, budget func() bool) (*SearchResult, float64) {
	text := input
	tokenDefs := make(map[int]string)
	used := make(map[int]bool)
	maxInt := d.Options.MaxInt
	if maxInt <= 0 {
		maxInt = 10
	}
	// the decoder's `/\d/g` matches exactly one digit per token (see
	// artefact.go's buildDigitDecoderTemplate); a two-digit token like
	// "10" would decode as two single-digit tokens "1" and "0" instead
	// of one, so the token supply is capped at the ten single digits
	// regardless of a larger configured MaxInt.
	if maxInt > 10 {
		maxInt = 10
	}

	var reps []Replacement
	totalGain := 0.0

	patterns := d.Analyser.Enumerate(text)

	for iter := 0; iter < digitBudget; iter++ {
		if budget != nil && !budget() {
			break
		}
		if len(used) >= maxInt {
			break
		}

		if iter > 0 {
			patterns = d.recountOverlapWeighted(patterns, text)
		} else {
			d.scoreOverlapWeighted(patterns, text)
		}

		best := bestDigitPattern(patterns)
		if best == nil {
			break
		}

		idx, ok := nextFreeDigit(used, maxInt)
		if !ok {
			break
		}
		used[idx] = true

		tokenStr := strconv.Itoa(idx)
		original := expandDigitOriginal(best.Str, tokenDefs)
		tokenDefs[idx] = original

		best.Cleared = true
		best.Bound = true
		best.Original = original

		reps = append(reps, Replacement{
			Token: 0, Pattern: best, Copies: best.Copies, Gain: best.Gain, Score: best.Score,
		})
		totalGain += float64(best.Gain)

		text = replaceAllPatternStr(text, best.Str, tokenStr)
	}

	return &SearchResult{FinalText: text, Replacements: reps}, totalGain
}

// scoreOverlapWeighted sets each pattern's Gain using the digit
// variant's overlap-weighted occurrence count (spec.md §9, "the
// adaptive overlap-weighted count... produces non-integer counts that
// flow into a supposedly integer gain; the contract is preserved").
// Gain is stored rounded to the nearest int to satisfy Pattern.Gain's
// type, and ranking uses that rounded value; the fractional weighting
// only affects which integer the gain rounds to.
func (d *DigitReplacer) scoreOverlapWeighted(patterns []*Pattern, text string) {
	u := toCodeUnits(text)
	for _, p := range patterns {
		sub := toCodeUnits(p.Str)
		weighted := countOverlapWeighted(u, sub)
		gainF := digitGain(weighted, p.Len, digitTokenCost)
		p.Gain = int(gainF + 0.5)
	}
}

func (d *DigitReplacer) recountOverlapWeighted(patterns []*Pattern, text string) []*Pattern {
	u := toCodeUnits(text)
	out := make([]*Pattern, 0, len(patterns))
	for _, p := range patterns {
		if p.Cleared {
			continue
		}
		sub := toCodeUnits(p.Str)
		weighted := countOverlapWeighted(u, sub)
		if weighted < 2 {
			continue
		}
		gainF := digitGain(weighted, p.Len, digitTokenCost)
		if gainF <= 0 {
			continue
		}
		p.Copies = int(weighted)
		p.Gain = int(gainF + 0.5)
		out = append(out, p)
	}
	return out
}

// digitGain is the token-allocator-style gain formula applied to a
// (possibly fractional) occurrence count.
func digitGain(copies float64, length, tokenCost int) float64 {
	return copies*float64(length-tokenCost) - float64(length) - 2*float64(tokenCost)
}

// countOverlapWeighted blends non-overlapping and overlapping
// occurrence counts: nonOverlap + 0.3*(overlap-nonOverlap).
func countOverlapWeighted(text, sub codeUnits) float64 {
	nonOverlap := countNonOverlapping(text, sub)
	overlap := countOverlapping(text, sub)
	return float64(nonOverlap) + 0.3*float64(overlap-nonOverlap)
}

// countOverlapping counts every (possibly overlapping) occurrence of
// sub within text.
func countOverlapping(text, sub codeUnits) int {
	if len(sub) == 0 || len(sub) > len(text) {
		return 0
	}
	count := 0
	for i := 0; i+len(sub) <= len(text); i++ {
		if equalUnits(text[i:i+len(sub)], sub) {
			count++
		}
	}
	return count
}

func bestDigitPattern(patterns []*Pattern) *Pattern {
	var best *Pattern
	for _, p := range patterns {
		if p.Cleared || p.Gain <= 0 {
			continue
		}
		if best == nil || p.Gain > best.Gain {
			best = p
		}
	}
	return best
}

func nextFreeDigit(used map[int]bool, maxInt int) (int, bool) {
	for i := 0; i < maxInt; i++ {
		if !used[i] {
			return i, true
		}
	}
	return 0, false
}

func expandDigitOriginal(s string, tokenDefs map[int]string) string {
	// digit tokens are multi-character decimal strings embedded
	// literally in the working text; expanding them back requires a
	// string-level scan rather than bytelen.go's single-byte lookup.
	// Longer token strings are expanded first so that, e.g., token "12"
	// is resolved before token "1" can spuriously match its first digit.
	indices := make([]int, 0, len(tokenDefs))
	for idx := range tokenDefs {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool {
		si, sj := strconv.Itoa(indices[i]), strconv.Itoa(indices[j])
		if len(si) != len(sj) {
			return len(si) > len(sj)
		}
		return indices[i] > indices[j]
	})

	out := s
	for _, idx := range indices {
		out = replaceAllPatternStr(out, strconv.Itoa(idx), tokenDefs[idx])
	}
	return out
}

// replaceAllPatternStr replaces every non-overlapping occurrence of pat
// in text with repl, operating over code units.
func replaceAllPatternStr(text, pat, repl string) string {
	u := toCodeUnits(text)
	p := toCodeUnits(pat)
	r := toCodeUnits(repl)
	if len(p) == 0 {
		return text
	}

	out := make(codeUnits, 0, len(u))
	i := 0
	for i < len(u) {
		if i+len(p) <= len(u) && equalUnits(u[i:i+len(p)], p) {
			out = append(out, r...)
			i += len(p)
			continue
		}
		out = append(out, u[i])
		i++
	}
	return out.String()
}
