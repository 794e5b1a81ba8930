// SPDX-License-Identifier: GPL-2.0-only
// Source: github.com/patterncrush/crush

package crush

import (
	"fmt"
	"sort"
	"strings"
)

// TokenRange is a contiguous interval of free byte values usable as
// tokens (spec.md §3, "TokenRange").
type TokenRange struct {
	First, Last       byte
	Count             int
	Cost              int
	OneByteTokenCount int
}

func (r TokenRange) containsBackslash() bool {
	return r.First <= '\\' && '\\' <= r.Last
}

// classString renders the range as it would appear inside a regex
// character class, escaping the metacharacters `^`, `]`, `\` and `-`.
func (r TokenRange) classString() string {
	if r.Count == 1 {
		return escapeForClass(r.First)
	}
	return fmt.Sprintf("%s-%s", escapeForClass(r.First), escapeForClass(r.Last))
}

func escapeForClass(b byte) string {
	switch b {
	case '^', ']', '\\', '-':
		return "\\" + string(b)
	default:
		return string(b)
	}
}

// Allocator is the token-allocation post-pass: it assigns the search's
// provisional replacements to concrete printable bytes expressible as a
// regex character class (spec.md §4.5). Grounded on sliding_window.go's
// append/removeNode bookkeeping discipline, applied here to the
// depends/usedBy clearing-on-retirement step.
type Allocator struct {
	Delimiter byte
	Scorer    *Scorer
}

func newAllocator(opts *PackerOptions) *Allocator {
	return &Allocator{Delimiter: opts.Delimiter, Scorer: newScorer(opts)}
}

// AllocateResult is the allocator's output: the final bound
// replacements (in binding order, NewOrder ascending) and the regex
// character class they were assigned from.
type AllocateResult struct {
	Replacements []Replacement
	CharClass    string
}

// Allocate runs the full §4.5 algorithm against original (the
// unmodified input text) and the search's provisional replacement list.
func (a *Allocator) Allocate(original string, provisional []Replacement) (*AllocateResult, error) {
	if len(provisional) == 0 {
		return &AllocateResult{CharClass: ""}, nil
	}

	a.buildDependencyGraph(provisional)

	ranges := a.discoverRanges(original)
	if len(ranges) == 0 {
		return nil, ErrNoFreeTokens
	}
	a.orderRanges(ranges)
	ranges = a.repairLeadingCaret(ranges, len(provisional))

	supply, hasBackslash := a.buildTokenSupply(ranges)
	if len(supply) == 0 {
		return nil, ErrNoFreeTokens
	}

	bound, consumed, err := a.bind(provisional, supply, hasBackslash)
	if err != nil {
		return nil, err
	}

	ranges = a.trimTail(ranges, consumed)
	ranges = a.fixLeadingCaret(ranges)

	return &AllocateResult{Replacements: bound, CharClass: a.buildClass(ranges)}, nil
}

// buildDependencyGraph records containment edges: if replacement j's
// Original contains replacement i's Original, j depends on i and i is
// used by j (spec.md §4.5 step 1). Pattern.Original is always fully
// expanded back to raw input text at creation time (see pattern.go's
// expandOriginal), so the token-containment half of step 1 ("if j's
// original contains i's token, expand it") is satisfied by
// construction and needs no extra work here. Edges are keyed by each
// Pattern's provisional Token, the same key bind's unblock clears.
func (a *Allocator) buildDependencyGraph(reps []Replacement) {
	for i := range reps {
		for j := range reps {
			if i == j {
				continue
			}
			oi, oj := reps[i].Pattern.Original, reps[j].Pattern.Original
			if oi == "" || oi == oj {
				continue
			}
			if strings.Contains(oj, oi) {
				reps[j].Pattern.Depends.add(reps[i].Pattern.Token)
				reps[i].Pattern.UsedBy.add(reps[j].Pattern.Token)
			}
		}
	}
}

// discoverRanges scans bytes 1..126 of original, collecting maximal
// free contiguous intervals (spec.md §4.5 step 2).
func (a *Allocator) discoverRanges(original string) []TokenRange {
	var present [256]bool
	for i := 0; i < len(original); i++ {
		present[original[i]] = true
	}

	var ranges []TokenRange
	start := -1
	for b := 1; b <= 127; b++ {
		free := b <= 126 && !present[byte(b)] && byte(b) != a.Delimiter
		if free && start == -1 {
			start = b
		}
		if (!free || b == 127) && start != -1 {
			if r := a.buildRange(byte(start), byte(b-1)); r.Count > 0 {
				ranges = append(ranges, r)
			}
			start = -1
		}
	}
	return ranges
}

// buildRange trims CR from the ends of [first,last] and refuses to
// begin or end a range with LF, per spec.md §4.5 step 2.
func (a *Allocator) buildRange(first, last byte) TokenRange {
	for first <= last && (first == '\r' || first == '\n') {
		first++
	}
	for last >= first && (last == '\r' || last == '\n') {
		last--
	}
	if first > last {
		return TokenRange{}
	}

	count := int(last) - int(first) + 1
	r := TokenRange{First: first, Last: last, Count: count}
	r.Cost = len(r.classString())
	r.OneByteTokenCount = count
	if r.containsBackslash() {
		r.OneByteTokenCount--
	}
	return r
}

// orderRanges sorts ranges by 10*oneByteTokenCount - cost + first/1000,
// descending (spec.md §4.5 step 3).
func (a *Allocator) orderRanges(ranges []TokenRange) {
	sort.SliceStable(ranges, func(i, j int) bool {
		ki := 10*float64(ranges[i].OneByteTokenCount) - float64(ranges[i].Cost) + float64(ranges[i].First)/1000
		kj := 10*float64(ranges[j].OneByteTokenCount) - float64(ranges[j].Cost) + float64(ranges[j].First)/1000
		return ki > kj
	})
}

// repairLeadingCaret drops a leading `^` from the first range when
// doing so avoids an accidentally-negated character class (spec.md
// §4.5 step 4).
func (a *Allocator) repairLeadingCaret(ranges []TokenRange, numReplacements int) []TokenRange {
	if len(ranges) == 0 || ranges[0].First != '^' {
		return ranges
	}
	if numReplacements < ranges[0].Count || len(ranges) == 1 {
		ranges[0].First++
		ranges[0].Count--
		ranges[0].OneByteTokenCount--
		ranges[0].Cost = len(ranges[0].classString())
	}
	return ranges
}

// buildTokenSupply returns the one-byte tokens from every range, in
// range order, followed by the two-byte backslash token if the
// backslash byte is itself free (spec.md §4.5 step 5).
func (a *Allocator) buildTokenSupply(ranges []TokenRange) ([]byte, bool) {
	var supply []byte
	hasBackslash := false
	for _, r := range ranges {
		for b := int(r.First); b <= int(r.Last); b++ {
			if byte(b) == '\\' {
				hasBackslash = true
				continue
			}
			supply = append(supply, byte(b))
		}
	}
	if hasBackslash {
		supply = append(supply, '\\')
	}
	return supply, hasBackslash
}

// bind runs the binding loop: repeatedly choose, among not-yet-bound
// replacements with an empty Depends set — i.e. whose Original doesn't
// still contain another unbound replacement's Original — the best by
// score, assign the next token, and compute its allocator-stage gain;
// clear and unblock dependents if the gain is non-positive. This binds
// the contained pattern before the container that nests it, per
// spec.md §8 ("j is bound before i where i's original contains j's
// original"), so that by the time a container's definition is written
// to the packed literal, the token it nests already exists.
func (a *Allocator) bind(provisional []Replacement, supply []byte, hasBackslash bool) ([]Replacement, int, error) {
	patterns := make([]*Pattern, len(provisional))
	for i := range provisional {
		patterns[i] = provisional[i].Pattern
		// the search strategies mark every pattern they bind as Bound and
		// Cleared; here each provisional pattern starts unbound again.
		patterns[i].Bound = false
		patterns[i].Cleared = false
	}

	cursor := 0
	order := 0
	var bound []Replacement

	for {
		candidates := make([]*Pattern, 0, len(patterns))
		for _, p := range patterns {
			if !p.Bound && !p.Cleared && p.Depends.empty() {
				candidates = append(candidates, p)
			}
		}
		if len(candidates) == 0 {
			break
		}

		sort.SliceStable(candidates, func(i, j int) bool {
			return a.Scorer.Less(candidates[j], candidates[i])
		})
		chosen := candidates[0]

		// buildDependencyGraph recorded edges against chosen's provisional
		// token (its value when the search bound it); Token is about to be
		// overwritten with the final supply token below, so the edge to
		// clear has to be captured now, before that happens, not read back
		// off chosen.Token afterward.
		provisionalToken := chosen.Token

		if cursor >= len(supply) {
			break
		}
		token := supply[cursor]
		tokenCost := 1
		if hasBackslash && token == '\\' {
			tokenCost = 2
		}

		gain := AllocatorGain(chosen.Copies, chosen.Len, tokenCost)
		if gain <= 0 {
			chosen.Cleared = true
			a.unblock(patterns, provisionalToken)
			continue
		}

		cursor++
		chosen.Bound = true
		chosen.Token = token
		chosen.Gain = gain
		chosen.NewOrder = order
		order++

		bound = append(bound, Replacement{
			Token: token, Pattern: chosen, Copies: chosen.Copies, Gain: gain, Score: chosen.Score,
		})
		a.unblock(patterns, provisionalToken)
	}

	if len(bound) == 0 {
		return nil, 0, ErrAllocatorInvariant
	}

	sort.SliceStable(bound, func(i, j int) bool { return bound[i].Pattern.NewOrder < bound[j].Pattern.NewOrder })
	return bound, cursor, nil
}

// unblock removes token from every pattern's depends/usedBy sets once
// the replacement it was provisionally bound to has been bound or
// cleared, following sliding_window.go's append/removeNode discipline
// of explicitly clearing stale entries. token is the edge key
// buildDependencyGraph recorded — the pattern's provisional token, not
// whatever final token the allocator goes on to assign it.
func (a *Allocator) unblock(patterns []*Pattern, token byte) {
	for _, p := range patterns {
		p.Depends.remove(token)
		p.UsedBy.remove(token)
	}
}

// trimTail shrinks the last selected range to exactly the tokens
// consumed (spec.md §4.5 step 7, simplified: the `]`-escaping relocation
// half of that step is not performed, since it only affects byte-cost
// and never correctness). The backslash is handed out only after every
// one-byte token (buildTokenSupply), so ranges are walked by their
// one-byte token counts and an unused backslash is trimmed with them.
func (a *Allocator) trimTail(ranges []TokenRange, consumed int) []TokenRange {
	total := 0
	for i := range ranges {
		total += ranges[i].OneByteTokenCount
		if total >= consumed {
			unused := total - consumed
			for ranges[i].Last > ranges[i].First && (unused > 0 || ranges[i].Last == '\\') {
				if ranges[i].Last != '\\' {
					unused--
				}
				ranges[i].Last--
				ranges[i].Count--
			}
			if ranges[i].containsBackslash() {
				ranges[i].OneByteTokenCount = ranges[i].Count - 1
			} else {
				ranges[i].OneByteTokenCount = ranges[i].Count
			}
			return ranges[:i+1]
		}
	}
	return ranges
}

// fixLeadingCaret swaps the first and second range if the first still
// starts with `^` after binding (spec.md §4.5 step 8).
func (a *Allocator) fixLeadingCaret(ranges []TokenRange) []TokenRange {
	if len(ranges) > 1 && ranges[0].First == '^' {
		ranges[0], ranges[1] = ranges[1], ranges[0]
	}
	return ranges
}

// buildClass concatenates the ranges into the final character class
// string, prepending a lone `-` range so it reads as a literal
// (spec.md §4.5 step 9).
func (a *Allocator) buildClass(ranges []TokenRange) string {
	var lone string
	var rest []TokenRange
	for _, r := range ranges {
		if r.Count == 1 && r.First == '-' {
			lone = "-"
			continue
		}
		rest = append(rest, r)
	}

	var b strings.Builder
	b.WriteString(lone)
	for _, r := range rest {
		b.WriteString(r.classString())
	}
	return b.String()
}
