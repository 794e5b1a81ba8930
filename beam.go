// SPDX-License-Identifier: GPL-2.0-only
// Source: github.com/patterncrush/crush

package crush

import "sort"

// maxBeamIterations safety-bounds a beam run the same way
// maxCrushIterations bounds the crusher (spec.md §4.4, "the iteration
// budget is exhausted").
const maxBeamIterations = 10000

// Beam is the k-wide beam search with look-ahead value prediction.
// Grounded on tscrunch.go's graph-of-candidates + Graph.Shortest
// optimal-parse idea, re-expressed as a width-bounded frontier search
// because the predicted edge costs here are estimates, not exact
// Dijkstra edge weights (spec.md §4.4 BeamSearchSolver).
type Beam struct {
	Analyser  *Analyser
	Scorer    *Scorer
	Predictor *Predictor
	Options   *PackerOptions
}

func newBeam(opts *PackerOptions) *Beam {
	an := newAnalyser(opts.Delimiter)
	sc := newScorer(opts)
	return &Beam{
		Analyser:  an,
		Scorer:    sc,
		Predictor: newPredictor(an, sc, opts.LookAheadDepth, opts.LookAheadDiscount),
		Options:   opts,
	}
}

// Run executes the beam search against input and returns the best
// SearchResult found, with its full search graph attached.
func (b *Beam) Run(input string) *SearchResult {
	graph := newSearchGraph()
	root := &SearchState{NodeID: 0, Text: input, ParentID: -1}
	graph.AddNode(GraphNode{ID: 0, ParentID: -1, Depth: 0, Text: input}, 0)

	beamStates := []*SearchState{root}
	nextID := 1
	best := root
	bestGain := 0

	for iter := 0; iter < maxBeamIterations; iter++ {
		var children []*SearchState
		var keys []float64
		anyExpanded := false

		for _, st := range beamStates {
			// always re-insert the parent unchanged: the "stop here" option.
			children = append(children, st)
			keys = append(keys, b.keyFor(st))

			if len(st.Replacements) >= b.Options.MaxReplacements {
				continue
			}

			patterns := b.Analyser.Enumerate(st.Text)
			for _, p := range patterns {
				b.Scorer.Apply(p)
			}
			top := topPatternsByGain(patterns, b.Scorer, b.Options.BranchFactor)
			if len(top) == 0 {
				continue
			}

			used := usedSetFromTokens(st.Tokens)
			defs := tokenDefsFromReplacements(st.Replacements)
			for _, p := range top {
				token, ok := nextFreeToken(st.Text, b.Options.Delimiter, used)
				if !ok {
					continue
				}

				newText := replaceAllPattern(st.Text, p.Str, token)
				cumGain := st.Gain + p.Gain

				lookaheadUsed := cloneTokenSet(used)
				lookaheadUsed.add(token)
				predicted := float64(cumGain) + b.Options.LookAheadDiscount*
					b.Predictor.Predict(newText, patterns, lookaheadUsed, b.Options.LookAheadDepth)

				original := expandOriginal(p.Str, defs)
				bound := *p
				bound.Token = token
				bound.Bound = true
				bound.Original = original
				bound.Cleared = true

				newReps := make([]Replacement, len(st.Replacements)+1)
				copy(newReps, st.Replacements)
				newReps[len(st.Replacements)] = Replacement{
					Token: token, Pattern: &bound, Copies: p.Copies, Gain: p.Gain, Score: p.Score,
				}

				newTokens := make([]byte, len(st.Tokens)+1)
				copy(newTokens, st.Tokens)
				newTokens[len(st.Tokens)] = token

				child := &SearchState{
					NodeID:       nextID,
					Text:         newText,
					Tokens:       newTokens,
					Replacements: newReps,
					Gain:         cumGain,
					Predicted:    predicted,
					Depth:        st.Depth + 1,
					ParentID:     st.NodeID,
				}
				graph.AddNode(GraphNode{
					ID: nextID, ParentID: st.NodeID, Depth: child.Depth,
					Text: newText, Gain: p.Gain, Pattern: p.Str, Token: token,
				}, cumGain)
				nextID++
				anyExpanded = true

				if cumGain > bestGain {
					bestGain = cumGain
					best = child
				}

				children = append(children, child)
				keys = append(keys, b.keyFor(child))
			}
		}

		deduped, dedupedKeys := dedupByText(children, keys)
		beamStates = topW(deduped, dedupedKeys, b.Options.BeamWidth)

		if !anyExpanded {
			break
		}
	}

	graph.BestID = best.NodeID
	graph.BestGain = bestGain

	return &SearchResult{FinalText: best.Text, Replacements: best.Replacements, Graph: graph, TotalGain: bestGain}
}

// keyFor returns the sort key used to retain the top-W beam states:
// cumulative gain when PrioritizeHighestGain is set, predicted score
// otherwise, with cumulative gain as the tiebreaker between equal keys
// (rankedQueue's ordering in topW).
func (b *Beam) keyFor(st *SearchState) float64 {
	if b.Options.PrioritizeHighestGain {
		return float64(st.Gain)
	}
	return st.Predicted
}

// topPatternsByGain returns the top-n live patterns by the scorer's
// tie-break order, highest first.
func topPatternsByGain(patterns []*Pattern, sc *Scorer, n int) []*Pattern {
	live := make([]*Pattern, 0, len(patterns))
	for _, p := range patterns {
		if !p.Cleared && p.Gain > 0 {
			live = append(live, p)
		}
	}
	sort.SliceStable(live, func(i, j int) bool {
		return sc.Less(live[j], live[i]) // descending
	})
	if len(live) > n {
		live = live[:n]
	}
	return live
}

// dedupByText deduplicates states by their Text field, keeping the
// first (insertion-order) occurrence, per spec.md §4.4 "Deduplicate
// children by their text (insertion-order kept)".
func dedupByText(states []*SearchState, keys []float64) ([]*SearchState, []float64) {
	seen := make(map[string]bool, len(states))
	outStates := make([]*SearchState, 0, len(states))
	outKeys := make([]float64, 0, len(states))
	for i, st := range states {
		if seen[st.Text] {
			continue
		}
		seen[st.Text] = true
		outStates = append(outStates, st)
		outKeys = append(outKeys, keys[i])
	}
	return outStates, outKeys
}

func usedSetFromTokens(tokens []byte) tokenSet {
	s := newTokenSet()
	for _, t := range tokens {
		s.add(t)
	}
	return s
}

func cloneTokenSet(s tokenSet) tokenSet {
	out := newTokenSet()
	for b := range s {
		out.add(b)
	}
	return out
}

func tokenDefsFromReplacements(reps []Replacement) map[byte]string {
	defs := make(map[byte]string, len(reps))
	for _, r := range reps {
		defs[r.Token] = r.Pattern.Original
	}
	return defs
}
