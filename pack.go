// SPDX-License-Identifier: GPL-2.0-only
// Source: github.com/patterncrush/crush

package crush

import (
	"errors"
	"fmt"
	"strings"
)

// PackerData is one strategy's complete result (spec.md §6).
type PackerData struct {
	Strategy     string
	Original     string
	Replacements []Replacement
	Result       [2]ResultStage
	SearchGraph  *SearchGraph
}

func strategyName(s Strategy) string {
	switch s {
	case StrategyCrusher:
		return "crusher"
	case StrategyBeam:
		return "beam"
	case StrategyDigit:
		return "digit"
	default:
		return "unknown"
	}
}

// Pack runs the configured strategy (or every strategy, when
// opts.Strategy is StrategyAll) against input and returns one
// PackerData per strategy run, mirroring the teacher's
// Compress(src []byte, opts *CompressOptions) ([]byte, error)
// nil-options-means-defaults convention (spec.md §6).
func Pack(input string, opts *PackerOptions) ([]PackerData, error) {
	if input == "" {
		return nil, ErrEmptyInput
	}
	opts = opts.withDefaults()

	strategies := []Strategy{opts.Strategy}
	if opts.Strategy == StrategyAll {
		strategies = []Strategy{StrategyCrusher, StrategyBeam, StrategyDigit}
	}

	out := make([]PackerData, 0, len(strategies))
	for _, s := range strategies {
		data, err := packOne(input, s, opts)
		if err != nil {
			if len(strategies) == 1 {
				return nil, err
			}
			out = append(out, errorPackerData(s, input, err))
			continue
		}
		out = append(out, *data)
	}
	return out, nil
}

func packOne(input string, strategy Strategy, opts *PackerOptions) (*PackerData, error) {
	switch strategy {
	case StrategyCrusher:
		return packByteStrategy(input, strategy, opts, newCrusher(opts).Run)
	case StrategyBeam:
		return packByteStrategy(input, strategy, opts, newBeam(opts).Run)
	case StrategyDigit:
		return packDigit(input, opts)
	default:
		return nil, ErrUnknownStrategy
	}
}

// packByteStrategy runs a byte-token strategy (crusher or beam),
// allocates final tokens for its provisional replacements, and builds
// the resulting artefact.
func packByteStrategy(input string, strategy Strategy, opts *PackerOptions, run func(string) *SearchResult) (*PackerData, error) {
	result := run(input)

	if len(result.Replacements) == 0 {
		trivial := trivialPackerData(strategy, input)
		return &trivial, nil
	}

	provisionalTokens := make(map[*Pattern]byte, len(result.Replacements))
	for _, r := range result.Replacements {
		provisionalTokens[r.Pattern] = r.Token
	}

	alloc, err := newAllocator(opts).Allocate(input, result.Replacements)
	if errors.Is(err, ErrNoFreeTokens) {
		// no byte is left for a character class: reported as a Length -1
		// result with the allocator's message, not as a failed Pack call.
		failed := errorPackerData(strategy, input, err)
		return &failed, nil
	}
	if err != nil {
		return nil, err
	}

	bound := make(map[*Pattern]bool, len(alloc.Replacements))
	remap := make(map[byte]byte, len(alloc.Replacements))
	for _, r := range alloc.Replacements {
		bound[r.Pattern] = true
		remap[provisionalTokens[r.Pattern]] = r.Token
	}

	// a provisional replacement the allocator clears (step 6's
	// non-positive-gain rebind check) still has its provisional token
	// sitting in FinalText with no entry in remap; reverting those
	// occurrences back to the pattern's fully-expanded Original keeps
	// every token that *is* bound round-tripping correctly.
	var cleared []Replacement
	for _, r := range result.Replacements {
		if !bound[r.Pattern] {
			cleared = append(cleared, r)
		}
	}
	body := revertClearedTokens(result.FinalText, cleared)
	body = remapTokens(body, remap)

	// each bound replacement's definition is its Str as it stood when the
	// search bound it — possibly still carrying an earlier-bound
	// replacement's provisional token nested inside it (spec.md §4.4
	// step 5's nested-reuse design) — put through the same
	// revert-then-remap pass as body so a nested provisional token ends
	// up either reverted to literal text (if its pattern was cleared) or
	// rewritten to that pattern's final token (if it was bound).
	defs := make([]string, len(alloc.Replacements))
	for i, r := range alloc.Replacements {
		d := revertClearedTokens(r.Pattern.Str, cleared)
		defs[i] = remapTokens(d, remap)
	}

	art := buildArtefact(input, body, alloc.Replacements, defs, alloc.CharClass, opts)

	data := &PackerData{
		Strategy:     strategyName(strategy),
		Original:     input,
		Replacements: alloc.Replacements,
		SearchGraph:  result.Graph,
	}
	data.Result[0] = ResultStage{
		Length: byteLen(art.PackedLiteral),
		Output: art.PackedLiteral,
	}
	data.Result[1] = ResultStage{
		Length:  byteLen(art.Decoder),
		Output:  art.Decoder,
		Details: art.Report,
	}
	if !art.Verified {
		return nil, fmt.Errorf("%w: %s", ErrVerificationFailed, art.Report)
	}
	return data, nil
}

func packDigit(input string, opts *PackerOptions) (*PackerData, error) {
	dr := newDigitReplacer(opts)
	if err := dr.checkReservedChars(input); err != nil {
		return nil, err
	}

	result, totalGain := dr.Run(input, nil)
	_ = totalGain

	if len(result.Replacements) == 0 {
		trivial := trivialPackerData(StrategyDigit, input)
		return &trivial, nil
	}

	// nextFreeDigit hands out indices 0, 1, 2, … in order as each
	// replacement is bound (digit.go never frees an index once used), so
	// the i-th replacement's index is exactly i — no separate index field
	// needs to travel with Replacement.
	originals := make([]string, len(result.Replacements))
	for i, r := range result.Replacements {
		originals[i] = r.Pattern.Original
	}

	decoder := buildDigitDecoderTemplate(opts.Delimiter, escapeForLiteral(result.FinalText, opts.Delimiter), originals)

	decoded := decodeDigitSimulate(result.FinalText, originals)
	verified := decoded == input
	report := "Final check: passed"
	if !verified {
		report = "Final check: failed"
	}

	data := &PackerData{
		Strategy:     strategyName(StrategyDigit),
		Original:     input,
		Replacements: result.Replacements,
	}
	data.Result[0] = ResultStage{
		Length: byteLen(result.FinalText),
		Output: result.FinalText,
	}
	data.Result[1] = ResultStage{
		Length:  byteLen(decoder),
		Output:  decoder,
		Details: report,
	}
	if !verified {
		return nil, fmt.Errorf("%w: %s", ErrVerificationFailed, report)
	}
	return data, nil
}

// trivialPackerData builds the "no gain found" result for inputs with
// no repeated substring (spec.md §8 scenario 3).
func trivialPackerData(strategy Strategy, input string) PackerData {
	return PackerData{
		Strategy: strategyName(strategy),
		Original: input,
		Result: [2]ResultStage{
			{Length: byteLen(input), Output: input, Details: "no gain found"},
			{Length: byteLen(input), Output: input, Details: "no gain found"},
		},
	}
}

func errorPackerData(strategy Strategy, input string, err error) PackerData {
	msg := fmt.Sprintf("Error: %s", err)
	return PackerData{
		Strategy: strategyName(strategy),
		Original: input,
		Result: [2]ResultStage{
			{Length: -1, Details: msg},
			{Length: -1, Details: msg},
		},
	}
}

// revertClearedTokens expands every occurrence of a cleared
// replacement's provisional token back to its pattern's Original text.
// Original is always fully expanded (no token bytes of its own), so a
// single pass per cleared replacement suffices even when one cleared
// pattern's Str happens to contain another cleared pattern's token.
func revertClearedTokens(text string, cleared []Replacement) string {
	for _, r := range cleared {
		if strings.IndexByte(text, r.Token) == -1 {
			continue
		}
		text = expandOriginal(text, map[byte]string{r.Token: r.Pattern.Original})
	}
	return text
}

// remapTokens rewrites every occurrence of a key byte in text to its
// mapped value, used to turn a search strategy's provisional tokens
// into the allocator's final tokens without re-walking the pattern
// structure.
func remapTokens(text string, remap map[byte]byte) string {
	if len(remap) == 0 {
		return text
	}
	out := make([]byte, len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if nc, ok := remap[c]; ok {
			out[i] = nc
		} else {
			out[i] = c
		}
	}
	return string(out)
}
