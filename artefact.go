// SPDX-License-Identifier: GPL-2.0-only
// Source: github.com/patterncrush/crush

package crush

import (
	"fmt"
	"strings"
)

// ResultStage is one stage of a PackerData's result (spec.md §6): the
// byte length of what this stage produced, the textual output, a
// free-form report, and (for async variants) whether it is still
// running.
type ResultStage struct {
	Length    int
	Output    string
	Details   string
	Transform string
	IsRunning bool
}

// Artefact is the composed self-extracting output plus its
// verification report (spec.md §3, §4.6).
type Artefact struct {
	PackedLiteral string
	Decoder       string
	CharClass     string
	Verified      bool
	Report        string
}

// buildArtefact composes the final self-extracting artefact from the
// allocator's bound replacements and runs the decode-simulation
// verifier before returning (spec.md §4.6).
//
// defs holds each replacement's definition, one per entry of reps in
// the same order, written as `defs[i] + token` ahead of the tokenized
// body. Per spec.md §4.4 step 5, a definition may itself still carry
// an earlier-bound replacement's token nested inside it (pack.go
// builds defs from each Pattern's Str, not its fully-expanded
// Original, for exactly this reason) — decodeSimulate's leftmost-token
// split/shift/join loop resolves that nesting correctly regardless of
// how many levels deep it goes, since expanding one token's every
// occurrence can only ever turn remaining token bytes into more of the
// same per-byte lookups, never invalidate them.
func buildArtefact(original, body string, reps []Replacement, defs []string, charClass string, opts *PackerOptions) *Artefact {
	var raw strings.Builder
	for i, r := range reps {
		raw.WriteString(defs[i])
		raw.WriteByte(r.Token)
	}
	raw.WriteString(body)
	rawPacked := raw.String()

	// escaping is a per-byte map, so escaping the whole concatenation
	// equals escaping each piece and concatenating — escape once here
	// for display, but verify against the unescaped text below, since a
	// token bound to the backslash byte would otherwise have its own
	// escape sequence misread as a second occurrence of itself.
	packed := escapeForLiteral(rawPacked, opts.Delimiter)

	decoder := buildDecoderTemplate(opts.VarName, opts.Delimiter, charClass, packed, *opts.UseES6)

	tokenOriginals := make(map[byte]string, len(reps))
	for i, r := range reps {
		tokenOriginals[r.Token] = defs[i]
	}
	decoded := decodeSimulate(rawPacked, tokenOriginals)

	verified := decoded == original
	report := "Final check: passed"
	if !verified {
		report = "Final check: failed"
	}

	return &Artefact{
		PackedLiteral: packed,
		Decoder:       decoder,
		CharClass:     charClass,
		Verified:      verified,
		Report:        report,
	}
}

// buildDecoderTemplate renders the decoder snippet described in
// spec.md §4.6/§187. useES6 selects between the shorter form, which
// assigns G in the loop condition (`for(_=…;G=/[…]/.exec(_);)`), and the
// legacy form, which declares the variable with `var` and breaks out of a
// `for(…;;){…}` loop; both describe the same split/shift/join mechanism
// the verifier implements, just with a different loop idiom.
func buildDecoderTemplate(varName string, delim byte, charClass, packed string, useES6 bool) string {
	d := string(delim)
	if useES6 {
		return fmt.Sprintf(
			"for(%s=%s%s%s;G=/[%s]/.exec(%s);)with(%s.split(G))%s=join(shift());eval(%s)",
			varName, d, packed, d, charClass, varName, varName, varName, varName,
		)
	}
	return fmt.Sprintf(
		"var %s;for(%s=%s%s%s;;){G=/[%s]/.exec(%s);if(!G)break;with(%s.split(G))%s=join(shift());}eval(%s)",
		varName, varName, d, packed, d, charClass, varName, varName, varName, varName,
	)
}

// buildDigitDecoderTemplate renders the digit-variant decoder described
// in spec.md §4.4/§157: `` `<packed>`.replace(/\d/g,i=>`p0|p1|…`.split("|")[i]) ``.
// The regex is deliberately single-digit (`/\d/g`, not `/\d+/g`): the
// tokens themselves are single decimal digits, so a greedy `+` would
// coalesce adjacent tokens (e.g. "abcabcabc" packs to "000", and
// `/\d+/` matches all three digits as one group instead of three).
//
// The join separator defaults to `|` per spec, but falls back to
// another free byte when `|` itself occurs in one of the originals —
// chosen, like the allocator's token ranges, from bytes absent from the
// content it has to sit inside.
func buildDigitDecoderTemplate(delim byte, packed string, originals []string) string {
	d := string(delim)
	sep := chooseDigitSeparator(originals, delim)

	var joined strings.Builder
	for i, o := range originals {
		if i > 0 {
			joined.WriteByte(sep)
		}
		joined.WriteString(escapeForLiteral(o, delim))
	}
	return fmt.Sprintf("%s%s%s.replace(/\\d/g,i=>%s%s%s.split(%q)[i])",
		d, packed, d, d, joined.String(), d, string(sep))
}

// chooseDigitSeparator returns a byte usable to join defs without
// colliding with any of their literal content: `|` (the spec's own
// choice) if none of defs contains it, otherwise the first printable,
// non-digit, non-delimiter, non-backslash byte absent from every def.
func chooseDigitSeparator(defs []string, delim byte) byte {
	collides := func(c byte) bool {
		for _, d := range defs {
			if strings.IndexByte(d, c) != -1 {
				return true
			}
		}
		return false
	}
	if delim != '|' && !collides('|') {
		return '|'
	}
	for b := 33; b <= 126; b++ {
		c := byte(b)
		if c == delim || c == '\\' || c == '|' || (c >= '0' && c <= '9') {
			continue
		}
		if !collides(c) {
			return c
		}
	}
	return '|'
}

// decodeDigitSimulate reverses the digit variant's packing: every
// decimal-digit byte in text is replaced by the original text it
// indexes into originals, one digit at a time (mirroring `/\d/g`, not
// `/\d+/g`). Digits cannot occur in originals themselves, since the
// digit strategy refuses any input that already contains one
// (digit.go's checkReservedChars), so this single-byte scan never
// misreads a literal digit as a token.
func decodeDigitSimulate(text string, originals []string) string {
	var out strings.Builder
	out.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c >= '0' && c <= '9' {
			if idx := int(c - '0'); idx < len(originals) {
				out.WriteString(originals[idx])
				continue
			}
		}
		out.WriteByte(c)
	}
	return out.String()
}

// decodeSimulate reverses the packing by repeatedly finding the
// leftmost byte that is a key of tokenOriginals, splitting the current
// text on every occurrence of that byte, shifting off the first piece
// (the definition), and joining the remainder with it — the same
// split/shift/join mechanism spec.md §4.6 describes, implemented here
// against the token/Original table directly rather than re-parsing the
// emitted regex character class, since the verifier already has that
// table at hand.
func decodeSimulate(packed string, tokenOriginals map[byte]string) string {
	current := packed
	for {
		tok, found := leftmostToken(current, tokenOriginals)
		if !found {
			break
		}
		pieces := splitOnByte(current, tok)
		def := pieces[0]
		current = strings.Join(pieces[1:], def)
		delete(tokenOriginals, tok)
	}
	return current
}

func leftmostToken(text string, tokenOriginals map[byte]string) (byte, bool) {
	best := -1
	var bestTok byte
	for tok := range tokenOriginals {
		idx := strings.IndexByte(text, tok)
		if idx == -1 {
			continue
		}
		if best == -1 || idx < best {
			best = idx
			bestTok = tok
		}
	}
	return bestTok, best != -1
}

func splitOnByte(text string, b byte) []string {
	return strings.Split(text, string(b))
}
