// SPDX-License-Identifier: GPL-2.0-only
// Source: github.com/patterncrush/crush

package crush

import (
	"unicode/utf16"
	"unicode/utf8"
)

// codeUnits is the working text viewed as a sequence of UTF-16 code
// units, matching spec.md §3's requirement that gain arithmetic and
// substring boundaries be computed over code units rather than UTF-8
// bytes or runes.
type codeUnits []uint16

// toCodeUnits converts a UTF-8 string to its UTF-16 code-unit view.
func toCodeUnits(s string) codeUnits {
	return utf16.Encode([]rune(s))
}

// String renders u back to a UTF-8 string.
func (u codeUnits) String() string {
	return string(utf16.Decode(u))
}

// isLowSurrogate reports whether c is a UTF-16 low surrogate
// (the second half of a surrogate pair).
func isLowSurrogate(c uint16) bool {
	return c >= 0xDC00 && c <= 0xDFFF
}

// isHighSurrogate reports whether c is a UTF-16 high surrogate
// (the first half of a surrogate pair).
func isHighSurrogate(c uint16) bool {
	return c >= 0xD800 && c <= 0xDBFF
}

// splitsSurrogate reports whether a substring spanning u[start:end]
// (end exclusive) would cut a surrogate pair in half: starting on a low
// surrogate, or ending (last included unit) on a high surrogate.
func splitsSurrogate(u codeUnits, start, end int) bool {
	if end <= start {
		return false
	}
	if isLowSurrogate(u[start]) {
		return true
	}
	if isHighSurrogate(u[end-1]) {
		return true
	}
	return false
}

// utf8ByteLen returns the UTF-8 byte length of the code-unit slice u,
// without round-tripping through a Go string.
func utf8ByteLen(u codeUnits) int {
	n := 0
	runes := utf16.Decode(u)
	for _, r := range runes {
		n += utf8.RuneLen(r)
	}
	return n
}
