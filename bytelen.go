// SPDX-License-Identifier: GPL-2.0-only
// Source: github.com/patterncrush/crush

package crush

import "strings"

// byteLen returns the UTF-8 byte length of s.
func byteLen(s string) int {
	return len(s)
}

// escapedByteLen returns the byte length s would have once every
// backslash and every occurrence of delim is escaped with a leading
// backslash, as it would appear inside the packed literal.
func escapedByteLen(s string, delim byte) int {
	n := len(s)
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' || s[i] == delim {
			n++
		}
	}
	return n
}

// escapeForLiteral returns s with every backslash and every occurrence
// of delim escaped, ready to be embedded between delim-quoted literal
// markers.
func escapeForLiteral(s string, delim byte) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' || c == delim {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}
