// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ast

import (
	"fmt"
	"strings"
	"unicode"
)

// Quote returns s as a template string literal. It uses the double quotes
// unless s contains a double quote and no apostrophe.
func Quote(s string) string {
	q := byte('"')
	if strings.IndexByte(s, '"') >= 0 && strings.IndexByte(s, '\'') < 0 {
		q = '\''
	}
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte(q)
	b.WriteString(escapeString(s, q))
	b.WriteByte(q)
	return b.String()
}

// escapeString escapes s to be written in a string literal delimited by q.
func escapeString(s string, q byte) string {
	var b strings.Builder
	for i, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '"', '\'':
			if byte(r) == q {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		case '{':
			if i > 0 && (s[i-1] == '$' || s[i-1] == '#') {
				b.WriteByte('\\')
			}
			b.WriteByte('{')
		default:
			if r < 0x20 {
				_, _ = fmt.Fprintf(&b, `\x%04X`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// isIdentifierStart reports whether r can start an identifier.
func isIdentifierStart(r rune) bool {
	return r == '_' || r == '$' || r == '@' || unicode.IsLetter(r)
}

// isIdentifierPart reports whether r can be part of an identifier.
func isIdentifierPart(r rune) bool {
	return isIdentifierStart(r) || unicode.IsDigit(r)
}

// IdentifierReference returns the source that refers to the top-level
// variable name. The characters '-', '.' and ':' are escaped with a
// backslash; if the name contains other characters that can not be part of
// an identifier, it is referred through .vars.
func IdentifierReference(name string) string {
	if name == "" {
		return ".vars[\"\"]"
	}
	escape := false
	for i, r := range name {
		switch {
		case r == '-' || r == '.' || r == ':':
			escape = true
		case i == 0 && !isIdentifierStart(r), i > 0 && !isIdentifierPart(r):
			return ".vars[" + Quote(name) + "]"
		}
	}
	if !escape {
		return name
	}
	var b strings.Builder
	for _, r := range name {
		if r == '-' || r == '.' || r == ':' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
