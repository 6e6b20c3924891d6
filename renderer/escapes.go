// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package renderer

import (
	"strings"
	"unicode/utf8"
)

const hexchars = "0123456789ABCDEF"

// markupEscaper escapes the characters of the markup formats.
type markupEscaper struct {
	apos string // escape of the single quote
}

// escape escapes the characters '<', '>', '&', '"' and '\''.
func (e markupEscaper) escape(s string) string {
	more := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '>':
			more += 3
		case '&':
			more += 4
		case '"':
			more += 5
		case '\'':
			more += len(e.apos) - 1
		}
	}
	if more == 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + more)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '&':
			b.WriteString("&amp;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString(e.apos)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

var (
	htmlEscape = markupEscaper{apos: "&#39;"}.escape
	xmlEscape  = markupEscaper{apos: "&apos;"}.escape
)

// rtfEscape escapes the characters '\\', '{' and '}' of an RTF document.
func rtfEscape(s string) string {
	if !strings.ContainsAny(s, "\\{}") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\', '{', '}':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// markdownEscape escapes the punctuation characters that have a meaning in
// Markdown with a backslash.
func markdownEscape(s string) string {
	const special = "\\`*_{}[]()#+-.!<>|~"
	if !strings.ContainsAny(s, special) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if strings.IndexByte(special, c) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}

// jsStringEscape escapes s so it can be placed inside a JavaScript string
// quoted with single or double quotes.
func jsStringEscape(s string) string {
	if len(s) == 0 {
		return ""
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString("\\\\")
		case '"':
			b.WriteString("\\\"")
		case '\'':
			b.WriteString("\\'")
		case '\n':
			b.WriteString("\\n")
		case '\r':
			b.WriteString("\\r")
		case '\t':
			b.WriteString("\\t")
		case '\u2028':
			b.WriteString("\\u2028")
		case '\u2029':
			b.WriteString("\\u2029")
		default:
			if r <= 31 || r == '<' || r == '>' || r == '&' {
				b.WriteString("\\x")
				b.WriteByte(hexchars[r>>4])
				b.WriteByte(hexchars[r&0xF])
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// jsonStringEscape escapes s so it can be placed inside a JSON string.
// Unlike jsStringEscape, it never uses the \x and \' escapes that are not
// valid JSON.
func jsonStringEscape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		switch r {
		case '\\':
			b.WriteString("\\\\")
		case '"':
			b.WriteString("\\\"")
		case '\n':
			b.WriteString("\\n")
		case '\r':
			b.WriteString("\\r")
		case '\t':
			b.WriteString("\\t")
		case '\b':
			b.WriteString("\\b")
		case '\f':
			b.WriteString("\\f")
		case '\u2028':
			b.WriteString("\\u2028")
		case '\u2029':
			b.WriteString("\\u2029")
		default:
			if r <= 31 || r == '<' || r == '>' || r == '&' {
				b.WriteString("\\u00")
				b.WriteByte(hexchars[r>>4])
				b.WriteByte(hexchars[r&0xF])
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// pathEscape escapes s so it can be placed inside a URL path. The slash is
// not escaped.
func pathEscape(s string) string {
	more := 0
	for i := 0; i < len(s); i++ {
		if !isPathByte(s[i]) {
			more += 2
		}
	}
	if more == 0 {
		return s
	}
	b := make([]byte, len(s)+more)
	for i, j := 0, 0; i < len(s); i++ {
		c := s[i]
		if isPathByte(c) {
			b[j] = c
			j++
			continue
		}
		b[j] = '%'
		b[j+1] = hexchars[c>>4]
		b[j+2] = hexchars[c&0xF]
		j += 3
	}
	return string(b)
}

// isPathByte reports whether c can be left unescaped in a URL path.
func isPathByte(c byte) bool {
	if '0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' {
		return true
	}
	switch c {
	case '-', '.', '_', '~', '/', '!', '$', '*', ',', ':', ';', '=', '@':
		return true
	}
	return false
}

// queryEscape escapes s so it can be placed inside a URL query. The space
// is escaped as "%20".
func queryEscape(s string) string {
	more := 0
	for i := 0; i < len(s); i++ {
		if c := s[i]; !('0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' ||
			c == '-' || c == '.' || c == '_') {
			more += 2
		}
	}
	if more == 0 {
		return s
	}
	b := make([]byte, len(s)+more)
	for i, j := 0, 0; i < len(s); i++ {
		c := s[i]
		if '0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' ||
			c == '-' || c == '.' || c == '_' {
			b[j] = c
			j++
		} else {
			b[j] = '%'
			b[j+1] = hexchars[c>>4]
			b[j+2] = hexchars[c&0xF]
			j += 3
		}
	}
	return string(b)
}
