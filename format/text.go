// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package format

import (
	"bytes"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Upper returns s in upper case, following the rules of the locale.
func Upper(s string, tag language.Tag) string {
	return cases.Upper(tag).String(s)
}

// Lower returns s in lower case, following the rules of the locale.
func Lower(s string, tag language.Tag) string {
	return cases.Lower(tag).String(s)
}

// Capitalize returns s with the first letter of each word in upper case and
// the other letters in lower case.
func Capitalize(s string, tag language.Tag) string {
	return cases.Title(tag).String(s)
}

// CapFirst returns s with the first letter in upper case. Leading white
// space is skipped.
func CapFirst(s string) string {
	return mapFirst(s, unicode.ToTitle)
}

// UncapFirst returns s with the first letter in lower case. Leading white
// space is skipped.
func UncapFirst(s string) string {
	return mapFirst(s, unicode.ToLower)
}

func mapFirst(s string, mapping func(rune) rune) string {
	i := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) })
	if i == -1 {
		return s
	}
	r, size := utf8.DecodeRuneInString(s[i:])
	m := mapping(r)
	if m == r {
		return s
	}
	return s[:i] + string(m) + s[i+size:]
}

// Collator compares strings following the sort order of a locale.
// It is safe for concurrent use by multiple goroutines.
type Collator struct {
	mu sync.Mutex
	c  *collate.Collator
}

// NewCollator returns a new collator for the locale tag.
func NewCollator(tag language.Tag) *Collator {
	return &Collator{c: collate.New(tag)}
}

// Compare returns an integer comparing a and b. The result is 0 if a == b,
// -1 if a < b and +1 if a > b.
func (c *Collator) Compare(a, b string) int {
	c.mu.Lock()
	n := c.c.CompareString(a, b)
	c.mu.Unlock()
	return n
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Markdown converts the Markdown source src to HTML. The GitHub Flavored
// Markdown extensions are enabled.
func Markdown(src string) (string, error) {
	var b bytes.Buffer
	if err := markdown.Convert([]byte(src), &b); err != nil {
		return "", err
	}
	return b.String(), nil
}
