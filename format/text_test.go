// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package format

import (
	"strings"
	"testing"

	"golang.org/x/text/language"
)

func TestCase(t *testing.T) {
	tests := []struct {
		f    func(string) string
		src  string
		res  string
	}{
		{func(s string) string { return Upper(s, language.English) }, "abc Def", "ABC DEF"},
		{func(s string) string { return Lower(s, language.English) }, "ABC Def", "abc def"},
		{func(s string) string { return Capitalize(s, language.English) }, "hello WORLD", "Hello World"},
		{CapFirst, "  abc def", "  Abc def"},
		{CapFirst, "", ""},
		{UncapFirst, "ABC", "aBC"},
		{UncapFirst, "èTÀ", "èTÀ"},
	}
	for _, test := range tests {
		if res := test.f(test.src); res != test.res {
			t.Errorf("source: %q, unexpected %q, expecting %q\n", test.src, res, test.res)
		}
	}
}

func TestCollator(t *testing.T) {
	c := NewCollator(language.English)
	tests := []struct {
		a, b string
		res  int
	}{
		{"a", "b", -1},
		{"b", "a", 1},
		{"a", "a", 0},
		{"a", "B", -1},
	}
	for _, test := range tests {
		if res := c.Compare(test.a, test.b); res != test.res {
			t.Errorf("compare %q with %q: unexpected %d, expecting %d", test.a, test.b, res, test.res)
		}
	}
}

func TestMarkdown(t *testing.T) {
	res, err := Markdown("# Title\n\nSome *text*.")
	if err != nil {
		t.Fatalf("unexpected error %q", err)
	}
	for _, s := range []string{"<h1>Title</h1>", "<em>text</em>"} {
		if !strings.Contains(res, s) {
			t.Errorf("unexpected %q, expecting it contains %q", res, s)
		}
	}
}
