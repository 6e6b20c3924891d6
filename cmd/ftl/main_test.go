// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testDocument = `
name: greet.ftl
data:
  name: Ann
tree:
  - "Hello "
  - interpolation: {ident: name}
  - "!"
`

// writeFile writes a file named name with content src in dir and returns
// its path.
func writeFile(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProcess(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "greet.yaml", testDocument)
	data := writeFile(t, dir, "data.yaml", "name: Bob\n")
	settings := writeFile(t, dir, "settings.yaml", "output_format: HTML\n")
	tests := []struct {
		name string
		opts options
		out  string
	}{
		{"document", options{document: doc}, "Hello Ann!"},
		{"data", options{document: doc, data: data}, "Hello Bob!"},
		{"settings", options{document: doc, settings: settings}, "Hello Ann!"},
		{"dump", options{document: doc, dump: true}, "Block (0:0) #mixed_content\n" +
			"│    StaticText (6:5) \"Hello \"\n" +
			"│    Interpolation (7:5) ${name}\n" +
			"│    │    Identifier (7:20) content: name\n" +
			"│    StaticText (8:5) \"!\"\n"},
	}
	for _, test := range tests {
		var b strings.Builder
		if err := process(test.opts, &b); err != nil {
			t.Errorf("%s: %s", test.name, err)
			continue
		}
		if b.String() != test.out {
			t.Errorf("%s: unexpected %q, expecting %q", test.name, b.String(), test.out)
		}
	}
}

func TestProcessErrors(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "bad.yaml", "[{foo: 1}]\n")
	missing := writeFile(t, dir, "missing.yaml", "[{interpolation: {ident: missing}}]\n")
	tests := []struct {
		opts options
		err  string
	}{
		{options{document: doc}, doc + ": 1:2: unknown directive \"foo\""},
		{options{document: filepath.Join(dir, "none.yaml")}, "none.yaml"},
		{options{document: missing}, "The following has evaluated to null or missing"},
	}
	for _, test := range tests {
		var b strings.Builder
		err := process(test.opts, &b)
		if err == nil {
			t.Errorf("%s: expecting error, got nil", test.opts.document)
			continue
		}
		if !strings.Contains(err.Error(), test.err) {
			t.Errorf("%s: unexpected error %q, expecting %q", test.opts.document, err, test.err)
		}
	}
}

func TestCommandOutput(t *testing.T) {
	TestEnvironment = true
	defer func() { TestEnvironment = false }()
	dir := t.TempDir()
	doc := writeFile(t, dir, "greet.yaml", testDocument)
	out := filepath.Join(dir, "greet.txt")
	ftl("ftl", "-o", out, doc)
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "Hello Ann!" {
		t.Errorf("unexpected %q, expecting %q", b, "Hello Ann!")
	}
}

func TestFileWatcher(t *testing.T) {
	dir := t.TempDir()
	name := writeFile(t, dir, "doc.yaml", "[a]\n")
	w, err := newFileWatcher()
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.Watch(name); err != nil {
		t.Fatal(err)
	}
	// Other files in the same directory are not notified.
	writeFile(t, dir, "other.yaml", "[b]\n")
	writeFile(t, dir, "doc.yaml", "[c]\n")
	timeout := time.After(5 * time.Second)
	for {
		select {
		case changed := <-w.Changed():
			if changed != filepath.Clean(name) {
				t.Fatalf("unexpected changed file %q, expecting %q", changed, name)
			}
			return
		case err := <-w.Errors():
			t.Fatal(err)
		case <-timeout:
			t.Fatal("timeout waiting for the change notification")
		}
	}
}
