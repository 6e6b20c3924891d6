// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/open2b/ftl/renderer"
	"github.com/open2b/ftl/util"
	"github.com/open2b/ftl/yamltree"
)

// process parses the document of opts and writes to out the rendered
// document or, if opts.dump is true, the dump of its tree.
func process(opts options, out io.Writer) error {

	src, err := os.ReadFile(opts.document)
	if err != nil {
		return err
	}
	doc, err := yamltree.Parse(filepath.Base(opts.document), src)
	if err != nil {
		return fmt.Errorf("%s: %w", opts.document, err)
	}

	if opts.dump {
		return util.Dump(out, doc.Template.Root)
	}

	settings := doc.Settings
	if opts.settings != "" {
		src, err := os.ReadFile(opts.settings)
		if err != nil {
			return err
		}
		settings, err = yamltree.ParseSettings(src)
		if err != nil {
			return fmt.Errorf("%s: %w", opts.settings, err)
		}
	}

	data := doc.Data
	if opts.data != "" {
		src, err := os.ReadFile(opts.data)
		if err != nil {
			return err
		}
		data, err = yamltree.ParseData(src)
		if err != nil {
			return fmt.Errorf("%s: %w", opts.data, err)
		}
	}

	w := bufio.NewWriter(out)
	env, err := renderer.NewEnvironment(data, w, settings)
	if err != nil {
		return err
	}
	if err = env.Process(doc.Template.Root); err != nil {
		return err
	}
	return w.Flush()
}
