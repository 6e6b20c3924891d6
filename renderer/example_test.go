// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package renderer_test

import (
	"log"
	"os"

	"github.com/open2b/ftl/ast"
	"github.com/open2b/ftl/model"
	"github.com/open2b/ftl/renderer"
)

func ExampleEnvironment_Process() {

	// <#list books as book>${book?counter}. ${book?upper_case}<#sep>, </#list>
	upper, err := renderer.NewBuiltIn(nil, ast.NewIdentifier(nil, "book"), "upper_case")
	if err != nil {
		log.Fatal(err)
	}
	counter, err := renderer.NewBuiltIn(nil, ast.NewIdentifier(nil, "book"), "counter")
	if err != nil {
		log.Fatal(err)
	}
	tree := ast.NewList(nil, ast.NewIdentifier(nil, "books"), "book", "",
		ast.NewInterpolation(nil, counter),
		ast.NewStaticText(nil, ". "),
		ast.NewInterpolation(nil, upper),
		ast.NewSep(nil, ast.NewStaticText(nil, ", ")),
	)
	ast.NewTemplate("books.ftl", tree)

	data := model.MustWrap(map[string]interface{}{
		"books": []string{"Dubliners", "Ulysses"},
	}).(model.Hash)

	env, err := renderer.NewEnvironment(data, os.Stdout, nil)
	if err != nil {
		log.Fatal(err)
	}
	err = env.Process(tree)
	if err != nil {
		log.Fatalf("rendering error: %s", err)
	}

	// Output:
	// 1. DUBLINERS, 2. ULYSSES
}
