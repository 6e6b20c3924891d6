// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package util_test

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/open2b/ftl/ast"
	"github.com/open2b/ftl/model"
	"github.com/open2b/ftl/util"
)

func pos(line, column int) *ast.Position {
	return &ast.Position{Line: line, Column: column, EndLine: line, EndColumn: column}
}

func ExampleDump() {

	// ${a + 1}
	// <#if show>a long text, longer than thirty characters</#if>
	tree := ast.NewBlock(nil,
		ast.NewInterpolation(pos(1, 1), ast.NewAddOrConcat(pos(1, 3),
			ast.NewIdentifier(pos(1, 3), "a"),
			ast.NewNumberLiteral(pos(1, 7), model.IntNum(1)))),
		ast.NewStaticText(pos(1, 9), "\n"),
		ast.NewIf(pos(2, 1),
			ast.NewConditionalBlock(pos(2, 1), ast.ConditionIf, ast.NewIdentifier(pos(2, 6), "show"),
				ast.NewStaticText(pos(2, 11), "a long text, longer than thirty characters"))),
	)

	var buf bytes.Buffer
	err := util.Dump(&buf, tree)
	if err != nil {
		panic(err)
	}
	fmt.Print(buf.String())

	// Output:
	// Block (0:0) #mixed_content
	// │    Interpolation (1:1) ${a + 1}
	// │    │    AddOrConcat (1:3) content: a + 1
	// │    │    │    Identifier (1:3) left-hand operand: a
	// │    │    │    NumberLiteral (1:7) right-hand operand: 1
	// │    StaticText (1:9) "\n"
	// │    If (2:1) #if-#elseif-#else-container
	// │    │    ConditionalBlock (2:1) #if show
	// │    │    │    Identifier (2:6) condition: show
	// │    │    │    StaticText (2:11) "a long text, longer than thirt..."
}

type failingWriter struct{}

var errWrite = errors.New("write error")

func (failingWriter) Write(p []byte) (int, error) { return 0, errWrite }

func TestDumpErrors(t *testing.T) {
	if err := util.Dump(&bytes.Buffer{}, nil); err == nil {
		t.Errorf("expecting error dumping a nil tree, got nil\n")
	}
	err := util.Dump(failingWriter{}, ast.NewStaticText(nil, "a"))
	if !errors.Is(err, errWrite) {
		t.Errorf("unexpected error %v, expecting %v\n", err, errWrite)
	}
}
