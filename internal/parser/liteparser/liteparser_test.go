/*
 * Copyright 2024 The Mewt Authors
 *
 *    Licensed under the Apache License, Version 2.0 (the "License");
 *    you may not use this file except in compliance with the License.
 *    You may obtain a copy of the License at
 *
 *        http://www.apache.org/licenses/LICENSE-2.0
 *
 *    Unless required by applicable law or agreed to in writing, software
 *    distributed under the License is distributed on an "AS IS" BASIS,
 *    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *    See the License for the specific language governing permissions and
 *    limitations under the License.
 */

package liteparser_test

import (
	"testing"

	"github.com/trailofbits/mewt/internal/parser"
	"github.com/trailofbits/mewt/internal/parser/liteparser"
)

func topLevelKinds(t *testing.T, d liteparser.Dialect, source string) []string {
	t.Helper()
	tree, err := liteparser.New(d).Parse([]byte(source))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	root := tree.RootNode()
	var kinds []string
	for i := 0; i < root.NamedChildCount(); i++ {
		kinds = append(kinds, root.NamedChild(i).Kind())
	}
	return kinds
}

func TestScan_distinguishesDeclarationsFromAssignments(t *testing.T) {
	kinds := topLevelKinds(t, liteparser.Solidity, "int x = 5; x = 6;")
	if len(kinds) != 2 {
		t.Fatalf("expected 2 top-level statements, got %d: %v", len(kinds), kinds)
	}
	if kinds[0] != "variable_declaration_statement" {
		t.Errorf("expected a typed declaration (head contains a space) to be classified as a declaration, got %s", kinds[0])
	}
	if kinds[1] != "expression_statement" {
		t.Errorf("expected a bare reassignment to be classified as an expression statement, got %s", kinds[1])
	}
}

func TestScan_recognizesLineAndBlockComments(t *testing.T) {
	kinds := topLevelKinds(t, liteparser.Solidity, "// a line comment\na = 1;\n/* a block\ncomment */\nb = 2;")
	var comments int
	for _, k := range kinds {
		if k == "comment" {
			comments++
		}
	}
	if comments != 2 {
		t.Errorf("expected 2 comment nodes, got %d: %v", comments, kinds)
	}
}

func TestScan_tolkRecognizesThrowStatement(t *testing.T) {
	tree, err := liteparser.New(liteparser.Tolk).Parse([]byte("throw 100;"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	root := tree.RootNode()
	if root.NamedChildCount() != 1 || root.NamedChild(0).Kind() != "throw_statement" {
		t.Fatalf("expected a single throw_statement, got %d children", root.NamedChildCount())
	}
}

func TestScan_solidityHasNoThrowKeyword(t *testing.T) {
	// Solidity's dialect carries no ThrowKeyword, so a bare identifier
	// named "throw" is scanned as an ordinary expression statement
	// rather than a throw_statement.
	tree, err := liteparser.New(liteparser.Solidity).Parse([]byte("throw(1);"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	root := tree.RootNode()
	if root.NamedChildCount() != 1 {
		t.Fatalf("expected 1 top-level statement, got %d", root.NamedChildCount())
	}
	if root.NamedChild(0).Kind() == "throw_statement" {
		t.Error("expected Solidity's dialect to never recognize a throw_statement")
	}
}

func TestParse_ifConditionSkipsCommentInteriors(t *testing.T) {
	tree, err := liteparser.New(liteparser.Solidity).Parse([]byte("if (a > b) { /* noop */ }"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	root := tree.RootNode()
	if root.NamedChildCount() != 1 || root.NamedChild(0).Kind() != "if_statement" {
		t.Fatalf("expected a single if_statement, got %d children", root.NamedChildCount())
	}

	var sawComment bool
	parser.Walk(root, func(n parser.Node) bool {
		if n.Kind() == "comment" {
			sawComment = true
			if !parser.IsInComment(n) {
				t.Error("expected a comment node to report IsInComment true")
			}
		}
		return true
	})
	if !sawComment {
		t.Error("expected the block comment inside the if-body to be scanned as a comment node")
	}
}
