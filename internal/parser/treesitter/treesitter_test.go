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

package treesitter_test

import (
	"testing"

	"github.com/trailofbits/mewt/internal/parser"
	"github.com/trailofbits/mewt/internal/parser/treesitter"
)

func TestNew_unknownGrammarErrors(t *testing.T) {
	if _, err := treesitter.New("cobol"); err == nil {
		t.Error("expected an error for an unregistered grammar name")
	}
}

func TestParse_rustRootNodeSpansTheWholeSource(t *testing.T) {
	p, err := treesitter.New(treesitter.Rust)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	src := []byte("fn main() {}")
	tree, err := p.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	root := tree.RootNode()
	if root.StartByte() != 0 || int(root.EndByte()) != len(src) {
		t.Errorf("expected the root node to span the whole source, got [%d:%d)", root.StartByte(), root.EndByte())
	}
	if string(tree.Source()) != string(src) {
		t.Error("expected Source() to return the exact buffer parsed")
	}
}

func TestParse_javascriptFindsABinaryExpression(t *testing.T) {
	p, err := treesitter.New(treesitter.JavaScript)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tree, err := p.Parse([]byte("a + b;"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	found := false
	parser.Walk(tree.RootNode(), func(n parser.Node) bool {
		if n.Kind() == "binary_expression" {
			found = true
		}
		return true
	})
	if !found {
		t.Error("expected a binary_expression node somewhere in the tree")
	}
}
