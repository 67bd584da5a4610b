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

package pattern_test

import (
	"testing"

	"github.com/trailofbits/mewt/internal/parser"
	"github.com/trailofbits/mewt/internal/parser/liteparser"
	"github.com/trailofbits/mewt/internal/pattern"
)

func parseSolidity(t *testing.T, source string) (parser.Node, []byte) {
	t.Helper()
	src := []byte(source)
	tree, err := liteparser.New(liteparser.Solidity).Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return tree.RootNode(), src
}

func TestWrap_commentsOutStatementsAndSkipsComments(t *testing.T) {
	root, src := parseSolidity(t, "a = 1; // keep\nb = 2;")

	edits := pattern.Wrap(src, root, []string{"expression_statement"}, "// ", "")
	if len(edits) != 2 {
		t.Fatalf("expected 2 wrapped statements, got %d: %+v", len(edits), edits)
	}
	for _, e := range edits {
		if e.NewText[:3] != "// " {
			t.Errorf("expected wrapped text to start with \"// \", got %q", e.NewText)
		}
	}
}

func TestReplace_appliesVetoFilter(t *testing.T) {
	root, src := parseSolidity(t, "require(false); doThing();")

	vetoed := func(n parser.Node, source []byte) bool {
		return parser.Text(source, n) == "require(false);"
	}
	edits := pattern.Replace(src, root, []string{"expression_statement"}, "require(false);", vetoed)
	if len(edits) != 1 {
		t.Fatalf("expected exactly 1 surviving edit after the veto, got %d: %+v", len(edits), edits)
	}
	if edits[0].OldText != "doThing();" {
		t.Errorf("expected the non-vetoed statement to be the one replaced, got %q", edits[0].OldText)
	}
}

func TestReplace_skipsNoOpReplacement(t *testing.T) {
	root, src := parseSolidity(t, "require(false);")

	edits := pattern.Replace(src, root, []string{"expression_statement"}, "require(false);", nil)
	if len(edits) != 0 {
		t.Errorf("expected a replacement identical to the original text to be skipped, got %+v", edits)
	}
}

func TestReplaceCondition_plainCondition(t *testing.T) {
	root, src := parseSolidity(t, "if (x > 0) { y = 1; }")

	edits := pattern.ReplaceCondition(src, root, "if_statement", "condition", nil, "false")
	if len(edits) != 1 {
		t.Fatalf("expected 1 condition edit, got %d", len(edits))
	}
	if edits[0].NewText != "false" {
		t.Errorf("expected the bare condition to be replaced outright, got %q", edits[0].NewText)
	}
}

func TestReplaceCondition_preservesDoubleParentheses(t *testing.T) {
	// liteparser's "condition" field spans the text strictly inside the
	// if-statement's own parens, so the parenthesis-preservation branch
	// only fires when the condition itself was written with an extra,
	// redundant pair (e.g. "if ((x > 0))").
	root, src := parseSolidity(t, "if ((x > 0)) { y = 1; }")

	edits := pattern.ReplaceCondition(src, root, "if_statement", "condition", nil, "false")
	if len(edits) != 1 {
		t.Fatalf("expected 1 condition edit, got %d", len(edits))
	}
	if edits[0].NewText != "(false)" {
		t.Errorf("expected the redundant parens to be preserved, got %q", edits[0].NewText)
	}
}

func TestSwapArgs_emitsAdjacentPairSwap(t *testing.T) {
	root, src := parseSolidity(t, "transfer(a, b);")

	edits := pattern.SwapArgs(src, root, []string{"function_call"}, "arguments")
	if len(edits) != 1 {
		t.Fatalf("expected 1 swap edit for a 2-argument call, got %d: %+v", len(edits), edits)
	}
	if edits[0].NewText != "b, a" {
		t.Errorf("expected swapped argument order \"b, a\", got %q", edits[0].NewText)
	}
}

func TestShuffleNodes_pairFlipsBooleanLiteral(t *testing.T) {
	root, src := parseSolidity(t, "a = true;")

	edits := pattern.ShuffleNodes(src, root, []string{"boolean_literal"}, []string{"true", "false"})
	if len(edits) != 1 {
		t.Fatalf("expected 1 boolean flip, got %d", len(edits))
	}
	if edits[0].NewText != "false" {
		t.Errorf("expected true to flip to false, got %q", edits[0].NewText)
	}
}

func TestShuffleNodes_arithmeticOperatorAtLeafNode(t *testing.T) {
	root, src := parseSolidity(t, "c = a + b;")

	edits := pattern.ShuffleNodes(src, root, []string{"binary_operator"}, []string{"+", "-", "*", "/", "%"})
	if len(edits) != 4 {
		t.Fatalf("expected 4 alternative operators for a 5-operator set, got %d: %+v", len(edits), edits)
	}
	for _, e := range edits {
		if e.OldText != "+" {
			t.Errorf("expected OldText to be the matched operator \"+\", got %q", e.OldText)
		}
		if e.NewText == "+" {
			t.Error("expected no edit to replace the operator with itself")
		}
	}
}
