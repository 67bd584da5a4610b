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

// Package solidity is the Solidity mutation rulebook, ported from the
// original engine's src/languages/solidity/engine.rs slug dispatch onto
// the liteparser node-kind vocabulary (expression_statement, if_statement,
// function_call, binary_operator, boolean_literal) since no maintained Go
// tree-sitter-solidity grammar binding exists (SPEC_FULL.md §4.1).
package solidity

import (
	"github.com/trailofbits/mewt/internal/mutation"
	"github.com/trailofbits/mewt/internal/parser"
	"github.com/trailofbits/mewt/internal/parser/liteparser"
	"github.com/trailofbits/mewt/internal/pattern"
)

var (
	arithmetic = []string{"+", "-", "*", "/", "%"}
	comparison = []string{"==", "!=", "<", ">", "<=", ">="}
	logical    = []string{"&&", "||"}
)

var slugs = []string{"ER", "CR", "IF", "IT", "AS", "AOS", "COS", "LOS", "BL"}

func descriptors() []mutation.Descriptor {
	out := make([]mutation.Descriptor, 0, len(slugs))
	for _, s := range slugs {
		out = append(out, mutation.SharedDescriptors[s])
	}
	return out
}

// Rulebook implements mutation.Rulebook for Solidity.
type Rulebook struct {
	p parser.Parser
}

// New constructs the Solidity rulebook over the liteparser scanner.
func New() *Rulebook {
	return &Rulebook{p: liteparser.New(liteparser.Solidity)}
}

func (r *Rulebook) Name() string                       { return "Solidity" }
func (r *Rulebook) Extensions() []string                { return []string{".sol"} }
func (r *Rulebook) Descriptors() []mutation.Descriptor { return descriptors() }

// vetoAlreadyReverting skips statements that already halt execution, so a
// re-scan of the ER mutant's own output does not itself become an ER
// candidate (SPEC_FULL.md §8, Solidity ER seed scenario).
func vetoAlreadyReverting(n parser.Node, source []byte) bool {
	text := parser.Text(source, n)
	for _, s := range []string{"require(false)", "revert(", "assert(false)"} {
		if contains(text, s) {
			return true
		}
	}
	return false
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}

func (r *Rulebook) Generate(source []byte) ([]mutation.Candidate, error) {
	tree, err := r.p.Parse(source)
	if err != nil {
		return nil, err
	}
	root := tree.RootNode()

	var out []mutation.Candidate
	add := func(slug string, edits []pattern.Edit) {
		for _, e := range edits {
			out = append(out, mutation.Candidate{
				Slug: slug, ByteOffset: e.ByteOffset, LineOffset: e.LineOffset,
				OldText: e.OldText, NewText: e.NewText,
			})
		}
	}

	add("ER", pattern.Replace(source, root, []string{"expression_statement"}, "require(false);", vetoAlreadyReverting))
	add("CR", pattern.Wrap(source, root, []string{"expression_statement"}, "// ", ""))
	add("IF", pattern.ReplaceCondition(source, root, "if_statement", "condition", nil, "false"))
	add("IT", pattern.ReplaceCondition(source, root, "if_statement", "condition", nil, "true"))
	add("AS", pattern.SwapArgs(source, root, []string{"function_call"}, "arguments"))
	// liteparser emits the operator token itself as a leaf "binary_operator"
	// node (unlike a tree-sitter grammar's wrapping binary-expression node),
	// so the exact-match branch of ShuffleNodes — not ShuffleOperators,
	// which inspects a parent's children — is the correct primitive here.
	add("AOS", pattern.ShuffleNodes(source, root, []string{"binary_operator"}, arithmetic))
	add("COS", pattern.ShuffleNodes(source, root, []string{"binary_operator"}, comparison))
	add("LOS", pattern.ShuffleNodes(source, root, []string{"binary_operator"}, logical))
	add("BL", pattern.ShuffleNodes(source, root, []string{"boolean_literal"}, []string{"true", "false"}))

	return out, nil
}
