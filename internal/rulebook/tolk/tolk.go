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

// Package tolk is the Tolk mutation rulebook, ported from the original
// engine's src/languages/tolk/syntax.rs node-kind vocabulary (binary_operator,
// set_assignment, boolean_literal, throw_statement) onto the liteparser
// scanner, since no Go tree-sitter-tolk grammar binding exists.
package tolk

import (
	"github.com/trailofbits/mewt/internal/mutation"
	"github.com/trailofbits/mewt/internal/parser"
	"github.com/trailofbits/mewt/internal/parser/liteparser"
	"github.com/trailofbits/mewt/internal/pattern"
)

var (
	arithmetic       = []string{"+", "-", "*", "/", "%"}
	arithmeticAssign = []string{"+=", "-=", "*=", "/="}
	comparison       = []string{"==", "!=", "<", ">", "<=", ">="}
	logical          = []string{"&&", "||"}
)

var slugs = []string{"ER", "CR", "IF", "IT", "AOS", "AAOS", "COS", "LOS", "BL"}

func descriptors() []mutation.Descriptor {
	out := make([]mutation.Descriptor, 0, len(slugs))
	for _, s := range slugs {
		out = append(out, mutation.SharedDescriptors[s])
	}
	return out
}

// Rulebook implements mutation.Rulebook for Tolk.
type Rulebook struct {
	p parser.Parser
}

// New constructs the Tolk rulebook over the liteparser scanner.
func New() *Rulebook {
	return &Rulebook{p: liteparser.New(liteparser.Tolk)}
}

func (r *Rulebook) Name() string                       { return "Tolk" }
func (r *Rulebook) Extensions() []string                { return []string{".tolk"} }
func (r *Rulebook) Descriptors() []mutation.Descriptor { return descriptors() }

func vetoAlreadyThrowing(n parser.Node, source []byte) bool {
	text := parser.Text(source, n)
	return contains(text, "throw")
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

	add("ER", pattern.Replace(source, root, []string{"expression_statement"}, "throw 0;", vetoAlreadyThrowing))
	add("CR", pattern.Wrap(source, root, []string{"expression_statement"}, "// ", ""))
	add("IF", pattern.ReplaceCondition(source, root, "if_statement", "condition", nil, "false"))
	add("IT", pattern.ReplaceCondition(source, root, "if_statement", "condition", nil, "true"))
	add("AOS", pattern.ShuffleNodes(source, root, []string{"binary_operator"}, arithmetic))
	add("AAOS", pattern.ShuffleNodes(source, root, []string{"set_assignment"}, arithmeticAssign))
	add("COS", pattern.ShuffleNodes(source, root, []string{"binary_operator"}, comparison))
	add("LOS", pattern.ShuffleNodes(source, root, []string{"binary_operator"}, logical))
	add("BL", pattern.ShuffleNodes(source, root, []string{"boolean_literal"}, []string{"true", "false"}))

	return out, nil
}
