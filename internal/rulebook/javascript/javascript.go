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

// Package javascript is the JavaScript mutation rulebook, ported from the
// original engine's src/languages/javascript/engine.rs slug dispatch onto
// tree-sitter-javascript node kinds. The typescript rulebook wraps this
// one and adds the generic-call COS suppression filter.
package javascript

import (
	"github.com/trailofbits/mewt/internal/mutation"
	"github.com/trailofbits/mewt/internal/parser"
	"github.com/trailofbits/mewt/internal/parser/treesitter"
	"github.com/trailofbits/mewt/internal/pattern"
)

// Arithmetic includes "**" beyond Rust's set; Comparison includes the
// strict equality operators; Shift includes the unsigned right shift —
// exactly the JavaScript-specific extensions SPEC_FULL.md §4.2 calls out.
var (
	Arithmetic = []string{"+", "-", "*", "/", "%", "**"}
	Comparison = []string{"==", "!=", "===", "!==", "<", ">", "<=", ">="}
	Logical    = []string{"&&", "||"}
	Bitwise    = []string{"&", "|", "^"}
	Shift      = []string{"<<", ">>", ">>>"}
)

var slugs = []string{
	"ER", "CR", "IF", "IT", "WF", "AS",
	"AOS", "BOS", "BL", "COS", "LOS", "SOS", "LC", "AI",
}

func descriptors() []mutation.Descriptor {
	out := make([]mutation.Descriptor, 0, len(slugs))
	for _, s := range slugs {
		out = append(out, mutation.SharedDescriptors[s])
	}
	return out
}

// Rulebook implements mutation.Rulebook for JavaScript (and, embedded, for
// TypeScript).
type Rulebook struct {
	p        parser.Parser
	name     string
	exts     []string
	cosVeto  pattern.Filter // optional, set by the typescript wrapper
}

// New constructs the JavaScript rulebook.
func New() (*Rulebook, error) {
	p, err := treesitter.New(treesitter.JavaScript)
	if err != nil {
		return nil, err
	}
	return &Rulebook{p: p, name: "JavaScript", exts: []string{".js", ".jsx"}}, nil
}

// NewWithParser lets the typescript package reuse this rulebook's dispatch
// logic against a different grammar/name/extension set and an extra COS
// veto.
func NewWithParser(p parser.Parser, name string, exts []string, cosVeto pattern.Filter) *Rulebook {
	return &Rulebook{p: p, name: name, exts: exts, cosVeto: cosVeto}
}

func (r *Rulebook) Name() string                       { return r.name }
func (r *Rulebook) Extensions() []string                { return r.exts }
func (r *Rulebook) Descriptors() []mutation.Descriptor { return descriptors() }

func isAssertLike(calleeText string) bool {
	switch calleeText {
	case "assert", "expect", "require":
		return true
	}
	return false
}

func invertArg(argText string) string {
	return "!(" + argText + ")"
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

	add("ER", pattern.Replace(source, root, []string{"expression_statement"}, `throw new Error("mewt");`, nil))
	add("CR", pattern.Wrap(source, root, []string{"expression_statement"}, "// ", ""))
	add("IF", pattern.ReplaceCondition(source, root, "if_statement", "condition", nil, "false"))
	add("IT", pattern.ReplaceCondition(source, root, "if_statement", "condition", nil, "true"))
	add("WF", pattern.ReplaceCondition(source, root, "while_statement", "condition", nil, "false"))
	add("AS", pattern.SwapArgs(source, root, []string{"call_expression"}, "arguments"))
	add("AOS", pattern.ShuffleOperators(source, root, []string{"binary_expression"}, "operator", Arithmetic, nil))
	add("BOS", pattern.ShuffleOperators(source, root, []string{"binary_expression"}, "operator", Bitwise, nil))
	add("LOS", pattern.ShuffleOperators(source, root, []string{"binary_expression"}, "operator", Logical, nil))
	add("SOS", pattern.ShuffleOperators(source, root, []string{"binary_expression"}, "operator", Shift, nil))
	add("COS", pattern.ShuffleOperators(source, root, []string{"binary_expression"}, "operator", Comparison, r.cosVeto))

	add("BL", pattern.ShuffleNodes(source, root, []string{"true", "false"}, []string{"true", "false"}))
	add("LC", pattern.ShuffleNodes(source, root, []string{"break_statement", "continue_statement"}, []string{"break", "continue"}))
	add("AI", pattern.ReplaceFirstArg(source, root, []pattern.CallShape{
		{Kind: "call_expression", CalleeField: "function", ArgsField: "arguments"},
	}, isAssertLike, invertArg))

	return out, nil
}
