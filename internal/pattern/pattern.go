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

// Package pattern implements the seven generic AST rewrite primitives
// every language rulebook is built from. Primitives are language-agnostic:
// they consume node-kind strings and field names supplied by the caller
// and never reference a specific grammar.
package pattern

import (
	"strings"

	"github.com/trailofbits/mewt/internal/parser"
)

// Edit is one candidate textual edit produced by a primitive, prior to
// being bound to a mutation slug by a rulebook.
type Edit struct {
	ByteOffset uint32
	LineOffset uint32
	OldText    string
	NewText    string
}

func kindSet(kinds []string) map[string]bool {
	m := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		m[k] = true
	}
	return m
}

func hasAncestorInSet(n parser.Node, set map[string]bool) bool {
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		if set[cur.Kind()] {
			return true
		}
	}
	return false
}

func edit(source []byte, n parser.Node, newText string) Edit {
	old := parser.Text(source, n)
	return Edit{
		ByteOffset: n.StartByte(),
		LineOffset: parser.LineOffset(source, n.StartByte()),
		OldText:    old,
		NewText:    newText,
	}
}

// Wrap produces new_text = prefix + old_text + suffix for every node whose
// kind is in kinds, skipping any node that has an ancestor of the same
// kind set (so an outer statement and its inner expression of the same
// kind are never both wrapped) and any node inside a comment.
func Wrap(source []byte, root parser.Node, kinds []string, prefix, suffix string) []Edit {
	set := kindSet(kinds)
	var out []Edit
	parser.Walk(root, func(n parser.Node) bool {
		if !set[n.Kind()] {
			return true
		}
		if parser.IsInComment(n) || hasAncestorInSet(n, set) {
			return true
		}
		newText := prefix + parser.Text(source, n) + suffix
		if newText == parser.Text(source, n) {
			return true
		}
		out = append(out, edit(source, n, newText))
		return true
	})
	return out
}

// Filter vetoes a replace candidate; returning true skips the node.
type Filter func(n parser.Node, source []byte) bool

// Replace produces new_text = replacement for every node whose kind is in
// kinds, subject to the same ancestor-exclusion and comment-immunity rules
// as Wrap, plus an optional caller-supplied veto.
func Replace(source []byte, root parser.Node, kinds []string, replacement string, filter Filter) []Edit {
	set := kindSet(kinds)
	var out []Edit
	parser.Walk(root, func(n parser.Node) bool {
		if !set[n.Kind()] {
			return true
		}
		if parser.IsInComment(n) || hasAncestorInSet(n, set) {
			return true
		}
		if filter != nil && filter(n, source) {
			return true
		}
		if replacement == parser.Text(source, n) {
			return true
		}
		out = append(out, edit(source, n, replacement))
		return true
	})
	return out
}

// ReplaceCondition locates, for every node of nodeKind, its condition (by
// conditionField if present, else the first named child whose kind is not
// in keywordKinds), and replaces it with replacement, preserving a
// surrounding "(...)" if the original condition text was itself
// parenthesized.
func ReplaceCondition(source []byte, root parser.Node, nodeKind, conditionField string, keywordKinds []string, replacement string) []Edit {
	keywords := kindSet(keywordKinds)
	var out []Edit
	parser.Walk(root, func(n parser.Node) bool {
		if n.Kind() != nodeKind {
			return true
		}
		if parser.IsInComment(n) {
			return true
		}
		cond := n.ChildByFieldName(conditionField)
		if cond == nil {
			cond = firstNonKeywordChild(n, keywords)
		}
		if cond == nil {
			return true
		}
		old := parser.Text(source, cond)
		newText := replacement
		trimmed := strings.TrimSpace(old)
		if strings.HasPrefix(trimmed, "(") && strings.HasSuffix(trimmed, ")") {
			newText = "(" + replacement + ")"
		}
		if newText == old {
			return true
		}
		out = append(out, edit(source, cond, newText))
		return true
	})
	return out
}

func firstNonKeywordChild(n parser.Node, keywords map[string]bool) parser.Node {
	for i := 0; i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if keywords[c.Kind()] {
			continue
		}
		return c
	}
	return nil
}

// SwapArgs emits, for every adjacent argument pair (a[i], a[i+1]) of every
// call-like node whose kind is in kinds, a mutant whose old_text is the
// exact source slice covering both arguments and whose new_text swaps
// their order.
func SwapArgs(source []byte, root parser.Node, kinds []string, argsField string) []Edit {
	set := kindSet(kinds)
	var out []Edit
	parser.Walk(root, func(n parser.Node) bool {
		if !set[n.Kind()] {
			return true
		}
		if parser.IsInComment(n) {
			return true
		}
		argsNode := n.ChildByFieldName(argsField)
		if argsNode == nil {
			return true
		}
		args := namedNonPunctuationChildren(argsNode)
		for i := 0; i+1 < len(args); i++ {
			a, b := args[i], args[i+1]
			span := source[a.StartByte():b.EndByte()]
			aText := parser.Text(source, a)
			bText := parser.Text(source, b)
			newText := bText + ", " + aText
			if string(span) == newText {
				continue
			}
			out = append(out, Edit{
				ByteOffset: a.StartByte(),
				LineOffset: parser.LineOffset(source, a.StartByte()),
				OldText:    string(span),
				NewText:    newText,
			})
		}
		return true
	})
	return out
}

func namedNonPunctuationChildren(n parser.Node) []parser.Node {
	var out []parser.Node
	for i := 0; i < n.NamedChildCount(); i++ {
		c := n.NamedChild(i)
		if c.Kind() == "," || c.Kind() == "(" || c.Kind() == ")" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// ShuffleOperators locates, for every node whose kind is in kinds, the
// operator token bound to field (e.g. "operator"), and emits one mutant
// per other operator in the configured set, in the set's own order. An
// optional filter vetoes a match the same way Replace's does (used by the
// TypeScript rulebook to keep a generic call's type-argument angle
// brackets from being mistaken for a comparison operator).
//
// parser.Node exposes only named children (parser.go's Node contract), so
// this primitive locates the operator via its grammar field rather than
// scanning every child the way the original engine's shuffle_operators
// does over node.children(); every tree-sitter grammar it is used with
// binds its operator token to a field, so this reaches the same mutants by
// a different route (see DESIGN.md's ShuffleOperators entry). liteparser
// emits operators as unfielded leaf nodes, which ShuffleNodes handles.
func ShuffleOperators(source []byte, root parser.Node, kinds []string, field string, operators []string, filter Filter) []Edit {
	set := kindSet(kinds)
	var out []Edit
	parser.Walk(root, func(n parser.Node) bool {
		if !set[n.Kind()] {
			return true
		}
		if parser.IsInComment(n) {
			return true
		}
		if filter != nil && filter(n, source) {
			return true
		}
		c := n.ChildByFieldName(field)
		if c == nil {
			return true
		}
		text := parser.Text(source, c)
		if !containsOp(operators, text) {
			return true
		}
		for _, op := range operators {
			if op == text {
				continue
			}
			out = append(out, edit(source, c, op))
		}
		return true
	})
	return out
}

func containsOp(ops []string, text string) bool {
	for _, o := range ops {
		if o == text {
			return true
		}
	}
	return false
}

// ShuffleNodes performs a whole-node text replacement. When alternatives
// has exactly two elements, a node matches if its text contains either
// alternative as a substring and the match is replaced with the other
// (substring pairing, e.g. break<->continue). Otherwise a node matches
// only if its text equals one of alternatives exactly (exact-set mode,
// e.g. an arithmetic operator cycling through every other operator in the
// set).
func ShuffleNodes(source []byte, root parser.Node, kinds []string, alternatives []string) []Edit {
	set := kindSet(kinds)
	var out []Edit
	parser.Walk(root, func(n parser.Node) bool {
		if !set[n.Kind()] {
			return true
		}
		if parser.IsInComment(n) {
			return true
		}
		text := parser.Text(source, n)
		if len(alternatives) == 2 {
			out = append(out, shufflePair(source, n, text, alternatives)...)
			return true
		}
		if !containsOp(alternatives, text) {
			return true
		}
		for _, alt := range alternatives {
			if alt == text {
				continue
			}
			out = append(out, edit(source, n, alt))
		}
		return true
	})
	return out
}

func shufflePair(source []byte, n parser.Node, text string, alternatives []string) []Edit {
	a, b := alternatives[0], alternatives[1]
	switch {
	case strings.Contains(text, a):
		return []Edit{edit(source, n, strings.Replace(text, a, b, 1))}
	case strings.Contains(text, b):
		return []Edit{edit(source, n, strings.Replace(text, b, a, 1))}
	default:
		return nil
	}
}

// CalleePredicate reports whether a call-like node's callee text matches
// some family of interest (e.g. assertion functions) for ReplaceFirstArg.
type CalleePredicate func(calleeText string) bool

// CallShape names the grammar fields one call-like node kind exposes for
// its callee and its argument list. A single grammar can have more than
// one call-like production with different field names (tree-sitter-rust's
// call_expression uses "function"/"arguments"; its macro_invocation has
// field "macro" and an unfielded token_tree child), so ReplaceFirstArg
// takes one CallShape per kind rather than a single field-name pair. When
// the node has no field named ArgsField, the first named child whose kind
// is ArgsField is used instead.
type CallShape struct {
	Kind        string
	CalleeField string
	ArgsField   string
}

// ReplaceFirstArg replaces the first argument of calls whose callee
// matches predicate with transform(firstArgText). Declared by the
// original specification as unused by any shipped rulebook; mewt binds it
// to slug AI against assertion-like calls (see rulebook packages).
func ReplaceFirstArg(source []byte, root parser.Node, shapes []CallShape, predicate CalleePredicate, transform func(string) string) []Edit {
	byKind := make(map[string]CallShape, len(shapes))
	for _, s := range shapes {
		byKind[s.Kind] = s
	}

	var out []Edit
	parser.Walk(root, func(n parser.Node) bool {
		shape, ok := byKind[n.Kind()]
		if !ok {
			return true
		}
		if parser.IsInComment(n) {
			return true
		}
		callee := n.ChildByFieldName(shape.CalleeField)
		if callee == nil || !predicate(parser.Text(source, callee)) {
			return true
		}
		argsNode := n.ChildByFieldName(shape.ArgsField)
		for i := 0; argsNode == nil && i < n.NamedChildCount(); i++ {
			if c := n.NamedChild(i); c.Kind() == shape.ArgsField {
				argsNode = c
			}
		}
		if argsNode == nil {
			return true
		}
		args := namedNonPunctuationChildren(argsNode)
		if len(args) == 0 {
			return true
		}
		first := args[0]
		newText := transform(parser.Text(source, first))
		if newText == parser.Text(source, first) {
			return true
		}
		out = append(out, edit(source, first, newText))
		return true
	})
	return out
}
