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

// Package liteparser is a hand-written, brace/paren/comment-aware scanner
// satisfying the parser.Node/parser.Tree contract for languages without a
// maintained Go tree-sitter grammar binding (Solidity, Tolk). It is not a
// full grammar: it recognizes exactly the node kinds the solidity and tolk
// rulebooks reference (expression_statement, if_statement,
// variable_declaration_statement, function_call, binary_operator,
// set_assignment, boolean_literal, throw_statement, comment), matching the
// node-kind vocabulary the rulebooks were ported from.
package liteparser

import (
	"strings"

	"github.com/trailofbits/mewt/internal/parser"
)

// Dialect tunes recognized operators and keywords per language.
type Dialect struct {
	Name       string
	Operators  []string // checked longest-first
	ThrowKeyword string // "" if the language has no dedicated throw statement
}

var Solidity = Dialect{
	Name:         "solidity",
	Operators:    []string{"==", "!=", "<=", ">=", "&&", "||", "+", "-", "*", "/", "%", "<", ">"},
	ThrowKeyword: "",
}

var Tolk = Dialect{
	Name:         "tolk",
	Operators:    []string{"==", "!=", "<=", ">=", "&&", "||", "+=", "-=", "*=", "/=", "+", "-", "*", "/", "%", "<", ">"},
	ThrowKeyword: "throw",
}

// Adapter implements parser.Parser for a Dialect.
type Adapter struct {
	d Dialect
}

func New(d Dialect) *Adapter { return &Adapter{d: d} }

func (a *Adapter) Parse(source []byte) (parser.Tree, error) {
	s := &scanner{src: source, d: a.d}
	root := &node{kind: "program", start: 0, end: uint32(len(source))}
	s.scanBlock(root, 0, len(source))
	return &tree{source: source, root: root}, nil
}

type tree struct {
	source []byte
	root   *node
}

func (t *tree) RootNode() parser.Node { return t.root }
func (t *tree) Source() []byte        { return t.source }

// node is a generic tree node; liteparser builds every node kind it needs
// directly as this one struct rather than a type per grammar production.
type node struct {
	kind     string
	start    uint32
	end      uint32
	parent   *node
	children []*node
	fields   map[string]*node
}

func (n *node) Kind() string      { return n.kind }
func (n *node) StartByte() uint32 { return n.start }
func (n *node) EndByte() uint32   { return n.end }
func (n *node) Parent() parser.Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}
func (n *node) NamedChildCount() int { return len(n.children) }
func (n *node) NamedChild(i int) parser.Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}
func (n *node) ChildByFieldName(name string) parser.Node {
	if n.fields == nil {
		return nil
	}
	c, ok := n.fields[name]
	if !ok {
		return nil
	}
	return c
}
func (n *node) IsMissing() bool { return false }
func (n *node) IsError() bool   { return n.kind == "ERROR" }

func (n *node) addChild(c *node) {
	c.parent = n
	n.children = append(n.children, c)
}

func (n *node) setField(name string, c *node) {
	if n.fields == nil {
		n.fields = map[string]*node{}
	}
	n.fields[name] = c
	// Field children are also reachable as named children so parser.Walk,
	// which descends through NamedChild only, still reaches them (e.g. the
	// operator and literal nodes under an if condition).
	n.addChild(c)
}

type scanner struct {
	src []byte
	d   Dialect
}

// scanBlock splits src[start:end) into top-level statements and comments,
// recursing into braces for nested blocks, and attaches them to parent.
func (s *scanner) scanBlock(parent *node, start, end int) {
	i := start
	stmtStart := start
	depthParen, depthBrace := 0, 0

	flush := func(to int) {
		if to > stmtStart {
			s.emitStatement(parent, stmtStart, to)
		}
	}

	for i < end {
		switch {
		case s.src[i] == '/' && i+1 < end && s.src[i+1] == '/':
			j := i
			for j < end && s.src[j] != '\n' {
				j++
			}
			// A comment nested in parens or braces stays inside its
			// statement; that statement's own scan emits it.
			if depthParen == 0 && depthBrace == 0 {
				flush(i)
				parent.addChild(&node{kind: "comment", start: uint32(i), end: uint32(j)})
				stmtStart = j
			}
			i = j
			continue
		case s.src[i] == '/' && i+1 < end && s.src[i+1] == '*':
			j := i + 2
			for j+1 < end && !(s.src[j] == '*' && s.src[j+1] == '/') {
				j++
			}
			j += 2
			if j > end {
				j = end
			}
			if depthParen == 0 && depthBrace == 0 {
				flush(i)
				parent.addChild(&node{kind: "comment", start: uint32(i), end: uint32(j)})
				stmtStart = j
			}
			i = j
			continue
		case s.src[i] == '"' || s.src[i] == '\'':
			i = skipString(s.src, i, end)
			continue
		case s.src[i] == '(':
			depthParen++
		case s.src[i] == ')':
			depthParen--
		case s.src[i] == '{' && depthParen == 0:
			// Nested block: the statement header (e.g. "if (cond) ") owns
			// this brace region as its body, handled in emitStatement via
			// a lookahead, so here we just balance depth for plain blocks
			// not already claimed by emitStatement (loops/bare blocks).
			depthBrace++
		case s.src[i] == '}' && depthParen == 0:
			if depthBrace > 0 {
				depthBrace--
			}
		case s.src[i] == ';' && depthParen == 0 && depthBrace == 0:
			flush(i + 1)
			stmtStart = i + 1
		}
		i++
	}
	flush(end)
}

func skipString(src []byte, i, end int) int {
	quote := src[i]
	i++
	for i < end {
		if src[i] == '\\' {
			i += 2
			continue
		}
		if src[i] == quote {
			return i + 1
		}
		i++
	}
	return end
}

// emitStatement classifies one top-level statement span and recurses into
// its structured parts (condition, body, call arguments).
func (s *scanner) emitStatement(parent *node, start, end int) {
	text := strings.TrimSpace(string(s.src[start:end]))
	if text == "" {
		return
	}
	// Re-anchor start/end to the trimmed span.
	trimLead := strings.IndexFunc(string(s.src[start:end]), func(r rune) bool { return !isSpace(r) })
	if trimLead < 0 {
		return
	}
	start += trimLead
	end = start + len(text)

	switch {
	case strings.HasPrefix(text, "if") && (len(text) == 2 || isBoundary(rune(text[2]))):
		s.emitIf(parent, start, end)
	case s.d.ThrowKeyword != "" && strings.HasPrefix(text, s.d.ThrowKeyword) && (len(text) == len(s.d.ThrowKeyword) || isBoundary(rune(text[len(s.d.ThrowKeyword)]))):
		n := &node{kind: "throw_statement", start: uint32(start), end: uint32(end)}
		s.scanExpressionChildren(n, start+len(s.d.ThrowKeyword), end)
		parent.addChild(n)
	case looksLikeDeclaration(text):
		n := &node{kind: "variable_declaration_statement", start: uint32(start), end: uint32(end)}
		s.scanExpressionChildren(n, start, end)
		parent.addChild(n)
	default:
		n := &node{kind: "expression_statement", start: uint32(start), end: uint32(end)}
		s.scanExpressionChildren(n, start, end)
		parent.addChild(n)
	}
}

// emitIf handles "if ( cond ) { body }" (braces optional for a single
// statement body, which we still require here for simplicity).
func (s *scanner) emitIf(parent *node, start, end int) {
	n := &node{kind: "if_statement", start: uint32(start), end: uint32(end)}
	rest := s.src[start:end]
	openParen := indexByte(rest, '(')
	if openParen < 0 {
		parent.addChild(n)
		return
	}
	closeParen := matchParen(rest, openParen)
	if closeParen < 0 {
		closeParen = len(rest) - 1
	}
	condStart := start + openParen + 1
	condEnd := start + closeParen
	cond := &node{kind: "condition", start: uint32(condStart), end: uint32(condEnd)}
	s.scanExpressionChildren(cond, condStart, condEnd)
	n.setField("condition", cond)

	bodyStart := start + closeParen + 1
	if brace := indexByte(s.src[bodyStart:end], '{'); brace >= 0 {
		braceAbs := bodyStart + brace
		braceEnd := matchBrace(s.src, braceAbs, end)
		if braceEnd > braceAbs {
			s.scanBlock(n, braceAbs+1, braceEnd)
		}
	}
	parent.addChild(n)
}

// scanExpressionChildren recognizes function calls, operators, and
// boolean literals within a statement/condition span and attaches them as
// named children so pattern primitives can act on them.
func (s *scanner) scanExpressionChildren(n *node, start, end int) {
	text := s.src[start:end]

	if name, argStart, argEnd, ok := findCall(text); ok {
		call := &node{kind: "function_call", start: uint32(start + argStart - len(name) - 1), end: uint32(start + argEnd + 1)}
		args := &node{kind: "arguments", start: uint32(start + argStart), end: uint32(start + argEnd)}
		for _, a := range splitArgs(text[argStart:argEnd]) {
			args.addChild(&node{kind: "argument", start: uint32(start + argStart + a[0]), end: uint32(start + argStart + a[1])})
		}
		call.setField("arguments", args)
		n.addChild(call)
	}

	for _, lit := range []string{"true", "false"} {
		for _, rng := range findWord(text, lit) {
			n.addChild(&node{kind: "boolean_literal", start: uint32(start + rng[0]), end: uint32(start + rng[1])})
		}
	}

	for _, op := range s.d.Operators {
		for _, rng := range findOperator(text, op) {
			kind := "binary_operator"
			if strings.HasSuffix(op, "=") && op != "==" && op != "!=" && op != "<=" && op != ">=" {
				kind = "set_assignment"
			}
			n.addChild(&node{kind: kind, start: uint32(start + rng[0]), end: uint32(start + rng[1])})
		}
	}
}

func looksLikeDeclaration(text string) bool {
	eq := strings.Index(text, "=")
	if eq < 0 || strings.HasPrefix(text, "if") {
		return false
	}
	head := strings.TrimSpace(text[:eq])
	return head != "" && !strings.ContainsAny(head, "(){}") && strings.Contains(head, " ")
}

func isSpace(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' }
func isBoundary(r rune) bool {
	return isSpace(r) || r == '(' || r == '{'
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}

func matchParen(b []byte, open int) int {
	depth := 0
	for i := open; i < len(b); i++ {
		switch b[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func matchBrace(b []byte, open, limit int) int {
	depth := 0
	for i := open; i < limit && i < len(b); i++ {
		switch b[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return limit
}

// findCall finds the first "name(" ... ")" call-like span, returning the
// callee name and the byte offsets of the argument list within text.
func findCall(text []byte) (name string, argStart, argEnd int, ok bool) {
	for i := 0; i < len(text); i++ {
		if text[i] != '(' {
			continue
		}
		j := i - 1
		for j >= 0 && (isIdentByte(text[j])) {
			j--
		}
		if j+1 == i {
			continue
		}
		callee := string(text[j+1 : i])
		if callee == "" || isKeyword(callee) {
			continue
		}
		close := matchParen(text, i)
		if close < 0 {
			continue
		}
		return callee, i + 1, close, true
	}
	return "", 0, 0, false
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func isKeyword(s string) bool {
	switch s {
	case "if", "while", "for", "return", "throw":
		return true
	}
	return false
}

// splitArgs splits a top-level comma list into [start,end) byte ranges
// relative to text.
func splitArgs(text []byte) [][2]int {
	var out [][2]int
	depth := 0
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, trimRange(text, start, i))
				start = i + 1
			}
		}
	}
	if start < len(text) {
		out = append(out, trimRange(text, start, len(text)))
	}
	var filtered [][2]int
	for _, r := range out {
		if r[1] > r[0] {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func trimRange(text []byte, start, end int) [2]int {
	for start < end && isSpace(rune(text[start])) {
		start++
	}
	for end > start && isSpace(rune(text[end-1])) {
		end--
	}
	return [2]int{start, end}
}

func findWord(text []byte, word string) [][2]int {
	var out [][2]int
	w := []byte(word)
	for i := 0; i+len(w) <= len(text); i++ {
		if string(text[i:i+len(w)]) != word {
			continue
		}
		if i > 0 && isIdentByte(text[i-1]) {
			continue
		}
		if i+len(w) < len(text) && isIdentByte(text[i+len(w)]) {
			continue
		}
		out = append(out, [2]int{i, i + len(w)})
	}
	return out
}

func findOperator(text []byte, op string) [][2]int {
	var out [][2]int
	o := []byte(op)
	for i := 0; i+len(o) <= len(text); i++ {
		if string(text[i:i+len(o)]) != op {
			continue
		}
		// avoid matching "=" inside "==", "<" inside "<=", etc. by
		// requiring the next byte not extend a longer known operator.
		if len(o) == 1 && i+1 < len(text) && text[i+1] == '=' {
			continue
		}
		out = append(out, [2]int{i, i + len(o)})
		i += len(o) - 1
	}
	return out
}
