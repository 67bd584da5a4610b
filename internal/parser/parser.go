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

// Package parser declares the minimal contract a concrete syntax tree must
// satisfy for the pattern library and rulebooks to operate on it. Concrete
// adapters live in treesitter (for grammars with a maintained Go binding)
// and liteparser (for grammars that do not).
package parser

// Node is one node of a concrete syntax tree.
//
// Byte ranges are always relative to the original source buffer passed to
// Parser.Parse, never to a sub-slice.
type Node interface {
	// Kind is the grammar's node type name, e.g. "if_statement".
	Kind() string
	// StartByte and EndByte delimit the node's text as source[Start:End).
	StartByte() uint32
	EndByte() uint32
	// Parent returns the enclosing node, or nil at the root.
	Parent() Node
	// NamedChildCount and NamedChild enumerate named children (punctuation
	// and anonymous tokens are excluded), 0-indexed.
	NamedChildCount() int
	NamedChild(i int) Node
	// ChildByFieldName returns the child bound to the given grammar field,
	// or nil if the field is absent on this node.
	ChildByFieldName(name string) Node
	// IsMissing reports a node synthesized by error recovery.
	IsMissing() bool
	// IsError reports a node the grammar could not otherwise classify.
	IsError() bool
}

// Tree is a parsed source buffer.
type Tree interface {
	// RootNode is the top of the tree.
	RootNode() Node
	// Source returns the exact buffer the tree was built from.
	Source() []byte
}

// Parser builds a Tree from a UTF-8 source buffer. Implementations are
// constructed once per language and reused; they are not expected to be
// safe for concurrent use, which matches the engine's single-mutant-at-a-
// time scheduling model (see SPEC_FULL.md §5).
type Parser interface {
	Parse(source []byte) (Tree, error)
}

// Walk calls visit for n and every node reachable from it via NamedChild,
// depth-first, pre-order. visit returning false skips that node's
// children (but not its siblings).
func Walk(n Node, visit func(Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for i := 0; i < n.NamedChildCount(); i++ {
		Walk(n.NamedChild(i), visit)
	}
}

// Text returns the exact source slice spanned by n.
func Text(source []byte, n Node) string {
	return string(source[n.StartByte():n.EndByte()])
}

// IsInComment reports whether n or any of its ancestors (inclusive) has
// kind "comment". Mutating inside a comment is forbidden by every pattern
// primitive (SPEC_FULL.md §4.2, testable property 1).
func IsInComment(n Node) bool {
	for cur := n; cur != nil; cur = cur.Parent() {
		if cur.Kind() == "comment" {
			return true
		}
	}
	return false
}

// LineOffset counts newline bytes in source[0:byteOffset), giving the
// 0-based line of byteOffset.
func LineOffset(source []byte, byteOffset uint32) uint32 {
	var lines uint32
	limit := int(byteOffset)
	if limit > len(source) {
		limit = len(source)
	}
	for _, b := range source[:limit] {
		if b == '\n' {
			lines++
		}
	}
	return lines
}
