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

// Package treesitter adapts github.com/smacker/go-tree-sitter grammars to
// the parser.Node/parser.Tree contract. One Parser is built per language
// at registry construction time and reused, matching the upstream
// library's own recommendation against concurrent reuse of a single
// sitter.Parser.
package treesitter

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/rust"
	tsTypescript "github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/trailofbits/mewt/internal/parser"
)

// Grammar names accepted by New.
const (
	Rust       = "rust"
	JavaScript = "javascript"
	TypeScript = "typescript"
)

// Adapter is a parser.Parser backed by a single tree-sitter grammar.
type Adapter struct {
	p *sitter.Parser
}

// New builds an Adapter for one of the grammar constants above.
func New(grammar string) (*Adapter, error) {
	var lang *sitter.Language
	switch grammar {
	case Rust:
		lang = rust.GetLanguage()
	case JavaScript:
		lang = javascript.GetLanguage()
	case TypeScript:
		lang = tsTypescript.GetLanguage()
	default:
		return nil, fmt.Errorf("treesitter: unknown grammar %q", grammar)
	}

	p := sitter.NewParser()
	p.SetLanguage(lang)
	return &Adapter{p: p}, nil
}

// Parse implements parser.Parser.
func (a *Adapter) Parse(source []byte) (parser.Tree, error) {
	tree, err := a.p.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("treesitter: parse: %w", err)
	}

	return &tsTree{source: source, root: tree.RootNode()}, nil
}

type tsTree struct {
	source []byte
	root   *sitter.Node
}

func (t *tsTree) RootNode() parser.Node { return wrap(t.root) }
func (t *tsTree) Source() []byte        { return t.source }

// tsNode wraps a *sitter.Node so it satisfies parser.Node. Named-child
// enumeration uses the node's own index rather than a persistent cursor,
// since go-tree-sitter's TreeCursor is not safe to share across calls
// made from different points in a depth-first walk.
type tsNode struct {
	n *sitter.Node
}

func wrap(n *sitter.Node) parser.Node {
	if n == nil {
		return nil
	}
	return &tsNode{n: n}
}

func (w *tsNode) Kind() string      { return w.n.Type() }
func (w *tsNode) StartByte() uint32 { return w.n.StartByte() }
func (w *tsNode) EndByte() uint32   { return w.n.EndByte() }
func (w *tsNode) Parent() parser.Node {
	return wrap(w.n.Parent())
}

func (w *tsNode) NamedChildCount() int {
	return int(w.n.NamedChildCount())
}

func (w *tsNode) NamedChild(i int) parser.Node {
	return wrap(w.n.NamedChild(i))
}

func (w *tsNode) ChildByFieldName(name string) parser.Node {
	return wrap(w.n.ChildByFieldName(name))
}

func (w *tsNode) IsMissing() bool { return w.n.IsMissing() }
func (w *tsNode) IsError() bool   { return w.n.IsError() || w.n.HasError() && w.n.Type() == "ERROR" }
