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

// Package typescript is the TypeScript mutation rulebook. It reuses the
// javascript rulebook's dispatch logic against the tree-sitter-typescript
// grammar and adds one addition not present in the original engine: a
// veto that keeps a generic call like module.get<EventEmitter2>(x) from
// producing spurious COS mutants such as "get<=", since its comparison-
// shaped "<"/">" tokens are type arguments, not operators.
package typescript

import (
	"regexp"

	"github.com/trailofbits/mewt/internal/mutation"
	"github.com/trailofbits/mewt/internal/parser"
	"github.com/trailofbits/mewt/internal/parser/treesitter"
	"github.com/trailofbits/mewt/internal/pattern"
	"github.com/trailofbits/mewt/internal/rulebook/javascript"
)

// Rulebook implements mutation.Rulebook for TypeScript.
type Rulebook struct {
	inner *javascript.Rulebook
}

// genericCallPattern recognizes "identifier<...>(", the shape of a
// generic function/method call whose type arguments a recovery-tolerant
// scan could otherwise mistake for comparison operators.
var genericCallPattern = regexp.MustCompile(`[A-Za-z_$][\w$]*\s*<[^<>;{}]*>\s*\(`)

// New constructs the TypeScript rulebook.
func New() (*Rulebook, error) {
	p, err := treesitter.New(treesitter.TypeScript)
	if err != nil {
		return nil, err
	}
	inner := javascript.NewWithParser(p, "TypeScript", []string{".ts", ".tsx"}, suppressGenericCalls)
	return &Rulebook{inner: inner}, nil
}

// suppressGenericCalls vetoes a binary_expression node for COS purposes
// when the statement it sits in matches the generic-call shape.
func suppressGenericCalls(n parser.Node, source []byte) bool {
	stmt := n
	for stmt.Parent() != nil {
		k := stmt.Kind()
		if k == "expression_statement" || k == "program" {
			break
		}
		stmt = stmt.Parent()
	}
	text := parser.Text(source, stmt)
	return genericCallPattern.MatchString(text)
}

func (r *Rulebook) Name() string                       { return r.inner.Name() }
func (r *Rulebook) Extensions() []string                { return r.inner.Extensions() }
func (r *Rulebook) Descriptors() []mutation.Descriptor { return r.inner.Descriptors() }
func (r *Rulebook) Generate(source []byte) ([]mutation.Candidate, error) {
	return r.inner.Generate(source)
}

var _ = pattern.Filter(suppressGenericCalls)
