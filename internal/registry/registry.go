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

// Package registry maps language names and file extensions to rulebooks,
// and owns rulebook (and thus parser) construction, building each one
// exactly once. Ported from the original engine's src/core/registry.rs.
package registry

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/trailofbits/mewt/internal/mutation"
	"github.com/trailofbits/mewt/internal/rulebook/javascript"
	"github.com/trailofbits/mewt/internal/rulebook/rust"
	"github.com/trailofbits/mewt/internal/rulebook/solidity"
	"github.com/trailofbits/mewt/internal/rulebook/tolk"
	"github.com/trailofbits/mewt/internal/rulebook/typescript"
)

// Registry dispatches on language name or file extension.
type Registry struct {
	byName string2book
	byExt  string2book
}

type string2book = map[string]mutation.Rulebook

// New builds a Registry with every shipped rulebook constructed once.
func New() (*Registry, error) {
	r := &Registry{byName: string2book{}, byExt: string2book{}}

	rustBook, err := rust.New()
	if err != nil {
		return nil, fmt.Errorf("registry: rust: %w", err)
	}
	jsBook, err := javascript.New()
	if err != nil {
		return nil, fmt.Errorf("registry: javascript: %w", err)
	}
	tsBook, err := typescript.New()
	if err != nil {
		return nil, fmt.Errorf("registry: typescript: %w", err)
	}

	r.register(rustBook)
	r.register(jsBook)
	r.register(tsBook)
	r.register(solidity.New())
	r.register(tolk.New())

	return r, nil
}

func (r *Registry) register(b mutation.Rulebook) {
	r.byName[strings.ToLower(b.Name())] = b
	for _, ext := range b.Extensions() {
		r.byExt[strings.ToLower(ext)] = b
	}
}

// ByName looks up a rulebook by its advertised name, case-insensitively.
func (r *Registry) ByName(name string) (mutation.Rulebook, bool) {
	b, ok := r.byName[strings.ToLower(name)]
	return b, ok
}

// ByPath resolves a rulebook from a file's extension.
func (r *Registry) ByPath(path string) (mutation.Rulebook, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	b, ok := r.byExt[ext]
	return b, ok
}

// Rulebooks returns every registered rulebook, for commands (e.g. `print
// rulebooks`) that enumerate supported languages.
func (r *Registry) Rulebooks() []mutation.Rulebook {
	out := make([]mutation.Rulebook, 0, len(r.byName))
	for _, b := range r.byName {
		out = append(out, b)
	}
	return out
}
