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

package registry_test

import (
	"testing"

	"github.com/trailofbits/mewt/internal/registry"
)

func TestNew_registersEveryShippedRulebook(t *testing.T) {
	reg, err := registry.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	books := reg.Rulebooks()
	if len(books) != 5 {
		t.Fatalf("expected 5 rulebooks, got %d", len(books))
	}
}

func TestByName_isCaseInsensitive(t *testing.T) {
	reg, err := registry.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, name := range []string{"rust", "Rust", "RUST"} {
		if _, ok := reg.ByName(name); !ok {
			t.Errorf("expected ByName(%q) to resolve the Rust rulebook", name)
		}
	}

	if _, ok := reg.ByName("cobol"); ok {
		t.Error("expected ByName to miss an unregistered language")
	}
}

func TestByPath_dispatchesOnExtension(t *testing.T) {
	reg, err := registry.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	testCases := []struct {
		path     string
		wantName string
	}{
		{"src/lib.rs", "Rust"},
		{"src/index.js", "JavaScript"},
		{"src/index.ts", "TypeScript"},
		{"contracts/Token.sol", "Solidity"},
	}
	for _, tc := range testCases {
		book, ok := reg.ByPath(tc.path)
		if !ok {
			t.Errorf("ByPath(%q): expected a match", tc.path)
			continue
		}
		if book.Name() != tc.wantName {
			t.Errorf("ByPath(%q) = %s, want %s", tc.path, book.Name(), tc.wantName)
		}
	}

	if _, ok := reg.ByPath("README.md"); ok {
		t.Error("expected ByPath to miss an unregistered extension")
	}
}
