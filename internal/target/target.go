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

// Package target resolves include/ignore/glob patterns into source files,
// hashes and reads them into domain.Target records, and performs the
// on-disk apply/restore cycle a mutant requires. Ported from the original
// engine's src/core/types/target.rs and src/core/types/config.rs.
package target

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/trailofbits/mewt/internal/domain"
	"github.com/trailofbits/mewt/internal/errs"
	"github.com/trailofbits/mewt/internal/registry"
)

// Hash returns the lower-case hex SHA-256 of content.
func Hash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Loaded is one resolved, read, hashed source file, prior to catalog
// insertion (which is where it becomes a domain.Target with an id).
type Loaded struct {
	Path     string
	Content  []byte
	Hash     string
	Language string
}

// Load walks includes (files, directories, or glob patterns), drops any
// path containing one of the ignore substrings, maps extensions to a
// rulebook via reg, and reads+hashes every surviving file.
func Load(includes, ignore []string, reg *registry.Registry) ([]Loaded, error) {
	paths, err := resolvePaths(includes)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var out []Loaded
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true

		if isIgnored(p, ignore) {
			continue
		}

		book, ok := reg.ByPath(p)
		if !ok {
			continue
		}

		content, err := os.ReadFile(p)
		if err != nil {
			return nil, errs.Wrap(errs.InvalidInput, fmt.Errorf("target: read %s: %w", p, err))
		}

		out = append(out, Loaded{
			Path:     p,
			Content:  content,
			Hash:     Hash(content),
			Language: book.Name(),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// resolvePaths expands each include entry: an exact file is kept as-is; a
// directory is walked recursively; anything else is treated as a glob
// pattern expanded against the filesystem.
func resolvePaths(includes []string) ([]string, error) {
	var out []string
	for _, inc := range includes {
		fi, err := os.Stat(inc)
		switch {
		case err == nil && !fi.IsDir():
			out = append(out, inc)
		case err == nil && fi.IsDir():
			werr := filepath.Walk(inc, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if info.IsDir() {
					return nil
				}
				out = append(out, path)
				return nil
			})
			if werr != nil {
				return nil, errs.Wrap(errs.InvalidInput, fmt.Errorf("target: walk %s: %w", inc, werr))
			}
		default:
			matches, gerr := filepath.Glob(inc)
			if gerr != nil {
				return nil, errs.Wrap(errs.InvalidInput, fmt.Errorf("target: glob %s: %w", inc, gerr))
			}
			out = append(out, matches...)
		}
	}
	return out, nil
}

func isIgnored(path string, ignore []string) bool {
	for _, sub := range ignore {
		if sub != "" && strings.Contains(path, sub) {
			return true
		}
	}
	return false
}

// ResolveIDSet intersects a path/dir/glob selector against the set of
// already-known targets, for catalog query filtering (SPEC_FULL.md §4.5):
// a file selector matches exactly, a directory selector matches by path
// prefix, anything else is glob-expanded against the filesystem and
// intersected with known targets.
func ResolveIDSet(selector string, known []domain.Target) ([]int64, error) {
	fi, err := os.Stat(selector)
	switch {
	case err == nil && !fi.IsDir():
		for _, t := range known {
			if t.Path == selector {
				return []int64{t.ID}, nil
			}
		}
		return nil, nil
	case err == nil && fi.IsDir():
		prefix := filepath.Clean(selector) + string(filepath.Separator)
		var ids []int64
		for _, t := range known {
			if strings.HasPrefix(t.Path, prefix) {
				ids = append(ids, t.ID)
			}
		}
		return ids, nil
	default:
		matches, gerr := filepath.Glob(selector)
		if gerr != nil {
			return nil, errs.Wrap(errs.InvalidInput, fmt.Errorf("target: glob %s: %w", selector, gerr))
		}
		matchSet := map[string]bool{}
		for _, m := range matches {
			matchSet[m] = true
		}
		var ids []int64
		for _, t := range known {
			if matchSet[t.Path] {
				ids = append(ids, t.ID)
			}
		}
		return ids, nil
	}
}

// Apply writes mutant's new_text over [byte_offset, byte_offset+len(old_text))
// of path, after verifying old_text still matches what is on disk (the
// edit-validity invariant), and returns a restore closure that writes the
// original bytes back. The caller must defer restore() immediately,
// before running tests, so the file is restored on every exit path
// including a panic (SPEC_FULL.md §4.4 step 6, §9 scoped restoration).
func Apply(path string, m domain.Mutant) (restore func() error, err error) {
	original, err := os.ReadFile(path)
	if err != nil {
		return func() error { return nil }, errs.Wrap(errs.ExecutionError, fmt.Errorf("target: read %s: %w", path, err))
	}

	off := int(m.ByteOffset)
	end := off + len(m.OldText)
	if off < 0 || end > len(original) || string(original[off:end]) != m.OldText {
		return func() error { return nil }, errs.Wrap(errs.InvalidInput, fmt.Errorf("target: stale mutant at %s:%d", path, m.ByteOffset))
	}

	mutated := make([]byte, 0, len(original)-len(m.OldText)+len(m.NewText))
	mutated = append(mutated, original[:off]...)
	mutated = append(mutated, m.NewText...)
	mutated = append(mutated, original[end:]...)

	perm := os.FileMode(0o644)
	if fi, serr := os.Stat(path); serr == nil {
		perm = fi.Mode()
	}

	if werr := os.WriteFile(path, mutated, perm); werr != nil {
		return func() error { return nil }, errs.Wrap(errs.ExecutionError, fmt.Errorf("target: write %s: %w", path, werr))
	}

	restore = func() error {
		if rerr := os.WriteFile(path, original, perm); rerr != nil {
			return errs.Wrap(errs.StorageError, fmt.Errorf("target: restore %s: %w", path, rerr))
		}
		return nil
	}
	return restore, nil
}
