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

// Package diff parses `git diff` output to identify changed line ranges,
// for the `--since` incremental-narrowing mode (SPEC_FULL.md §4.4, §4.6).
// Ported from this package's own prior Go-specific version, dropping its
// go/token.Position coupling in favor of mewt's path+line addressing.
package diff

import (
	"bytes"
	"fmt"
	"os/exec"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// Change is a contiguous range of added/modified lines in one file.
type Change struct {
	StartLine int
	EndLine   int
}

// Diff maps a file path to its changed-line ranges.
type Diff map[string][]Change

func newDiff(files []*gitdiff.File) Diff {
	result := Diff{}
	for _, file := range files {
		name, changes := newChanges(file)
		result[name] = changes
	}
	return result
}

func newChanges(file *gitdiff.File) (string, []Change) {
	var changes []Change
	for _, fragment := range file.TextFragments {
		if fragment.LinesAdded == 0 {
			continue
		}
		startLine := int(fragment.NewPosition + fragment.LeadingContext)
		changes = append(changes, Change{
			StartLine: startLine,
			EndLine:   startLine + int(fragment.LinesAdded-1),
		})
	}
	return file.NewName, changes
}

// IsChanged reports whether (path, line) falls within a changed region.
// An empty Diff (no --since given) treats every line as changed, so
// narrowing is a strict no-op when the feature is unused.
func (d Diff) IsChanged(path string, line int) bool {
	if len(d) == 0 {
		return true
	}
	for _, change := range d[path] {
		if line >= change.StartLine && line <= change.EndLine {
			return true
		}
	}
	return false
}

type execCmd interface {
	CombinedOutput() ([]byte, error)
}

// New runs `git diff --merge-base ref` and parses the result. An empty
// ref yields a nil Diff (no narrowing).
func New(ref string) (Diff, error) {
	return NewWithCmd(ref, exec.Command)
}

// NewWithCmd is New with a substitutable command constructor, for tests.
func NewWithCmd[T execCmd](ref string, cmdContext func(name string, args ...string) T) (Diff, error) {
	if ref == "" {
		return nil, nil
	}

	cmd := cmdContext("git", "diff", "--merge-base", ref)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("diff: git diff failed: %w\n\n%s", err, out)
	}

	files, _, err := gitdiff.Parse(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("diff: parse: %w", err)
	}

	return newDiff(files), nil
}
