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

// Package project locates the project root: the nearest ancestor
// directory (starting from the working directory) carrying a marker
// file. Adapted from a findModuleRoot-style walk that looked for go.mod;
// mewt is multi-language, so the markers are its own config file name
// and .git rather than a Go-specific one.
package project

import (
	"os"
	"path/filepath"
)

// Markers are checked in order; the first directory containing any of
// them, walking up from start, is the project root.
var Markers = []string{".mewt.toml", ".git"}

// Root walks up from start looking for a marker. It returns "" if none
// is found before reaching the filesystem root.
func Root(start string) string {
	path := start
	for {
		for _, marker := range Markers {
			if fi, err := os.Stat(filepath.Join(path, marker)); err == nil {
				_ = fi
				return path
			}
		}
		parent := filepath.Dir(path)
		if parent == path {
			return ""
		}
		path = parent
	}
}

// RootFromCwd is Root anchored at the current working directory, falling
// back to "." when the working directory cannot be determined or no
// marker is found.
func RootFromCwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	if root := Root(cwd); root != "" {
		return root
	}
	return "."
}
