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

// Package exclusion provides regex-based target exclusion, layered on
// top of internal/target's substring ignore list for users who need
// pattern matching rather than a plain substring. Ported from this
// package's own prior version, with configuration reading moved to the
// caller (internal/configuration) so this package stays free of a
// viper dependency.
package exclusion

import (
	"fmt"
	"regexp"
)

// Rules is a compiled set of exclusion patterns.
type Rules []*regexp.Regexp

// New compiles patterns, one regexp per entry, failing on the first
// invalid pattern with its index for a useful configuration error.
func New(patterns []string) (Rules, error) {
	var rules Rules
	for i, s := range patterns {
		r, err := regexp.Compile(s)
		if err != nil {
			return nil, fmt.Errorf("exclusion: pattern #%d %q: %w", i, s, err)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// IsExcluded reports whether path matches any rule.
func (r Rules) IsExcluded(path string) bool {
	for _, rule := range r {
		if rule.MatchString(path) {
			return true
		}
	}
	return false
}
