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

// Package mutation declares the transient mutation metadata compiled into
// the engine (slug, description, severity) and the Rulebook contract each
// per-language package implements.
package mutation

import (
	"fmt"

	"github.com/trailofbits/mewt/internal/domain"
)

// Severity buckets a mutation family by how obviously a reasonable test
// suite ought to catch it.
type Severity int

const (
	Low Severity = iota
	Medium
	High
)

func (s Severity) String() string {
	switch s {
	case High:
		return "High"
	case Medium:
		return "Medium"
	default:
		return "Low"
	}
}

// Descriptor is the transient metadata for one mutation slug.
type Descriptor struct {
	Slug        string
	Description string
	Severity    Severity
}

// SharedDescriptors holds the wording common to every language rulebook
// that advertises the slug, so descriptions stay consistent across
// languages (SPEC_FULL.md §4.3).
var SharedDescriptors = map[string]Descriptor{
	"ER":  {"ER", "replace statement with an error-raising statement", High},
	"CR":  {"CR", "comment out statement", Low},
	"IF":  {"IF", "force if-condition to false", High},
	"IT":  {"IT", "force if-condition to true", High},
	"WF":  {"WF", "force while-condition to false", Medium},
	"AS":  {"AS", "swap adjacent call arguments", Medium},
	"AOS": {"AOS", "shuffle arithmetic operator", Medium},
	"AAOS": {"AAOS", "shuffle arithmetic-assignment operator", Medium},
	"BOS": {"BOS", "shuffle bitwise operator", Low},
	"BAOS": {"BAOS", "shuffle bitwise-assignment operator", Low},
	"BL":  {"BL", "shuffle boolean literal", Medium},
	"COS": {"COS", "shuffle comparison operator", High},
	"LOS": {"LOS", "shuffle logical operator", High},
	"SOS": {"SOS", "shuffle shift operator", Low},
	"SAOS": {"SAOS", "shuffle shift-assignment operator", Low},
	"LC":  {"LC", "swap break and continue", Medium},
	"AI":  {"AI", "invert first argument of an assertion call", Medium},
	"RZ":  {"RZ", "force range-based for loop to a zero-length range", Medium},
}

// Candidate is one mutation produced by a rulebook before it is bound to a
// target id (which only exists once the owning target is in the catalog).
type Candidate struct {
	Slug       string
	ByteOffset uint32
	LineOffset uint32
	OldText    string
	NewText    string
}

// Bind attaches a Candidate to a concrete target, producing a persistable
// domain.Mutant.
func (c Candidate) Bind(targetID int64) domain.Mutant {
	return domain.Mutant{
		TargetID:   targetID,
		ByteOffset: c.ByteOffset,
		LineOffset: c.LineOffset,
		OldText:    c.OldText,
		NewText:    c.NewText,
		Slug:       c.Slug,
	}
}

// Rulebook is the capability set a per-language package implements: a
// name, the file extensions it claims, the mutation descriptors it
// advertises, and a function dispatching a parsed target's source into
// candidates. Invariants (SPEC_FULL.md §4.3): no duplicate slugs within
// one rulebook; every advertised slug is dispatched for some well-formed
// input without an "unknown slug" failure.
type Rulebook interface {
	Name() string
	Extensions() []string
	Descriptors() []Descriptor
	Generate(source []byte) ([]Candidate, error)
}

// ValidateNoDuplicateSlugs is shared test-support used by every
// rulebook's own test suite (SPEC_FULL.md testable property 6).
func ValidateNoDuplicateSlugs(descs []Descriptor) error {
	seen := map[string]bool{}
	for _, d := range descs {
		if seen[d.Slug] {
			return fmt.Errorf("mutation: duplicate slug %q", d.Slug)
		}
		seen[d.Slug] = true
	}
	return nil
}
