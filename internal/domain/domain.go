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

// Package domain holds the persistent and transient entity types shared
// across the catalog, runner, orchestrator, and report packages. Entity
// relationships are strictly tree-shaped (target -> mutants -> outcome);
// packages pass ids, never pointers, and joins live in the catalog.
package domain

import "time"

// Target is a source file snapshotted at ingestion.
type Target struct {
	ID       int64
	Path     string
	FileHash string // lower-case hex SHA-256, 64 chars
	Text     string
	Language string
}

// Mutant is one textual edit against one target.
type Mutant struct {
	ID         int64
	TargetID   int64
	ByteOffset uint32
	LineOffset uint32
	OldText    string
	NewText    string
	Slug       string
}

// Status is the outcome classification of running the test suite with one
// mutant injected.
type Status string

const (
	// StatusTestFail means the test command exited non-zero: the mutant
	// was caught.
	StatusTestFail Status = "TestFail"
	// StatusUncaught means the test command exited zero: the mutant
	// survived, a test-suite gap.
	StatusUncaught Status = "Uncaught"
	// StatusTimeout means the test command was killed by its deadline;
	// retestable, and excluded from tested/caught/uncaught tallies.
	StatusTimeout Status = "Timeout"
	// StatusSkipped means the mutant was deliberately not executed,
	// either by the severity-skip heuristic or by diff narrowing.
	StatusSkipped Status = "Skipped"
	// StatusBuildFail means the child process could not be spawned, or
	// the mutation could not be written to disk, before tests ran.
	StatusBuildFail Status = "BuildFail"
)

// Outcome is at most one per mutant.
type Outcome struct {
	MutantID  int64
	Status    Status
	Output    string
	Timestamp time.Time
	DurationMS int64
}

// Eligible reports whether a status counts toward the tested/caught/
// uncaught tallies. Timeout is excluded everywhere (SPEC_FULL.md §4.4,
// resolving the original specification's open question about the
// denominator), as are Skipped and BuildFail — none of the three produced
// a conclusive test result.
func (s Status) Eligible() bool {
	return s == StatusTestFail || s == StatusUncaught
}

// Caught reports whether the status represents a caught mutant.
func (s Status) Caught() bool { return s == StatusTestFail }

// SeverityStats is the (eligible, caught) tally for one slug.
type SeverityStats struct {
	Eligible int
	Caught   int
}

// CatchRate returns caught/eligible, or 0 when nothing was eligible.
func (s SeverityStats) CatchRate() float64 {
	if s.Eligible == 0 {
		return 0
	}
	return float64(s.Caught) / float64(s.Eligible)
}

// TargetStats is a per-target aggregate computed on demand from the
// catalog: total mutants, counts by status, and catch rate by slug.
type TargetStats struct {
	TargetID    int64
	Total       int
	ByStatus    map[Status]int
	BySlug      map[string]SeverityStats
}

// CampaignSummary is the campaign-wide aggregate used by report
// renderers: counts across every selected target plus elapsed wall time.
type CampaignSummary struct {
	Total    int
	ByStatus map[Status]int
	BySlug   map[string]SeverityStats
	Elapsed  time.Duration
}

// MutantView denormalizes a mutant with its owning target and outcome for
// reporting, so renderers never touch the catalog directly.
type MutantView struct {
	Mutant   Mutant
	Target   Target
	Outcome  *Outcome // nil if untested
}
