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

package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/trailofbits/mewt/internal/domain"
	"github.com/trailofbits/mewt/internal/errs"
)

func parseTimestamp(ts string) (time.Time, error) {
	return time.Parse(time.RFC3339, ts)
}

// Filter composes a mutant query. Zero values mean "no constraint" for
// every field except HasOutcome, which is a three-state pointer.
type Filter struct {
	TargetIDs []int64
	Slug      string
	Line      *uint32
	Language  string
	Status    string
	// HasOutcome, when non-nil, restricts to mutants with (true) or
	// without (false) a recorded outcome.
	HasOutcome *bool
}

// QueryMutants returns every mutant matching f, denormalized with its
// target and outcome for reporting. Line matching uses the mutant's
// recorded start line and the number of newlines its OldText spans, so a
// multi-line old_text matches every line it covers.
func (s *Store) QueryMutants(f Filter) ([]domain.MutantView, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT m.id, m.target_id, m.byte_offset, m.line_offset, m.old_text, m.new_text, m.slug,
		       t.id, t.path, t.file_hash, t.text, t.language,
		       o.status, o.output, o.ts, o.duration_ms
		FROM mutant m
		JOIN target t ON t.id = m.target_id
		LEFT JOIN outcome o ON o.mutant_id = m.id
		WHERE 1=1`)

	var args []any

	if len(f.TargetIDs) > 0 {
		placeholders := make([]string, len(f.TargetIDs))
		for i, id := range f.TargetIDs {
			placeholders[i] = "?"
			args = append(args, id)
		}
		fmt.Fprintf(&sb, " AND m.target_id IN (%s)", strings.Join(placeholders, ","))
	}
	if f.Slug != "" {
		sb.WriteString(" AND m.slug = ?")
		args = append(args, f.Slug)
	}
	if f.Language != "" {
		sb.WriteString(" AND t.language = ?")
		args = append(args, f.Language)
	}
	if f.Status != "" {
		sb.WriteString(" AND o.status = ?")
		args = append(args, f.Status)
	}
	switch {
	case f.HasOutcome != nil && *f.HasOutcome:
		sb.WriteString(" AND o.mutant_id IS NOT NULL")
	case f.HasOutcome != nil && !*f.HasOutcome:
		sb.WriteString(" AND o.mutant_id IS NULL")
	}

	rows, err := s.db.Query(sb.String(), args...)
	if err != nil {
		return nil, errs.Wrap(errs.StorageError, fmt.Errorf("catalog: query mutants: %w", err))
	}
	defer rows.Close()

	var out []domain.MutantView
	for rows.Next() {
		var v domain.MutantView
		var status, output, ts *string
		var dur *int64
		if err := rows.Scan(
			&v.Mutant.ID, &v.Mutant.TargetID, &v.Mutant.ByteOffset, &v.Mutant.LineOffset,
			&v.Mutant.OldText, &v.Mutant.NewText, &v.Mutant.Slug,
			&v.Target.ID, &v.Target.Path, &v.Target.FileHash, &v.Target.Text, &v.Target.Language,
			&status, &output, &ts, &dur,
		); err != nil {
			return nil, errs.Wrap(errs.DecodeError, fmt.Errorf("catalog: scan mutant view: %w", err))
		}

		if status != nil {
			outcome, operr := parseOutcomeRow(v.Mutant.ID, *status, deref(output), deref(ts), deref(dur))
			if operr != nil {
				return nil, operr
			}
			v.Outcome = outcome
		}

		if f.Line != nil && !lineMatches(v.Mutant, *f.Line) {
			continue
		}

		out = append(out, v)
	}
	return out, rows.Err()
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func parseOutcomeRow(mutantID int64, status, output, ts string, dur int64) (*domain.Outcome, error) {
	parsed, err := parseTimestamp(ts)
	if err != nil {
		return nil, errs.Wrap(errs.DecodeError, fmt.Errorf("catalog: outcome timestamp: %w", err))
	}
	return &domain.Outcome{
		MutantID: mutantID, Status: domain.Status(status), Output: output,
		Timestamp: parsed, DurationMS: dur,
	}, nil
}

// lineMatches reports whether line falls within [start, start+newlines(OldText)].
func lineMatches(m domain.Mutant, line uint32) bool {
	start := m.LineOffset
	end := start + uint32(strings.Count(m.OldText, "\n"))
	return line >= start && line <= end
}

// MutantsForTarget returns every mutant recorded against a target, in
// byte-offset order.
func (s *Store) MutantsForTarget(targetID int64) ([]domain.Mutant, error) {
	rows, err := s.db.Query(`
		SELECT id, target_id, byte_offset, line_offset, old_text, new_text, slug
		FROM mutant WHERE target_id = ? ORDER BY byte_offset`, targetID)
	if err != nil {
		return nil, errs.Wrap(errs.StorageError, err)
	}
	defer rows.Close()

	var out []domain.Mutant
	for rows.Next() {
		var m domain.Mutant
		if err := rows.Scan(&m.ID, &m.TargetID, &m.ByteOffset, &m.LineOffset, &m.OldText, &m.NewText, &m.Slug); err != nil {
			return nil, errs.Wrap(errs.DecodeError, err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// PendingMutants returns every mutant in targetIDs that is untested or
// whose last outcome was Timeout — the campaign's retestable set
// (SPEC_FULL.md §4.6).
func (s *Store) PendingMutants(targetIDs []int64) ([]domain.Mutant, error) {
	if len(targetIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(targetIDs))
	args := make([]any, len(targetIDs))
	for i, id := range targetIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`
		SELECT m.id, m.target_id, m.byte_offset, m.line_offset, m.old_text, m.new_text, m.slug
		FROM mutant m
		LEFT JOIN outcome o ON o.mutant_id = m.id
		WHERE m.target_id IN (%s) AND (o.mutant_id IS NULL OR o.status = ?)
		ORDER BY m.target_id, m.byte_offset`, strings.Join(placeholders, ","))
	args = append(args, string(domain.StatusTimeout))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errs.Wrap(errs.StorageError, fmt.Errorf("catalog: pending mutants: %w", err))
	}
	defer rows.Close()

	var out []domain.Mutant
	for rows.Next() {
		var m domain.Mutant
		if err := rows.Scan(&m.ID, &m.TargetID, &m.ByteOffset, &m.LineOffset, &m.OldText, &m.NewText, &m.Slug); err != nil {
			return nil, errs.Wrap(errs.DecodeError, err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UncaughtMutantsAtLine returns every mutant of targetID whose outcome is
// Uncaught and whose line span covers line, for the runner's
// severity-skip heuristic: an uncaught mutant at a line is evidence that
// weaker mutants at the same line are not worth spending a test run on.
func (s *Store) UncaughtMutantsAtLine(targetID int64, line uint32) ([]domain.Mutant, error) {
	all, err := s.MutantsForTarget(targetID)
	if err != nil {
		return nil, err
	}

	var out []domain.Mutant
	for _, m := range all {
		if !lineMatches(m, line) {
			continue
		}
		oc, err := s.GetOutcome(m.ID)
		if err != nil {
			return nil, err
		}
		if oc != nil && oc.Status == domain.StatusUncaught {
			out = append(out, m)
		}
	}
	return out, nil
}

// TargetStats aggregates one target's mutants by status and by
// slug-catch-rate.
func (s *Store) TargetStats(targetID int64) (domain.TargetStats, error) {
	mutants, err := s.MutantsForTarget(targetID)
	if err != nil {
		return domain.TargetStats{}, err
	}

	stats := domain.TargetStats{
		TargetID: targetID,
		ByStatus: map[domain.Status]int{},
		BySlug:   map[string]domain.SeverityStats{},
	}
	for _, m := range mutants {
		stats.Total++
		oc, err := s.GetOutcome(m.ID)
		if err != nil {
			return domain.TargetStats{}, err
		}
		if oc == nil {
			continue
		}
		stats.ByStatus[oc.Status]++

		if oc.Status.Eligible() {
			ss := stats.BySlug[m.Slug]
			ss.Eligible++
			if oc.Status.Caught() {
				ss.Caught++
			}
			stats.BySlug[m.Slug] = ss
		}
	}
	return stats, nil
}

// CampaignSummary aggregates across every target in targetIDs. Elapsed is
// left zero; callers (the orchestrator, which knows the campaign's wall
// clock) set it on the returned value.
func (s *Store) CampaignSummary(targetIDs []int64) (domain.CampaignSummary, error) {
	summary := domain.CampaignSummary{
		ByStatus: map[domain.Status]int{},
		BySlug:   map[string]domain.SeverityStats{},
	}
	for _, id := range targetIDs {
		ts, err := s.TargetStats(id)
		if err != nil {
			return domain.CampaignSummary{}, err
		}
		summary.Total += ts.Total
		for status, n := range ts.ByStatus {
			summary.ByStatus[status] += n
		}
		for slug, ss := range ts.BySlug {
			acc := summary.BySlug[slug]
			acc.Eligible += ss.Eligible
			acc.Caught += ss.Caught
			summary.BySlug[slug] = acc
		}
	}
	return summary, nil
}
