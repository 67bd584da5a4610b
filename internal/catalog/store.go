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

// Package catalog is the persistent SQLite-backed store for targets,
// mutants, and outcomes (SPEC_FULL.md §4.5), ported in behavior from the
// original engine's src/core/store.rs and in Go database/sql idiom from
// the project's own sqlite-store pattern (schema-as-string + db.Exec,
// mutex-guarded wrapper struct, sql.Open("sqlite3", path)).
package catalog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/trailofbits/mewt/internal/domain"
	"github.com/trailofbits/mewt/internal/errs"
)

const schema = `
CREATE TABLE IF NOT EXISTS target (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	path      TEXT NOT NULL,
	file_hash TEXT NOT NULL,
	text      TEXT NOT NULL,
	language  TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_target_hash ON target(file_hash);

CREATE TABLE IF NOT EXISTS mutant (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	target_id   INTEGER NOT NULL REFERENCES target(id) ON DELETE CASCADE,
	byte_offset INTEGER NOT NULL,
	line_offset INTEGER NOT NULL,
	old_text    TEXT NOT NULL,
	new_text    TEXT NOT NULL,
	slug        TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_mutant_unique
	ON mutant(target_id, byte_offset, old_text, new_text, slug);
CREATE INDEX IF NOT EXISTS idx_mutant_target ON mutant(target_id);
CREATE INDEX IF NOT EXISTS idx_mutant_line ON mutant(target_id, line_offset);

CREATE TABLE IF NOT EXISTS outcome (
	mutant_id   INTEGER PRIMARY KEY REFERENCES mutant(id) ON DELETE CASCADE,
	status      TEXT NOT NULL,
	output      TEXT NOT NULL,
	ts          TEXT NOT NULL,
	duration_ms INTEGER NOT NULL
);
`

// Store is the catalog handle. Writes are serialized by mu; reads do not
// take it and run on the connection pool directly. The runner already
// guarantees only one mutant is in flight at a time, so mu does not
// serialize a hot path.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// Open opens (creating if absent) the SQLite database at path and runs
// its embedded migration.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errs.Wrap(errs.StorageError, fmt.Errorf("catalog: mkdir %s: %w", dir, err))
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, errs.Wrap(errs.StorageError, fmt.Errorf("catalog: open %s: %w", path, err))
	}

	s := &Store{db: db, path: path}
	if _, err := s.db.Exec(schema); err != nil {
		db.Close()
		return nil, errs.Wrap(errs.StorageError, fmt.Errorf("catalog: migrate: %w", err))
	}

	return s, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// AddTarget implements the relocate-or-insert contract: if a row with the
// same FileHash exists at a different path, the path is updated in place;
// otherwise a new row is inserted. Either way the (possibly pre-existing)
// id is returned.
func (s *Store) AddTarget(t domain.Target) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id int64
	var existingPath string
	err := s.db.QueryRow(`SELECT id, path FROM target WHERE file_hash = ?`, t.FileHash).Scan(&id, &existingPath)
	switch {
	case err == sql.ErrNoRows:
		res, ierr := s.db.Exec(`INSERT INTO target (path, file_hash, text, language) VALUES (?, ?, ?, ?)`,
			t.Path, t.FileHash, t.Text, t.Language)
		if ierr != nil {
			return 0, errs.Wrap(errs.StorageError, fmt.Errorf("catalog: insert target: %w", ierr))
		}
		return res.LastInsertId()
	case err != nil:
		return 0, errs.Wrap(errs.StorageError, fmt.Errorf("catalog: lookup target: %w", err))
	case existingPath != t.Path:
		if _, uerr := s.db.Exec(`UPDATE target SET path = ? WHERE id = ?`, t.Path, id); uerr != nil {
			return 0, errs.Wrap(errs.StorageError, fmt.Errorf("catalog: relocate target: %w", uerr))
		}
		return id, nil
	default:
		return id, nil
	}
}

// AddMutant implements the idempotent-insert contract: if the unique
// tuple already exists, its id is returned with inserted=false (a
// no-op); otherwise a new row is inserted and inserted=true.
func (s *Store) AddMutant(m domain.Mutant) (id int64, inserted bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow(`
		SELECT id FROM mutant
		WHERE target_id = ? AND byte_offset = ? AND old_text = ? AND new_text = ? AND slug = ?`,
		m.TargetID, m.ByteOffset, m.OldText, m.NewText, m.Slug)
	if serr := row.Scan(&id); serr == nil {
		return id, false, nil
	} else if serr != sql.ErrNoRows {
		return 0, false, errs.Wrap(errs.StorageError, fmt.Errorf("catalog: lookup mutant: %w", serr))
	}

	res, ierr := s.db.Exec(`
		INSERT INTO mutant (target_id, byte_offset, line_offset, old_text, new_text, slug)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.TargetID, m.ByteOffset, m.LineOffset, m.OldText, m.NewText, m.Slug)
	if ierr != nil {
		return 0, false, errs.Wrap(errs.StorageError, fmt.Errorf("catalog: insert mutant: %w", ierr))
	}
	id, err = res.LastInsertId()
	return id, true, err
}

// AddOutcome replaces any existing outcome for the mutant, or inserts one
// if none exists.
func (s *Store) AddOutcome(o domain.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO outcome (mutant_id, status, output, ts, duration_ms)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(mutant_id) DO UPDATE SET
			status = excluded.status, output = excluded.output,
			ts = excluded.ts, duration_ms = excluded.duration_ms`,
		o.MutantID, string(o.Status), o.Output, o.Timestamp.Format(time.RFC3339), o.DurationMS)
	if err != nil {
		return errs.Wrap(errs.StorageError, fmt.Errorf("catalog: upsert outcome: %w", err))
	}
	return nil
}

// GetTarget reads one target by id.
func (s *Store) GetTarget(id int64) (domain.Target, error) {
	row := s.db.QueryRow(`SELECT id, path, file_hash, text, language FROM target WHERE id = ?`, id)
	var t domain.Target
	if err := row.Scan(&t.ID, &t.Path, &t.FileHash, &t.Text, &t.Language); err != nil {
		if err == sql.ErrNoRows {
			return domain.Target{}, errs.Wrap(errs.NotFound, fmt.Errorf("catalog: target %d: %w", id, err))
		}
		return domain.Target{}, errs.Wrap(errs.StorageError, err)
	}
	return t, nil
}

// AllTargets reads every target row.
func (s *Store) AllTargets() ([]domain.Target, error) {
	rows, err := s.db.Query(`SELECT id, path, file_hash, text, language FROM target ORDER BY id`)
	if err != nil {
		return nil, errs.Wrap(errs.StorageError, err)
	}
	defer rows.Close()

	var out []domain.Target
	for rows.Next() {
		var t domain.Target
		if err := rows.Scan(&t.ID, &t.Path, &t.FileHash, &t.Text, &t.Language); err != nil {
			return nil, errs.Wrap(errs.DecodeError, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetMutant reads one mutant by id.
func (s *Store) GetMutant(id int64) (domain.Mutant, error) {
	row := s.db.QueryRow(`SELECT id, target_id, byte_offset, line_offset, old_text, new_text, slug FROM mutant WHERE id = ?`, id)
	var m domain.Mutant
	if err := row.Scan(&m.ID, &m.TargetID, &m.ByteOffset, &m.LineOffset, &m.OldText, &m.NewText, &m.Slug); err != nil {
		if err == sql.ErrNoRows {
			return domain.Mutant{}, errs.Wrap(errs.NotFound, fmt.Errorf("catalog: mutant %d: %w", id, err))
		}
		return domain.Mutant{}, errs.Wrap(errs.StorageError, err)
	}
	return m, nil
}

// GetOutcome reads the outcome for a mutant, or nil if untested.
func (s *Store) GetOutcome(mutantID int64) (*domain.Outcome, error) {
	row := s.db.QueryRow(`SELECT status, output, ts, duration_ms FROM outcome WHERE mutant_id = ?`, mutantID)
	var status, output, ts string
	var dur int64
	if err := row.Scan(&status, &output, &ts, &dur); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errs.Wrap(errs.StorageError, err)
	}
	parsed, perr := time.Parse(time.RFC3339, ts)
	if perr != nil {
		return nil, errs.Wrap(errs.DecodeError, fmt.Errorf("catalog: outcome timestamp: %w", perr))
	}
	return &domain.Outcome{
		MutantID: mutantID, Status: domain.Status(status), Output: output,
		Timestamp: parsed, DurationMS: dur,
	}, nil
}

// DeleteTarget removes a target and, via ON DELETE CASCADE, its mutants
// and their outcomes.
func (s *Store) DeleteTarget(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(`DELETE FROM target WHERE id = ?`, id); err != nil {
		return errs.Wrap(errs.StorageError, err)
	}
	return nil
}

// Clean removes target rows whose source file no longer exists on disk,
// distinguishing it from Purge's unconditional wipe.
func (s *Store) Clean(exists func(path string) bool) (int, error) {
	targets, err := s.AllTargets()
	if err != nil {
		return 0, err
	}
	var removed int
	for _, t := range targets {
		if exists(t.Path) {
			continue
		}
		if err := s.DeleteTarget(t.ID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// Purge drops every target, mutant, and outcome unconditionally.
func (s *Store) Purge() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(`DELETE FROM target`); err != nil {
		return errs.Wrap(errs.StorageError, err)
	}
	return nil
}
