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

// Package runner executes the test command with and without a mutant
// injected and classifies the result. The apply-run-classify-rollback
// loop is ported from pkg/mutator/mutator.go's executeTests/runTests,
// generalized from Go's go/ast token mutants to mewt's byte-range
// domain.Mutant and from `go test` to an arbitrary configured command.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/trailofbits/mewt/internal/catalog"
	"github.com/trailofbits/mewt/internal/domain"
	"github.com/trailofbits/mewt/internal/errs"
	"github.com/trailofbits/mewt/internal/mutation"
	"github.com/trailofbits/mewt/internal/target"
)

// execContext is substitutable in tests, mirroring the teacher's own
// execContext type alias.
type execContext = func(ctx context.Context, name string, args ...string) *exec.Cmd

// Command is a resolved test invocation: the argv to run and the
// deadline to enforce, as decided by the orchestrator's precedence rules
// (SPEC_FULL.md §4.6).
type Command struct {
	Dir     string
	Argv    []string
	Timeout time.Duration
}

// Runner applies mutants to disk, runs Command against them, and
// persists outcomes to store.
type Runner struct {
	store       *catalog.Store
	execContext execContext
	severityOf  func(slug string) mutation.Severity
	now         func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithExecContext overrides the default exec.CommandContext, for tests.
func WithExecContext(c execContext) Option {
	return func(r *Runner) { r.execContext = c }
}

// WithClock overrides the Outcome timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// New builds a Runner backed by store, looking up mutation severities
// from mutation.SharedDescriptors.
func New(store *catalog.Store, opts ...Option) *Runner {
	r := &Runner{
		store:       store,
		execContext: exec.CommandContext,
		severityOf: func(slug string) mutation.Severity {
			return mutation.SharedDescriptors[slug].Severity
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunBaseline runs cmd against the unmutated tree. A non-zero exit or a
// spawn failure both abandon the whole target group (SPEC_FULL.md §4.4
// step 1): the caller should skip every mutant in the group rather than
// report spurious kills.
func (r *Runner) RunBaseline(ctx context.Context, cmd Command) error {
	status, _, err := r.execute(ctx, cmd)
	if err != nil {
		return err
	}
	if status != domain.StatusUncaught {
		return fmt.Errorf("runner: baseline failed for %s: status %s", cmd.Dir, status)
	}
	return nil
}

// RunMutant applies m to path, runs cmd, classifies the outcome,
// restores the file unconditionally, and persists the outcome. It
// returns the outcome for immediate reporting as well.
func (r *Runner) RunMutant(ctx context.Context, path string, m domain.Mutant, cmd Command) (domain.Outcome, error) {
	start := r.now()

	restore, applyErr := target.Apply(path, m)
	defer func() {
		if rerr := restore(); rerr != nil {
			_ = rerr // best-effort; a failed restore is surfaced by the caller's own file-integrity check, not here
		}
	}()

	if applyErr != nil {
		return r.persist(m.ID, domain.StatusBuildFail, applyErr.Error(), start)
	}

	status, output, err := r.execute(ctx, cmd)
	if err != nil {
		return r.persist(m.ID, domain.StatusBuildFail, err.Error(), start)
	}

	return r.persist(m.ID, status, output, start)
}

// SeveritySkip reports whether m can be skipped without execution: an
// already-Uncaught mutant at the same line with strictly higher severity
// than m's own is evidence the test suite does not exercise that line
// closely enough to bother running a weaker mutation there (spec.md §4.4
// step 2, SPEC_FULL.md §4.4 severity-skip heuristic). A same-severity
// mutant at the line does not trigger the skip: it is independent
// evidence at the same bar, not a strictly stronger one already covered.
func (r *Runner) SeveritySkip(m domain.Mutant) (bool, error) {
	existing, err := r.store.UncaughtMutantsAtLine(m.TargetID, m.LineOffset)
	if err != nil {
		return false, err
	}
	mySeverity := r.severityOf(m.Slug)
	for _, e := range existing {
		if e.ID == m.ID {
			continue
		}
		if r.severityOf(e.Slug) > mySeverity {
			return true, nil
		}
	}
	return false, nil
}

// Skip persists a Skipped outcome without running anything, for the
// severity-skip heuristic and for diff-based narrowing.
func (r *Runner) Skip(mutantID int64, reason string) (domain.Outcome, error) {
	return r.persist(mutantID, domain.StatusSkipped, reason, r.now())
}

func (r *Runner) persist(mutantID int64, status domain.Status, output string, start time.Time) (domain.Outcome, error) {
	oc := domain.Outcome{
		MutantID:   mutantID,
		Status:     status,
		Output:     output,
		Timestamp:  start,
		DurationMS: r.now().Sub(start).Milliseconds(),
	}
	if err := r.store.AddOutcome(oc); err != nil {
		return oc, err
	}
	return oc, nil
}

// execute spawns cmd.Argv under cmd.Timeout and classifies the result.
// A context deadline is Timeout; a non-zero exit is TestFail (the test
// suite caught the mutant); a zero exit is Uncaught (it survived); a
// spawn failure (the binary does not exist, or is not executable)
// returns an error for the caller to turn into BuildFail.
func (r *Runner) execute(ctx context.Context, cmd Command) (domain.Status, string, error) {
	if len(cmd.Argv) == 0 {
		return "", "", errs.Wrap(errs.InvalidInput, fmt.Errorf("runner: empty command"))
	}

	runCtx, cancel := context.WithTimeout(ctx, cmd.Timeout)
	defer cancel()

	c := r.execContext(runCtx, cmd.Argv[0], cmd.Argv[1:]...)
	c.Dir = cmd.Dir

	out, err := c.CombinedOutput()

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return domain.StatusTimeout, string(out), nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return domain.StatusTestFail, string(out), nil
	}
	if err != nil {
		return "", string(out), errs.Wrap(errs.ExecutionError, fmt.Errorf("runner: spawn %s: %w", cmd.Argv[0], err))
	}

	return domain.StatusUncaught, string(out), nil
}
