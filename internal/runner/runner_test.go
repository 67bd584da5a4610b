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

package runner_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/trailofbits/mewt/internal/catalog"
	"github.com/trailofbits/mewt/internal/domain"
	"github.com/trailofbits/mewt/internal/runner"
)

func openTestStore(t *testing.T) *catalog.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.db")
	s, err := catalog.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// The fake execContext values below reexec this same test binary under a
// GO_TEST_PROCESS guard, the way pkg/mutator/mutator_test.go fakes
// exec.CommandContext without spawning a real test command.

func fakeExecSuccess(ctx context.Context, _ string, _ ...string) *exec.Cmd {
	return reexec(ctx, "TestHelperProcessSuccess")
}

func fakeExecTestFail(ctx context.Context, _ string, _ ...string) *exec.Cmd {
	return reexec(ctx, "TestHelperProcessFailure")
}

func fakeExecSpawnError(_ context.Context, _ string, _ ...string) *exec.Cmd {
	return exec.Command(filepath.Join(os.TempDir(), "mewt-runner-test-does-not-exist"))
}

func fakeExecHang(ctx context.Context, _ string, _ ...string) *exec.Cmd {
	return reexec(ctx, "TestHelperProcessHang")
}

func reexec(ctx context.Context, run string) *exec.Cmd {
	cs := []string{"-test.run=" + run, "--"}
	// #nosec G204 - test-only reexec of this same binary
	cmd := exec.CommandContext(ctx, os.Args[0], cs...)
	cmd.Env = []string{"GO_TEST_PROCESS=1"}
	return cmd
}

func TestHelperProcessSuccess(t *testing.T) {
	if os.Getenv("GO_TEST_PROCESS") != "1" {
		return
	}
	os.Exit(0)
}

func TestHelperProcessFailure(t *testing.T) {
	if os.Getenv("GO_TEST_PROCESS") != "1" {
		return
	}
	os.Exit(1)
}

func TestHelperProcessHang(t *testing.T) {
	if os.Getenv("GO_TEST_PROCESS") != "1" {
		return
	}
	time.Sleep(5 * time.Second)
	os.Exit(0)
}

func seedMutant(t *testing.T, s *catalog.Store) (path string, m domain.Mutant) {
	t.Helper()
	dir := t.TempDir()
	path = filepath.Join(dir, "a.rs")
	if err := os.WriteFile(path, []byte("a+b\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	targetID, err := s.AddTarget(domain.Target{Path: path, FileHash: "h1", Text: "a+b\n", Language: "rust"})
	if err != nil {
		t.Fatalf("AddTarget: %v", err)
	}
	id, _, err := s.AddMutant(domain.Mutant{TargetID: targetID, ByteOffset: 1, LineOffset: 0, OldText: "+", NewText: "-", Slug: "AOS"})
	if err != nil {
		t.Fatalf("AddMutant: %v", err)
	}
	m, err = s.GetMutant(id)
	if err != nil {
		t.Fatalf("GetMutant: %v", err)
	}
	return path, m
}

func TestRunBaseline(t *testing.T) {
	t.Run("passing baseline is nil error", func(t *testing.T) {
		s := openTestStore(t)
		r := runner.New(s, runner.WithExecContext(fakeExecSuccess))
		err := r.RunBaseline(context.Background(), runner.Command{Dir: t.TempDir(), Argv: []string{"cargo", "test"}, Timeout: time.Second})
		if err != nil {
			t.Fatalf("RunBaseline: %v", err)
		}
	})

	t.Run("failing baseline is an error", func(t *testing.T) {
		s := openTestStore(t)
		r := runner.New(s, runner.WithExecContext(fakeExecTestFail))
		err := r.RunBaseline(context.Background(), runner.Command{Dir: t.TempDir(), Argv: []string{"cargo", "test"}, Timeout: time.Second})
		if err == nil {
			t.Fatal("expected baseline failure to be an error")
		}
	})

	t.Run("spawn failure is an error", func(t *testing.T) {
		s := openTestStore(t)
		r := runner.New(s, runner.WithExecContext(fakeExecSpawnError))
		err := r.RunBaseline(context.Background(), runner.Command{Dir: t.TempDir(), Argv: []string{"cargo", "test"}, Timeout: time.Second})
		if err == nil {
			t.Fatal("expected spawn failure to be an error")
		}
	})
}

func TestRunMutant_classification(t *testing.T) {
	fixedNow := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name       string
		exec       func(ctx context.Context, name string, args ...string) *exec.Cmd
		timeout    time.Duration
		wantStatus domain.Status
	}{
		{name: "tests catch the mutant", exec: fakeExecTestFail, timeout: time.Second, wantStatus: domain.StatusTestFail},
		{name: "mutant survives", exec: fakeExecSuccess, timeout: time.Second, wantStatus: domain.StatusUncaught},
		{name: "spawn failure is a build failure", exec: fakeExecSpawnError, timeout: time.Second, wantStatus: domain.StatusBuildFail},
		{name: "deadline exceeded is a timeout", exec: fakeExecHang, timeout: 50 * time.Millisecond, wantStatus: domain.StatusTimeout},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := openTestStore(t)
			path, m := seedMutant(t, s)
			before, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}

			r := runner.New(s, runner.WithExecContext(tc.exec), runner.WithClock(func() time.Time { return fixedNow }))
			oc, err := r.RunMutant(context.Background(), path, m, runner.Command{Dir: filepath.Dir(path), Argv: []string{"cargo", "test"}, Timeout: tc.timeout})
			if err != nil {
				t.Fatalf("RunMutant: %v", err)
			}
			if oc.Status != tc.wantStatus {
				t.Errorf("expected status %s, got %s", tc.wantStatus, oc.Status)
			}

			after, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile after: %v", err)
			}
			if string(after) != string(before) {
				t.Errorf("expected file restored to original content, got %q", after)
			}

			got, err := s.GetOutcome(m.ID)
			if err != nil {
				t.Fatalf("GetOutcome: %v", err)
			}
			if got == nil || got.Status != tc.wantStatus {
				t.Errorf("expected persisted outcome %s, got %+v", tc.wantStatus, got)
			}
		})
	}
}

func TestSeveritySkip(t *testing.T) {
	s := openTestStore(t)
	_, m := seedMutant(t, s) // slug AOS, Medium severity

	r := runner.New(s)

	ok, err := r.SeveritySkip(m)
	if err != nil {
		t.Fatalf("SeveritySkip: %v", err)
	}
	if ok {
		t.Errorf("expected no skip with no prior uncaught outcomes at the line")
	}

	if err := s.AddOutcome(domain.Outcome{MutantID: m.ID, Status: domain.StatusUncaught, Timestamp: time.Now()}); err != nil {
		t.Fatalf("AddOutcome: %v", err)
	}

	targetID := m.TargetID
	sameSeverityID, _, err := s.AddMutant(domain.Mutant{TargetID: targetID, ByteOffset: 2, LineOffset: 0, OldText: "b", NewText: "c", Slug: "AOS"})
	if err != nil {
		t.Fatalf("AddMutant: %v", err)
	}
	sameSeverity, err := s.GetMutant(sameSeverityID)
	if err != nil {
		t.Fatalf("GetMutant: %v", err)
	}

	ok, err = r.SeveritySkip(sameSeverity)
	if err != nil {
		t.Fatalf("SeveritySkip: %v", err)
	}
	if ok {
		t.Errorf("expected no skip when the only prior uncaught mutant at the line has the same severity, not a strictly higher one")
	}

	higherSeverityID, _, err := s.AddMutant(domain.Mutant{TargetID: targetID, ByteOffset: 3, LineOffset: 0, OldText: "c", NewText: "d", Slug: "ER"})
	if err != nil {
		t.Fatalf("AddMutant: %v", err)
	}
	higherSeverity, err := s.GetMutant(higherSeverityID)
	if err != nil {
		t.Fatalf("GetMutant: %v", err)
	}
	if err := s.AddOutcome(domain.Outcome{MutantID: higherSeverity.ID, Status: domain.StatusUncaught, Timestamp: time.Now()}); err != nil {
		t.Fatalf("AddOutcome: %v", err)
	}

	ok, err = r.SeveritySkip(sameSeverity)
	if err != nil {
		t.Fatalf("SeveritySkip: %v", err)
	}
	if !ok {
		t.Errorf("expected skip once a strictly-higher-severity mutant (ER, High) at the same line is already uncaught")
	}
}

func TestSkip(t *testing.T) {
	s := openTestStore(t)
	_, m := seedMutant(t, s)

	r := runner.New(s)
	oc, err := r.Skip(m.ID, "severity-skip")
	if err != nil {
		t.Fatalf("Skip: %v", err)
	}
	if oc.Status != domain.StatusSkipped {
		t.Errorf("expected Skipped status, got %s", oc.Status)
	}

	got, err := s.GetOutcome(m.ID)
	if err != nil {
		t.Fatalf("GetOutcome: %v", err)
	}
	if got == nil || got.Status != domain.StatusSkipped {
		t.Errorf("expected persisted Skipped outcome, got %+v", got)
	}
}
