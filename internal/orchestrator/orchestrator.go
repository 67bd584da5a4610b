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

// Package orchestrator resolves the (command, timeout) pair for each
// target, groups targets that resolve to the same pair so a single
// baseline run can be amortized across the whole group, and drives the
// runner over every pending mutant. Grounded on cmd/unleash.go's run()
// (coverage -> mutate -> report pipeline shape) and src/core/cmds/test.rs
// (per-target rule resolution precedence).
package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/trailofbits/mewt/internal/catalog"
	"github.com/trailofbits/mewt/internal/diff"
	"github.com/trailofbits/mewt/internal/domain"
	"github.com/trailofbits/mewt/internal/runner"
)

// TestRule binds a glob pattern to a command override, for the
// `[test.per_target]` configuration section.
type TestRule struct {
	Glob    string
	Argv    []string
	Timeout time.Duration
}

// Config is the resolution policy: a global default plus an ordered list
// of per-target rules, the first matching glob wins (SPEC_FULL.md §6).
type Config struct {
	DefaultArgv    []string
	DefaultTimeout time.Duration
	Rules          []TestRule
	Since          diff.Diff // nil disables narrowing
	Comprehensive  bool      // true disables the severity-skip heuristic
	Mutations      []string  // slug whitelist; empty means every slug
}

func (c Config) allowsSlug(slug string) bool {
	if len(c.Mutations) == 0 {
		return true
	}
	for _, s := range c.Mutations {
		if s == slug {
			return true
		}
	}
	return false
}

// Resolve returns the (argv, timeout) pair for a target path: the first
// matching per-target rule, or the global default.
func (c Config) Resolve(path string) ([]string, time.Duration) {
	for _, r := range c.Rules {
		if ok, _ := filepath.Match(r.Glob, path); ok {
			return r.Argv, r.Timeout
		}
	}
	return c.DefaultArgv, c.DefaultTimeout
}

// group is one set of targets sharing a resolved command, so the
// baseline for that command runs exactly once.
type group struct {
	argv    []string
	timeout time.Duration
	targets []domain.Target
}

// Orchestrator drives a full campaign (or a narrowed subset of one)
// against the catalog.
type Orchestrator struct {
	store  *catalog.Store
	runner *runner.Runner
	cfg    Config
	log    func(format string, args ...any)
}

// New builds an Orchestrator. log may be nil to discard progress lines.
func New(store *catalog.Store, run *runner.Runner, cfg Config, log func(format string, args ...any)) *Orchestrator {
	if log == nil {
		log = func(string, ...any) {}
	}
	return &Orchestrator{store: store, runner: run, cfg: cfg, log: log}
}

// Run executes every pending (untested or previously timed-out) mutant
// among targets, grouped by resolved test command so each group's
// baseline runs once. A group whose baseline fails or fails to spawn is
// abandoned: every mutant in it is left untested rather than reported as
// a false kill (SPEC_FULL.md §4.4 step 1).
func (o *Orchestrator) Run(ctx context.Context, targets []domain.Target) (domain.CampaignSummary, error) {
	started := time.Now()

	groups := o.group(targets)
	for _, g := range groups {
		if ctx.Err() != nil {
			break
		}
		o.runGroup(ctx, g)
	}

	ids := make([]int64, len(targets))
	for i, t := range targets {
		ids[i] = t.ID
	}
	summary, err := o.store.CampaignSummary(ids)
	if err != nil {
		return domain.CampaignSummary{}, err
	}
	summary.Elapsed = time.Since(started)
	return summary, nil
}

func (o *Orchestrator) group(targets []domain.Target) []group {
	index := map[string]int{}
	var groups []group
	for _, t := range targets {
		argv, timeout := o.cfg.Resolve(t.Path)
		key := fmt.Sprintf("%v|%s", argv, timeout)
		if i, ok := index[key]; ok {
			groups[i].targets = append(groups[i].targets, t)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, group{argv: argv, timeout: timeout, targets: []domain.Target{t}})
	}
	return groups
}

func (o *Orchestrator) runGroup(ctx context.Context, g group) {
	if len(g.targets) == 0 {
		return
	}

	baselineCmd := runner.Command{Dir: ".", Argv: g.argv, Timeout: g.timeout}
	o.log("running baseline for %d target(s) with %v", len(g.targets), g.argv)
	if err := o.runner.RunBaseline(ctx, baselineCmd); err != nil {
		o.log("baseline failed, abandoning group: %v", err)
		return
	}

	ids := make([]int64, len(g.targets))
	byID := map[int64]domain.Target{}
	for i, t := range g.targets {
		ids[i] = t.ID
		byID[t.ID] = t
	}

	pending, err := o.store.PendingMutants(ids)
	if err != nil {
		o.log("failed to list pending mutants: %v", err)
		return
	}

	for _, m := range pending {
		if ctx.Err() != nil {
			return
		}
		t := byID[m.TargetID]

		if !o.cfg.allowsSlug(m.Slug) {
			continue
		}

		if o.cfg.Since != nil && !o.cfg.Since.IsChanged(t.Path, int(m.LineOffset)+1) {
			if _, err := o.runner.Skip(m.ID, "outside changed lines"); err != nil {
				o.log("failed to record skip for mutant %d: %v", m.ID, err)
			}
			continue
		}

		if !o.cfg.Comprehensive {
			if skip, err := o.runner.SeveritySkip(m); err != nil {
				o.log("severity-skip check failed for mutant %d: %v", m.ID, err)
			} else if skip {
				if _, err := o.runner.Skip(m.ID, "weaker than an already-uncaught mutant at this line"); err != nil {
					o.log("failed to record skip for mutant %d: %v", m.ID, err)
				}
				continue
			}
		}

		cmd := runner.Command{Dir: ".", Argv: g.argv, Timeout: g.timeout}
		oc, err := o.runner.RunMutant(ctx, t.Path, m, cmd)
		if err != nil {
			o.log("failed to persist outcome for mutant %d: %v", m.ID, err)
			continue
		}
		o.log("%s:%d %s -> %s", t.Path, m.LineOffset+1, m.Slug, oc.Status)
	}
}
