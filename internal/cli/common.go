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

package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/trailofbits/mewt/internal/catalog"
	"github.com/trailofbits/mewt/internal/configuration"
	"github.com/trailofbits/mewt/internal/diff"
	"github.com/trailofbits/mewt/internal/domain"
	"github.com/trailofbits/mewt/internal/exclusion"
	"github.com/trailofbits/mewt/internal/glog"
	"github.com/trailofbits/mewt/internal/orchestrator"
	"github.com/trailofbits/mewt/internal/project"
	"github.com/trailofbits/mewt/internal/registry"
	"github.com/trailofbits/mewt/internal/target"
)

// dbPath resolves the catalog database location: the --db flag, else
// configuration.DBPathKey, else <project root>/mewt.sqlite.
func dbPath(cmd *cobra.Command) string {
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		return v
	}
	if v := configuration.Get[string](configuration.DBPathKey); v != "" {
		return v
	}
	return filepath.Join(project.RootFromCwd(), "mewt.sqlite")
}

func openStore(cmd *cobra.Command) (*catalog.Store, error) {
	return catalog.Open(dbPath(cmd))
}

// splitCmd splits a configured test command string into argv. Commands
// in this domain (cargo test, npm test, forge test ...) do not need
// shell quoting, so plain whitespace splitting is enough.
func splitCmd(s string) []string {
	return strings.Fields(s)
}

// loadAndIngest resolves targets.include/ignore/exclude from
// configuration, loads and hashes the matching files, builds their
// mutants via the registry, and upserts both into store. It returns the
// resulting domain.Target rows.
func loadAndIngest(store *catalog.Store, reg *registry.Registry) ([]domain.Target, error) {
	includes := configuration.GetStringSlice(configuration.TargetsIncludeKey)
	if len(includes) == 0 {
		includes = []string{"."}
	}
	ignore := configuration.GetStringSlice(configuration.TargetsIgnoreKey)
	excludePatterns := configuration.GetStringSlice(configuration.TargetsExcludeKey)

	excl, err := exclusion.New(excludePatterns)
	if err != nil {
		return nil, err
	}

	loaded, err := target.Load(includes, ignore, reg)
	if err != nil {
		return nil, err
	}

	var targets []domain.Target
	for _, l := range loaded {
		if excl.IsExcluded(l.Path) {
			continue
		}

		id, err := store.AddTarget(domain.Target{
			Path:     l.Path,
			FileHash: l.Hash,
			Text:     string(l.Content),
			Language: l.Language,
		})
		if err != nil {
			return nil, fmt.Errorf("cli: ingest target %s: %w", l.Path, err)
		}
		t, err := store.GetTarget(id)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)

		book, ok := reg.ByPath(l.Path)
		if !ok {
			continue
		}
		candidates, err := book.Generate(l.Content)
		if err != nil {
			glog.Warnf("%s: mutation generation failed: %v", l.Path, err)
			continue
		}
		for _, c := range candidates {
			if _, _, err := store.AddMutant(c.Bind(id)); err != nil {
				return nil, fmt.Errorf("cli: ingest mutant %s %s: %w", l.Path, c.Slug, err)
			}
		}
	}
	return targets, nil
}

// perTargetRule mirrors one [[test.per_target]] TOML table.
type perTargetRule struct {
	Glob    string `mapstructure:"glob"`
	Cmd     string `mapstructure:"cmd"`
	Timeout string `mapstructure:"timeout"`
}

// orchestratorConfig builds an orchestrator.Config from configuration,
// optionally narrowed by a --since ref.
func orchestratorConfig(since string) (orchestrator.Config, error) {
	cmdStr := configuration.Get[string](configuration.TestCmdKey)
	if cmdStr == "" {
		return orchestrator.Config{}, fmt.Errorf("cli: test.cmd is not configured")
	}
	timeout := configuration.GetDuration(configuration.TestTimeoutKey)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	perTarget, err := configuration.UnmarshalKey[[]perTargetRule](configuration.TestPerTargetKey)
	if err != nil {
		return orchestrator.Config{}, fmt.Errorf("cli: test.per_target: %w", err)
	}
	var rules []orchestrator.TestRule
	for _, r := range perTarget {
		rule := orchestrator.TestRule{Glob: r.Glob, Timeout: timeout}
		if r.Cmd != "" {
			rule.Argv = splitCmd(r.Cmd)
		} else {
			rule.Argv = splitCmd(cmdStr)
		}
		if r.Timeout != "" {
			if d, err := time.ParseDuration(r.Timeout); err == nil {
				rule.Timeout = d
			}
		}
		rules = append(rules, rule)
	}

	cfg := orchestrator.Config{
		DefaultArgv:    splitCmd(cmdStr),
		DefaultTimeout: timeout,
		Rules:          rules,
		Comprehensive:  configuration.Get[bool](configuration.RunComprehensiveKey),
		Mutations:      configuration.GetStringSlice(configuration.RunMutationsKey),
	}

	if since == "" {
		since = configuration.Get[string](configuration.RunSinceKey)
	}
	if since != "" {
		d, err := diff.New(since)
		if err != nil {
			return orchestrator.Config{}, err
		}
		cfg.Since = d
	}

	return cfg, nil
}

func logf(format string, args ...any) {
	glog.Infof(format, args...)
}
