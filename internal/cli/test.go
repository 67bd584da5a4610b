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
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/trailofbits/mewt/internal/domain"
	"github.com/trailofbits/mewt/internal/runner"
)

func newTestCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Retest specific mutant ids, bypassing target discovery and the pending-mutant filter",
		Long: heredoc.Doc(`
			test retests an explicit list of mutant ids: the ones "mewt
			results --format ids" printed, or any previously catalogued
			mutant an operator wants to re-verify regardless of its current
			outcome. Unlike "run", it ignores the severity-skip heuristic
			and --since narrowing entirely; every named id is executed.
		`),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ids, err := mutantIDsFromFlags(cmd)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				return fmt.Errorf("cli: test requires --ids or --ids-file")
			}

			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			cfg, err := orchestratorConfig("")
			if err != nil {
				return err
			}

			run := runner.New(store)

			byTarget := map[int64][]domain.Mutant{}
			for _, id := range ids {
				m, err := store.GetMutant(id)
				if err != nil {
					return fmt.Errorf("cli: mutant %d: %w", id, err)
				}
				byTarget[m.TargetID] = append(byTarget[m.TargetID], m)
			}

			for targetID, mutants := range byTarget {
				t, err := store.GetTarget(targetID)
				if err != nil {
					return err
				}
				argv, timeout := cfg.Resolve(t.Path)
				baseline := runner.Command{Dir: ".", Argv: argv, Timeout: timeout}
				if err := run.RunBaseline(ctx, baseline); err != nil {
					logf("baseline failed for %s, skipping its mutants: %v", t.Path, err)
					continue
				}
				for _, m := range mutants {
					oc, err := run.RunMutant(ctx, t.Path, m, runner.Command{Dir: ".", Argv: argv, Timeout: timeout})
					if err != nil {
						logf("failed to persist outcome for mutant %d: %v", m.ID, err)
						continue
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s:%d %s -> %s\n", t.Path, m.LineOffset+1, m.Slug, oc.Status)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntSlice("ids", nil, "mutant ids to retest")
	cmd.Flags().String("ids-file", "", "file with one mutant id per line")

	return cmd
}

func mutantIDsFromFlags(cmd *cobra.Command) ([]int64, error) {
	raw, _ := cmd.Flags().GetIntSlice("ids")
	var ids []int64
	for _, v := range raw {
		ids = append(ids, int64(v))
	}

	path, _ := cmd.Flags().GetString("ids-file")
	if path == "" {
		return ids, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cli: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		id, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cli: %s: invalid mutant id %q: %w", path, line, err)
		}
		ids = append(ids, id)
	}
	return ids, scanner.Err()
}
