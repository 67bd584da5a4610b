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

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print per-target mutant counts and catch rate",
		Long: heredoc.Doc(`
			status lists every target in the catalog with its total mutant
			count, per-status breakdown, and catch rate, computed on demand
			from the stored outcomes. Unlike "results", it never touches the
			filesystem or the test command.
		`),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			targets, err := store.AllTargets()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, t := range targets {
				stats, err := store.TargetStats(t.ID)
				if err != nil {
					return err
				}
				var caught, eligible int
				for status, n := range stats.ByStatus {
					if status.Eligible() {
						eligible += n
						if status.Caught() {
							caught += n
						}
					}
				}
				rate := 0.0
				if eligible > 0 {
					rate = float64(caught) / float64(eligible) * 100
				}
				fmt.Fprintf(w, "%-40s total=%-4d tested=%-4d caught=%-4d rate=%.1f%%\n",
					t.Path, stats.Total, eligible, caught, rate)
			}
			return nil
		},
	}
}
