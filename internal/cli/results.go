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
	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/trailofbits/mewt/internal/catalog"
	"github.com/trailofbits/mewt/internal/target"
)

func newResultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results [selector]",
		Short: "Query and render mutant results from the catalog",
		Long: heredoc.Doc(`
			results queries the catalog's mutants, joined with their target
			and outcome, optionally filtered by a path/directory/glob
			selector, a mutation slug, a line number, or a status, and
			renders them in the requested format: table, ids, json, or
			sarif. With no filters it lists every mutant the catalog knows
			about, tested or not.
		`),
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			f := catalog.Filter{}

			if len(args) == 1 {
				known, err := store.AllTargets()
				if err != nil {
					return err
				}
				ids, err := target.ResolveIDSet(args[0], known)
				if err != nil {
					return err
				}
				f.TargetIDs = ids
			}

			f.Slug, _ = cmd.Flags().GetString("slug")
			f.Language, _ = cmd.Flags().GetString("language")
			f.Status, _ = cmd.Flags().GetString("status")
			if line, _ := cmd.Flags().GetInt("line"); line > 0 {
				l := uint32(line - 1)
				f.Line = &l
			}

			views, err := store.QueryMutants(f)
			if err != nil {
				return err
			}

			ids := make([]int64, 0, len(views))
			seen := map[int64]bool{}
			for _, v := range views {
				if !seen[v.Target.ID] {
					seen[v.Target.ID] = true
					ids = append(ids, v.Target.ID)
				}
			}
			summary, err := store.CampaignSummary(ids)
			if err != nil {
				return err
			}

			format, _ := cmd.Flags().GetString("format")
			return renderReport(cmd, format, summary, views)
		},
	}

	cmd.Flags().String("slug", "", "filter by mutation slug")
	cmd.Flags().String("language", "", "filter by rulebook language")
	cmd.Flags().String("status", "", "filter by outcome status")
	cmd.Flags().Int("line", 0, "filter by 1-based line number")
	cmd.Flags().String("format", "table", "output format: table, ids, json, sarif")

	return cmd
}
