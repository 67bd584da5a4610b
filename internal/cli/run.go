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
	"context"
	"fmt"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/trailofbits/mewt/internal/catalog"
	"github.com/trailofbits/mewt/internal/configuration"
	"github.com/trailofbits/mewt/internal/domain"
	"github.com/trailofbits/mewt/internal/execution"
	"github.com/trailofbits/mewt/internal/orchestrator"
	"github.com/trailofbits/mewt/internal/registry"
	"github.com/trailofbits/mewt/internal/runner"
)

func newRunCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a full mutation testing campaign: mutate, then test every mutant",
		Long: heredoc.Doc(`
			run discovers targets, generates their mutants (as "mewt mutate"
			does), then drives the runner over every pending mutant: one
			baseline per distinct resolved test command, then one test
			invocation per surviving mutant, applying and restoring the
			source file around each one. Results are written to the catalog
			as they are produced, so an interrupted run can be resumed with
			"mewt run" again.
		`),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			reg, err := registry.New()
			if err != nil {
				return err
			}

			targets, err := loadAndIngest(store, reg)
			if err != nil {
				return err
			}

			since, _ := cmd.Flags().GetString("since")
			cfg, err := orchestratorConfig(since)
			if err != nil {
				return err
			}

			run := runner.New(store)
			orc := orchestrator.New(store, run, cfg, logf)

			summary, err := orc.Run(ctx, targets)
			if err != nil {
				return err
			}

			format, _ := cmd.Flags().GetString("format")
			ids := make([]int64, len(targets))
			for i, t := range targets {
				ids[i] = t.ID
			}
			views, err := store.QueryMutants(catalog.Filter{TargetIDs: ids})
			if err != nil {
				return err
			}
			if err := renderReport(cmd, format, summary, views); err != nil {
				return err
			}

			minCatchRate, _ := cmd.Flags().GetFloat64("min-catch-rate")
			maxUntestedRatio, _ := cmd.Flags().GetFloat64("max-untested-ratio")
			return checkThresholds(summary, minCatchRate, maxUntestedRatio)
		},
	}

	cmd.Flags().Bool("comprehensive", false, "disable the severity-skip heuristic; run every mutant")
	cmd.Flags().String("since", "", "only test mutants on lines changed since this git ref")
	cmd.Flags().StringSlice("mutations", []string{}, "restrict the campaign to these mutation slugs (default: all)")
	_ = viper.BindPFlag(configuration.RunComprehensiveKey, cmd.Flags().Lookup("comprehensive"))
	_ = viper.BindPFlag(configuration.RunSinceKey, cmd.Flags().Lookup("since"))
	_ = viper.BindPFlag(configuration.RunMutationsKey, cmd.Flags().Lookup("mutations"))
	cmd.Flags().String("format", "table", "output format: table, ids, json, sarif")
	cmd.Flags().Float64("min-catch-rate", 0, "fail (exit 10) if the campaign catch rate is below this fraction")
	cmd.Flags().Float64("max-untested-ratio", 1, "fail (exit 11) if more than this fraction of mutants end up Skipped, Timeout, or BuildFail")

	return cmd
}

// checkThresholds turns a campaign summary into a typed exit error when
// it falls short of the caller's quality gate (SPEC_FULL.md's CLI
// expansion, grounded on internal/execution's ExitError contract).
func checkThresholds(summary domain.CampaignSummary, minCatchRate, maxUntestedRatio float64) error {
	var caught, eligible, untested int
	for status, n := range summary.ByStatus {
		if status.Eligible() {
			eligible += n
			if status.Caught() {
				caught += n
			}
		} else {
			untested += n
		}
	}

	if eligible > 0 && minCatchRate > 0 {
		rate := float64(caught) / float64(eligible)
		if rate < minCatchRate {
			return fmt.Errorf("%w: %.1f%% < %.1f%%", execution.NewExitErr(execution.CatchRateThreshold), rate*100, minCatchRate*100)
		}
	}

	if summary.Total > 0 && maxUntestedRatio < 1 {
		ratio := float64(untested) / float64(summary.Total)
		if ratio > maxUntestedRatio {
			return fmt.Errorf("%w: %.1f%% > %.1f%%", execution.NewExitErr(execution.UntestedRatioThreshold), ratio*100, maxUntestedRatio*100)
		}
	}

	return nil
}
