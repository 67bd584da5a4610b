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

	"github.com/trailofbits/mewt/internal/registry"
)

func newMutateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mutate",
		Short: "Discover targets and generate mutants into the catalog, without running tests",
		Long: heredoc.Doc(`
			mutate resolves targets.include/ignore/exclude, reads and hashes
			every matching file, and asks the language registry to generate
			mutants for each one. Targets and mutants are upserted into the
			catalog database idempotently: re-running mutate after an edit
			relocates or updates existing rows rather than duplicating them.
			It does not run the test suite; use "mewt run" for that.
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

			total := 0
			for _, t := range targets {
				mutants, err := store.MutantsForTarget(t.ID)
				if err != nil {
					return err
				}
				total += len(mutants)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d targets, %d mutants in the catalog\n", len(targets), total)
			return nil
		},
	}
}
