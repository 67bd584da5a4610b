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

func newPurgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Wipe every target, mutant, and outcome from the catalog",
		Long: heredoc.Doc(`
			purge empties the catalog database entirely. Unlike clean, it
			does not check the filesystem first: it is for starting a fresh
			campaign, not for reconciling renamed files. Requires --yes.
		`),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			yes, _ := cmd.Flags().GetBool("yes")
			if !yes {
				return fmt.Errorf("cli: purge requires --yes to confirm")
			}

			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Purge(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "catalog purged")
			return nil
		},
	}
	cmd.Flags().Bool("yes", false, "confirm the destructive purge")
	return cmd
}
