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
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
)

const scaffoldTOML = `[targets]
include = ["src"]
ignore = ["test", "vendor", "node_modules"]
exclude = []

[test]
cmd = "cargo test"
timeout = "30s"

[run]
comprehensive = false
`

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a starter .mewt.toml in the current directory",
		Long: heredoc.Doc(`
			init writes a .mewt.toml scaffold in the current directory, with
			placeholder targets.include and test.cmd values for the user to
			edit. It refuses to overwrite an existing file.
		`),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			const path = ".mewt.toml"
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("cli: %s already exists", path)
			}
			if err := os.WriteFile(path, []byte(scaffoldTOML), 0o644); err != nil {
				return fmt.Errorf("cli: write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
}
