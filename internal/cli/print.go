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

	"github.com/trailofbits/mewt/internal/configuration"
	"github.com/trailofbits/mewt/internal/registry"
)

func newPrintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "print {config|rulebooks}",
		Short: "Print the effective configuration or the supported rulebooks",
		Long: heredoc.Doc(`
			print config shows the effective targets/run/test values and
			the database path, after CLI flags, environment variables, and the TOML file have
			all been layered. print rulebooks lists every language rulebook
			compiled into this build, with the slugs and extensions each one
			advertises.
		`),
		Args:         cobra.ExactArgs(1),
		ValidArgs:    []string{"config", "rulebooks"},
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch args[0] {
			case "config":
				fmt.Fprintf(w, "%s = %v\n", configuration.TargetsIncludeKey, configuration.GetStringSlice(configuration.TargetsIncludeKey))
				fmt.Fprintf(w, "%s = %v\n", configuration.TargetsIgnoreKey, configuration.GetStringSlice(configuration.TargetsIgnoreKey))
				fmt.Fprintf(w, "%s = %v\n", configuration.TargetsExcludeKey, configuration.GetStringSlice(configuration.TargetsExcludeKey))
				fmt.Fprintf(w, "%s = %v\n", configuration.RunMutationsKey, configuration.GetStringSlice(configuration.RunMutationsKey))
				fmt.Fprintf(w, "%s = %v\n", configuration.RunComprehensiveKey, configuration.Get[bool](configuration.RunComprehensiveKey))
				fmt.Fprintf(w, "%s = %v\n", configuration.RunSinceKey, configuration.Get[string](configuration.RunSinceKey))
				fmt.Fprintf(w, "%s = %v\n", configuration.TestCmdKey, configuration.Get[string](configuration.TestCmdKey))
				fmt.Fprintf(w, "%s = %v\n", configuration.TestTimeoutKey, configuration.GetDuration(configuration.TestTimeoutKey))
				fmt.Fprintf(w, "%s = %v\n", configuration.DBPathKey, configuration.Get[string](configuration.DBPathKey))
				return nil
			case "rulebooks":
				reg, err := registry.New()
				if err != nil {
					return err
				}
				for _, book := range reg.Rulebooks() {
					fmt.Fprintf(w, "%s %v\n", book.Name(), book.Extensions())
					for _, d := range book.Descriptors() {
						fmt.Fprintf(w, "  %-5s %-8s %s\n", d.Slug, d.Severity, d.Description)
					}
				}
				return nil
			default:
				return fmt.Errorf("cli: print: unknown target %q, want config or rulebooks", args[0])
			}
		},
	}
}
