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

// Package cli wires the cobra command tree: init, run, mutate, clean,
// results, status, test, purge, print. Grounded on cmd/gremlins.go's root
// command (persistent --config flag, cobra.OnInitialize wiring
// configuration.Init) and cmd/unleash.go's campaign subcommand shape.
package cli

import (
	"context"
	"errors"
	"os"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"

	"github.com/trailofbits/mewt/internal/configuration"
	"github.com/trailofbits/mewt/internal/glog"
)

const paramConfigFile = "config"

// Execute builds and runs the root mewt command.
func Execute(ctx context.Context, version string) error {
	if version == "" {
		return errors.New("expected a version string")
	}

	root := &cobra.Command{
		Use:           "mewt",
		Short:         shortExplainer(),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newInitCmd(),
		newRunCmd(ctx),
		newMutateCmd(),
		newCleanCmd(),
		newResultsCmd(),
		newStatusCmd(),
		newTestCmd(ctx),
		newPurgeCmd(),
		newPrintCmd(),
	)

	root.PersistentFlags().String(paramConfigFile, "", "override config file")
	root.PersistentFlags().String("cwd", "", "run as if invoked from this directory")
	root.PersistentFlags().String("db", "", "override the catalog database path")
	root.PersistentFlags().String("log.level", "info", "log level: trace debug info warn error")
	root.PersistentFlags().Bool("log.color", true, "colorize log output")

	var cfgFile string
	cobra.OnInitialize(func() {
		if dir, _ := root.PersistentFlags().GetString("cwd"); dir != "" {
			if err := os.Chdir(dir); err != nil {
				glog.Errorf("initialization error: %s", err)
				os.Exit(1)
			}
		}
		cfgFile, _ = root.PersistentFlags().GetString(paramConfigFile)
		if err := configuration.Init([]string{cfgFile}); err != nil {
			glog.Errorf("initialization error: %s", err)
			os.Exit(1)
		}

		level, _ := root.PersistentFlags().GetString("log.level")
		useColor, _ := root.PersistentFlags().GetBool("log.color")
		glog.Init(os.Stdout, os.Stderr, glog.ParseLevel(level), useColor)
	})

	return root.Execute()
}

func shortExplainer() string {
	return heredoc.Doc(`
		mewt is a multi-language mutation testing engine: it mutates source
		files in small, targeted ways, runs your test suite against each
		mutation, and reports which mutations your tests failed to catch.
	`)
}
