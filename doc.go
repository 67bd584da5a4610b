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

/*
Mewt is a multi-language mutation testing engine. It parses source files
in Rust, JavaScript, TypeScript, Solidity, and Tolk, generates small
semantic mutations against them, runs a configured test command with
each mutation injected, and reports which mutations the test suite
failed to catch.

Usage

From the root of a project, write a starter configuration:

	$ mewt init

Then build the catalog of targets and mutants, and run a campaign:

	$ mewt mutate
	$ mewt run

Mewt reports each mutant as:
 - Uncaught: the test suite passed with the mutation injected; a gap.
 - TestFail: the test suite failed; the mutation was caught.
 - Timeout: the test run was killed by its deadline.
 - Skipped: deliberately not executed, either by the severity-skip
   heuristic or because it falls outside a --since diff.
 - BuildFail: the mutation could not be applied, or the test command
   could not be spawned.

Configuration

Mewt uses Viper (https://github.com/spf13/viper) for configuration,
layered as:

 - specific command flags
 - environment variables
 - the configuration file

in which each item takes precedence over the following in the list.
The environment variables must be set with the following syntax:

  MEWT_<SECTION>_<KEY>

in which every dot and dash in the key name must be replaced with an
underscore.

Example:

  $ MEWT_TEST_CMD="cargo test" mewt run

The configuration must be named

  .mewt.toml

and is looked up in the following folders, in this order; the first
folder that contains it is used:

 - /etc/mewt
 - $XDG_CONFIG_HOME/mewt/mewt (~/.config/mewt/mewt when XDG_CONFIG_HOME is unset)
 - $HOME/.mewt
 - the project root (the nearest ancestor carrying .mewt.toml or .git)
 - the current folder
*/
package mewt
