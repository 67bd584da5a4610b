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

package configuration

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/trailofbits/mewt/internal/project"
)

// This is the list of the keys available in the config file and as flags.
const (
	TargetsIncludeKey = "targets.include"
	TargetsIgnoreKey  = "targets.ignore"
	TargetsExcludeKey = "targets.exclude" // regex rules, layered over Ignore's substrings

	RunMutationsKey     = "run.mutations" // slug whitelist, empty means all
	RunComprehensiveKey = "run.comprehensive"
	RunSinceKey         = "run.since"

	TestCmdKey       = "test.cmd"
	TestTimeoutKey   = "test.timeout"
	TestPerTargetKey = "test.per_target"

	LogLevelKey = "log.level"
	LogColorKey = "log.color"

	DBPathKey = "db"
)

const (
	cfgName      = ".mewt"
	envVarPrefix = "MEWT"

	xdgConfigHomeKey = "XDG_CONFIG_HOME"

	windowsOS = "windows"
)

// Init initializes the viper configuration for mewt.
//
// It sets the configuration file name to .mewt.toml, adds the passed
// paths as ConfigPaths, and enables AutomaticEnv with a MEWT_ prefix.
// Environment variables take precedence over the configuration file and
// must be set in the format MEWT_<SECTION>_<KEY>, dots and dashes
// replaced by underscores.
func Init(cPaths []string) error {
	replacer := strings.NewReplacer(".", "_", "-", "_")
	viper.SetEnvKeyReplacer(replacer)
	viper.SetEnvPrefix(envVarPrefix)
	viper.AutomaticEnv()
	viper.SetConfigName(cfgName)
	viper.SetConfigType("toml")

	if isSpecificFile(cPaths) {
		viper.SetConfigFile(cPaths[0])
		if err := viper.ReadInConfig(); err != nil {
			return err
		}
	} else if arePathsNotSet(cPaths) {
		cPaths = defaultConfigPaths()
	}

	for _, p := range cPaths {
		viper.AddConfigPath(p)
	}

	_ = viper.ReadInConfig() // ignoring error if file not present

	return nil
}

func isSpecificFile(cPaths []string) bool {
	return len(cPaths) == 1 && filepath.Ext(cPaths[0]) != ""
}

func arePathsNotSet(cPaths []string) bool {
	return len(cPaths) == 0 || len(cPaths) == 1 && cPaths[0] == ""
}

func defaultConfigPaths() []string {
	result := make([]string, 0, 5)

	// First global config
	if runtime.GOOS != windowsOS {
		result = append(result, "/etc/mewt")
	}

	// Then $XDG_CONFIG_HOME
	xchLocation, _ := homedir.Expand("~/.config")
	if x := os.Getenv(xdgConfigHomeKey); x != "" {
		xchLocation = x
	}
	xchLocation = filepath.Join(xchLocation, "mewt", "mewt")
	result = append(result, xchLocation)

	// Then $HOME
	if homeLocation, err := homedir.Expand("~/.mewt"); err == nil {
		result = append(result, homeLocation)
	}

	// Then the project root
	if root := project.RootFromCwd(); root != "" && root != "." {
		result = append(result, root)
	}

	// Finally the current directory
	result = append(result, ".")

	return result
}

var mutex sync.RWMutex

// Set offers synchronised access to Viper.
func Set[T any](k string, v T) {
	mutex.Lock()
	defer mutex.Unlock()
	viper.Set(k, v)
}

// Get offers synchronised access to Viper.
func Get[T any](k string) T {
	var r T
	mutex.RLock()
	defer mutex.RUnlock()
	r, _ = viper.Get(k).(T)
	return r
}

// GetStringSlice reads a string slice key, working around viper's
// []interface{} decoding for TOML array values the way Get's type
// assertion cannot.
func GetStringSlice(k string) []string {
	mutex.RLock()
	defer mutex.RUnlock()
	return viper.GetStringSlice(k)
}

// GetDuration reads a duration key, accepting both a TOML duration
// string ("30s") and a flag-bound time.Duration value, the way Get's
// plain type assertion cannot.
func GetDuration(k string) time.Duration {
	mutex.RLock()
	defer mutex.RUnlock()
	return viper.GetDuration(k)
}

// UnmarshalKey decodes the sub-tree at k into a value of type T, for
// configuration shapes Get's type assertion cannot express, such as the
// [[test.per_target]] array of tables.
func UnmarshalKey[T any](k string) (T, error) {
	mutex.RLock()
	defer mutex.RUnlock()
	var v T
	err := viper.UnmarshalKey(k, &v)
	return v, err
}

// Reset is used mainly for testing purposes, to clean up the Viper
// instance.
func Reset() {
	mutex.Lock()
	defer mutex.Unlock()
	viper.Reset()
}
