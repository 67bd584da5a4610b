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

// Package execution carries a campaign result past a configured quality
// gate back to main as a typed exit code, so `mewt run` can be wired into
// CI without a wrapper script parsing its table output.
package execution

// ErrorType is the type of the error that can generate a specific exit status.
type ErrorType int

// String produces the human readable sentence for the ErrorType.
func (e ErrorType) String() string {
	switch e {
	case CatchRateThreshold:
		return "below catch-rate threshold"
	case UntestedRatioThreshold:
		return "too many mutants left untested"
	}
	panic("this should not happen")
}

const (
	// CatchRateThreshold is raised when a campaign's overall catch rate
	// (caught / eligible) is below the configured --min-catch-rate.
	CatchRateThreshold ErrorType = iota

	// UntestedRatioThreshold is raised when too large a share of a
	// campaign's mutants ended up Skipped, Timeout, or BuildFail rather
	// than reaching a conclusive TestFail/Uncaught verdict, which would
	// make the catch rate above untrustworthy.
	UntestedRatioThreshold
)

var errorMapping = map[ErrorType]int{
	CatchRateThreshold:     10,
	UntestedRatioThreshold: 11,
}

// ExitError is a special Error that is raised when special conditions
// require mewt to exit with a specific errorCode. If this error is
// returned and/or properly wrapped, it will reach the main function,
// which sets the exitCode as the exit code of the process.
type ExitError struct {
	errorType ErrorType
	exitCode  int
}

// NewExitErr instantiates a new ExitError.
func NewExitErr(et ErrorType) *ExitError {
	exitCode := errorMapping[et]

	return &ExitError{exitCode: exitCode, errorType: et}
}

// Error is the implementation of the Error interface and returns
// the ErrorType human readable message.
func (e *ExitError) Error() string {
	return e.errorType.String()
}

// ExitCode returns the exit code associated with the specific ErrorType.
func (e *ExitError) ExitCode() int {
	return e.exitCode
}
