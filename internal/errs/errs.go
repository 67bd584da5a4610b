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

// Package errs implements the error taxonomy of SPEC_FULL.md §7: a small
// set of abstract kinds with a propagation policy split between
// per-mutant failures (recorded and continued) and per-campaign failures
// (surfaced and the command aborts).
package errs

import "fmt"

// Kind is one of the abstract error categories the engine distinguishes.
type Kind int

const (
	// InvalidInput: unreadable target, unparseable glob, malformed mutant
	// id list. Surfaced to the user; aborts the current command.
	InvalidInput Kind = iota
	// NotFound: referenced target/mutant absent. Surfaced per record
	// without aborting the batch.
	NotFound
	// StorageError: database connect/migrate/query failure. Surfaced;
	// aborts.
	StorageError
	// DecodeError: malformed hex hash, malformed RFC-3339 timestamp,
	// unknown status string in the database. Surfaced; aborts.
	DecodeError
	// ExecutionError: child-process spawn failure. Recorded as a
	// BuildFail outcome for that mutant; the batch continues.
	ExecutionError
	// Timeout: deadline expired. Recorded as Timeout; the batch
	// continues; the mutant remains retryable.
	Timeout
	// Custom: catch-all for unexpected conditions from collaborators.
	Custom
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "InvalidInput"
	case NotFound:
		return "NotFound"
	case StorageError:
		return "StorageError"
	case DecodeError:
		return "DecodeError"
	case ExecutionError:
		return "ExecutionError"
	case Timeout:
		return "Timeout"
	default:
		return "Custom"
	}
}

// Error wraps a cause with a Kind and, where relevant, the target or
// mutant id it concerns.
type Error struct {
	Kind     Kind
	Cause    error
	TargetID int64
	MutantID int64
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Wrap builds an *Error of the given kind around cause.
func Wrap(k Kind, cause error) *Error {
	return &Error{Kind: k, Cause: cause}
}

// WrapMutant builds an *Error attributing it to a specific mutant.
func WrapMutant(k Kind, mutantID int64, cause error) *Error {
	return &Error{Kind: k, Cause: cause, MutantID: mutantID}
}

// Aborts reports whether an error of this kind should abort the whole
// command rather than being recorded per-record and continued.
func (k Kind) Aborts() bool {
	switch k {
	case ExecutionError, Timeout, NotFound:
		return false
	default:
		return true
	}
}
