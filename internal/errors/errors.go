// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package errors defines sentinel errors for consistent error handling across the application.
// These errors map to specific exit codes in the CLI for proper scripting support.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for consistent error handling and exit code mapping
var (
	// ErrUnknownSeverity indicates a legacy call whose severity token is not
	// in the severity table. The call site is left untouched and reported.
	ErrUnknownSeverity = errors.New("unknown log severity")

	// ErrUnbalancedArgumentList indicates parentheses or quotes that never
	// close, even after repair. The call site is left untouched and reported.
	ErrUnbalancedArgumentList = errors.New("unbalanced argument list")

	// ErrIOFailure indicates a file could not be read or written.
	// The file is skipped and the run continues. Maps to exit code 3.
	ErrIOFailure = errors.New("file i/o failed")

	// ErrInvariantViolation indicates a structurally impossible call site
	// (empty or overlapping range). Processing of that file stops.
	ErrInvariantViolation = errors.New("call site invariant violated")

	// ErrInvalidConfig indicates a configuration value that cannot be used.
	// Maps to exit code 2.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrModified indicates a file that changed on disk between being read
	// and being written back. The file is skipped.
	ErrModified = errors.New("file modified during run")

	// ErrChangesPending indicates that a check run found call sites that
	// would be rewritten. Maps to exit code 4.
	ErrChangesPending = errors.New("unmigrated call sites remain")
)

// SiteError describes a problem with a single call site. It wraps one of the
// sentinel errors above so callers can match it with errors.Is.
type SiteError struct {
	Path  string
	Line  int
	Token string
	Err   error
}

func (e *SiteError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("%s:%d: %q: %v", e.Path, e.Line, e.Token, e.Err)
	}
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *SiteError) Unwrap() error {
	return e.Err
}
