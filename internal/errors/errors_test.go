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

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		want     bool
	}{
		{
			name:     "direct unknown severity error",
			err:      ErrUnknownSeverity,
			sentinel: ErrUnknownSeverity,
			want:     true,
		},
		{
			name:     "wrapped io error",
			err:      fmt.Errorf("reading src/x.cpp: %w", ErrIOFailure),
			sentinel: ErrIOFailure,
			want:     true,
		},
		{
			name:     "different error type",
			err:      ErrInvalidConfig,
			sentinel: ErrIOFailure,
			want:     false,
		},
		{
			name:     "site error unwraps",
			err:      &SiteError{Path: "a.cpp", Line: 3, Err: ErrUnbalancedArgumentList},
			sentinel: ErrUnbalancedArgumentList,
			want:     true,
		},
		{
			name:     "wrapped site error",
			err:      fmt.Errorf("migrate: %w", &SiteError{Path: "a.cpp", Line: 3, Token: "critical", Err: ErrUnknownSeverity}),
			sentinel: ErrUnknownSeverity,
			want:     true,
		},
		{
			name:     "modified is also an io failure when wrapped so",
			err:      fmt.Errorf("%w: %w", ErrIOFailure, ErrModified),
			sentinel: ErrModified,
			want:     true,
		},
		{
			name:     "nil error",
			err:      nil,
			sentinel: ErrIOFailure,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.sentinel)
			if got != tt.want {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.sentinel, got, tt.want)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrUnknownSeverity, "unknown log severity"},
		{ErrUnbalancedArgumentList, "unbalanced argument list"},
		{ErrIOFailure, "file i/o failed"},
		{ErrInvariantViolation, "call site invariant violated"},
		{ErrInvalidConfig, "invalid configuration"},
		{ErrChangesPending, "unmigrated call sites remain"},
		{&SiteError{Path: "a.cpp", Line: 7, Token: "critical", Err: ErrUnknownSeverity}, `a.cpp:7: "critical": unknown log severity`},
		{&SiteError{Path: "a.cpp", Line: 9, Err: ErrUnbalancedArgumentList}, "a.cpp:9: unbalanced argument list"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
