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
	"io/fs"
	"os"
	"syscall"
	"testing"
)

func TestFSErrorInspector(t *testing.T) {
	inspector := NewInspector()

	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"permission denied", errors.New("open x.cpp: permission denied"), inspector.IsPermissionError, true},
		{"windows access denied", errors.New("Access is denied."), inspector.IsPermissionError, true},
		{"not exist", errors.New("open x.cpp: no such file or directory"), inspector.IsNotExistError, true},
		{"disk full", errors.New("write: no space left on device"), inspector.IsNoSpaceError, true},
		{"read-only", errors.New("open: read-only file system"), inspector.IsReadOnlyError, true},
		{"modified", errors.New("x.cpp: file modified during run"), inspector.IsModifiedError, true},
		{"unrelated", errors.New("something went wrong"), inspector.IsPermissionError, false},
		{"nil permission", nil, inspector.IsPermissionError, false},
		{"nil modified", nil, inspector.IsModifiedError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.err); got != tt.want {
				t.Errorf("check(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrorChainInspector(t *testing.T) {
	inspector := NewErrorChainInspector(NewInspector())

	pathErr := &fs.PathError{Op: "open", Path: "x.cpp", Err: syscall.ENOSPC}
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"fs permission", fmt.Errorf("read: %w", fs.ErrPermission), inspector.IsPermissionError},
		{"os not exist", fmt.Errorf("read: %w", os.ErrNotExist), inspector.IsNotExistError},
		{"errno no space", pathErr, inspector.IsNoSpaceError},
		{"errno read-only", &fs.PathError{Op: "rename", Path: "x.cpp", Err: syscall.EROFS}, inspector.IsReadOnlyError},
		{"modified sentinel", fmt.Errorf("%w: %w", ErrIOFailure, ErrModified), inspector.IsModifiedError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.check(tt.err) {
				t.Errorf("check(%v) = false, want true", tt.err)
			}
		})
	}
}

func TestReason(t *testing.T) {
	inspector := NewErrorChainInspector(NewInspector())

	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("%w: %w", ErrIOFailure, ErrModified), "modified during run"},
		{fmt.Errorf("%w: %w", ErrIOFailure, fs.ErrPermission), "permission denied"},
		{fmt.Errorf("%w: %w", ErrIOFailure, fs.ErrNotExist), "not found"},
		{fmt.Errorf("x.cpp: %w", ErrInvariantViolation), "invariant violation"},
		{errors.New("short write"), "i/o error"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Reason(inspector, tt.err); got != tt.want {
				t.Errorf("Reason(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
