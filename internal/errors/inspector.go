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
	"io/fs"
	"strings"
	"syscall"
)

// Inspector provides methods to classify file system errors so per-file
// failures can be reported with a readable reason.
type Inspector interface {
	// IsPermissionError returns true if access to the file was denied.
	IsPermissionError(err error) bool

	// IsNotExistError returns true if the file or directory does not exist.
	IsNotExistError(err error) bool

	// IsNoSpaceError returns true if the device ran out of space.
	IsNoSpaceError(err error) bool

	// IsReadOnlyError returns true if the file system is mounted read-only.
	IsReadOnlyError(err error) bool

	// IsModifiedError returns true if the file changed during the run.
	IsModifiedError(err error) bool
}

// FSErrorInspector implements the Inspector interface by matching error text.
type FSErrorInspector struct{}

// NewInspector creates a new FSErrorInspector.
func NewInspector() Inspector {
	return &FSErrorInspector{}
}

// IsPermissionError checks if the error is a permission error.
func (i *FSErrorInspector) IsPermissionError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "permission denied") ||
		strings.Contains(errStr, "access is denied") ||
		strings.Contains(errStr, "operation not permitted")
}

// IsNotExistError checks if the error is a missing file error.
func (i *FSErrorInspector) IsNotExistError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "no such file or directory") ||
		strings.Contains(errStr, "cannot find the file") ||
		strings.Contains(errStr, "file does not exist")
}

// IsNoSpaceError checks if the error is a disk full error.
func (i *FSErrorInspector) IsNoSpaceError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "no space left on device") ||
		strings.Contains(errStr, "disk quota exceeded")
}

// IsReadOnlyError checks if the error is a read-only file system error.
func (i *FSErrorInspector) IsReadOnlyError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "read-only file system")
}

// IsModifiedError checks if the error reports a concurrent modification.
func (i *FSErrorInspector) IsModifiedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "modified during run")
}

// ErrorChainInspector wraps a base inspector and adds support for checking errors
// in the error chain using errors.Is.
type ErrorChainInspector struct {
	base Inspector
}

// NewErrorChainInspector creates a new ErrorChainInspector that checks both
// the error chain and falls back to string-based inspection.
func NewErrorChainInspector(base Inspector) Inspector {
	return &ErrorChainInspector{base: base}
}

// IsPermissionError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsPermissionError(err error) bool {
	if errors.Is(err, fs.ErrPermission) {
		return true
	}
	return e.base.IsPermissionError(err)
}

// IsNotExistError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsNotExistError(err error) bool {
	if errors.Is(err, fs.ErrNotExist) {
		return true
	}
	return e.base.IsNotExistError(err)
}

// IsNoSpaceError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsNoSpaceError(err error) bool {
	if errors.Is(err, syscall.ENOSPC) {
		return true
	}
	return e.base.IsNoSpaceError(err)
}

// IsReadOnlyError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsReadOnlyError(err error) bool {
	if errors.Is(err, syscall.EROFS) {
		return true
	}
	return e.base.IsReadOnlyError(err)
}

// IsModifiedError checks the error chain first, then falls back to base inspector.
func (e *ErrorChainInspector) IsModifiedError(err error) bool {
	if errors.Is(err, ErrModified) {
		return true
	}
	return e.base.IsModifiedError(err)
}

// Reason returns a short, stable description of a per-file error for reports.
func Reason(in Inspector, err error) string {
	switch {
	case err == nil:
		return ""
	case in.IsModifiedError(err):
		return "modified during run"
	case in.IsPermissionError(err):
		return "permission denied"
	case in.IsNotExistError(err):
		return "not found"
	case in.IsNoSpaceError(err):
		return "no space left"
	case in.IsReadOnlyError(err):
		return "read-only file system"
	case errors.Is(err, ErrInvariantViolation):
		return "invariant violation"
	default:
		return "i/o error"
	}
}
