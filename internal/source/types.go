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

package source

import (
	"io/fs"

	lmerrors "github.com/sirseerhq/sirseer-logmigrate/internal/errors"
)

// ErrModified indicates that a file changed on disk between Read and
// WriteAtomic.
var ErrModified = lmerrors.ErrModified

// Filter selects which files Discover returns.
type Filter struct {
	// Extensions lists the accepted file extensions, including the dot.
	// Matching is case-insensitive.
	Extensions []string

	// ExcludeDirs lists directory names that are never descended into.
	ExcludeDirs []string
}

// DefaultFilter returns the filter used when no configuration is given.
func DefaultFilter() Filter {
	return Filter{
		Extensions:  []string{".cpp", ".c", ".cc", ".cxx", ".hpp", ".h"},
		ExcludeDirs: []string{"build", ".git", "cmake"},
	}
}

// Snapshot is the content of a source file as read at one point in time.
type Snapshot struct {
	Path     string
	Data     []byte
	Checksum string
	Mode     fs.FileMode
}
