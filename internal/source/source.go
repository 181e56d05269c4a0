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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	lmerrors "github.com/sirseerhq/sirseer-logmigrate/internal/errors"
)

// Discover returns the sorted, de-duplicated list of source files under
// roots. Directories are walked recursively, skipping excluded directory
// names. A root naming a file is returned as is, whatever its extension.
func Discover(roots []string, filter Filter) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", lmerrors.ErrIOFailure, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && filter.excluded(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() && filter.accepts(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("%w: walking %s: %w", lmerrors.ErrIOFailure, root, err)
		}
	}

	slices.Sort(paths)
	return paths, nil
}

func (f Filter) accepts(path string) bool {
	ext := filepath.Ext(path)
	for _, want := range f.Extensions {
		if strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

func (f Filter) excluded(name string) bool {
	return slices.Contains(f.ExcludeDirs, name)
}

// Read loads a file and records its checksum and permissions.
func Read(path string) (*Snapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", lmerrors.ErrIOFailure, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", lmerrors.ErrIOFailure, err)
	}
	return &Snapshot{
		Path:     path,
		Data:     data,
		Checksum: Checksum(data),
		Mode:     info.Mode().Perm(),
	}, nil
}

// WriteAtomic replaces the file read into snap with data.
// The file is only replaced if its content still matches snap.
func WriteAtomic(snap *Snapshot, data []byte) error {
	current, err := os.ReadFile(snap.Path)
	if err != nil {
		return fmt.Errorf("%w: %w", lmerrors.ErrIOFailure, err)
	}
	if Checksum(current) != snap.Checksum {
		return fmt.Errorf("%w: %w: %s", lmerrors.ErrIOFailure, ErrModified, snap.Path)
	}

	// Create the temporary file next to the target so the rename stays on
	// one filesystem.
	dir, base := filepath.Split(snap.Path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".logmigrate-*")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file: %w", lmerrors.ErrIOFailure, err)
	}
	tempFile := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tempFile)
		return fmt.Errorf("%w: failed to write temp file: %w", lmerrors.ErrIOFailure, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tempFile)
		return fmt.Errorf("%w: failed to sync temp file: %w", lmerrors.ErrIOFailure, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("%w: failed to close temp file: %w", lmerrors.ErrIOFailure, err)
	}
	if err := os.Chmod(tempFile, snap.Mode); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("%w: failed to set permissions: %w", lmerrors.ErrIOFailure, err)
	}

	// Atomic rename
	if err := os.Rename(tempFile, snap.Path); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("%w: failed to rename temp file: %w", lmerrors.ErrIOFailure, err)
	}

	snap.Data = data
	snap.Checksum = Checksum(data)
	return nil
}

// Checksum returns the hex SHA256 of data.
func Checksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
