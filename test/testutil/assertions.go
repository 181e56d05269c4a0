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

package testutil

import (
	"bufio"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirseerhq/sirseer-logmigrate/internal/report"
)

// AssertNDJSONOutput validates that a file contains valid NDJSON records and
// that the number of records of each kind matches want.
func AssertNDJSONOutput(t *testing.T, filePath string, want map[string]int) {
	t.Helper()

	file, err := os.Open(filePath)
	if err != nil {
		t.Fatalf("Failed to open output file: %v", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	got := make(map[string]int)
	line := 0

	for scanner.Scan() {
		line++
		text := scanner.Text()
		if text == "" {
			continue
		}

		var rec map[string]interface{}
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			t.Errorf("Line %d: invalid JSON: %v", line, err)
			continue
		}
		kind, ok := rec["kind"].(string)
		if !ok {
			t.Errorf("Line %d: missing required field 'kind'", line)
			continue
		}
		got[kind]++
	}

	if err := scanner.Err(); err != nil {
		t.Fatalf("Error reading file: %v", err)
	}

	for kind, n := range want {
		if got[kind] != n {
			t.Errorf("Expected %d %q records, got %d", n, kind, got[kind])
		}
	}
}

// LoadReport reads a run report or fails the test
func LoadReport(t *testing.T, path string) *report.Report {
	t.Helper()

	r, err := report.LoadReport(path)
	if err != nil {
		t.Fatalf("Failed to load report: %v", err)
	}
	if r.SchemaVersion != report.SchemaVersion {
		t.Errorf("SchemaVersion = %q, want %q", r.SchemaVersion, report.SchemaVersion)
	}
	return r
}

// AssertNoLegacyCalls checks that no source under dir still contains a call
// to macro, apart from lines containing one of the allowed substrings.
func AssertNoLegacyCalls(t *testing.T, dir, macro string, allowed ...string) {
	t.Helper()

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
	lines:
		for i, line := range strings.Split(string(data), "\n") {
			if !strings.Contains(line, macro+"(") {
				continue
			}
			for _, a := range allowed {
				if strings.Contains(line, a) {
					continue lines
				}
			}
			t.Errorf("%s:%d: legacy call remains: %s", path, i+1, strings.TrimSpace(line))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to walk %s: %v", dir, err)
	}
}
