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

// Package report provides functionality for tracking and persisting the
// outcome of a migration run. It records per-file counts, unknown-severity
// call sites, unrepairable call sites and file errors.
//
// The report serves several purposes:
//   - Lists every call site a human still has to look at
//   - Records the parameters of the run for troubleshooting
//   - Gives scripts a stable JSON or YAML document to check
//
// Reports are written atomically, like source files.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	lmerrors "github.com/sirseerhq/sirseer-logmigrate/internal/errors"
	"github.com/sirseerhq/sirseer-logmigrate/internal/migrate"
)

const (
	// SchemaVersion identifies the layout of Report.
	SchemaVersion = "logmigrate-report-v1"
)

// Format selects the encoding of a saved report.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a report format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: unknown report format %q (want json or yaml)", lmerrors.ErrInvalidConfig, s)
}

// Tracker collects results while files are processed. It is safe for
// concurrent use.
type Tracker struct {
	mu        sync.Mutex
	startTime time.Time
	files     []FileReport
	unknown   []migrate.UnknownSite
	problems  []migrate.SiteProblem
	errors    []FileError
	counts    migrate.Counts
}

// New creates a new tracker and initializes it with the current time.
func New() *Tracker {
	return &Tracker{
		startTime: time.Now(),
	}
}

// RecordFile adds the result of one file. written reports whether the new
// text was saved to disk.
func (t *Tracker) RecordFile(res *migrate.FileResult, written bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.files = append(t.files, FileReport{
		Path:    res.Path,
		Changed: res.Changed,
		Written: written,
		Counts:  res.Counts,
	})
	t.counts.Add(res.Counts)
	t.unknown = append(t.unknown, res.Unknown...)
	t.problems = append(t.problems, res.Problems...)
}

// RecordError adds a file that failed. reason is a short classification of err.
func (t *Tracker) RecordError(path, reason string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.errors = append(t.errors, FileError{Path: path, Reason: reason, Error: err.Error()})
}

// Counts returns the totals recorded so far.
func (t *Tracker) Counts() migrate.Counts {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts
}

// Generate creates the report for everything recorded. Entries are sorted by
// path and line so the output does not depend on processing order.
func (t *Tracker) Generate(toolVersion string, params RunParams) *Report {
	t.mu.Lock()
	defer t.mu.Unlock()

	completedAt := time.Now()
	duration := completedAt.Sub(t.startTime)

	r := &Report{
		ToolVersion:   toolVersion,
		SchemaVersion: SchemaVersion,
		RunID:         fmt.Sprintf("%s-%d", runType(params.Preview), t.startTime.Unix()),
		Parameters:    params,
		Files:         append([]FileReport(nil), t.files...),
		Unknown:       append([]migrate.UnknownSite(nil), t.unknown...),
		Problems:      append([]migrate.SiteProblem(nil), t.problems...),
		Errors:        append([]FileError(nil), t.errors...),
	}
	sort.Slice(r.Files, func(i, j int) bool { return r.Files[i].Path < r.Files[j].Path })
	sort.SliceStable(r.Unknown, func(i, j int) bool {
		a, b := r.Unknown[i], r.Unknown[j]
		return a.Path < b.Path || a.Path == b.Path && a.Line < b.Line
	})
	sort.SliceStable(r.Problems, func(i, j int) bool {
		a, b := r.Problems[i], r.Problems[j]
		return a.Path < b.Path || a.Path == b.Path && a.Line < b.Line
	})
	sort.Slice(r.Errors, func(i, j int) bool { return r.Errors[i].Path < r.Errors[j].Path })

	r.Results = RunResults{
		FilesScanned: len(t.files) + len(t.errors),
		FilesFailed:  len(t.errors),
		Counts:       t.counts,
		Duration:     duration.String(),
		StartedAt:    t.startTime,
		CompletedAt:  completedAt,
	}
	for _, f := range t.files {
		if f.Changed {
			r.Results.FilesChanged++
		}
	}
	return r
}

// SaveReport writes a report to path in the given format. The file is
// written atomically using a temporary file and rename.
func SaveReport(r *Report, path string, format Format) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	// Write to temporary file first for atomicity
	tmpFile := path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}

	if err := WriteReport(r, file, format); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to write report: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to close report file: %w", err)
	}

	// Atomically rename to final location
	if err := os.Rename(tmpFile, path); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to save report file: %w", err)
	}

	return nil
}

// WriteReport serializes a report to w. JSON output is indented for
// readability.
func WriteReport(r *Report, w io.Writer, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			_ = enc.Close()
			return err
		}
		return enc.Close()
	default:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(r)
	}
}

// LoadReport reads a report written by SaveReport. The format is taken from
// the file extension.
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	var r Report
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &r)
	default:
		err = json.Unmarshal(data, &r)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &r, nil
}

func runType(preview bool) string {
	if preview {
		return "preview"
	}
	return "migrate"
}
