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

// Package report types define the structures recorded for a migration run.
// A report is an audit trail of what a run looked at, what it changed, and
// every call site it had to leave alone.
package report

import (
	"time"

	"github.com/sirseerhq/sirseer-logmigrate/internal/migrate"
)

// Report is the complete record of a single migration run.
type Report struct {
	ToolVersion   string                `json:"tool_version" yaml:"tool_version"`
	SchemaVersion string                `json:"schema_version" yaml:"schema_version"`
	RunID         string                `json:"run_id" yaml:"run_id"`
	Parameters    RunParams             `json:"parameters" yaml:"parameters"`
	Results       RunResults            `json:"results" yaml:"results"`
	Files         []FileReport          `json:"files" yaml:"files"`
	Unknown       []migrate.UnknownSite `json:"unknown,omitempty" yaml:"unknown,omitempty"`
	Problems      []migrate.SiteProblem `json:"problems,omitempty" yaml:"problems,omitempty"`
	Errors        []FileError           `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// RunParams captures the settings a run was started with, so a report can be
// reproduced.
type RunParams struct {
	Roots        []string `json:"roots" yaml:"roots"`
	Preview      bool     `json:"preview" yaml:"preview"`
	Jobs         int      `json:"jobs" yaml:"jobs"`
	LegacyMacro  string   `json:"legacy_macro" yaml:"legacy_macro"`
	TargetPrefix string   `json:"target_prefix" yaml:"target_prefix"`
	StripTags    bool     `json:"strip_tags" yaml:"strip_tags"`
	Extensions   []string `json:"extensions" yaml:"extensions"`
}

// RunResults holds the totals of a run.
type RunResults struct {
	FilesScanned int            `json:"files_scanned" yaml:"files_scanned"`
	FilesChanged int            `json:"files_changed" yaml:"files_changed"`
	FilesFailed  int            `json:"files_failed" yaml:"files_failed"`
	Counts       migrate.Counts `json:"counts" yaml:"counts"`
	Duration     string         `json:"duration" yaml:"duration"`
	StartedAt    time.Time      `json:"started_at" yaml:"started_at"`
	CompletedAt  time.Time      `json:"completed_at" yaml:"completed_at"`
}

// FileReport is the per-file line of a report.
type FileReport struct {
	Path    string         `json:"path" yaml:"path"`
	Changed bool           `json:"changed" yaml:"changed"`
	Written bool           `json:"written" yaml:"written"`
	Counts  migrate.Counts `json:"counts" yaml:"counts"`
}

// FileError records a file that could not be processed.
type FileError struct {
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
	Error  string `json:"error" yaml:"error"`
}
