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

package output

import (
	"github.com/sirseerhq/sirseer-logmigrate/internal/migrate"
)

// Record kinds.
const (
	KindFile    = "file"
	KindUnknown = "unknown"
	KindProblem = "problem"
	KindError   = "error"
	KindSummary = "summary"
)

// Record is the envelope written on every NDJSON line. Only the fields that
// belong to Kind are set.
type Record struct {
	Kind    string          `json:"kind"`
	Path    string          `json:"path,omitempty"`
	Line    int             `json:"line,omitempty"`
	Changed *bool           `json:"changed,omitempty"`
	Written *bool           `json:"written,omitempty"`
	Counts  *migrate.Counts `json:"counts,omitempty"`
	Token   string          `json:"token,omitempty"`
	Reason  string          `json:"reason,omitempty"`
	Text    string          `json:"text,omitempty"`
	Error   string          `json:"error,omitempty"`
	Files   int             `json:"files,omitempty"`
}

// FileRecord describes the outcome of one file.
func FileRecord(res *migrate.FileResult, written bool) Record {
	changed := res.Changed
	counts := res.Counts
	return Record{
		Kind:    KindFile,
		Path:    res.Path,
		Changed: &changed,
		Written: &written,
		Counts:  &counts,
	}
}

// SiteRecords returns one record per unknown and unrecoverable site of res,
// in source order within each kind.
func SiteRecords(res *migrate.FileResult) []Record {
	records := make([]Record, 0, len(res.Unknown)+len(res.Problems))
	for _, u := range res.Unknown {
		records = append(records, Record{
			Kind:  KindUnknown,
			Path:  u.Path,
			Line:  u.Line,
			Token: u.Token,
			Text:  u.Text,
		})
	}
	for _, p := range res.Problems {
		records = append(records, Record{
			Kind:   KindProblem,
			Path:   p.Path,
			Line:   p.Line,
			Reason: p.Reason,
			Text:   p.Text,
		})
	}
	return records
}

// ErrorRecord describes a file that could not be processed.
func ErrorRecord(path, reason string, err error) Record {
	r := Record{Kind: KindError, Path: path, Reason: reason}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// SummaryRecord closes a stream with the run totals.
func SummaryRecord(files int, counts migrate.Counts) Record {
	return Record{Kind: KindSummary, Files: files, Counts: &counts}
}
