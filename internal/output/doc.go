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

// Package output streams per-file migration records as NDJSON (Newline
// Delimited JSON). Each line is one Record envelope, so a consumer can follow
// a long run with line-oriented tools while it is still in progress.
//
// The primary type is Writer, which is safe for concurrent use and never
// accumulates records in memory.
//
// Example usage:
//
//	w, err := output.Open("-") // "-" is stdout
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
//	if err := w.Write(output.FileRecord(res, written)); err != nil {
//	    return err
//	}
package output
