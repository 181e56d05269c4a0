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

// Package edit applies non-overlapping byte-range replacements to a file text.
package edit

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
)

// ErrOverlap is returned by Bytes when two queued edits overlap.
var ErrOverlap = errors.New("overlapping edits")

// ErrRange is returned by Bytes when an edit lies outside the text.
var ErrRange = errors.New("edit out of range")

type edit struct {
	start int
	end   int
	new   string
}

// A Buffer is a queue of edits to apply to a given byte slice.
// The original text is never modified.
type Buffer struct {
	old []byte
	q   []edit
}

// NewBuffer returns a new buffer to accumulate edits for an initial text.
func NewBuffer(old []byte) *Buffer {
	return &Buffer{old: old}
}

// Replace replaces old[start:end] with new.
func (b *Buffer) Replace(start, end int, new string) {
	b.q = append(b.q, edit{start, end, new})
}

// Bytes returns a new byte slice containing the original text
// with the queued edits applied. Edits are spliced from the end of the
// text towards the start so earlier offsets stay valid.
func (b *Buffer) Bytes() ([]byte, error) {
	q := make([]edit, len(b.q))
	copy(q, b.q)
	sort.SliceStable(q, func(i, j int) bool {
		if q[i].start != q[j].start {
			return q[i].start > q[j].start
		}
		return q[i].end > q[j].end
	})

	for i, e := range q {
		if e.start < 0 || e.start > e.end || e.end > len(b.old) {
			return nil, fmt.Errorf("%w: [%d,%d) in text of %d bytes", ErrRange, e.start, e.end, len(b.old))
		}
		if i > 0 {
			next := q[i-1]
			if e.end > next.start || (e.start == next.start && e.end == next.end && e.start == e.end) {
				return nil, fmt.Errorf("%w: [%d,%d) and [%d,%d)", ErrOverlap, e.start, e.end, next.start, next.end)
			}
		}
	}

	out := bytes.Clone(b.old)
	for _, e := range q {
		tail := append([]byte(e.new), out[e.end:]...)
		out = append(out[:e.start], tail...)
	}
	return out, nil
}
