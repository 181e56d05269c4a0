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

package edit

import (
	"errors"
	"strings"
	"testing"
)

func TestBufferBytes(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		edits func(b *Buffer)
		want  string
	}{
		{
			name:  "no edits",
			text:  "hello world",
			edits: func(b *Buffer) {},
			want:  "hello world",
		},
		{
			name: "replace keeps surrounding bytes",
			text: "a LOG(x); b",
			edits: func(b *Buffer) {
				b.Replace(2, 9, "NEW(y);")
			},
			want: "a NEW(y); b",
		},
		{
			name: "edits queued in any order",
			text: "0123456789",
			edits: func(b *Buffer) {
				b.Replace(1, 2, "one")
				b.Replace(7, 9, "")
				b.Replace(5, 5, "+")
			},
			want: "0one234+569",
		},
		{
			name: "adjacent ranges",
			text: "aabb",
			edits: func(b *Buffer) {
				b.Replace(0, 2, "x")
				b.Replace(2, 4, "y")
			},
			want: "xy",
		},
		{
			name: "delete at end",
			text: "abc;;",
			edits: func(b *Buffer) {
				b.Replace(4, 5, "")
			},
			want: "abc;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			old := []byte(tt.text)
			b := NewBuffer(old)
			tt.edits(b)
			got, err := b.Bytes()
			if err != nil {
				t.Fatalf("Bytes() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Bytes() = %q, want %q", got, tt.want)
			}
			if string(old) != tt.text {
				t.Errorf("original text modified: %q", old)
			}
		})
	}
}

func TestBufferErrors(t *testing.T) {
	tests := []struct {
		name  string
		edits func(b *Buffer)
		want  error
	}{
		{
			name: "overlap",
			edits: func(b *Buffer) {
				b.Replace(0, 5, "x")
				b.Replace(3, 7, "y")
			},
			want: ErrOverlap,
		},
		{
			name: "past end",
			edits: func(b *Buffer) {
				b.Replace(8, 20, "x")
			},
			want: ErrRange,
		},
		{
			name: "inverted",
			edits: func(b *Buffer) {
				b.Replace(4, 2, "x")
			},
			want: ErrRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuffer([]byte("0123456789"))
			tt.edits(b)
			if _, err := b.Bytes(); !errors.Is(err, tt.want) {
				t.Errorf("Bytes() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDiff(t *testing.T) {
	old := []byte("a\nOPENAUTO_LOG(info) << \"x\";\nb\n")
	new := []byte("a\nOPENAUTO_LOG_INFO(GENERAL, \"x\");\nb\n")

	d, err := Diff("src/x.cpp", old, new)
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}
	for _, want := range []string{
		"--- a/src/x.cpp",
		"+++ b/src/x.cpp",
		"-OPENAUTO_LOG(info) << \"x\";",
		"+OPENAUTO_LOG_INFO(GENERAL, \"x\");",
	} {
		if !strings.Contains(d, want) {
			t.Errorf("Diff() missing %q in:\n%s", want, d)
		}
	}

	d, err = Diff("same.cpp", old, old)
	if err != nil || d != "" {
		t.Errorf("Diff() of identical input = %q, %v; want empty", d, err)
	}
}
