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

// Package ui prints progress and run summaries to the console.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/sirseerhq/sirseer-logmigrate/internal/migrate"
	"github.com/sirseerhq/sirseer-logmigrate/internal/report"
)

// Printer writes human-readable output. It is safe for concurrent use.
type Printer struct {
	mu        sync.Mutex
	w         io.Writer
	verbose   bool
	tty       bool
	startTime time.Time

	good *color.Color
	warn *color.Color
	bad  *color.Color
	dim  *color.Color
}

// New creates a printer for w. Progress lines are only drawn when w is a
// terminal; colors are dropped when noColor is set or w is not a terminal.
func New(w io.Writer, verbose, noColor bool) *Printer {
	p := &Printer{
		w:         w,
		verbose:   verbose,
		tty:       IsTerminal(w),
		startTime: time.Now(),
		good:      color.New(color.FgGreen),
		warn:      color.New(color.FgYellow),
		bad:       color.New(color.FgRed, color.Bold),
		dim:       color.New(color.Faint),
	}
	if noColor || !p.tty {
		for _, c := range []*color.Color{p.good, p.warn, p.bad, p.dim} {
			c.DisableColor()
		}
	}
	return p
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Progress redraws the progress line, cut to the terminal width.
func (p *Printer) Progress(done, total int, path string) {
	if !p.tty || total == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	percent := float64(done) * 100 / float64(total)
	line := fmt.Sprintf("Processing: %d / %d files [%.1f%%] %s", done, total, percent, path)
	fmt.Fprintf(p.w, "\r\033[K%s", truncate(line, p.width()))
}

func (p *Printer) width() int {
	f, ok := p.w.(*os.File)
	if !ok {
		return 0
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	// Leave the last column free so the cursor never wraps.
	return w - 1
}

// truncate shortens value to at most width display columns. A width of zero
// or less means unlimited.
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}

// ClearProgress erases the progress line.
func (p *Printer) ClearProgress() {
	if !p.tty {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.w, "\r\033[K")
}

// File prints one line per processed file in verbose mode, plus its unknown
// and unrecoverable sites.
func (p *Printer) File(path string, res *migrate.FileResult, written bool, err error) {
	if !p.verbose {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tty {
		fmt.Fprint(p.w, "\r\033[K")
	}

	if err != nil {
		p.bad.Fprintf(p.w, "failed    %s: %v\n", path, err)
		return
	}
	switch {
	case written:
		p.good.Fprintf(p.w, "migrated  %s (%s)\n", path, describe(res.Counts))
	case res.Changed:
		p.warn.Fprintf(p.w, "pending   %s (%s)\n", path, describe(res.Counts))
	default:
		p.dim.Fprintf(p.w, "unchanged %s\n", path)
	}
	for _, u := range res.Unknown {
		p.warn.Fprintf(p.w, "  %s:%d: unknown severity %q\n", u.Path, u.Line, u.Token)
	}
	for _, pr := range res.Problems {
		p.bad.Fprintf(p.w, "  %s:%d: %s\n", pr.Path, pr.Line, pr.Reason)
	}
}

// Diff prints a unified diff with added and removed lines colored.
func (p *Printer) Diff(diff string) {
	if diff == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, line := range strings.SplitAfter(diff, "\n") {
		switch {
		case line == "":
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			p.dim.Fprint(p.w, line)
		case strings.HasPrefix(line, "+"):
			p.good.Fprint(p.w, line)
		case strings.HasPrefix(line, "-"):
			p.bad.Fprint(p.w, line)
		default:
			fmt.Fprint(p.w, line)
		}
	}
}

// Summary prints the run totals.
func (p *Printer) Summary(r *report.Report) {
	p.mu.Lock()
	defer p.mu.Unlock()

	res := r.Results
	verb := "changed"
	if r.Parameters.Preview {
		verb = "would change"
	}
	fmt.Fprintf(p.w, "Scanned %d files: %d %s", res.FilesScanned, res.FilesChanged, verb)
	if res.FilesFailed > 0 {
		p.bad.Fprintf(p.w, ", %d failed", res.FilesFailed)
	}
	fmt.Fprintf(p.w, " in %s\n", time.Since(p.startTime).Round(time.Millisecond))

	c := res.Counts
	fmt.Fprintf(p.w, "  migrated %d, repaired %d, already canonical %d\n",
		c.Migrated, c.Repaired, c.AlreadyCanonical)
	if c.SkippedUnknown > 0 || c.SkippedUnrecoverable > 0 {
		p.warn.Fprintf(p.w, "  skipped %d with unknown severity, %d unrecoverable\n",
			c.SkippedUnknown, c.SkippedUnrecoverable)
	}
	for _, e := range r.Errors {
		p.bad.Fprintf(p.w, "  %s: %s\n", e.Path, e.Reason)
	}
}

func describe(c migrate.Counts) string {
	parts := []string{fmt.Sprintf("%d migrated", c.Migrated)}
	if c.Repaired > 0 {
		parts = append(parts, fmt.Sprintf("%d repaired", c.Repaired))
	}
	if n := c.SkippedUnknown + c.SkippedUnrecoverable; n > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", n))
	}
	return strings.Join(parts, ", ")
}
