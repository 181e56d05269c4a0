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

// Package runner applies the migration engine to a set of files in parallel.
// A failure in one file is recorded and never stops the others; only
// cancellation or a broken output stream ends a run early.
package runner

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/sirseerhq/sirseer-logmigrate/internal/edit"
	lmerrors "github.com/sirseerhq/sirseer-logmigrate/internal/errors"
	"github.com/sirseerhq/sirseer-logmigrate/internal/migrate"
	"github.com/sirseerhq/sirseer-logmigrate/internal/output"
	"github.com/sirseerhq/sirseer-logmigrate/internal/report"
	"github.com/sirseerhq/sirseer-logmigrate/internal/source"
)

// Options controls a run.
type Options struct {
	// Jobs bounds the number of files processed at once. Zero means GOMAXPROCS.
	Jobs int
	// Preview computes results and diffs without writing anything.
	Preview bool
	// Diff also fills FileResult.Diff for files that are written.
	Diff bool
	// Sink, if set, receives one NDJSON record per file and per reported site.
	Sink output.OutputWriter
	// Progress, if set, is called after each file with the number done so far
	// and the path just finished.
	Progress func(done, total int, path string)
	// Inspector classifies per-file errors. Defaults to an ErrorChainInspector.
	Inspector lmerrors.Inspector
}

// Result is the outcome for one path. Exactly one of File and Err is set.
type Result struct {
	Path    string
	File    *migrate.FileResult
	Written bool
	Err     error
}

// Runner ties an engine to a report tracker.
type Runner struct {
	engine  *migrate.Engine
	tracker *report.Tracker
	opts    Options
}

// New creates a runner. tracker receives every file outcome.
func New(engine *migrate.Engine, tracker *report.Tracker, opts Options) *Runner {
	if opts.Inspector == nil {
		opts.Inspector = lmerrors.NewErrorChainInspector(lmerrors.NewInspector())
	}
	return &Runner{engine: engine, tracker: tracker, opts: opts}
}

// Jobs returns the effective parallelism for n files.
func (r *Runner) Jobs(n int) int {
	jobs := r.opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return max(1, min(jobs, n))
}

// Run processes paths and returns one result per path, in the same order.
// The returned error is non-nil only if ctx was cancelled or the sink failed.
func (r *Runner) Run(ctx context.Context, paths []string) ([]Result, error) {
	results := make([]Result, len(paths))
	if len(paths) == 0 {
		return results, nil
	}

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Jobs(len(paths)))

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			res := r.processFile(gctx, path)
			results[i] = res
			if err := r.record(res); err != nil {
				return err
			}
			if r.opts.Progress != nil {
				r.opts.Progress(int(done.Add(1)), len(paths), path)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (r *Runner) processFile(ctx context.Context, path string) Result {
	snap, err := source.Read(path)
	if err != nil {
		return Result{Path: path, Err: err}
	}

	unit := migrate.FileUnit{Path: path, Text: snap.Data}
	if r.opts.Preview {
		fr, err := r.engine.Preview(unit)
		if err != nil {
			return Result{Path: path, Err: err}
		}
		return Result{Path: path, File: fr}
	}

	fr, err := r.engine.MigrateFile(unit)
	if err != nil {
		return Result{Path: path, Err: err}
	}
	if !fr.Changed {
		return Result{Path: path, File: fr}
	}

	// Cancellation is honored between computing and writing, never mid-write.
	if err := ctx.Err(); err != nil {
		return Result{Path: path, Err: fmt.Errorf("%w: %s not written: %w", lmerrors.ErrIOFailure, path, err)}
	}
	if r.opts.Diff {
		if fr.Diff, err = edit.Diff(path, snap.Data, fr.Output); err != nil {
			return Result{Path: path, Err: err}
		}
	}
	if err := source.WriteAtomic(snap, fr.Output); err != nil {
		return Result{Path: path, Err: err}
	}
	return Result{Path: path, File: fr, Written: true}
}

func (r *Runner) record(res Result) error {
	if res.Err != nil {
		reason := lmerrors.Reason(r.opts.Inspector, res.Err)
		r.tracker.RecordError(res.Path, reason, res.Err)
		return r.emit(output.ErrorRecord(res.Path, reason, res.Err))
	}

	r.tracker.RecordFile(res.File, res.Written)
	if err := r.emit(output.FileRecord(res.File, res.Written)); err != nil {
		return err
	}
	for _, rec := range output.SiteRecords(res.File) {
		if err := r.emit(rec); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) emit(rec output.Record) error {
	if r.opts.Sink == nil {
		return nil
	}
	return r.opts.Sink.Write(rec)
}
