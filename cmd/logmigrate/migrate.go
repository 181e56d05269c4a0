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

package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sirseerhq/sirseer-logmigrate/internal/config"
	lmerrors "github.com/sirseerhq/sirseer-logmigrate/internal/errors"
	"github.com/sirseerhq/sirseer-logmigrate/internal/migrate"
	"github.com/sirseerhq/sirseer-logmigrate/internal/output"
	"github.com/sirseerhq/sirseer-logmigrate/internal/report"
	"github.com/sirseerhq/sirseer-logmigrate/internal/runner"
	"github.com/sirseerhq/sirseer-logmigrate/internal/source"
	"github.com/sirseerhq/sirseer-logmigrate/internal/ui"
)

// runOptions holds the flags of migrate and check.
type runOptions struct {
	preview      bool
	jobs         int
	legacyMacro  string
	targetPrefix string
	extensions   []string
	exclude      []string
	stripTags    bool
	reportPath   string
	reportFormat string
	ndjson       string
	verbose      bool
	diff         bool
}

func newMigrateCommand(g *globalOptions) *cobra.Command {
	o := &runOptions{}

	cmd := &cobra.Command{
		Use:   "migrate [paths...]",
		Short: "Rewrite legacy logging calls in place",
		Long: `Rewrite legacy logging calls in the given files and directories.

Directories are searched recursively for C and C++ sources. Files named
explicitly are always processed, whatever their extension. With no paths the
current directory is used.

Each changed file is replaced atomically. A file that changes on disk while
the run is in progress is skipped and reported.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), cmd, g, o, args, false)
		},
	}

	cmd.Flags().BoolVar(&o.preview, "preview", false, "Compute changes without writing any file (alias --dry-run)")
	addRunFlags(cmd, o)
	cmd.Flags().SetNormalizeFunc(aliasFlags)

	return cmd
}

func newCheckCommand(g *globalOptions) *cobra.Command {
	o := &runOptions{}

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Report call sites that migrate would rewrite",
		Long: `Run a migration in preview mode and exit with status 4 if any call site
would be rewritten. Nothing is written. Useful as a CI gate once a code base
has been migrated.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), cmd, g, o, args, true)
		},
	}

	addRunFlags(cmd, o)

	return cmd
}

func addRunFlags(cmd *cobra.Command, o *runOptions) {
	f := cmd.Flags()
	f.IntVar(&o.jobs, "jobs", 0, "Number of files processed in parallel (default: number of CPUs)")
	f.StringVar(&o.legacyMacro, "legacy-macro", "", "Name of the legacy logging macro (default OPENAUTO_LOG)")
	f.StringVar(&o.targetPrefix, "target-prefix", "", "Prefix of the target logging macros (default OPENAUTO_LOG_)")
	f.StringSliceVar(&o.extensions, "ext", nil, "File extensions to scan, replacing the configured list")
	f.StringSliceVar(&o.exclude, "exclude", nil, "Additional directory names to skip")
	f.BoolVar(&o.stripTags, "strip-tags", true, "Remove a leading [Component] tag from literal messages")
	f.StringVar(&o.reportPath, "report", "", "Write a run report to this file")
	f.StringVar(&o.reportFormat, "report-format", "", "Report format: json or yaml (default: from --report extension)")
	f.StringVar(&o.ndjson, "ndjson", "", "Stream per-file records as NDJSON to this file (- for stdout)")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "Print one line per file and every skipped call site")
	f.BoolVar(&o.diff, "diff", false, "Print a unified diff of every change to stdout")
}

// aliasFlags maps deprecated or alternative flag names to their canonical name.
func aliasFlags(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if name == "dry-run" {
		name = "preview"
	}
	return pflag.NormalizedName(name)
}

// flagError marks flag parsing failures as usage errors.
func flagError(_ *cobra.Command, err error) error {
	return fmt.Errorf("%w: %v", lmerrors.ErrInvalidConfig, err)
}

// runMigrate executes migrate and check. check forces preview mode and turns
// pending changes into ErrChangesPending.
func runMigrate(ctx context.Context, cmd *cobra.Command, g *globalOptions, o *runOptions, args []string, check bool) error {
	cfg, err := config.LoadConfig(g.configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd.Flags(), cfg, o)
	if check {
		cfg.Run.Preview = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if o.diff && o.ndjson == "-" {
		return fmt.Errorf("%w: --diff and --ndjson - both write to stdout", lmerrors.ErrInvalidConfig)
	}
	reportPath, format, err := reportTarget(cmd.Flags(), o, cfg)
	if err != nil {
		return err
	}

	engine, err := migrate.NewEngine(cfg.EngineRules())
	if err != nil {
		return err
	}

	roots := args
	if len(roots) == 0 {
		roots = []string{"."}
	}
	files, err := source.Discover(roots, cfg.Filter())
	if err != nil {
		return err
	}

	printer := ui.New(cmd.ErrOrStderr(), o.verbose, g.noColor)
	opts := runner.Options{
		Jobs:     cfg.Run.Jobs,
		Preview:  cfg.Run.Preview,
		Diff:     o.diff,
		Progress: printer.Progress,
	}

	var sink *output.Writer
	if o.ndjson != "" {
		sink, err = output.Open(o.ndjson)
		if err != nil {
			return fmt.Errorf("%w: %w", lmerrors.ErrIOFailure, err)
		}
		defer sink.Close()
		opts.Sink = sink
	}

	tracker := report.New()
	results, err := runner.New(engine, tracker, opts).Run(ctx, files)
	printer.ClearProgress()
	if err != nil {
		return fmt.Errorf("migration interrupted: %w", err)
	}

	diffs := ui.New(cmd.OutOrStdout(), false, g.noColor)
	for _, res := range results {
		printer.File(res.Path, res.File, res.Written, res.Err)
		if o.diff && res.File != nil {
			diffs.Diff(res.File.Diff)
		}
	}

	rep := tracker.Generate(version, report.RunParams{
		Roots:        roots,
		Preview:      cfg.Run.Preview,
		Jobs:         cfg.Run.Jobs,
		LegacyMacro:  cfg.Macros.Legacy,
		TargetPrefix: cfg.Macros.TargetPrefix,
		StripTags:    cfg.Message.StripTags,
		Extensions:   cfg.Files.Extensions,
	})
	printer.Summary(rep)

	if sink != nil {
		if err := sink.Write(output.SummaryRecord(rep.Results.FilesScanned, rep.Results.Counts)); err != nil {
			return fmt.Errorf("%w: %w", lmerrors.ErrIOFailure, err)
		}
	}
	if reportPath == "" && cfg.Run.ReportDir != "" {
		reportPath = filepath.Join(cfg.Run.ReportDir, rep.RunID+"."+string(format))
	}
	if reportPath != "" {
		if err := report.SaveReport(rep, reportPath, format); err != nil {
			return fmt.Errorf("%w: %w", lmerrors.ErrIOFailure, err)
		}
	}

	if n := rep.Results.FilesFailed; n > 0 {
		return fmt.Errorf("%w: %d of %d files could not be processed", lmerrors.ErrIOFailure, n, rep.Results.FilesScanned)
	}
	if n := rep.Results.Counts.Changes(); check && n > 0 {
		return fmt.Errorf("%w: %d call sites in %d files", lmerrors.ErrChangesPending, n, rep.Results.FilesChanged)
	}
	return nil
}

// applyFlags overrides configuration values with the flags the user set.
func applyFlags(flags *pflag.FlagSet, cfg *config.Config, o *runOptions) {
	if flags.Changed("preview") {
		cfg.Run.Preview = o.preview
	}
	if flags.Changed("jobs") {
		cfg.Run.Jobs = o.jobs
	}
	if flags.Changed("legacy-macro") {
		cfg.Macros.Legacy = o.legacyMacro
	}
	if flags.Changed("target-prefix") {
		cfg.Macros.TargetPrefix = o.targetPrefix
	}
	if flags.Changed("ext") {
		cfg.Files.Extensions = normalizeExtensions(o.extensions)
	}
	if flags.Changed("exclude") {
		cfg.Files.ExcludeDirs = append(cfg.Files.ExcludeDirs, o.exclude...)
	}
	if flags.Changed("strip-tags") {
		cfg.Message.StripTags = o.stripTags
	}
	if flags.Changed("report-format") {
		cfg.Run.ReportFormat = o.reportFormat
	}
}

// normalizeExtensions accepts "cpp" as well as ".cpp".
func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

// reportTarget picks the report file and format. Without --report-format the
// extension of --report decides, then the configured format.
func reportTarget(flags *pflag.FlagSet, o *runOptions, cfg *config.Config) (string, report.Format, error) {
	format, err := report.ParseFormat(cfg.Run.ReportFormat)
	if err != nil {
		return "", "", err
	}
	if o.reportPath != "" && !flags.Changed("report-format") {
		switch strings.ToLower(filepath.Ext(o.reportPath)) {
		case ".yaml", ".yml":
			format = report.FormatYAML
		case ".json":
			format = report.FormatJSON
		}
	}
	return o.reportPath, format, nil
}

// mapErrorToExitCode maps internal errors to appropriate exit codes
func mapErrorToExitCode(err error) int {
	if err == nil {
		return 0
	}

	if errors.Is(err, lmerrors.ErrInvalidConfig) {
		return 2 // Configuration and usage errors
	}

	if errors.Is(err, lmerrors.ErrIOFailure) {
		return 3 // Some files could not be read or written
	}

	if errors.Is(err, lmerrors.ErrChangesPending) {
		return 4 // check found pending migrations
	}

	return 1 // General error
}
