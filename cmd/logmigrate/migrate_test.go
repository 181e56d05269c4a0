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
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-logmigrate/internal/config"
	lmerrors "github.com/sirseerhq/sirseer-logmigrate/internal/errors"
	"github.com/sirseerhq/sirseer-logmigrate/internal/report"
)

const legacyFile = `#include "Logging.hpp"

void AudioOutput::start() {
    OPENAUTO_LOG(info) << "[AudioOutput] started";
}
`

const migratedFile = `#include "Logging.hpp"

void AudioOutput::start() {
    OPENAUTO_LOG_INFO(AUDIO, "started");
}
`

// workspace creates an isolated working directory with src/AudioOutput.cpp.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", filepath.Join(dir, "home"))
	for _, key := range []string{"LOGMIGRATE_LEGACY_MACRO", "LOGMIGRATE_TARGET_PREFIX", "LOGMIGRATE_JOBS", "LOGMIGRATE_PREVIEW", "LOGMIGRATE_STRIP_TAGS", "LOGMIGRATE_REPORT_DIR"} {
		t.Setenv(key, "")
	}
	if err := os.MkdirAll("src", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join("src", "AudioOutput.cpp"), []byte(legacyFile), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func readSource(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("src", "AudioOutput.cpp"))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestMigrateCommand(t *testing.T) {
	workspace(t)

	_, stderr, err := execute(t, "migrate", "--no-color", "src")
	if err != nil {
		t.Fatalf("migrate failed: %v\n%s", err, stderr)
	}
	if got := readSource(t); got != migratedFile {
		t.Errorf("migrated file =\n%s\nwant\n%s", got, migratedFile)
	}
	if !strings.Contains(stderr, "Scanned 1 files: 1 changed") {
		t.Errorf("summary missing:\n%s", stderr)
	}

	// Second run is a no-op.
	_, stderr, err = execute(t, "migrate", "src")
	if err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}
	if !strings.Contains(stderr, "0 changed") || readSource(t) != migratedFile {
		t.Errorf("second run changed something:\n%s", stderr)
	}
}

func TestMigrateCommand_Preview(t *testing.T) {
	for _, flag := range []string{"--preview", "--dry-run"} {
		t.Run(flag, func(t *testing.T) {
			workspace(t)

			stdout, stderr, err := execute(t, "migrate", flag, "--diff")
			if err != nil {
				t.Fatalf("migrate %s failed: %v\n%s", flag, err, stderr)
			}
			if readSource(t) != legacyFile {
				t.Error("preview wrote the file")
			}
			if !strings.Contains(stdout, `+    OPENAUTO_LOG_INFO(AUDIO, "started");`) {
				t.Errorf("diff missing added line:\n%s", stdout)
			}
			if !strings.Contains(stderr, "1 would change") {
				t.Errorf("summary missing:\n%s", stderr)
			}
		})
	}
}

func TestCheckCommand(t *testing.T) {
	workspace(t)

	_, _, err := execute(t, "check")
	if !errors.Is(err, lmerrors.ErrChangesPending) {
		t.Fatalf("check error = %v, want ErrChangesPending", err)
	}
	if code := mapErrorToExitCode(err); code != 4 {
		t.Errorf("exit code = %d, want 4", code)
	}
	if readSource(t) != legacyFile {
		t.Error("check wrote the file")
	}

	if _, _, err := execute(t, "migrate"); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if _, _, err := execute(t, "check"); err != nil {
		t.Errorf("check after migrate error = %v", err)
	}
}

func TestMigrateCommand_Report(t *testing.T) {
	dir := workspace(t)
	reportPath := filepath.Join(dir, "out", "report.yaml")

	if _, _, err := execute(t, "migrate", "--preview", "--report", reportPath); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	rep, err := report.LoadReport(reportPath)
	if err != nil {
		t.Fatalf("LoadReport() error = %v", err)
	}
	if rep.Results.FilesScanned != 1 || rep.Results.Counts.Migrated != 1 || !rep.Parameters.Preview {
		t.Errorf("report results = %+v", rep.Results)
	}
	if !strings.HasPrefix(rep.RunID, "preview-") {
		t.Errorf("RunID = %s", rep.RunID)
	}
}

func TestMigrateCommand_NDJSON(t *testing.T) {
	dir := workspace(t)
	path := filepath.Join(dir, "run.ndjson")

	if _, _, err := execute(t, "migrate", "--ndjson", path); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d NDJSON lines, want 2:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[0], `{"kind":"file"`) || !strings.HasPrefix(lines[1], `{"kind":"summary"`) {
		t.Errorf("unexpected records:\n%s", data)
	}
}

func TestMigrateCommand_ConfigAndFlags(t *testing.T) {
	dir := workspace(t)
	legacy := "void f() {\n    LEGACY_LOG(error) << \"boom\";\n}\n"
	if err := os.WriteFile(filepath.Join("src", "Main.cpp"), []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(dir, "custom.toml")
	if err := os.WriteFile(cfgPath, []byte("[macros]\nlegacy = \"LEGACY_LOG\"\ntarget_prefix = \"MODERN_LOG_\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := execute(t, "migrate", "--config", cfgPath, "src/Main.cpp"); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	data, _ := os.ReadFile(filepath.Join("src", "Main.cpp"))
	if !strings.Contains(string(data), `MODERN_LOG_ERROR(GENERAL, "boom");`) {
		t.Errorf("config macros not applied:\n%s", data)
	}
	if readSource(t) != legacyFile {
		t.Error("file outside the given path was changed")
	}

	// The flag wins over the config file.
	if _, _, err := execute(t, "migrate", "--config", cfgPath, "--legacy-macro", "OPENAUTO_LOG", "--target-prefix", "OPENAUTO_LOG_", "src"); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if readSource(t) != migratedFile {
		t.Errorf("flag did not override config:\n%s", readSource(t))
	}
}

func TestMigrateCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"bad flag", []string{"migrate", "--no-such-flag"}, 2},
		{"bad jobs", []string{"migrate", "--jobs", "-2"}, 2},
		{"bad macro", []string{"migrate", "--legacy-macro", "not a macro"}, 2},
		{"bad report format", []string{"migrate", "--report-format", "xml"}, 2},
		{"diff to stdout twice", []string{"migrate", "--diff", "--ndjson", "-"}, 2},
		{"missing config", []string{"migrate", "--config", "missing.yaml"}, 2},
		{"missing path", []string{"migrate", "does-not-exist"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workspace(t)
			_, _, err := execute(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if code := mapErrorToExitCode(err); code != tt.code {
				t.Errorf("exit code = %d, want %d (err: %v)", code, tt.code, err)
			}
			if readSource(t) != legacyFile {
				t.Error("file changed on a failed run")
			}
		})
	}
}

func TestMapErrorToExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{errors.New("boom"), 1},
		{fmt.Errorf("wrapped: %w", lmerrors.ErrInvalidConfig), 2},
		{fmt.Errorf("%w: 2 of 5 files", lmerrors.ErrIOFailure), 3},
		{lmerrors.ErrChangesPending, 4},
	}
	for _, tt := range tests {
		if got := mapErrorToExitCode(tt.err); got != tt.want {
			t.Errorf("mapErrorToExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestNormalizeExtensions(t *testing.T) {
	got := normalizeExtensions([]string{"cpp", ".h", " ipp ", ""})
	if strings.Join(got, ",") != ".cpp,.h,.ipp" {
		t.Errorf("normalizeExtensions() = %v", got)
	}
}

func TestReportTarget(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		cfgFmt string
		want   report.Format
	}{
		{"default", nil, "json", report.FormatJSON},
		{"yaml extension", []string{"--report", "r.yml"}, "json", report.FormatYAML},
		{"config format", []string{"--report", "r.out"}, "yaml", report.FormatYAML},
		{"explicit flag wins", []string{"--report", "r.yaml", "--report-format", "json"}, "json", report.FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &runOptions{}
			cmd := &cobra.Command{Use: "x"}
			addRunFlags(cmd, o)
			if err := cmd.Flags().Parse(tt.args); err != nil {
				t.Fatal(err)
			}
			cfg := config.DefaultConfig()
			cfg.Run.ReportFormat = tt.cfgFmt
			applyFlags(cmd.Flags(), cfg, o)

			_, got, err := reportTarget(cmd.Flags(), o, cfg)
			if err != nil {
				t.Fatalf("reportTarget() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("format = %s, want %s", got, tt.want)
			}
		})
	}
}
