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

package integration

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirseerhq/sirseer-logmigrate/test/testutil"
)

// project lays out a small code base and returns its root.
func project(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"src/audio/AudioOutput.cpp": testutil.NewSourceBuilder("AudioOutput").
			Legacy("info", `"[AudioOutput] started"`).
			Legacy("critical", `"boom"`).
			Build(),
		"src/Main.cpp": testutil.NewSourceBuilder("Main").
			Legacy("error", `"failed: " << code`).
			Build(),
		"build/Generated.cpp": testutil.NewSourceBuilder("Generated").
			Legacy("info", `"generated"`).
			Build(),
		"src/notes.txt": testutil.LegacyCall("info", `"not code"`) + "\n",
	})
	return dir
}

var (
	wantAudio = testutil.NewSourceBuilder("AudioOutput").
			Target("INFO", "AUDIO", `"started"`).
			Legacy("critical", `"boom"`).
			Build()
	wantMain = testutil.NewSourceBuilder("Main").
			Target("ERROR", "GENERAL", `"failed: " << code`).
			Build()
)

func TestCLI_Help(t *testing.T) {
	result := testutil.RunCLI(t, t.TempDir(), []string{"--help"}, nil)
	testutil.AssertCLISuccess(t, result)

	for _, want := range []string{"migrate", "check", "--config", "--no-color"} {
		if !strings.Contains(result.Stdout, want) {
			t.Errorf("help output missing %q:\n%s", want, result.Stdout)
		}
	}
}

func TestCLI_Version(t *testing.T) {
	result := testutil.RunCLI(t, t.TempDir(), []string{"--version"}, nil)
	testutil.AssertCLISuccess(t, result)

	if !strings.Contains(result.Stdout, "logmigrate version") {
		t.Errorf("unexpected version output: %s", result.Stdout)
	}
}

func TestCLI_MigrateProject(t *testing.T) {
	dir := project(t)
	generated := testutil.ReadFile(t, filepath.Join(dir, "build", "Generated.cpp"))
	notes := testutil.ReadFile(t, filepath.Join(dir, "src", "notes.txt"))

	result := testutil.RunCLI(t, dir, []string{"migrate"}, nil)
	testutil.AssertCLISuccess(t, result)

	testutil.AssertFileContains(t, filepath.Join(dir, "src", "audio", "AudioOutput.cpp"), wantAudio)
	testutil.AssertFileContains(t, filepath.Join(dir, "src", "Main.cpp"), wantMain)
	testutil.AssertFileContains(t, filepath.Join(dir, "build", "Generated.cpp"), generated)
	testutil.AssertFileContains(t, filepath.Join(dir, "src", "notes.txt"), notes)
	testutil.AssertNoLegacyCalls(t, filepath.Join(dir, "src"), "OPENAUTO_LOG", "critical", "not code")

	if !strings.Contains(result.Stderr, "Scanned 2 files: 2 changed") {
		t.Errorf("unexpected summary:\n%s", result.Stderr)
	}
}

func TestCLI_Idempotent(t *testing.T) {
	dir := project(t)

	testutil.AssertCLISuccess(t, testutil.RunCLI(t, dir, []string{"migrate", "src"}, nil))
	first := testutil.ReadFile(t, filepath.Join(dir, "src", "audio", "AudioOutput.cpp"))

	result := testutil.RunCLI(t, dir, []string{"migrate", "src"}, nil)
	testutil.AssertCLISuccess(t, result)

	if !strings.Contains(result.Stderr, "Scanned 2 files: 0 changed") {
		t.Errorf("second run reported changes:\n%s", result.Stderr)
	}
	testutil.AssertFileContains(t, filepath.Join(dir, "src", "audio", "AudioOutput.cpp"), first)
}

func TestCLI_Check(t *testing.T) {
	dir := project(t)

	result := testutil.RunCLI(t, dir, []string{"check"}, nil)
	testutil.AssertExitCode(t, result, 4)
	testutil.AssertCLIError(t, result, "unmigrated call sites remain")

	testutil.AssertCLISuccess(t, testutil.RunCLI(t, dir, []string{"migrate"}, nil))

	// The unknown severity is still reported but is not a pending change.
	result = testutil.RunCLI(t, dir, []string{"check"}, nil)
	testutil.AssertExitCode(t, result, 0)
}

func TestCLI_Preview(t *testing.T) {
	dir := project(t)
	before := testutil.ReadFile(t, filepath.Join(dir, "src", "Main.cpp"))

	result := testutil.RunCLI(t, dir, []string{"migrate", "--dry-run", "--diff", "--no-color", "src/Main.cpp"}, nil)
	testutil.AssertCLISuccess(t, result)

	testutil.AssertFileContains(t, filepath.Join(dir, "src", "Main.cpp"), before)
	for _, want := range []string{
		"--- a/src/Main.cpp",
		"+++ b/src/Main.cpp",
		`-    OPENAUTO_LOG(error) << "failed: " << code;`,
		`+    OPENAUTO_LOG_ERROR(GENERAL, "failed: " << code);`,
	} {
		if !strings.Contains(result.Stdout, want) {
			t.Errorf("diff missing %q:\n%s", want, result.Stdout)
		}
	}
}

func TestCLI_UsageErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "unknown flag",
			args:    []string{"migrate", "--bogus"},
			wantErr: "unknown flag",
		},
		{
			name:    "negative jobs",
			args:    []string{"migrate", "--jobs", "-1"},
			wantErr: "jobs must not be negative",
		},
		{
			name:    "invalid macro name",
			args:    []string{"migrate", "--legacy-macro", "1BAD"},
			wantErr: "is not an identifier",
		},
		{
			name:    "invalid report format",
			args:    []string{"check", "--report", "r.out", "--report-format", "csv"},
			wantErr: "unknown report format",
		},
		{
			name:    "missing config file",
			args:    []string{"migrate", "--config", "nope.yaml"},
			wantErr: "failed to load config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := project(t)
			before := testutil.ReadFile(t, filepath.Join(dir, "src", "Main.cpp"))

			result := testutil.RunCLI(t, dir, tt.args, nil)
			testutil.AssertExitCode(t, result, 2)
			testutil.AssertCLIError(t, result, tt.wantErr)
			testutil.AssertFileContains(t, filepath.Join(dir, "src", "Main.cpp"), before)
		})
	}
}

func TestCLI_MissingPath(t *testing.T) {
	dir := project(t)

	result := testutil.RunCLI(t, dir, []string{"migrate", "src/does-not-exist"}, nil)
	testutil.AssertExitCode(t, result, 3)
	testutil.AssertCLIError(t, result, "file i/o failed")
}
