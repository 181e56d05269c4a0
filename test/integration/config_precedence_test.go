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
	"testing"

	"github.com/sirseerhq/sirseer-logmigrate/test/testutil"
)

const mixedSource = `void Main::run() {
    LEGACY_LOG(info) << "x";
    OPENAUTO_LOG(info) << "[Main] y";
}
`

// TestConfigPrecedence checks flags > environment > config file > defaults.
func TestConfigPrecedence(t *testing.T) {
	tests := []struct {
		name       string
		configFile map[string]interface{}
		envVars    map[string]string
		cliArgs    []string
		want       string
	}{
		{
			name: "defaults",
			want: "void Main::run() {\n" +
				"    LEGACY_LOG(info) << \"x\";\n" +
				"    OPENAUTO_LOG_INFO(GENERAL, \"y\");\n" +
				"}\n",
		},
		{
			name: "config file only",
			configFile: map[string]interface{}{
				"macros": map[string]interface{}{
					"legacy":        "LEGACY_LOG",
					"target_prefix": "MODERN_LOG_",
				},
			},
			want: "void Main::run() {\n" +
				"    MODERN_LOG_INFO(GENERAL, \"x\");\n" +
				"    OPENAUTO_LOG(info) << \"[Main] y\";\n" +
				"}\n",
		},
		{
			name: "env var overrides config file",
			configFile: map[string]interface{}{
				"macros": map[string]interface{}{
					"legacy":        "OTHER_LOG",
					"target_prefix": "MODERN_LOG_",
				},
			},
			envVars: map[string]string{
				"LOGMIGRATE_LEGACY_MACRO": "LEGACY_LOG",
			},
			want: "void Main::run() {\n" +
				"    MODERN_LOG_INFO(GENERAL, \"x\");\n" +
				"    OPENAUTO_LOG(info) << \"[Main] y\";\n" +
				"}\n",
		},
		{
			name: "CLI flag overrides both config and env",
			configFile: map[string]interface{}{
				"macros": map[string]interface{}{
					"legacy": "LEGACY_LOG",
				},
				"message": map[string]interface{}{
					"strip_tags": true,
				},
			},
			envVars: map[string]string{
				"LOGMIGRATE_LEGACY_MACRO": "LEGACY_LOG",
				"LOGMIGRATE_STRIP_TAGS":   "true",
			},
			cliArgs: []string{"--legacy-macro", "OPENAUTO_LOG", "--strip-tags=false"},
			want: "void Main::run() {\n" +
				"    LEGACY_LOG(info) << \"x\";\n" +
				"    OPENAUTO_LOG_INFO(GENERAL, \"[Main] y\");\n" +
				"}\n",
		},
		{
			name:    "env disables tag stripping",
			envVars: map[string]string{"LOGMIGRATE_STRIP_TAGS": "0"},
			want: "void Main::run() {\n" +
				"    LEGACY_LOG(info) << \"x\";\n" +
				"    OPENAUTO_LOG_INFO(GENERAL, \"[Main] y\");\n" +
				"}\n",
		},
		{
			name:    "env preview overridden by flag",
			envVars: map[string]string{"LOGMIGRATE_PREVIEW": "true"},
			cliArgs: []string{"--preview=false"},
			want: "void Main::run() {\n" +
				"    LEGACY_LOG(info) << \"x\";\n" +
				"    OPENAUTO_LOG_INFO(GENERAL, \"y\");\n" +
				"}\n",
		},
		{
			name:    "env preview",
			envVars: map[string]string{"LOGMIGRATE_PREVIEW": "yes"},
			want:    mixedSource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			testutil.WriteTree(t, dir, map[string]string{"src/Main.cpp": mixedSource})
			if tt.configFile != nil {
				testutil.WriteYAML(t, filepath.Join(dir, ".logmigrate.yaml"), tt.configFile)
			}

			args := append([]string{"migrate", "src"}, tt.cliArgs...)
			result := testutil.RunCLI(t, dir, args, tt.envVars)
			testutil.AssertCLISuccess(t, result)

			testutil.AssertFileContains(t, filepath.Join(dir, "src", "Main.cpp"), tt.want)
		})
	}
}

func TestConfigFile_TOMLAndHome(t *testing.T) {
	want := "void Main::run() {\n" +
		"    CAR_LOG_INFO(VEHICLE, \"x\");\n" +
		"    OPENAUTO_LOG(info) << \"[Main] y\";\n" +
		"}\n"
	toml := `default_category = "VEHICLE"
categories = []

[macros]
legacy = "LEGACY_LOG"
target_prefix = "CAR_LOG_"
`

	t.Run("explicit toml", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteTree(t, dir, map[string]string{
			"src/Main.cpp":     mixedSource,
			"conf/lm.toml":     toml,
			".logmigrate.yaml": "macros:\n  legacy: IGNORED_LOG\n",
		})

		result := testutil.RunCLI(t, dir, []string{"migrate", "--config", "conf/lm.toml", "src"}, nil)
		testutil.AssertCLISuccess(t, result)
		testutil.AssertFileContains(t, filepath.Join(dir, "src", "Main.cpp"), want)
	})

	t.Run("home directory", func(t *testing.T) {
		dir := t.TempDir()
		testutil.WriteTree(t, dir, map[string]string{
			"src/Main.cpp": mixedSource,
			".home/.logmigrate/config.yaml": "default_category: VEHICLE\n" +
				"categories: []\n" +
				"macros:\n  legacy: LEGACY_LOG\n  target_prefix: CAR_LOG_\n",
		})

		result := testutil.RunCLI(t, dir, []string{"migrate", "src"}, nil)
		testutil.AssertCLISuccess(t, result)
		testutil.AssertFileContains(t, filepath.Join(dir, "src", "Main.cpp"), want)
	})
}

func TestConfig_ReportDir(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{"src/Main.cpp": mixedSource})
	reports := filepath.Join(dir, "reports")

	result := testutil.RunCLI(t, dir, []string{"check", "src"}, map[string]string{
		"LOGMIGRATE_REPORT_DIR": reports,
	})
	testutil.AssertExitCode(t, result, 4)

	matches, err := filepath.Glob(filepath.Join(reports, "preview-*.json"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("report files = %v (err %v), want one", matches, err)
	}
	r := testutil.LoadReport(t, matches[0])
	if r.Results.Counts.Migrated != 1 {
		t.Errorf("Counts = %+v", r.Results.Counts)
	}
}
