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

// Package config types define the configuration structures used throughout
// logmigrate. These types represent settings that can be loaded from YAML or
// TOML configuration files, environment variables, or command-line flags.
package config

import (
	"github.com/sirseerhq/sirseer-logmigrate/internal/migrate"
	"github.com/sirseerhq/sirseer-logmigrate/internal/source"
)

// Config represents the complete configuration for logmigrate.
type Config struct {
	Macros MacrosConfig `yaml:"macros" toml:"macros"`

	// Severities maps legacy severity tokens to target level suffixes.
	// When present in a file it replaces the built-in table.
	Severities map[string]string `yaml:"severities" toml:"severities"`

	// Categories is the ordered category table. When present in a file it
	// replaces the built-in table.
	Categories      []migrate.CategoryRule `yaml:"categories" toml:"categories"`
	DefaultCategory string                 `yaml:"default_category" toml:"default_category"`

	Message MessageConfig `yaml:"message" toml:"message"`
	Files   FilesConfig   `yaml:"files" toml:"files"`
	Run     RunConfig     `yaml:"run" toml:"run"`

	// LoadedFrom is the file the configuration was read from, if any.
	LoadedFrom string `yaml:"-" toml:"-"`
}

// MacrosConfig names the macros being migrated.
type MacrosConfig struct {
	Legacy       string `yaml:"legacy" toml:"legacy"`
	TargetPrefix string `yaml:"target_prefix" toml:"target_prefix"`
}

// MessageConfig controls message normalization.
type MessageConfig struct {
	StripTags bool `yaml:"strip_tags" toml:"strip_tags"`
}

// FilesConfig selects which files are scanned.
type FilesConfig struct {
	Extensions  []string `yaml:"extensions" toml:"extensions"`
	ExcludeDirs []string `yaml:"exclude_dirs" toml:"exclude_dirs"`
}

// RunConfig contains settings for a single run.
type RunConfig struct {
	Jobs         int    `yaml:"jobs" toml:"jobs"`
	Preview      bool   `yaml:"preview" toml:"preview"`
	ReportDir    string `yaml:"report_dir" toml:"report_dir"`
	ReportFormat string `yaml:"report_format" toml:"report_format"`
}

// DefaultConfig returns a Config that migrates OPENAUTO_LOG call sites in
// C and C++ sources.
func DefaultConfig() *Config {
	rules := migrate.DefaultRules()
	filter := source.DefaultFilter()
	return &Config{
		Macros: MacrosConfig{
			Legacy:       rules.LegacyMacro,
			TargetPrefix: rules.TargetPrefix,
		},
		Severities:      rules.Levels,
		Categories:      rules.Categories,
		DefaultCategory: rules.DefaultCategory,
		Message: MessageConfig{
			StripTags: rules.StripTags,
		},
		Files: FilesConfig{
			Extensions:  filter.Extensions,
			ExcludeDirs: filter.ExcludeDirs,
		},
		Run: RunConfig{
			ReportFormat: "json",
		},
	}
}
