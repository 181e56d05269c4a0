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

// Package config provides configuration management for logmigrate with
// support for multiple configuration sources and a well-defined precedence
// order.
//
// Configuration sources (in precedence order, highest to lowest):
//  1. Command-line flags
//  2. Environment variables
//  3. Configuration file (YAML or TOML, chosen by extension)
//  4. Built-in defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	lmerrors "github.com/sirseerhq/sirseer-logmigrate/internal/errors"
	"github.com/sirseerhq/sirseer-logmigrate/internal/migrate"
	"github.com/sirseerhq/sirseer-logmigrate/internal/report"
	"github.com/sirseerhq/sirseer-logmigrate/internal/source"
)

// SearchPaths returns the files LoadConfig tries, in order, when no path is
// given.
func SearchPaths() []string {
	return []string{
		".logmigrate.yaml",
		".logmigrate.yml",
		".logmigrate.toml",
		filepath.Join(homeDir(), ".logmigrate", "config.yaml"),
	}
}

// LoadConfig loads configuration from multiple sources and applies them in
// the correct precedence order. If configPath is provided, it loads from
// that specific file. Otherwise the first existing file of SearchPaths is
// used, and defaults apply if there is none.
//
// Environment variables are applied after loading the config file.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		for _, path := range SearchPaths() {
			if _, err := os.Stat(path); err == nil {
				if err := loadConfigFile(path, cfg); err != nil {
					return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
				}
				break
			}
		}
	}

	applyEnvOverrides(cfg)

	cfg.Run.ReportDir = expandPath(cfg.Run.ReportDir)

	return cfg, nil
}

// loadConfigFile reads and parses a config file. Tables present in the file
// replace the built-in ones instead of being merged into them.
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: failed to read config file %s: %w", lmerrors.ErrInvalidConfig, path, err)
	}

	severities, categories := cfg.Severities, cfg.Categories
	cfg.Severities, cfg.Categories = nil, nil

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		_, err = toml.Decode(string(data), cfg)
	default:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return fmt.Errorf("%w: failed to parse config file %s: %w", lmerrors.ErrInvalidConfig, path, err)
	}

	if cfg.Severities == nil {
		cfg.Severities = severities
	}
	if cfg.Categories == nil {
		cfg.Categories = categories
	}
	cfg.LoadedFrom = path
	return nil
}

// applyEnvOverrides applies environment variable overrides to config.
// Values that do not parse are ignored.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOGMIGRATE_LEGACY_MACRO"); v != "" {
		cfg.Macros.Legacy = v
	}
	if v := os.Getenv("LOGMIGRATE_TARGET_PREFIX"); v != "" {
		cfg.Macros.TargetPrefix = v
	}
	if v := os.Getenv("LOGMIGRATE_JOBS"); v != "" {
		if jobs, err := parseNonNegativeInt(v); err == nil {
			cfg.Run.Jobs = jobs
		}
	}
	if v := os.Getenv("LOGMIGRATE_PREVIEW"); v != "" {
		cfg.Run.Preview = parseBool(v)
	}
	if v := os.Getenv("LOGMIGRATE_STRIP_TAGS"); v != "" {
		cfg.Message.StripTags = parseBool(v)
	}
	if v := os.Getenv("LOGMIGRATE_REPORT_DIR"); v != "" {
		cfg.Run.ReportDir = v
	}
}

func homeDir() string {
	home := os.Getenv("HOME")
	if home == "" {
		home = os.Getenv("USERPROFILE") // Windows
	}
	return home
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		path = filepath.Join(homeDir(), path[2:])
	}
	return os.ExpandEnv(path)
}

func parseNonNegativeInt(s string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("failed to parse integer from '%s': %w", s, err)
	}
	if i < 0 {
		return 0, fmt.Errorf("value must not be negative, got: %d", i)
	}
	return i, nil
}

// parseBool parses various boolean representations
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "yes" || s == "1" || s == "on"
}

// EngineRules converts the configuration into engine rules.
func (c *Config) EngineRules() migrate.Rules {
	levels := make(map[string]string, len(c.Severities))
	for k, v := range c.Severities {
		levels[k] = v
	}
	return migrate.Rules{
		LegacyMacro:     c.Macros.Legacy,
		TargetPrefix:    c.Macros.TargetPrefix,
		Levels:          levels,
		Categories:      append([]migrate.CategoryRule(nil), c.Categories...),
		DefaultCategory: c.DefaultCategory,
		StripTags:       c.Message.StripTags,
	}
}

// Filter returns the file selection for discovery.
func (c *Config) Filter() source.Filter {
	return source.Filter{
		Extensions:  append([]string(nil), c.Files.Extensions...),
		ExcludeDirs: append([]string(nil), c.Files.ExcludeDirs...),
	}
}

// Validate checks if the configuration contains valid values. Rule tables
// are checked by building an engine from them, so anything Validate accepts
// can be migrated with.
func (c *Config) Validate() error {
	if c.Run.Jobs < 0 {
		return fmt.Errorf("%w: jobs must not be negative, got: %d", lmerrors.ErrInvalidConfig, c.Run.Jobs)
	}
	if _, err := report.ParseFormat(c.Run.ReportFormat); err != nil {
		return err
	}
	if len(c.Files.Extensions) == 0 {
		return fmt.Errorf("%w: no file extensions configured", lmerrors.ErrInvalidConfig)
	}
	for _, ext := range c.Files.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("%w: extension %q must start with a dot", lmerrors.ErrInvalidConfig, ext)
		}
	}
	if _, err := migrate.NewEngine(c.EngineRules()); err != nil {
		return err
	}
	return nil
}
