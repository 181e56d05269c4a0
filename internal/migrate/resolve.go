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

package migrate

import (
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/cases"

	lmerrors "github.com/sirseerhq/sirseer-logmigrate/internal/errors"
)

// regexTimeout bounds a single category regex match.
const regexTimeout = 250 * time.Millisecond

// CategoryRule maps a pattern to a category. Patterns are matched
// case-insensitively as substrings unless Regex is set.
type CategoryRule struct {
	Pattern  string `yaml:"pattern" toml:"pattern" json:"pattern"`
	Category string `yaml:"category" toml:"category" json:"category"`
	Regex    bool   `yaml:"regex,omitempty" toml:"regex" json:"regex,omitempty"`
}

// Rules is the complete configuration of the engine. It is plain data; the
// engine never mutates it.
type Rules struct {
	// LegacyMacro is the severity-only macro being migrated away from.
	LegacyMacro string
	// TargetPrefix is prepended to a level suffix to form the target macro.
	TargetPrefix string
	// Levels maps a legacy severity token to a target level suffix.
	Levels map[string]string
	// Categories is consulted in order; the first match wins.
	Categories      []CategoryRule
	DefaultCategory string
	// StripTags removes a leading "[Component]" tag from literal messages.
	StripTags bool
}

// DefaultLevels returns the default severity table.
func DefaultLevels() map[string]string {
	return map[string]string{
		"trace":   "TRACE",
		"debug":   "DEBUG",
		"info":    "INFO",
		"warning": "WARN",
		"error":   "ERROR",
		"fatal":   "FATAL",
	}
}

// DefaultCategories returns the default ordered category table.
func DefaultCategories() []CategoryRule {
	pairs := [][2]string{
		{"btservice", "BLUETOOTH"},
		{"Service", "ANDROID_AUTO"},
		{"UI", "UI"},
		{"Camera", "CAMERA"},
		{"Video", "VIDEO"},
		{"Audio", "AUDIO"},
		{"Media", "AUDIO"},
		{"Decoder", "VIDEO"},
		{"Sensor", "SYSTEM"},
		{"Navigation", "ANDROID_AUTO"},
		{"Radio", "AUDIO"},
		{"Phone", "ANDROID_AUTO"},
		{"Wifi", "NETWORK"},
		{"Network", "NETWORK"},
		{"Connection", "NETWORK"},
		{"Configuration", "CONFIG"},
		{"Factory", "SYSTEM"},
		{"Input", "INPUT"},
		{"Projection", "PROJECTION"},
		{"Settings", "SETTINGS"},
	}
	rules := make([]CategoryRule, 0, len(pairs))
	for _, p := range pairs {
		rules = append(rules, CategoryRule{Pattern: p[0], Category: p[1]})
	}
	return rules
}

// DefaultRules returns the rules for migrating OPENAUTO_LOG call sites.
func DefaultRules() Rules {
	return Rules{
		LegacyMacro:     "OPENAUTO_LOG",
		TargetPrefix:    "OPENAUTO_LOG_",
		Levels:          DefaultLevels(),
		Categories:      DefaultCategories(),
		DefaultCategory: "GENERAL",
		StripTags:       true,
	}
}

type categoryMatcher struct {
	folded   string
	re       *regexp2.Regexp
	category string
}

func (m categoryMatcher) match(raw, folded string) bool {
	if m.re == nil {
		return strings.Contains(folded, m.folded)
	}
	ok, err := m.re.MatchString(raw)
	return err == nil && ok
}

// Resolver maps severity tokens to level suffixes and infers categories.
// It is immutable after construction and safe for concurrent use.
type Resolver struct {
	levels          map[string]string
	suffixes        map[string]bool
	matchers        []categoryMatcher
	defaultCategory string
}

// NewResolver validates rules and compiles the category table.
func NewResolver(rules Rules) (*Resolver, error) {
	if err := rules.validate(); err != nil {
		return nil, err
	}

	r := &Resolver{
		levels:          make(map[string]string, len(rules.Levels)),
		suffixes:        make(map[string]bool, len(rules.Levels)),
		defaultCategory: rules.DefaultCategory,
	}
	for token, suffix := range rules.Levels {
		r.levels[strings.TrimSpace(token)] = suffix
		r.suffixes[suffix] = true
	}

	for i, rule := range rules.Categories {
		m := categoryMatcher{category: rule.Category}
		if rule.Regex {
			re, err := regexp2.Compile(rule.Pattern, regexp2.IgnoreCase)
			if err != nil {
				return nil, fmt.Errorf("%w: category rule %d: %v", lmerrors.ErrInvalidConfig, i, err)
			}
			re.MatchTimeout = regexTimeout
			m.re = re
		} else {
			m.folded = fold(rule.Pattern)
		}
		r.matchers = append(r.matchers, m)
	}
	return r, nil
}

// Level returns the target level suffix for a legacy severity token.
// Tokens are matched exactly, so "Error" is not "error".
func (r *Resolver) Level(token string) (string, bool) {
	suffix, ok := r.levels[strings.TrimSpace(token)]
	return suffix, ok
}

// IsLevelSuffix reports whether s is one of the configured level suffixes.
func (r *Resolver) IsLevelSuffix(s string) bool {
	return r.suffixes[s]
}

// Category infers the category for a call. The whole rule table is tried
// against the path first, then against the message text; the first matching
// rule of the first pass that matches wins.
func (r *Resolver) Category(path, args string) string {
	if c, ok := r.firstMatch(path); ok {
		return c
	}
	if c, ok := r.firstMatch(args); ok {
		return c
	}
	return r.defaultCategory
}

func (r *Resolver) firstMatch(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	folded := fold(s)
	for _, m := range r.matchers {
		if m.match(s, folded) {
			return m.category, true
		}
	}
	return "", false
}

// fold applies Unicode case folding. A Caser keeps state, so one is made per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

func (r Rules) validate() error {
	if !isIdent(r.LegacyMacro) {
		return fmt.Errorf("%w: legacy macro %q is not an identifier", lmerrors.ErrInvalidConfig, r.LegacyMacro)
	}
	if !isIdent(r.TargetPrefix) {
		return fmt.Errorf("%w: target prefix %q is not an identifier", lmerrors.ErrInvalidConfig, r.TargetPrefix)
	}
	if len(r.Levels) == 0 {
		return fmt.Errorf("%w: severity table is empty", lmerrors.ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(r.Levels))
	for token, suffix := range r.Levels {
		t := strings.TrimSpace(token)
		if t == "" {
			return fmt.Errorf("%w: empty severity token", lmerrors.ErrInvalidConfig)
		}
		if seen[t] {
			return fmt.Errorf("%w: severity token %q is listed twice", lmerrors.ErrInvalidConfig, t)
		}
		seen[t] = true
		if !isIdent(suffix) {
			return fmt.Errorf("%w: level suffix %q for %q is not an identifier", lmerrors.ErrInvalidConfig, suffix, token)
		}
		if r.TargetPrefix+suffix == r.LegacyMacro {
			return fmt.Errorf("%w: target macro %s equals the legacy macro", lmerrors.ErrInvalidConfig, r.LegacyMacro)
		}
	}
	if !isIdent(r.DefaultCategory) {
		return fmt.Errorf("%w: default category %q is not an identifier", lmerrors.ErrInvalidConfig, r.DefaultCategory)
	}
	for i, c := range r.Categories {
		if c.Pattern == "" {
			return fmt.Errorf("%w: category rule %d has an empty pattern", lmerrors.ErrInvalidConfig, i)
		}
		if !isIdent(c.Category) {
			return fmt.Errorf("%w: category rule %d: %q is not an identifier", lmerrors.ErrInvalidConfig, i, c.Category)
		}
	}
	return nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isIdentByte(c) && !(i == 0 && isDigit(c)) {
			continue
		}
		return false
	}
	return true
}
