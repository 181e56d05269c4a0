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

// Package migrate locates logging macro call sites in C and C++ source and
// rewrites the legacy severity-only form into the category-aware form.
//
// The pipeline for one file is Locate, Resolve, Normalize, Rewrite, with a
// repair pass (Canonicalize) applied to every message so that fresh
// migrations and repairs of half-migrated calls produce the same text.
// Running the engine on its own output changes nothing.
package migrate

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/sirseerhq/sirseer-logmigrate/internal/edit"
	lmerrors "github.com/sirseerhq/sirseer-logmigrate/internal/errors"
)

// Engine migrates files according to a fixed set of Rules.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	rules Rules
	res   *Resolver
}

// NewEngine validates rules and returns an engine for them.
func NewEngine(rules Rules) (*Engine, error) {
	res, err := NewResolver(rules)
	if err != nil {
		return nil, err
	}
	rules.Levels = copyLevels(rules.Levels)
	rules.Categories = slices.Clone(rules.Categories)
	return &Engine{rules: rules, res: res}, nil
}

func copyLevels(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Rules returns the rules the engine was built with.
func (e *Engine) Rules() Rules {
	return e.rules
}

// Resolve computes the target call for a site that is to be rewritten.
// Unknown and unrecoverable sites yield a *errors.SiteError.
func (e *Engine) Resolve(path string, site CallSite) (ResolvedCall, error) {
	switch {
	case site.State == StateUnknown:
		return ResolvedCall{}, &lmerrors.SiteError{Path: path, Line: site.Line, Token: site.Severity, Err: lmerrors.ErrUnknownSeverity}
	case site.State == StateMalformed && !site.Recoverable:
		return ResolvedCall{}, &lmerrors.SiteError{Path: path, Line: site.Line, Err: lmerrors.ErrUnbalancedArgumentList}
	}

	switch site.Form {
	case FormLegacy:
		suffix, _ := e.res.Level(site.Severity)
		msg, err := e.message(path, site, site.Args)
		if err != nil {
			return ResolvedCall{}, err
		}
		return ResolvedCall{
			Macro:    e.rules.TargetPrefix + suffix,
			Category: e.res.Category(path, site.Args),
			Message:  msg,
		}, nil

	default:
		category, raw, ok := splitTargetArgs(site.Args)
		msg, err := e.message(path, site, raw)
		if err != nil {
			return ResolvedCall{}, err
		}
		if !ok {
			category = e.res.Category(path, raw)
		}
		return ResolvedCall{Macro: site.Macro, Category: category, Message: msg}, nil
	}
}

func (e *Engine) message(path string, site CallSite, raw string) (Message, error) {
	canonical, _, ok := Canonicalize(raw)
	if !ok {
		return Message{}, &lmerrors.SiteError{Path: path, Line: site.Line, Err: lmerrors.ErrUnbalancedArgumentList}
	}
	msg, err := Normalize(canonical, e.rules.StripTags)
	if err != nil {
		return Message{}, &lmerrors.SiteError{Path: path, Line: site.Line, Err: err}
	}
	return msg, nil
}

// MigrateFile rewrites every unmigrated and repairable call site of unit.
// The input text is not modified; the result carries the new text.
func (e *Engine) MigrateFile(unit FileUnit) (*FileResult, error) {
	return e.run(unit)
}

// Preview computes the same result as MigrateFile but returns a unified
// diff instead of the new text.
func (e *Engine) Preview(unit FileUnit) (*FileResult, error) {
	res, err := e.run(unit)
	if err != nil {
		return nil, err
	}
	if res.Changed {
		res.Diff, err = edit.Diff(unit.Path, unit.Text, res.Output)
		if err != nil {
			return nil, fmt.Errorf("%s: diff: %w", unit.Path, err)
		}
	}
	res.Output = nil
	return res, nil
}

// Migrate is MigrateFile for callers that only want the new text.
func (e *Engine) Migrate(text []byte, path string) ([]byte, error) {
	res, err := e.run(FileUnit{Path: path, Text: text})
	if err != nil {
		return nil, err
	}
	return res.Output, nil
}

func (e *Engine) run(unit FileUnit) (*FileResult, error) {
	src := unit.Text
	sites := e.Locate(src)
	if err := checkSites(sites, len(src)); err != nil {
		return nil, fmt.Errorf("%s: %w", unit.Path, err)
	}

	res := &FileResult{Path: unit.Path, Sites: sites}
	buf := edit.NewBuffer(src)
	for i := len(sites) - 1; i >= 0; i-- {
		site := sites[i]
		switch {
		case site.State == StateUnknown:
			res.Counts.SkippedUnknown++
			res.Unknown = append(res.Unknown, UnknownSite{
				Path:  unit.Path,
				Line:  site.Line,
				Token: site.Severity,
				Text:  site.Text(src),
			})
			continue
		case site.State == StateMigrated:
			res.Counts.AlreadyCanonical++
			continue
		case site.State == StateMalformed && !site.Recoverable:
			res.Counts.SkippedUnrecoverable++
			res.Problems = append(res.Problems, SiteProblem{
				Path:   unit.Path,
				Line:   site.Line,
				Reason: problemReason(site),
				Text:   site.Text(src),
			})
			continue
		}

		call, err := e.Resolve(unit.Path, site)
		if err != nil {
			res.Counts.SkippedUnrecoverable++
			res.Problems = append(res.Problems, SiteProblem{
				Path:   unit.Path,
				Line:   site.Line,
				Reason: err.Error(),
				Text:   site.Text(src),
			})
			continue
		}
		repl := Rewrite(call)
		if repl == site.Text(src) {
			res.Counts.AlreadyCanonical++
			continue
		}
		buf.Replace(site.Start, site.End, repl)
		if site.State == StateMalformed {
			res.Counts.Repaired++
		} else {
			res.Counts.Migrated++
		}
	}
	slices.Reverse(res.Unknown)
	slices.Reverse(res.Problems)

	out, err := buf.Bytes()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", unit.Path, lmerrors.ErrInvariantViolation, err)
	}
	res.Output = out
	res.Changed = !bytes.Equal(out, src)

	if res.Changed {
		if err := e.converged(out); err != nil {
			return nil, fmt.Errorf("%s: %w", unit.Path, err)
		}
	}
	return res, nil
}

// checkSites verifies that sites are non-empty, in order and disjoint.
func checkSites(sites []CallSite, size int) error {
	prevEnd := 0
	for _, s := range sites {
		if s.Start >= s.End || s.End > size {
			return fmt.Errorf("%w: site at line %d has range [%d,%d)", lmerrors.ErrInvariantViolation, s.Line, s.Start, s.End)
		}
		if s.Start < prevEnd {
			return fmt.Errorf("%w: site at line %d overlaps the previous site", lmerrors.ErrInvariantViolation, s.Line)
		}
		prevEnd = s.End
	}
	return nil
}

// converged checks that a second pass over out would not rewrite anything.
func (e *Engine) converged(out []byte) error {
	for _, s := range e.Locate(out) {
		if s.State == StateUnmigrated || (s.State == StateMalformed && s.Recoverable) {
			return fmt.Errorf("%w: rewrite did not converge at line %d", lmerrors.ErrInvariantViolation, s.Line)
		}
	}
	return nil
}

func problemReason(site CallSite) string {
	if len(site.Defects) == 0 {
		return lmerrors.ErrUnbalancedArgumentList.Error()
	}
	names := make([]string, len(site.Defects))
	for i, d := range site.Defects {
		names[i] = string(d)
	}
	return "cannot repair: " + strings.Join(names, ", ")
}
