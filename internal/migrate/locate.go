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
	"bytes"
	"strings"
)

// Locate finds every legacy and target call site in src, in source order.
// String and character literals, comments and preprocessor directives are
// skipped, so a macro name mentioned in any of them is never matched.
func (e *Engine) Locate(src []byte) []CallSite {
	var sites []CallSite
	line, counted := 1, 0
	lineStart := true
	for i := 0; i < len(src); {
		c := src[i]
		if c == '\n' {
			lineStart = true
			i++
			continue
		}
		if isHSpace(c) {
			i++
			continue
		}
		if c == '#' && lineStart {
			i = directiveEnd(src, i)
			continue
		}

		end, kind := lexUnit(src, i)
		if kind != unitComment {
			lineStart = false
		}
		if kind == unitIdent {
			if form, ok := e.candidate(src[i:end]); ok {
				if open := skipSpace(src, end); open < len(src) && src[open] == '(' {
					site := e.scanSite(src, i, open, form)
					line += bytes.Count(src[counted:i], []byte{'\n'})
					counted = i
					site.Line = line
					e.classify(&site)
					sites = append(sites, site)
					i = site.End
					continue
				}
			}
		}
		i = end
	}
	return sites
}

func (e *Engine) candidate(ident []byte) (Form, bool) {
	name := string(ident)
	if name == e.rules.LegacyMacro {
		return FormLegacy, true
	}
	if suffix, ok := strings.CutPrefix(name, e.rules.TargetPrefix); ok && e.res.IsLevelSuffix(suffix) {
		return FormTarget, true
	}
	return 0, false
}

func (e *Engine) scanSite(src []byte, start, open int, form Form) CallSite {
	site := CallSite{
		Start: start,
		Form:  form,
		Macro: string(src[start:identEnd(src, start)]),
	}
	if form == FormTarget {
		scanTarget(src, &site, open)
	} else {
		scanLegacy(src, &site, open)
	}
	return site
}

// scanTarget bounds MACRO(args) starting at the open paren.
func scanTarget(src []byte, site *CallSite, open int) {
	if closeIdx, ok := matchParen(src, open); ok {
		site.Args = string(src[open+1 : closeIdx])
		terminate(src, site, closeIdx+1)
		return
	}

	closeIdx, stop := recoverParen(src, open)
	switch {
	case closeIdx >= 0:
		site.Args = string(src[open+1 : closeIdx])
		site.Defects = addDefect(site.Defects, DefectQuoteImbalance)
		terminate(src, site, closeIdx+1)
	case stop >= 0:
		site.Args = string(src[open+1 : stop])
		site.Defects = addDefect(site.Defects, DefectMissingParen)
		site.End = stop + 1
		consumeJunk(src, site)
	default:
		site.Args = string(src[open+1:])
		site.Defects = addDefect(site.Defects, DefectUnbalanced)
		site.End = len(src)
	}
}

// scanLegacy bounds LEGACY(severity) << chain; starting at the open paren.
func scanLegacy(src []byte, site *CallSite, open int) {
	closeIdx, ok := matchParen(src, open)
	if !ok {
		site.Defects = addDefect(site.Defects, DefectUnbalanced)
		closeIdx, stop := recoverParen(src, open)
		switch {
		case stop >= 0:
			site.End = stop + 1
		case closeIdx >= 0:
			site.End = closeIdx + 1
		default:
			site.End = len(src)
		}
		site.Args = string(src[open+1 : site.End])
		return
	}

	site.Severity = strings.TrimSpace(string(src[open+1 : closeIdx]))
	j := skipSpace(src, closeIdx+1)
	switch {
	case j < len(src) && src[j] == ';':
		site.End = j + 1
		consumeJunk(src, site)
	case j >= len(src) || src[j] == '}':
		site.End = closeIdx + 1
		site.Defects = addDefect(site.Defects, DefectUnterminated)
	case src[j] == '<' && j+1 < len(src) && src[j+1] == '<':
		scanChain(src, site, j+2)
	default:
		site.End = closeIdx + 1
		site.Defects = addDefect(site.Defects, DefectNoStream)
	}
}

// scanChain reads a stream chain up to the semicolon ending the statement.
func scanChain(src []byte, site *CallSite, from int) {
	depth, braces := 0, 0
	for i := from; i < len(src); {
		end, kind := lexUnit(src, i)
		switch kind {
		case unitBadString:
			recoverChain(src, site, from)
			return
		case unitPunct:
			switch src[i] {
			case '(':
				depth++
			case ')':
				// A stray close paren is kept in the chain for the repair pass.
				if depth > 0 {
					depth--
				}
			case '{':
				braces++
			case '}':
				if braces == 0 {
					unterminatedAt(src, site, from, i)
					return
				}
				braces--
			case ';':
				if braces > 0 {
					break
				}
				if depth == 0 {
					site.Args = string(src[from:i])
					site.End = i + 1
					consumeJunk(src, site)
					return
				}
				if !continues(src, i+1) {
					site.Args = string(src[from:i])
					site.End = i + 1
					site.Defects = addDefect(site.Defects, DefectUnbalanced)
					return
				}
			}
		}
		i = end
	}
	if depth > 0 || braces > 0 {
		site.Args = string(src[from:])
		site.End = len(src)
		site.Defects = addDefect(site.Defects, DefectUnbalanced)
		return
	}
	unterminatedAt(src, site, from, len(src))
}

// unterminatedAt ends a chain that ran into a closing brace or end of input.
func unterminatedAt(src []byte, site *CallSite, from, stop int) {
	k := stop
	for k > from && isSpace(src[k-1]) {
		k--
	}
	site.Args = string(src[from:k])
	site.End = k
	site.Defects = addDefect(site.Defects, DefectUnterminated)
}

// recoverChain bounds a chain containing a broken string literal by
// looking for the next semicolon without regard to quoting.
func recoverChain(src []byte, site *CallSite, from int) {
	if k := bytes.IndexByte(src[from:], ';'); k >= 0 {
		site.Args = string(src[from : from+k])
		site.End = from + k + 1
		site.Defects = addDefect(site.Defects, DefectQuoteImbalance)
		return
	}
	site.Args = string(src[from:])
	site.End = len(src)
	site.Defects = addDefect(site.Defects, DefectUnbalanced)
}

// matchParen finds the paren closing src[open]. Literals and comments are
// skipped. A literal broken by a newline, or a semicolon that does not
// continue the expression, makes the match fail.
func matchParen(src []byte, open int) (int, bool) {
	depth, braces := 0, 0
	for i := open; i < len(src); {
		end, kind := lexUnit(src, i)
		switch kind {
		case unitBadString:
			return -1, false
		case unitPunct:
			switch src[i] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					return i, true
				}
			case '{':
				braces++
			case '}':
				if braces == 0 {
					return -1, false
				}
				braces--
			case ';':
				if braces == 0 && !continues(src, i+1) {
					return -1, false
				}
			}
		}
		i = end
	}
	return -1, false
}

// recoverParen is the quote-blind fallback for matchParen. It returns the
// matching close paren, or else the semicolon ending the statement, or -1
// for both when the input runs out first.
func recoverParen(src []byte, open int) (closeIdx, stop int) {
	depth := 0
	for i := open; i < len(src); i++ {
		switch src[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, -1
			}
		case ';':
			if !continues(src, i+1) {
				return -1, i
			}
		}
	}
	return -1, -1
}

// terminate consumes the semicolon after a call's close paren at pos.
// A missing semicolon is only repairable when the call ends its statement;
// a call used inside a larger expression is left alone.
func terminate(src []byte, site *CallSite, pos int) {
	j := skipSpace(src, pos)
	if j < len(src) && src[j] == ';' {
		site.End = j + 1
		consumeJunk(src, site)
		return
	}
	site.End = pos
	site.Defects = addDefect(site.Defects, DefectUnterminated)
	consumeJunk(src, site)
	if site.End == pos && !endsStatement(src, pos) {
		site.Defects = addDefect(site.Defects, DefectInExpression)
	}
}

// endsStatement reports whether the code after pos starts a new statement:
// a closing brace, the end of input, or on a later line a directive or an
// identifier.
func endsStatement(src []byte, pos int) bool {
	newline := false
	j := pos
	for j < len(src) {
		end, kind := lexUnit(src, j)
		if kind != unitSpace && kind != unitComment {
			break
		}
		if bytes.IndexByte(src[j:end], '\n') >= 0 {
			newline = true
		}
		j = end
	}
	switch {
	case j >= len(src) || src[j] == '}':
		return true
	case !newline:
		return false
	}
	return src[j] == '#' || (isIdentByte(src[j]) && !isDigit(src[j]))
}

// consumeJunk extends a site over leftovers of earlier botched edits on the
// same line: repeated semicolons and dangling quotes.
func consumeJunk(src []byte, site *CallSite) {
	for {
		k := skipHSpace(src, site.End)
		if k >= len(src) {
			return
		}
		switch {
		case src[k] == ';':
			site.End = k + 1
			site.Defects = addDefect(site.Defects, DefectExtraTerminator)
		case src[k] == '"' && k+1 < len(src) && src[k+1] == ';':
			site.End = k + 2
			site.Defects = addDefect(site.Defects, DefectDanglingQuote)
		case src[k] == '"' && restOfLineBlank(src, k+1):
			site.End = k + 1
			site.Defects = addDefect(site.Defects, DefectDanglingQuote)
		default:
			return
		}
	}
}

func restOfLineBlank(src []byte, i int) bool {
	j := skipHSpace(src, i)
	return j >= len(src) || src[j] == '\n'
}

// classify assigns a state to a located site.
func (e *Engine) classify(site *CallSite) {
	if site.hasDefect(DefectUnbalanced) || site.hasDefect(DefectNoStream) || site.hasDefect(DefectInExpression) {
		site.State = StateMalformed
		return
	}

	var msg string
	switch site.Form {
	case FormLegacy:
		if _, ok := e.res.Level(site.Severity); !ok {
			site.State = StateUnknown
			return
		}
		msg = site.Args
	case FormTarget:
		var hasCategory bool
		_, msg, hasCategory = splitTargetArgs(site.Args)
		if !hasCategory {
			site.Defects = addDefect(site.Defects, DefectMissingCategory)
		}
	}

	canonical, defects, ok := Canonicalize(msg)
	site.Defects = addDefect(site.Defects, defects...)
	if !ok {
		site.State = StateMalformed
		return
	}
	if site.Form == FormTarget && topLevelComma(canonical) {
		site.Defects = addDefect(site.Defects, DefectExtraArgument)
		site.State = StateMalformed
		return
	}

	switch {
	case len(site.Defects) > 0:
		site.State = StateMalformed
		site.Recoverable = true
	case site.Form == FormTarget:
		site.State = StateMigrated
	default:
		site.State = StateUnmigrated
	}
}

// splitTargetArgs splits "CATEGORY, message" into its parts. The category
// is an identifier, optionally qualified with ::.
func splitTargetArgs(args string) (category, message string, ok bool) {
	s := strings.TrimSpace(args)
	src := []byte(s)
	i := 0
	for {
		j := identEnd(src, i)
		if j == i || isDigit(src[i]) {
			return "", s, false
		}
		i = j
		if !strings.HasPrefix(s[i:], "::") {
			break
		}
		i += 2
	}
	rest := strings.TrimLeft(s[i:], " \t\r\n")
	if !strings.HasPrefix(rest, ",") {
		return "", s, false
	}
	return s[:i], strings.TrimSpace(rest[1:]), true
}
