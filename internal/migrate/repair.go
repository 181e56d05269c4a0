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
	"strings"
)

// maxRepairRounds bounds Canonicalize. Every step only ever shortens the
// message or closes a literal, so real inputs settle in two or three rounds.
const maxRepairRounds = 8

type repairStep struct {
	defect Defect
	apply  func(string) string
}

var repairSteps = []repairStep{
	{DefectDoubledQuote, collapseQuotes},
	{DefectDanglingQuote, closeLiteral},
	{DefectInnerTerminator, dropInnerTerminators},
	{DefectMissingParen, trimUnmatchedParens},
	{DefectStrConversion, unwrapConversion},
	{DefectStrConversion, stripLiteralRemnant},
}

// Canonicalize removes the artifacts left behind by earlier, partial
// migrations from a message argument: duplicated quotes, dangling .str()
// conversions, statement terminators inside the argument list and unmatched
// outer parens. It repeats until nothing changes and reports the defects it
// repaired. Defects are only reported when the message actually changed.
// The result is false if the message is still not lexically balanced, has a
// string literal glued to an identifier, or the repairs did not settle.
func Canonicalize(msg string) (string, []Defect, bool) {
	orig := strings.TrimSpace(msg)
	cur := orig
	var defects []Defect
	for round := 0; round < maxRepairRounds; round++ {
		next := cur
		for _, step := range repairSteps {
			if out := strings.TrimSpace(step.apply(next)); out != next {
				next = out
				defects = addDefect(defects, step.defect)
			}
		}
		if next == cur {
			if cur == orig {
				defects = nil
			}
			return cur, defects, balance(cur) && !gluedLiteral(cur)
		}
		cur = next
	}
	return cur, defects, false
}

func addDefect(defects []Defect, add ...Defect) []Defect {
	for _, d := range add {
		dup := false
		for _, x := range defects {
			if x == d {
				dup = true
				break
			}
		}
		if !dup {
			defects = append(defects, d)
		}
	}
	return defects
}

func isDelim(c byte) bool {
	return isSpace(c) || strings.IndexByte("\"<>(),+;=", c) >= 0
}

// collapseQuotes turns ""text"" into "text". A doubled quote only counts as
// an artifact when it is glued to ordinary text, so "" << x and user-defined
// literal suffixes are left alone.
func collapseQuotes(s string) string {
	if len(s) > 2 && strings.HasPrefix(s, `""`) && !isDelim(s[2]) && !literalSuffix(s[2:]) {
		s = s[1:]
	}
	if n := len(s); n > 2 && strings.HasSuffix(s, `""`) && !isDelim(s[n-3]) && s[n-3] != '\\' && !prefixedEmpty(s) {
		s = s[:n-1]
	}
	return s
}

// prefixedEmpty reports whether s ends in an empty literal with an encoding
// prefix, such as L"".
func prefixedEmpty(s string) bool {
	end := len(s) - 2
	k := end
	for k > 0 && isIdentByte(s[k-1]) {
		k--
	}
	return isEncodingPrefix(s[k:end])
}

// gluedLiteral reports whether a string literal in s runs straight into an
// identifier that is not a literal suffix, as in "a << "text. Such text is
// left behind when a quote was dropped from the middle of a chain.
func gluedLiteral(s string) bool {
	src := []byte(s)
	for i := 0; i < len(src); {
		end, kind := lexUnit(src, i)
		if kind == unitString && end < len(src) && isIdentByte(src[end]) && !isDigit(src[end]) {
			if !literalSuffix(s[end:]) {
				return true
			}
		}
		i = end
	}
	return false
}

func literalSuffix(rest string) bool {
	if rest[0] == '_' {
		return true
	}
	n := 0
	for n < len(rest) && isIdentByte(rest[n]) {
		n++
	}
	if n < len(rest) && !isDelim(rest[n]) {
		return false
	}
	return rest[:n] == "s" || rest[:n] == "sv"
}

// closeLiteral repairs a message whose last string literal runs to the end
// of the argument list. A lone trailing quote is dropped; otherwise the
// literal is closed.
func closeLiteral(s string) string {
	src := []byte(s)
	for i := 0; i < len(src); {
		end, kind := lexUnit(src, i)
		if kind == unitBadString {
			if end != len(src) {
				return s
			}
			if i == len(src)-1 && i > 0 {
				return s[:i]
			}
			return s + `"`
		}
		i = end
	}
	return s
}

// dropInnerTerminators removes semicolons that split a single expression,
// along with the blanks in front of them. Semicolons inside braces belong to
// lambda bodies and are kept.
func dropInnerTerminators(s string) string {
	src := []byte(s)
	var b strings.Builder
	braces := 0
	last := 0
	for i := 0; i < len(src); {
		end, kind := lexUnit(src, i)
		if kind == unitPunct {
			switch src[i] {
			case '{':
				braces++
			case '}':
				braces--
			case ';':
				if braces == 0 {
					cut := i
					for cut > last && isHSpace(src[cut-1]) {
						cut--
					}
					b.Write(src[last:cut])
					last = end
				}
			}
		}
		i = end
	}
	if last == 0 {
		return s
	}
	b.Write(src[last:])
	return b.String()
}

func parenCounts(s string) (opens, closes int) {
	src := []byte(s)
	for i := 0; i < len(src); {
		end, kind := lexUnit(src, i)
		if kind == unitPunct {
			switch src[i] {
			case '(':
				opens++
			case ')':
				closes++
			}
		}
		i = end
	}
	return opens, closes
}

// trimUnmatchedParens drops a leading "(" or trailing ")" that has no partner.
func trimUnmatchedParens(s string) string {
	opens, closes := parenCounts(s)
	switch {
	case opens > closes && strings.HasPrefix(s, "("):
		return s[1:]
	case closes > opens && strings.HasSuffix(s, ")"):
		return s[:len(s)-1]
	}
	return s
}

// matchParenString returns the index of the paren closing the one at s[open],
// skipping literals and comments, or -1.
func matchParenString(s string, open int) int {
	src := []byte(s)
	depth := 0
	for i := open; i < len(src); {
		end, kind := lexUnit(src, i)
		if kind == unitBadString {
			return -1
		}
		if kind == unitPunct {
			switch src[i] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					return i
				}
			}
		}
		i = end
	}
	return -1
}

var streamConstructors = []string{
	"std::stringstream()",
	"std::ostringstream()",
	"std::stringstream{}",
	"std::ostringstream{}",
}

// unwrapConversion removes a .str() conversion wrapped around the whole
// message, and redundant parens around a single literal:
//
//	(std::stringstream() << "a" << b).str()   ->  "a" << b
//	("text").str()                            ->  "text"
//	([Tag] bare words).str()                  ->  "[Tag] bare words"
//	("text")                                  ->  "text"
func unwrapConversion(s string) string {
	if !strings.HasPrefix(s, "(") {
		return s
	}
	closeIdx := matchParenString(s, 0)
	if closeIdx < 0 {
		return s
	}
	inner := strings.TrimSpace(s[1:closeIdx])
	tail := strings.TrimSpace(s[closeIdx+1:])

	if tail == "" {
		if isSingleLiteral(inner) {
			return inner
		}
		return s
	}
	if tail != ".str()" {
		return s
	}

	for _, ctor := range streamConstructors {
		if rest, ok := strings.CutPrefix(inner, ctor); ok {
			rest = strings.TrimSpace(rest)
			if chain, ok := strings.CutPrefix(rest, "<<"); ok {
				return strings.TrimSpace(chain)
			}
		}
	}
	if isSingleLiteral(inner) {
		return inner
	}
	if strings.HasPrefix(inner, "[") && !strings.ContainsAny(inner, "\"\n\\") && !strings.Contains(inner, "<<") {
		return `"` + inner + `"`
	}
	return s
}

// stripLiteralRemnant handles a .str() conversion that was swallowed into
// the literal itself: "(text).str()" becomes "text".
func stripLiteralRemnant(s string) string {
	if !isSingleLiteral(s) {
		return s
	}
	inner := s[1 : len(s)-1]
	text, ok := strings.CutSuffix(inner, ").str()")
	if !ok {
		return s
	}
	text = strings.TrimPrefix(text, "(")
	return `"` + text + `"`
}

// isSingleLiteral reports whether s is exactly one plain "..." literal.
func isSingleLiteral(s string) bool {
	if len(s) < 2 || s[0] != '"' {
		return false
	}
	end, kind := lexUnit([]byte(s), 0)
	return kind == unitString && end == len(s)
}
