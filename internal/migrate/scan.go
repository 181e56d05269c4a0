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

import "bytes"

// unitKind classifies one lexical unit of C/C++ source.
type unitKind int

const (
	unitSpace unitKind = iota
	unitComment
	unitString
	unitChar
	unitBadString // string literal cut off by a raw newline or end of input
	unitIdent
	unitNumber
	unitPunct
)

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isHSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v'
}

func isEncodingPrefix(s string) bool {
	return s == "u8" || s == "u" || s == "U" || s == "L"
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isIdentByte(c byte) bool {
	return c == '_' || isDigit(c) || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c >= 0x80
}

// lexUnit returns the end of the lexical unit starting at src[i].
// Comments, string and character literals (including encoding prefixes and
// raw strings) are returned whole so callers never look inside them.
func lexUnit(src []byte, i int) (int, unitKind) {
	c := src[i]
	switch {
	case isSpace(c):
		return i + 1, unitSpace
	case c == '/' && i+1 < len(src) && src[i+1] == '/':
		return lineEnd(src, i), unitComment
	case c == '/' && i+1 < len(src) && src[i+1] == '*':
		if k := bytes.Index(src[i+2:], []byte("*/")); k >= 0 {
			return i + 2 + k + 2, unitComment
		}
		return len(src), unitComment
	case c == '"':
		end, ok := skipQuoted(src, i)
		if !ok {
			return end, unitBadString
		}
		return end, unitString
	case c == '\'':
		end, ok := skipQuoted(src, i)
		if !ok {
			return i + 1, unitPunct
		}
		return end, unitChar
	case isDigit(c):
		return skipNumber(src, i), unitNumber
	case isIdentByte(c):
		end := identEnd(src, i)
		if end < len(src) && (src[end] == '"' || src[end] == '\'') {
			prefix := string(src[i:end])
			switch prefix {
			case "R", "u8R", "uR", "UR", "LR":
				if src[end] == '"' {
					if e, ok := skipRawString(src, end); ok {
						return e, unitString
					}
					return len(src), unitBadString
				}
			default:
				if isEncodingPrefix(prefix) {
					return lexUnit(src, end)
				}
			}
		}
		return end, unitIdent
	}
	return i + 1, unitPunct
}

// skipQuoted skips a string or character literal starting at src[i].
// It stops at a raw newline or the end of input and reports false.
func skipQuoted(src []byte, i int) (int, bool) {
	q := src[i]
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case '\n':
			return j, false
		case q:
			return j + 1, true
		}
	}
	return len(src), false
}

// skipRawString skips R"delim( ... )delim" with src[i] at the opening quote.
func skipRawString(src []byte, i int) (int, bool) {
	open := bytes.IndexByte(src[i+1:], '(')
	if open < 0 || open > 16 {
		return 0, false
	}
	delim := src[i+1 : i+1+open]
	if bytes.ContainsAny(delim, " \\)\t\n") {
		return 0, false
	}
	closer := make([]byte, 0, len(delim)+2)
	closer = append(closer, ')')
	closer = append(closer, delim...)
	closer = append(closer, '"')
	body := i + 1 + open + 1
	k := bytes.Index(src[body:], closer)
	if k < 0 {
		return 0, false
	}
	return body + k + len(closer), true
}

func skipNumber(src []byte, i int) int {
	j := i
	for j < len(src) {
		c := src[j]
		switch {
		case isIdentByte(c) || c == '.':
			j++
		case c == '\'' && j+1 < len(src) && isIdentByte(src[j+1]):
			j++
		case (c == '+' || c == '-') && j > i && (src[j-1] == 'e' || src[j-1] == 'E' || src[j-1] == 'p' || src[j-1] == 'P'):
			j++
		default:
			return j
		}
	}
	return j
}

func identEnd(src []byte, i int) int {
	for i < len(src) && isIdentByte(src[i]) {
		i++
	}
	return i
}

// lineEnd returns the index of the newline ending the line containing i,
// or len(src).
func lineEnd(src []byte, i int) int {
	if k := bytes.IndexByte(src[i:], '\n'); k >= 0 {
		return i + k
	}
	return len(src)
}

// directiveEnd returns the end of a preprocessor directive starting at i,
// following backslash continuations.
func directiveEnd(src []byte, i int) int {
	for {
		end := lineEnd(src, i)
		if end >= len(src) {
			return end
		}
		k := end
		if k > i && src[k-1] == '\r' {
			k--
		}
		if k > i && src[k-1] == '\\' {
			i = end + 1
			continue
		}
		return end
	}
}

// skipSpace skips whitespace and comments.
func skipSpace(src []byte, i int) int {
	for i < len(src) {
		end, kind := lexUnit(src, i)
		if kind != unitSpace && kind != unitComment {
			return i
		}
		i = end
	}
	return i
}

// skipHSpace skips blanks without crossing a newline.
func skipHSpace(src []byte, i int) int {
	for i < len(src) && isHSpace(src[i]) {
		i++
	}
	return i
}

// continues reports whether the code after a semicolon at i-1 carries on
// the same expression, as in a stream chain split by a stray semicolon.
func continues(src []byte, i int) bool {
	j := skipSpace(src, i)
	if j >= len(src) {
		return false
	}
	switch src[j] {
	case ')', '.', ',':
		return true
	case '+':
		return j+1 >= len(src) || src[j+1] != '+'
	case '<':
		return j+1 < len(src) && src[j+1] == '<'
	}
	return false
}

// balance reports whether s is lexically complete: every literal closed and
// every paren, bracket and brace matched.
func balance(s string) bool {
	src := []byte(s)
	var stack []byte
	for i := 0; i < len(src); {
		end, kind := lexUnit(src, i)
		switch kind {
		case unitBadString:
			return false
		case unitComment:
			if src[i+1] == '*' && !bytes.HasSuffix(src[i:end], []byte("*/")) {
				return false
			}
		case unitPunct:
			switch c := src[i]; c {
			case '(', '[', '{':
				stack = append(stack, c)
			case ')', ']', '}':
				if len(stack) == 0 || stack[len(stack)-1] != opener(c) {
					return false
				}
				stack = stack[:len(stack)-1]
			}
		}
		i = end
	}
	return len(stack) == 0
}

func opener(c byte) byte {
	switch c {
	case ')':
		return '('
	case ']':
		return '['
	}
	return '{'
}

// topLevelComma reports whether s contains a comma outside any nesting.
func topLevelComma(s string) bool {
	src := []byte(s)
	depth := 0
	for i := 0; i < len(src); {
		end, kind := lexUnit(src, i)
		if kind == unitPunct {
			switch src[i] {
			case '(', '[', '{':
				depth++
			case ')', ']', '}':
				depth--
			case ',':
				if depth == 0 {
					return true
				}
			}
		}
		i = end
	}
	return false
}

// endsInLineComment reports whether the last token of s is a // comment.
func endsInLineComment(s string) bool {
	src := []byte(s)
	last := unitSpace
	for i := 0; i < len(src); {
		end, kind := lexUnit(src, i)
		if kind != unitSpace {
			last = kind
			if kind == unitComment && src[i+1] == '*' {
				last = unitPunct
			}
		}
		i = end
	}
	return last == unitComment
}
