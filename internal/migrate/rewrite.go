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

import "strings"

// Rewrite renders a resolved call in target form:
//
//	MACRO(CATEGORY, "text");
//	MACRO(CATEGORY, chain);
//
// A chain containing a top-level comma is parenthesized so it stays a single
// macro argument. A chain ending in a line comment gets the closing paren on
// its own line.
func Rewrite(call ResolvedCall) string {
	var msg string
	switch call.Message.Kind {
	case MessageLiteral:
		msg = quoteLiteral(call.Message.Text)
	default:
		msg = call.Message.Text
		if topLevelComma(msg) {
			if endsInLineComment(msg) {
				msg = "(" + msg + "\n)"
			} else {
				msg = "(" + msg + ")"
			}
		}
	}

	var b strings.Builder
	b.Grow(len(call.Macro) + len(call.Category) + len(msg) + 6)
	b.WriteString(call.Macro)
	b.WriteByte('(')
	b.WriteString(call.Category)
	b.WriteString(", ")
	b.WriteString(msg)
	if endsInLineComment(msg) {
		b.WriteByte('\n')
	}
	b.WriteString(");")
	return b.String()
}

// quoteLiteral wraps text in quotes. Existing escape sequences are kept;
// bare quotes and raw line breaks are escaped.
func quoteLiteral(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 2)
	b.WriteByte('"')
	for i := 0; i < len(text); i++ {
		switch c := text[i]; c {
		case '\\':
			b.WriteByte(c)
			if i+1 < len(text) {
				i++
				b.WriteByte(text[i])
			} else {
				b.WriteByte('\\')
			}
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
