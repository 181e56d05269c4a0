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

	"github.com/dlclark/regexp2"

	lmerrors "github.com/sirseerhq/sirseer-logmigrate/internal/errors"
)

// tagPattern matches a leading component tag such as "[Decoder] " or
// "[aasdk::Channel]", but only when some message text follows it.
var tagPattern = regexp2.MustCompile(`^\[[A-Za-z_]\w*(?:::[A-Za-z_]\w*)*\][ \t]*(?=\S)`, regexp2.None)

// Normalize turns a canonical message argument into a Message. A single
// plain string literal becomes a literal message holding its inner text; any
// other non-empty expression is kept verbatim as a chain.
func Normalize(args string, stripTags bool) (Message, error) {
	s := strings.TrimSpace(args)
	if s == "" {
		return Message{Kind: MessageLiteral}, nil
	}
	if !balance(s) {
		return Message{}, lmerrors.ErrUnbalancedArgumentList
	}
	if !isSingleLiteral(s) {
		return Message{Kind: MessageChain, Text: s}, nil
	}
	text := s[1 : len(s)-1]
	if stripTags {
		text = stripTag(text)
	}
	return Message{Kind: MessageLiteral, Text: text}, nil
}

func stripTag(text string) string {
	m, err := tagPattern.FindStringMatch(text)
	if err != nil || m == nil {
		return text
	}
	return text[len(m.String()):]
}
