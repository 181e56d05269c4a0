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

// Form identifies which macro family a call site was written in.
type Form int

const (
	// FormLegacy is the severity-only stream form: LEGACY(sev) << chain;
	FormLegacy Form = iota
	// FormTarget is the category-aware form: PREFIX_LEVEL(CATEGORY, message);
	FormTarget
)

func (f Form) String() string {
	switch f {
	case FormLegacy:
		return "legacy"
	case FormTarget:
		return "target"
	default:
		return "unknown"
	}
}

// State is the classification of a call site after location.
type State int

const (
	StateUnmigrated State = iota
	StateMigrated
	StateMalformed
	StateUnknown
)

func (s State) String() string {
	switch s {
	case StateUnmigrated:
		return "unmigrated"
	case StateMigrated:
		return "migrated"
	case StateMalformed:
		return "malformed"
	case StateUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// Defect names one structural problem found at a call site.
type Defect string

const (
	DefectUnterminated    Defect = "unterminated"
	DefectExtraTerminator Defect = "extra-terminator"
	DefectDanglingQuote   Defect = "dangling-quote"
	DefectDoubledQuote    Defect = "doubled-quote"
	DefectStrConversion   Defect = "str-conversion"
	DefectInnerTerminator Defect = "inner-terminator"
	DefectUnbalanced      Defect = "unbalanced"
	DefectMissingCategory Defect = "missing-category"
	DefectMissingParen    Defect = "missing-paren"
	DefectQuoteImbalance  Defect = "quote-imbalance"
	DefectNoStream        Defect = "no-stream"
	DefectExtraArgument   Defect = "extra-argument"
	DefectInExpression    Defect = "in-expression"
)

// CallSite is one occurrence of a logging macro together with its exact byte
// range in the file. End is exclusive and covers the terminating semicolon
// plus any trailing junk that belongs to the statement.
type CallSite struct {
	Start    int
	End      int
	Line     int
	Form     Form
	Macro    string
	Severity string
	Args     string
	State    State
	Defects  []Defect

	// Recoverable is only meaningful for StateMalformed.
	Recoverable bool
}

// Text returns the source bytes covered by the site.
func (s CallSite) Text(src []byte) string {
	return string(src[s.Start:s.End])
}

func (s CallSite) hasDefect(d Defect) bool {
	for _, x := range s.Defects {
		if x == d {
			return true
		}
	}
	return false
}

// MessageKind distinguishes a plain string literal from any other expression.
type MessageKind int

const (
	MessageLiteral MessageKind = iota
	MessageChain
)

// Message is the normalized message argument of a call.
// For literals Text is the inner text in source form, escapes preserved.
type Message struct {
	Kind MessageKind
	Text string
}

// ResolvedCall is everything needed to render one target-form call.
type ResolvedCall struct {
	Macro    string
	Category string
	Message  Message
}

// FileUnit is the input to the engine. Text is never modified.
type FileUnit struct {
	Path string
	Text []byte
}

// Counts tallies what happened to the call sites of one or more files.
type Counts struct {
	Migrated             int `json:"migrated" yaml:"migrated"`
	Repaired             int `json:"repaired" yaml:"repaired"`
	AlreadyCanonical     int `json:"already_canonical" yaml:"already_canonical"`
	SkippedUnknown       int `json:"skipped_unknown" yaml:"skipped_unknown"`
	SkippedUnrecoverable int `json:"skipped_unrecoverable" yaml:"skipped_unrecoverable"`
}

// Add accumulates o into c.
func (c *Counts) Add(o Counts) {
	c.Migrated += o.Migrated
	c.Repaired += o.Repaired
	c.AlreadyCanonical += o.AlreadyCanonical
	c.SkippedUnknown += o.SkippedUnknown
	c.SkippedUnrecoverable += o.SkippedUnrecoverable
}

// Changes is the number of sites that were or would be rewritten.
func (c Counts) Changes() int {
	return c.Migrated + c.Repaired
}

// UnknownSite records a legacy call whose severity is not in the table.
type UnknownSite struct {
	Path  string `json:"path" yaml:"path"`
	Line  int    `json:"line" yaml:"line"`
	Token string `json:"token" yaml:"token"`
	Text  string `json:"text" yaml:"text"`
}

// SiteProblem records a malformed call that could not be repaired.
type SiteProblem struct {
	Path   string `json:"path" yaml:"path"`
	Line   int    `json:"line" yaml:"line"`
	Reason string `json:"reason" yaml:"reason"`
	Text   string `json:"text" yaml:"text"`
}

// FileResult is the outcome of migrating one file.
type FileResult struct {
	Path     string
	Sites    []CallSite
	Counts   Counts
	Output   []byte
	Changed  bool
	Diff     string
	Unknown  []UnknownSite
	Problems []SiteProblem
}
