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

package testutil

import (
	"fmt"
	"strings"
)

// SourceBuilder provides a fluent API for creating C++ test sources with
// logging calls in either form.
type SourceBuilder struct {
	legacyMacro  string
	targetPrefix string
	includes     []string
	class        string
	method       string
	lines        []string
}

// NewSourceBuilder creates a builder for one method of class using the
// default OPENAUTO_LOG macros.
func NewSourceBuilder(class string) *SourceBuilder {
	return &SourceBuilder{
		legacyMacro:  "OPENAUTO_LOG",
		targetPrefix: "OPENAUTO_LOG_",
		includes:     []string{"Logging.hpp"},
		class:        class,
		method:       "run",
	}
}

// WithMacros sets the legacy macro and the target prefix
func (b *SourceBuilder) WithMacros(legacy, prefix string) *SourceBuilder {
	b.legacyMacro = legacy
	b.targetPrefix = prefix
	return b
}

// WithMethod sets the name of the generated method
func (b *SourceBuilder) WithMethod(method string) *SourceBuilder {
	b.method = method
	return b
}

// WithInclude adds an #include line
func (b *SourceBuilder) WithInclude(header string) *SourceBuilder {
	b.includes = append(b.includes, header)
	return b
}

// Legacy adds a legacy call: MACRO(severity) << chain;
func (b *SourceBuilder) Legacy(severity, chain string) *SourceBuilder {
	return b.Raw(fmt.Sprintf("%s(%s) << %s;", b.legacyMacro, severity, chain))
}

// Target adds a target-form call: PREFIXLEVEL(category, message);
func (b *SourceBuilder) Target(level, category, message string) *SourceBuilder {
	return b.Raw(fmt.Sprintf("%s%s(%s, %s);", b.targetPrefix, level, category, message))
}

// Raw adds a statement verbatim
func (b *SourceBuilder) Raw(stmt string) *SourceBuilder {
	b.lines = append(b.lines, stmt)
	return b
}

// Build renders the source file
func (b *SourceBuilder) Build() string {
	var sb strings.Builder
	for _, inc := range b.includes {
		fmt.Fprintf(&sb, "#include \"%s\"\n", inc)
	}
	fmt.Fprintf(&sb, "\nvoid %s::%s() {\n", b.class, b.method)
	for _, line := range b.lines {
		fmt.Fprintf(&sb, "    %s\n", line)
	}
	sb.WriteString("}\n")
	return sb.String()
}

// LegacyCall returns a single legacy statement without indentation.
func LegacyCall(severity, chain string) string {
	return fmt.Sprintf("OPENAUTO_LOG(%s) << %s;", severity, chain)
}

// TargetCall returns a single target statement without indentation.
func TargetCall(level, category, message string) string {
	return fmt.Sprintf("OPENAUTO_LOG_%s(%s, %s);", level, category, message)
}
