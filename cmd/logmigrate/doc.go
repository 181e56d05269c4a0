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

// Package main implements the logmigrate command-line interface.
// The tool rewrites legacy severity-only logging calls in C and C++ sources
// into the category-aware form, and repairs calls that an earlier partial
// migration left malformed. Running it twice changes nothing the second time.
//
// Usage:
//
//	logmigrate migrate [paths...] [flags]
//	logmigrate check [paths...] [flags]
//
// Example:
//
//	logmigrate migrate src --preview --diff
//	logmigrate check . --report migration.json
//
// Exit codes:
//   - 0: Success
//   - 1: General error
//   - 2: Invalid configuration or usage
//   - 3: Some files could not be read or written
//   - 4: check found call sites that would be rewritten
package main
