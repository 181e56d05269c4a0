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

// Package source discovers C and C++ source files and reads and writes them
// safely.
//
// Every write is atomic, using a write-to-temp-and-rename pattern so a crash
// never leaves a half-written source file behind. Before a file is replaced,
// its on-disk SHA256 checksum is compared with the checksum taken when it was
// read; a file edited by someone else during the run is left alone.
//
// Example usage:
//
//	paths, err := source.Discover([]string{"src"}, source.DefaultFilter())
//	snap, err := source.Read(paths[0])
//	err = source.WriteAtomic(snap, newText)
package source
