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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "dev"

// globalOptions holds the persistent flags shared by all commands.
type globalOptions struct {
	configPath string
	noColor    bool
}

func newRootCommand() *cobra.Command {
	g := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "logmigrate",
		Short: "Migrate legacy logging calls to category-aware logging macros",
		Long: `logmigrate rewrites severity-only logging calls such as

  OPENAUTO_LOG(info) << "[AudioOutput] started";

into category-aware calls such as

  OPENAUTO_LOG_INFO(AUDIO, "started");

Calls already in the new form are left alone, calls that an earlier partial
migration left malformed are repaired, and calls with an unknown severity are
reported but never changed.`,
		Version:       version,
		SilenceUsage:  true, // Don't show usage on error
		SilenceErrors: true, // We'll handle error printing ourselves
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Config file (default: .logmigrate.yaml, .logmigrate.yml, .logmigrate.toml, ~/.logmigrate/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "Disable colored output")
	rootCmd.SetFlagErrorFunc(flagError)

	rootCmd.AddCommand(newMigrateCommand(g))
	rootCmd.AddCommand(newCheckCommand(g))

	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(mapErrorToExitCode(err))
}
