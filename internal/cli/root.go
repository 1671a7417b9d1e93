// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"github.com/spf13/cobra"
	"github.com/tombee/formulae/internal/commands/shared"
)

// SetVersion sets the version information (called from main).
func SetVersion(v, c, b string) {
	shared.SetVersion(v, c, b)
}

// NewRootCommand creates the root Cobra command for the formulae CLI.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "formulae",
		Short: "formulae - dependency-aware formula evaluation",
		Long: `formulae evaluates named formulas over a host-supplied context,
resolving each formula's transitive dependencies and compiling the whole
chain into a single expression program.

Run 'formulae validate' to check a definition set without evaluating it.
Run 'formulae deps <target>' to see a target's formula dependencies.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	verbose, quiet, json, config := shared.RegisterFlagPointers()
	trace := shared.RegisterTraceFlagPointer()
	historyDB := shared.RegisterHistoryFlagPointer()

	cmd.PersistentFlags().BoolVarP(verbose, "verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().BoolVarP(quiet, "quiet", "q", false, "Suppress non-error output")
	cmd.PersistentFlags().BoolVar(json, "json", false, "Output in JSON format")
	cmd.PersistentFlags().StringVar(config, "definitions", "", "Path or glob to formula definition files (YAML)")
	cmd.PersistentFlags().BoolVar(trace, "trace", false, "Enable tracing spans for each evaluation, printed to stdout")
	cmd.PersistentFlags().StringVar(historyDB, "history-db", "", "SQLite database path for run history (default: ~/.formulae/history.db)")

	return cmd
}

// GetVersion returns version information.
func GetVersion() (string, string, string) {
	return shared.GetVersion()
}

// HandleExitError handles exit errors with proper exit codes.
func HandleExitError(err error) {
	shared.HandleExitError(err)
}
