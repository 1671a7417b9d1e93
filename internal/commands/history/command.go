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

// Package history implements the `formulae history` subcommand.
package history

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tombee/formulae/internal/commands/shared"
	"github.com/tombee/formulae/internal/history"
)

// NewCommand creates the history command.
func NewCommand() *cobra.Command {
	var (
		target string
		limit  int
	)

	cmd := &cobra.Command{
		Use:           "history",
		Short:         "List recently recorded formula runs",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, target, limit)
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "Only show runs of this formula identifier")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")

	return cmd
}

func runHistory(cmd *cobra.Command, target string, limit int) error {
	path := shared.GetHistoryPath()

	store, err := history.Open(path)
	if err != nil {
		return shared.NewInvalidConfigError(fmt.Sprintf("could not open history database at %q", path), err)
	}
	defer store.Close()

	runs, err := store.Recent(context.Background(), target, limit)
	if err != nil {
		return shared.NewInvalidConfigError("could not read run history", err)
	}

	if shared.GetJSON() {
		return printJSON(runs)
	}
	return printText(cmd, runs)
}
