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

// Package deps implements the `formulae deps` subcommand.
package deps

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tombee/formulae/internal/commands/shared"
	"github.com/tombee/formulae/internal/log"
	"github.com/tombee/formulae/pkg/formula"
)

// NewCommand creates the deps command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deps <target>",
		Short: "List the formula identifiers a target transitively references",
		Long: `Deps compiles target's composite (the same resolution Run uses) and
prints every identifier textually referenced anywhere in its chain of
dependency expressions, without evaluating anything.`,
		Example:       `  formulae deps total --definitions 'definitions/**/*.yaml'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeps(cmd, args[0])
		},
	}

	return cmd
}

func runDeps(cmd *cobra.Command, target string) error {
	logger := log.New(log.FromEnv())

	evaluator, _, err := shared.BuildEvaluator(shared.GetConfigPath(), nil, logger)
	if err != nil {
		return err
	}

	ids, err := evaluator.GetContainedIdentifiers(context.Background(), target)
	if err != nil {
		return shared.NewMissingTargetError(fmt.Sprintf("could not resolve %q", target), err)
	}

	if shared.GetJSON() {
		return printJSON(target, ids)
	}
	return printText(cmd, target, ids)
}

func printText(cmd *cobra.Command, target string, ids []formula.Identifier) error {
	if len(ids) == 0 {
		cmd.Println(shared.RenderLabel(fmt.Sprintf("%s has no formula dependencies", target)))
		return nil
	}

	cmd.Println(shared.Header.Render(fmt.Sprintf("%s depends on:", target)))
	for _, id := range ids {
		if id.Definition != nil {
			cmd.Printf("  %s (%s)\n", id.Name, id.Definition.DataType)
		} else {
			cmd.Printf("  %s %s\n", id.Name, shared.RenderLabel("(context value)"))
		}
	}
	return nil
}
