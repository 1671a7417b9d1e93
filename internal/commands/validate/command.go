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

// Package validate implements the `formulae validate` subcommand.
package validate

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/tombee/formulae/internal/commands/shared"
	"github.com/tombee/formulae/internal/log"
)

// NewCommand creates the validate command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a definition set's syntax without evaluating it",
		Long: `Validate loads the definitions matched by --definitions and confirms
every formula compiles: unresolvable identifiers, cycles, and parse errors
are all reported without requiring a host context.`,
		Example: `  formulae validate --definitions 'definitions/**/*.yaml'`,
		Args:    cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd)
		},
	}

	return cmd
}

func runValidate(cmd *cobra.Command) error {
	logger := log.New(log.FromEnv())

	evaluator, defs, err := shared.BuildEvaluator(shared.GetConfigPath(), nil, logger)
	if err != nil {
		return err
	}

	var failures []validationFailure
	for _, def := range defs {
		if _, err := evaluator.GetContainedIdentifiers(context.Background(), def.Identifier); err != nil {
			failures = append(failures, validationFailure{Identifier: def.Identifier, Message: err.Error()})
		}
	}

	if shared.GetJSON() {
		return printJSON(defs, failures)
	}
	return printText(cmd, defs, failures)
}

type validationFailure struct {
	Identifier string
	Message    string
}
