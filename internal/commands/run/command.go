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

// Package run implements the `formulae run` subcommand.
package run

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/tombee/formulae/internal/commands/shared"
	"github.com/tombee/formulae/internal/history"
	"github.com/tombee/formulae/internal/log"
	"github.com/tombee/formulae/internal/metrics"
	"github.com/tombee/formulae/internal/tracing"
	"github.com/tombee/formulae/pkg/formula"
)

// NewCommand creates the run command.
func NewCommand() *cobra.Command {
	var (
		sets        []string
		contextFile string
	)

	cmd := &cobra.Command{
		Use:   "run <target>",
		Short: "Evaluate a formula and print its result",
		Long: `Run resolves target's transitive formula dependencies, compiles the
composed expression chain, and evaluates it against a host context.

The host context is assembled from --context (a JSON file, or "-" for
stdin) and any --set key=value overrides, applied on top of the file in
the order given.`,
		Example: `  # Evaluate "total" against a literal context
  formulae run total --set quantity=3 --set unitPrice=9.99

  # Evaluate against a JSON context file, with one override
  formulae run total --context order.json --set tax=0.08`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTarget(cmd, args[0], contextFile, sets)
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "Host context override in key=value form (repeatable)")
	cmd.Flags().StringVar(&contextFile, "context", "", "JSON file with the host context (use '-' for stdin)")

	return cmd
}

func runTarget(cmd *cobra.Command, target, contextFile string, sets []string) error {
	logger := log.New(log.FromEnv())
	collector := metrics.NewCollector()

	evaluator, _, err := shared.BuildEvaluator(shared.GetConfigPath(), collector, logger)
	if err != nil {
		return err
	}

	hostContext, err := shared.BuildHostContext(contextFile, sets)
	if err != nil {
		return err
	}

	version, _, _ := shared.GetVersion()
	tracer, shutdownTracing, err := shared.BuildTracer("formulae.cli", version)
	if err != nil {
		return err
	}
	defer shutdownTracing()

	correlationID := tracing.NewCorrelationID()
	middleware := log.NewEvaluationMiddleware(logger)

	var state *formula.EvaluationState
	started := time.Now()
	runErr := middleware.Handler(&log.EvaluationRequest{
		Target:        target,
		CorrelationID: correlationID.String(),
		Caller:        "cli",
	}, func() error {
		ctx, span := tracing.StartRun(context.Background(), tracer, correlationID.String(), target)
		defer span.End()

		result, err := evaluator.Run(ctx, hostContext, target)
		if err != nil {
			span.RecordError(err)
			return err
		}
		state = result
		return nil
	})
	duration := time.Since(started)

	recordHistory(logger, target, correlationID.String(), state, runErr, duration)

	if runErr != nil {
		return shared.NewEvaluationError(fmt.Sprintf("evaluating %q failed", target), runErr)
	}

	return printResult(cmd, target, state)
}

// recordHistory best-effort persists this run to the history database.
// A failure here never fails the command: history is a convenience, not
// part of the evaluation contract.
func recordHistory(logger *slog.Logger, target, correlationID string, state *formula.EvaluationState, runErr error, duration time.Duration) {
	path := shared.GetHistoryPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logger.Warn("could not create history directory", "path", path, "error", err)
		return
	}

	store, err := history.Open(path)
	if err != nil {
		logger.Warn("could not open history database", "path", path, "error", err)
		return
	}
	defer store.Close()

	run := history.Run{
		Target:        target,
		CorrelationID: correlationID,
		Caller:        "cli",
		DurationMS:    duration.Milliseconds(),
	}
	if runErr != nil {
		run.Error = runErr.Error()
	} else if state != nil {
		run.Result = state.ReturnValue()
	}

	if err := store.Record(context.Background(), run); err != nil {
		logger.Warn("could not record run history", "error", err)
	}
}

func printResult(cmd *cobra.Command, target string, state *formula.EvaluationState) error {
	if shared.GetJSON() {
		return printResultJSON(cmd, target, state)
	}
	return printResultText(cmd, target, state)
}
