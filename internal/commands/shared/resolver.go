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

package shared

import (
	"context"
	"log/slog"

	"github.com/tombee/formulae/internal/definitions"
	"github.com/tombee/formulae/internal/metrics"
	"github.com/tombee/formulae/pkg/formula"
)

// BuildEvaluator loads the definitions matched by glob and builds an
// Evaluator for them, wiring a shared metrics.Collector in so the CLI's
// /metrics surface (when hosted) and Evaluator instrumentation agree.
//
// This is the single path every subcommand uses to go from a
// --definitions flag to a ready-to-run formula.Evaluator, so that `run`,
// `validate`, and `deps` apply identical loading and rounding rules.
func BuildEvaluator(glob string, collector *metrics.Collector, logger *slog.Logger) (*formula.Evaluator, []formula.Definition, error) {
	if glob == "" {
		return nil, nil, NewInvalidConfigError("--definitions is required", nil)
	}

	loader := definitions.NewLoader(logger)
	defs, err := loader.Load(glob)
	if err != nil {
		return nil, nil, NewInvalidConfigError("could not load formula definitions", err)
	}

	var m formula.EvaluatorMetrics
	if collector != nil {
		m = collector
	}

	factory := formula.NewFactory(formula.FactoryOptions{
		Metrics: m,
	})

	evaluator, err := factory.GetEvaluator(context.Background(), defs)
	if err != nil {
		return nil, nil, NewCompilationError("could not build evaluator", err)
	}

	return evaluator, defs, nil
}
