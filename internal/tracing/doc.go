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

/*
Package tracing provides distributed tracing for formula evaluation.

It wraps the OpenTelemetry SDK. StartRun opens a span around one
Evaluator.Run call and is used by the CLI run command and the MCP
formulae_run tool, with correlation IDs propagated across both surfaces.
StartResolve opens a span for one identifier's resolution but has no
caller outside tests; compilation has no span of its own.

Metrics are handled separately, by internal/metrics, using
prometheus/client_golang directly rather than an OpenTelemetry metrics
bridge.

# Quick start

	cfg := tracing.DefaultConfig()
	cfg.Enabled = true
	provider, err := tracing.NewOTelProviderWithConfig(cfg)
	if err != nil {
	    ...
	}
	defer provider.Shutdown(context.Background())

	tracer := provider.Tracer("formulae.evaluator")
	ctx, span := tracer.Start(ctx, "evaluator.run",
	    observability.WithAttributes(map[string]any{"target": target}),
	)
	defer span.End()
*/
package tracing
