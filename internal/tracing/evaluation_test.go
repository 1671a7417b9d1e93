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

package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tombee/formulae/pkg/observability"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartRun_AndStartResolve(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider, err := NewOTelProvider("formulae-test", "1.0.0", sdktrace.WithSyncer(exporter))
	require.NoError(t, err)
	defer provider.Shutdown(context.Background())

	otelTracer := provider.tp.Tracer("test")

	ctx, runSpan := StartRun(context.Background(), otelTracer, "run-1", "totalCost")
	_, resolveSpan := StartResolve(ctx, otelTracer, "subtotal")

	resolveSpan.SetAttributes(map[string]any{"cache": "miss"})
	resolveSpan.AddEvent("resolved", map[string]any{"identifier": "subtotal"})
	resolveSpan.End()

	runSpan.RecordError(errors.New("missing definition"))
	runSpan.End()

	require.NoError(t, provider.ForceFlush(context.Background()))

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "resolve: subtotal", spans[0].Name)
	assert.Equal(t, "evaluator.run: totalCost", spans[1].Name)
	assert.Equal(t, codes.Error, spans[1].Status.Code)
}

func TestEvaluationSpan_NilSafe(t *testing.T) {
	var span *EvaluationSpan

	assert.NotPanics(t, func() {
		span.SetAttributes(map[string]any{"a": 1})
		span.AddEvent("noop", nil)
		span.RecordError(errors.New("boom"))
		span.SetStatus(observability.StatusCodeError, "boom")
		span.End()
		assert.Empty(t, span.TraceID())
		assert.Empty(t, span.SpanID())
	})
}
