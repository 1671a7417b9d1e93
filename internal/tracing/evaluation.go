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
	"fmt"

	"github.com/tombee/formulae/pkg/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// EvaluationSpan wraps an OpenTelemetry span with helpers specific to
// resolving and running formulas.
type EvaluationSpan struct {
	span trace.Span
}

// StartRun creates a root span for one Evaluator.Run call.
func StartRun(ctx context.Context, tracer trace.Tracer, runID, target string) (context.Context, *EvaluationSpan) {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("evaluator.run: %s", target),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("evaluation.target", target),
			attribute.String("evaluation.run_id", runID),
			attribute.String("span.type", "evaluation.run"),
		),
	)

	return ctx, &EvaluationSpan{span: span}
}

// StartResolve creates a span for resolving a single identifier's dependency
// chain within a larger run.
func StartResolve(ctx context.Context, tracer trace.Tracer, identifier string) (context.Context, *EvaluationSpan) {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("resolve: %s", identifier),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("evaluation.identifier", identifier),
			attribute.String("span.type", "evaluation.resolve"),
		),
	)

	return ctx, &EvaluationSpan{span: span}
}

// SetAttributes adds key-value attributes to the span.
func (s *EvaluationSpan) SetAttributes(attrs map[string]any) {
	if s == nil || s.span == nil {
		return
	}

	otelAttrs := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		otelAttrs = append(otelAttrs, toAttribute(k, v))
	}

	s.span.SetAttributes(otelAttrs...)
}

// AddEvent records a timestamped event within the span, such as a cache hit
// or a rounding decision.
func (s *EvaluationSpan) AddEvent(name string, attrs map[string]any) {
	if s == nil || s.span == nil {
		return
	}

	otelAttrs := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		otelAttrs = append(otelAttrs, toAttribute(k, v))
	}

	s.span.AddEvent(name, trace.WithAttributes(otelAttrs...))
}

// RecordError records an error that occurred during resolution or execution.
func (s *EvaluationSpan) RecordError(err error) {
	if s == nil || s.span == nil || err == nil {
		return
	}

	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// SetStatus sets the span's final status.
func (s *EvaluationSpan) SetStatus(code observability.StatusCode, message string) {
	if s == nil || s.span == nil {
		return
	}

	var otelCode codes.Code
	switch code {
	case observability.StatusCodeOK:
		otelCode = codes.Ok
	case observability.StatusCodeError:
		otelCode = codes.Error
	default:
		otelCode = codes.Unset
	}

	s.span.SetStatus(otelCode, message)
}

// End marks the span as complete.
func (s *EvaluationSpan) End() {
	if s == nil || s.span == nil {
		return
	}

	s.span.End()
}

// TraceID returns the trace ID as a string.
func (s *EvaluationSpan) TraceID() string {
	if s == nil || s.span == nil {
		return ""
	}

	return s.span.SpanContext().TraceID().String()
}

// SpanID returns the span ID as a string.
func (s *EvaluationSpan) SpanID() string {
	if s == nil || s.span == nil {
		return ""
	}

	return s.span.SpanContext().SpanID().String()
}
