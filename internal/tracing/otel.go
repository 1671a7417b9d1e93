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
	"time"

	"github.com/tombee/formulae/pkg/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// OTelProvider wraps the OpenTelemetry tracing SDK to implement
// observability.TracerProvider. It carries no metrics of its own; see
// internal/metrics for Prometheus instrumentation.
type OTelProvider struct {
	tp *sdktrace.TracerProvider
}

// NewOTelProviderWithConfig creates a tracer provider from a Config, wiring
// up sampling and, when Console is set, a stdout span exporter.
func NewOTelProviderWithConfig(cfg Config, opts ...sdktrace.TracerProviderOption) (*OTelProvider, error) {
	sampler := NewSampler(cfg.Sampling)

	allOpts := []sdktrace.TracerProviderOption{sdktrace.WithSampler(sampler)}

	if cfg.Console {
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("create stdout span exporter: %w", err)
		}
		allOpts = append(allOpts, sdktrace.WithBatcher(exporter))
	}

	allOpts = append(allOpts, opts...)

	return NewOTelProvider(cfg.ServiceName, cfg.ServiceVersion, allOpts...)
}

// NewOTelProvider creates a tracer provider directly from service identity
// and arbitrary SDK options.
func NewOTelProvider(serviceName, version string, opts ...sdktrace.TracerProviderOption) (*OTelProvider, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			"",
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	allOpts := append([]sdktrace.TracerProviderOption{sdktrace.WithResource(res)}, opts...)

	tp := sdktrace.NewTracerProvider(allOpts...)
	otel.SetTracerProvider(tp)

	return &OTelProvider{tp: tp}, nil
}

// Tracer returns a tracer for the given instrumentation scope.
func (p *OTelProvider) Tracer(name string) observability.Tracer {
	return &otelTracer{tracer: p.tp.Tracer(name)}
}

// Shutdown flushes any pending spans and releases resources.
func (p *OTelProvider) Shutdown(ctx context.Context) error {
	return p.tp.Shutdown(ctx)
}

// ForceFlush exports all pending spans synchronously.
func (p *OTelProvider) ForceFlush(ctx context.Context) error {
	return p.tp.ForceFlush(ctx)
}

type otelTracer struct {
	tracer trace.Tracer
}

func (t *otelTracer) Start(ctx context.Context, name string, opts ...observability.SpanOption) (context.Context, observability.SpanHandle) {
	cfg := &observability.SpanConfig{}
	for _, opt := range opts {
		opt.ApplySpanOption(cfg)
	}

	var otelOpts []trace.SpanStartOption

	switch cfg.SpanKind {
	case observability.SpanKindClient:
		otelOpts = append(otelOpts, trace.WithSpanKind(trace.SpanKindClient))
	case observability.SpanKindServer:
		otelOpts = append(otelOpts, trace.WithSpanKind(trace.SpanKindServer))
	case observability.SpanKindProducer:
		otelOpts = append(otelOpts, trace.WithSpanKind(trace.SpanKindProducer))
	case observability.SpanKindConsumer:
		otelOpts = append(otelOpts, trace.WithSpanKind(trace.SpanKindConsumer))
	default:
		otelOpts = append(otelOpts, trace.WithSpanKind(trace.SpanKindInternal))
	}

	if len(cfg.Attributes) > 0 {
		attrs := make([]attribute.KeyValue, 0, len(cfg.Attributes))
		for k, v := range cfg.Attributes {
			attrs = append(attrs, toAttribute(k, v))
		}
		otelOpts = append(otelOpts, trace.WithAttributes(attrs...))
	}

	if cfg.Timestamp != nil {
		otelOpts = append(otelOpts, trace.WithTimestamp(timeFromNanos(*cfg.Timestamp)))
	}

	ctx, span := t.tracer.Start(ctx, name, otelOpts...)

	return ctx, &otelSpan{span: span}
}

type otelSpan struct {
	span trace.Span
}

func (s *otelSpan) End(opts ...observability.SpanEndOption) {
	cfg := &observability.SpanEndConfig{}
	for _, opt := range opts {
		opt.ApplySpanEndOption(cfg)
	}

	var otelOpts []trace.SpanEndOption
	if cfg.Timestamp != nil {
		otelOpts = append(otelOpts, trace.WithTimestamp(timeFromNanos(*cfg.Timestamp)))
	}

	s.span.End(otelOpts...)
}

func (s *otelSpan) SetStatus(code observability.StatusCode, message string) {
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

func (s *otelSpan) SetAttributes(attrs map[string]any) {
	otelAttrs := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		otelAttrs = append(otelAttrs, toAttribute(k, v))
	}
	s.span.SetAttributes(otelAttrs...)
}

func (s *otelSpan) AddEvent(name string, attrs map[string]any) {
	otelAttrs := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		otelAttrs = append(otelAttrs, toAttribute(k, v))
	}
	s.span.AddEvent(name, trace.WithAttributes(otelAttrs...))
}

func (s *otelSpan) SpanContext() observability.TraceContext {
	sc := s.span.SpanContext()
	return observability.TraceContext{
		TraceID:    sc.TraceID().String(),
		SpanID:     sc.SpanID().String(),
		TraceFlags: byte(sc.TraceFlags()),
		TraceState: sc.TraceState().String(),
	}
}

func (s *otelSpan) RecordError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// toAttribute converts an arbitrary span attribute value to an OpenTelemetry
// KeyValue, falling back to fmt.Sprint for types attribute doesn't support
// natively.
func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}

// timeFromNanos converts a Unix nanosecond timestamp to a time.Time.
func timeFromNanos(nanos int64) time.Time {
	return time.Unix(0, nanos)
}
