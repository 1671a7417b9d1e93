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

package log

import (
	"log/slog"
	"time"
)

// EvaluationRequest describes one call into an Evaluator, for logging
// purposes, from either the CLI or the MCP tool server.
type EvaluationRequest struct {
	// Target is the formula identifier being evaluated.
	Target string

	// CorrelationID ties this request to a single CLI/host invocation.
	CorrelationID string

	// RequestID is the unique ID for this specific call.
	RequestID string

	// Caller identifies the host surface (e.g. "cli", "mcp").
	Caller string

	// Metadata contains additional request metadata.
	Metadata map[string]interface{}
}

// EvaluationResult describes the outcome of an EvaluationRequest.
type EvaluationResult struct {
	// Success indicates the Run call completed without error.
	Success bool

	// Error is the error message if the request failed.
	Error string

	// DurationMs is the duration of the call in milliseconds.
	DurationMs int64

	// Metadata contains additional response metadata (e.g. cache hit/miss).
	Metadata map[string]interface{}
}

// LogEvaluationRequest logs an incoming evaluation request.
func LogEvaluationRequest(logger *slog.Logger, req *EvaluationRequest) {
	attrs := []any{
		"event", "evaluation_request",
		TargetKey, req.Target,
		"caller", req.Caller,
	}

	if req.CorrelationID != "" {
		attrs = append(attrs, "correlation_id", req.CorrelationID)
	}

	if req.RequestID != "" {
		attrs = append(attrs, "request_id", req.RequestID)
	}

	for k, v := range req.Metadata {
		attrs = append(attrs, k, v)
	}

	logger.Info("evaluation request received", attrs...)
}

// LogEvaluationResult logs the outcome of an evaluation request.
func LogEvaluationResult(logger *slog.Logger, req *EvaluationRequest, res *EvaluationResult) {
	attrs := []any{
		"event", "evaluation_result",
		TargetKey, req.Target,
		"success", res.Success,
		DurationKey, res.DurationMs,
	}

	if req.CorrelationID != "" {
		attrs = append(attrs, "correlation_id", req.CorrelationID)
	}

	if req.RequestID != "" {
		attrs = append(attrs, "request_id", req.RequestID)
	}

	if res.Error != "" {
		attrs = append(attrs, "error", res.Error)
	}

	for k, v := range res.Metadata {
		attrs = append(attrs, k, v)
	}

	level := slog.LevelInfo
	message := "evaluation request completed"

	if !res.Success {
		level = slog.LevelError
		message = "evaluation request failed"
	}

	logger.Log(nil, level, message, attrs...)
}

// EvaluationMiddleware wraps an Evaluator.Run call with request/response
// logging, shared by the CLI and the MCP tool server so both surfaces emit
// identically shaped telemetry.
type EvaluationMiddleware struct {
	logger *slog.Logger
}

// NewEvaluationMiddleware creates a new evaluation logging middleware.
func NewEvaluationMiddleware(logger *slog.Logger) *EvaluationMiddleware {
	return &EvaluationMiddleware{
		logger: logger,
	}
}

// Handler wraps a function that performs one evaluation. It logs the
// request and result automatically.
func (m *EvaluationMiddleware) Handler(req *EvaluationRequest, handler func() error) error {
	start := time.Now()

	LogEvaluationRequest(m.logger, req)

	err := handler()

	duration := time.Since(start).Milliseconds()

	res := &EvaluationResult{
		Success:    err == nil,
		DurationMs: duration,
	}

	if err != nil {
		res.Error = err.Error()
	}

	LogEvaluationResult(m.logger, req, res)

	return err
}

// HandlerWithMetadata wraps a function that performs one evaluation and
// returns metadata (e.g. cache hit/miss, rounding applied). It logs the
// request and result with the returned metadata attached.
func (m *EvaluationMiddleware) HandlerWithMetadata(req *EvaluationRequest, handler func() (map[string]interface{}, error)) (map[string]interface{}, error) {
	start := time.Now()

	LogEvaluationRequest(m.logger, req)

	metadata, err := handler()

	duration := time.Since(start).Milliseconds()

	res := &EvaluationResult{
		Success:    err == nil,
		DurationMs: duration,
		Metadata:   metadata,
	}

	if err != nil {
		res.Error = err.Error()
	}

	LogEvaluationResult(m.logger, req, res)

	return metadata, err
}
