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

// Package server implements an MCP server that exposes formula evaluation
// as tools, so an LLM-driven agent can resolve and run formulas the same
// way the CLI does.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/formulae/internal/definitions"
	"github.com/tombee/formulae/internal/log"
	"github.com/tombee/formulae/internal/metrics"
	"github.com/tombee/formulae/internal/tracing"
	"github.com/tombee/formulae/pkg/formula"
)

// Server wraps the MCP server and exposes formula evaluation as tools.
type Server struct {
	mcpServer       *server.MCPServer
	evaluator       *formula.Evaluator
	definitions     []formula.Definition
	middleware      *log.EvaluationMiddleware
	rateLimiter     *RateLimiter
	logger          *slog.Logger
	tracer          trace.Tracer
	shutdownTracing func()
}

// Config configures the MCP server.
type Config struct {
	// Name is the server name reported to MCP clients.
	Name string

	// Version is the formulae build version.
	Version string

	// DefinitionsGlob is resolved once at startup into the fixed set of
	// formulas this server's tools operate over.
	DefinitionsGlob string

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string

	// CallsPerMinute bounds tool-call throughput. Zero picks a default.
	CallsPerMinute int

	// EnableTracing turns on span creation for formulae_run. The console
	// exporter stays disabled, so spans are never written to stdout and the
	// stdio transport output stays clean.
	EnableTracing bool
}

func createLogger(levelStr string) (*slog.Logger, error) {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", levelStr)
	}

	// Logs go to stderr; stdout is reserved for the MCP stdio transport.
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler), nil
}

// NewServer builds a Server, loading cfg.DefinitionsGlob into a ready
// formula.Evaluator before any tool becomes callable.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Name == "" {
		cfg.Name = "formulae"
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.CallsPerMinute == 0 {
		cfg.CallsPerMinute = 100
	}

	logger, err := createLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	loader := definitions.NewLoader(logger)
	defs, err := loader.Load(cfg.DefinitionsGlob)
	if err != nil {
		return nil, fmt.Errorf("load definitions: %w", err)
	}

	collector := metrics.NewCollector()
	factory := formula.NewFactory(formula.FactoryOptions{Metrics: collector})
	evaluator, err := factory.GetEvaluator(context.Background(), defs)
	if err != nil {
		return nil, fmt.Errorf("build evaluator: %w", err)
	}

	mcpServer := server.NewMCPServer(cfg.Name, cfg.Version)

	tracer, shutdownTracing, err := buildTracer(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize tracing: %w", err)
	}

	s := &Server{
		mcpServer:       mcpServer,
		evaluator:       evaluator,
		definitions:     defs,
		middleware:      log.NewEvaluationMiddleware(logger),
		rateLimiter:     NewRateLimiter(cfg.CallsPerMinute),
		logger:          logger,
		tracer:          tracer,
		shutdownTracing: shutdownTracing,
	}

	s.registerTools()
	return s, nil
}

// buildTracer builds a tracer for formulae_run spans. Spans are never
// exported to stdout here: stdout is reserved for the MCP stdio transport,
// so an enabled tracer only holds spans for correlation-ID propagation
// rather than printing them anywhere.
func buildTracer(cfg Config) (trace.Tracer, func(), error) {
	if !cfg.EnableTracing {
		return otel.Tracer(cfg.Name), func() {}, nil
	}

	tracingCfg := tracing.DefaultConfig()
	tracingCfg.Enabled = true
	tracingCfg.ServiceName = cfg.Name
	tracingCfg.ServiceVersion = cfg.Version
	tracingCfg.Console = false

	provider, err := tracing.NewOTelProviderWithConfig(tracingCfg)
	if err != nil {
		return nil, nil, err
	}

	shutdown := func() {
		_ = provider.ForceFlush(context.Background())
		_ = provider.Shutdown(context.Background())
	}

	return otel.Tracer(cfg.Name), shutdown, nil
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "formulae_run",
		Description: "Evaluate a formula against a host context and return its computed value plus every resolved variable along the way.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"target": map[string]interface{}{
					"type":        "string",
					"description": "Identifier of the formula to evaluate",
				},
				"context": map[string]interface{}{
					"type":        "object",
					"description": "Host context values the formula and its dependencies may reference",
				},
			},
			Required: []string{"target"},
		},
	}, s.handleRun)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "formulae_deps",
		Description: "List every formula identifier a target transitively references, without evaluating anything.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"target": map[string]interface{}{
					"type":        "string",
					"description": "Identifier of the formula to inspect",
				},
			},
			Required: []string{"target"},
		},
	}, s.handleDeps)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "formulae_validate",
		Description: "Confirm that every loaded formula still compiles, without evaluating any of them.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleValidate)
}

// Run blocks serving MCP requests over stdio until the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting formulae MCP server")
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("mcp stdio server: %w", err)
	}
	return nil
}

// Shutdown flushes any pending trace spans. ServeStdio returning already
// ends request handling; this only releases the tracer provider.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownTracing != nil {
		s.shutdownTracing()
	}
	return nil
}

func errorResponse(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}

func textResponse(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.NewTextContent(text)},
	}
}
