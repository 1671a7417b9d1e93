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

package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tombee/formulae/internal/log"
	"github.com/tombee/formulae/internal/tracing"
)

type runResult struct {
	Target    string        `json:"target"`
	Result    any           `json:"result"`
	Variables []runVariable `json:"variables"`
}

type runVariable struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Value     any    `json:"value"`
	Formula   string `json:"formula,omitempty"`
	IsRounded bool   `json:"is_rounded,omitempty"`
}

// handleRun implements the formulae_run tool.
func (s *Server) handleRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}

	target, err := request.RequireString("target")
	if err != nil {
		return errorResponse("Missing or invalid 'target' argument"), nil
	}

	hostContext := map[string]any{}
	if args := request.GetArguments(); args != nil {
		if ctxArg, ok := args["context"].(map[string]interface{}); ok {
			hostContext = ctxArg
		}
	}

	correlationID := tracing.NewCorrelationID()

	var result *runResult
	runErr := s.middleware.Handler(&log.EvaluationRequest{
		Target:        target,
		CorrelationID: correlationID.String(),
		Caller:        "mcp",
	}, func() error {
		spanCtx, span := tracing.StartRun(ctx, s.tracer, correlationID.String(), target)
		defer span.End()

		state, err := s.evaluator.Run(spanCtx, hostContext, target)
		if err != nil {
			span.RecordError(err)
			return err
		}

		vars := make([]runVariable, 0, len(state.Variables))
		for _, v := range state.Variables {
			vars = append(vars, runVariable{
				Name:      v.Name,
				Type:      v.Type.String(),
				Value:     v.Value,
				Formula:   v.FormulaExpression,
				IsRounded: v.IsRounded,
			})
		}

		result = &runResult{
			Target:    target,
			Result:    state.ReturnValue(),
			Variables: vars,
		}
		return nil
	})
	if runErr != nil {
		return errorResponse(fmt.Sprintf("evaluating %q failed: %v", target, runErr)), nil
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errorResponse(fmt.Sprintf("failed to encode result: %v", err)), nil
	}

	return textResponse(string(encoded)), nil
}
