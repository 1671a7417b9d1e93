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
)

type depsResult struct {
	Target       string           `json:"target"`
	Dependencies []depsIdentifier `json:"dependencies"`
}

type depsIdentifier struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// handleDeps implements the formulae_deps tool.
func (s *Server) handleDeps(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}

	target, err := request.RequireString("target")
	if err != nil {
		return errorResponse("Missing or invalid 'target' argument"), nil
	}

	ids, err := s.evaluator.GetContainedIdentifiers(ctx, target)
	if err != nil {
		return errorResponse(fmt.Sprintf("could not resolve %q: %v", target, err)), nil
	}

	out := make([]depsIdentifier, len(ids))
	for i, id := range ids {
		out[i] = depsIdentifier{Name: id.Name}
		if id.Definition != nil {
			out[i].Type = id.Definition.DataType.String()
		}
	}

	encoded, err := json.MarshalIndent(depsResult{Target: target, Dependencies: out}, "", "  ")
	if err != nil {
		return errorResponse(fmt.Sprintf("failed to encode result: %v", err)), nil
	}

	return textResponse(string(encoded)), nil
}
