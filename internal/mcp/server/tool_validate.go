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

type validateResult struct {
	Valid    bool              `json:"valid"`
	Checked  int               `json:"checked"`
	Failures []validateFailure `json:"failures,omitempty"`
}

type validateFailure struct {
	Identifier string `json:"identifier"`
	Message    string `json:"message"`
}

// handleValidate implements the formulae_validate tool.
func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if !s.rateLimiter.AllowCall() {
		return errorResponse("Rate limit exceeded. Please try again later."), nil
	}

	var failures []validateFailure
	for _, def := range s.definitions {
		if _, err := s.evaluator.GetContainedIdentifiers(ctx, def.Identifier); err != nil {
			failures = append(failures, validateFailure{Identifier: def.Identifier, Message: err.Error()})
		}
	}

	result := validateResult{
		Valid:    len(failures) == 0,
		Checked:  len(s.definitions),
		Failures: failures,
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errorResponse(fmt.Sprintf("failed to encode result: %v", err)), nil
	}

	return textResponse(string(encoded)), nil
}
