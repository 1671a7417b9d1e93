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

package deps

import (
	"github.com/tombee/formulae/internal/commands/shared"
	"github.com/tombee/formulae/pkg/formula"
)

type jsonIdentifier struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

type jsonDepsResponse struct {
	shared.JSONResponse
	Target       string           `json:"target"`
	Dependencies []jsonIdentifier `json:"dependencies"`
}

func printJSON(target string, ids []formula.Identifier) error {
	out := make([]jsonIdentifier, len(ids))
	for i, id := range ids {
		out[i] = jsonIdentifier{Name: id.Name}
		if id.Definition != nil {
			out[i].Type = id.Definition.DataType.String()
		}
	}

	return shared.EmitJSON(jsonDepsResponse{
		JSONResponse: shared.JSONResponse{Version: "1.0", Command: "deps", Success: true},
		Target:       target,
		Dependencies: out,
	})
}
