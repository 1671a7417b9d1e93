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

package run

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tombee/formulae/internal/commands/shared"
	"github.com/tombee/formulae/pkg/formula"
)

type jsonVariable struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Value      any    `json:"value"`
	Formula    string `json:"formula,omitempty"`
	IsRounded  bool   `json:"is_rounded,omitempty"`
	IsReadOnly bool   `json:"is_read_only"`
}

type jsonRunResponse struct {
	shared.JSONResponse
	Target    string         `json:"target"`
	Result    any            `json:"result"`
	Variables []jsonVariable `json:"variables"`
}

func printResultJSON(cmd *cobra.Command, target string, state *formula.EvaluationState) error {
	vars := make([]jsonVariable, 0, len(state.Variables))
	for _, v := range state.Variables {
		vars = append(vars, jsonVariable{
			Name:       v.Name,
			Type:       v.Type.String(),
			Value:      v.Value,
			Formula:    v.FormulaExpression,
			IsRounded:  v.IsRounded,
			IsReadOnly: v.IsReadOnly,
		})
	}

	return shared.EmitJSON(jsonRunResponse{
		JSONResponse: shared.JSONResponse{Version: "1.0", Command: "run", Success: true},
		Target:       target,
		Result:       state.ReturnValue(),
		Variables:    vars,
	})
}

func printResultText(cmd *cobra.Command, target string, state *formula.EvaluationState) error {
	cmd.Println(shared.RenderOK(fmt.Sprintf("%s = %v", target, state.ReturnValue())))

	if shared.GetVerbose() {
		cmd.Println()
		cmd.Println(shared.Header.Render("Resolved variables:"))
		for _, v := range state.Variables {
			line := fmt.Sprintf("  %s (%s) = %v", v.Name, v.Type, v.Value)
			if v.IsRounded {
				line += "  [rounded]"
			}
			cmd.Println(line)
			if v.FormulaExpression != "" {
				cmd.Println("    " + shared.RenderLabel(v.FormulaExpression))
			}
		}
	}

	return nil
}
