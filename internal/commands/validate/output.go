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

package validate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tombee/formulae/internal/commands/shared"
	"github.com/tombee/formulae/pkg/formula"
)

type jsonValidationFailure struct {
	Identifier string `json:"identifier"`
	Message    string `json:"message"`
}

type jsonValidateResponse struct {
	shared.JSONResponse
	Checked  int                     `json:"checked"`
	Failures []jsonValidationFailure `json:"failures,omitempty"`
}

func printJSON(defs []formula.Definition, failures []validationFailure) error {
	jsonFailures := make([]jsonValidationFailure, len(failures))
	for i, f := range failures {
		jsonFailures[i] = jsonValidationFailure{Identifier: f.Identifier, Message: f.Message}
	}

	return shared.EmitJSON(jsonValidateResponse{
		JSONResponse: shared.JSONResponse{Version: "1.0", Command: "validate", Success: len(failures) == 0},
		Checked:      len(defs),
		Failures:     jsonFailures,
	})
}

func printText(cmd *cobra.Command, defs []formula.Definition, failures []validationFailure) error {
	if len(failures) == 0 {
		cmd.Println(shared.RenderOK(fmt.Sprintf("%d formulas valid", len(defs))))
		return nil
	}

	for _, f := range failures {
		cmd.Println(shared.RenderError(fmt.Sprintf("%s: %s", f.Identifier, f.Message)))
	}

	return shared.NewInvalidConfigError(fmt.Sprintf("%d of %d formulas failed to compile", len(failures), len(defs)), nil)
}
