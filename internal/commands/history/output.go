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

package history

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tombee/formulae/internal/commands/shared"
	"github.com/tombee/formulae/internal/history"
)

type jsonRun struct {
	ID            int64  `json:"id"`
	Target        string `json:"target"`
	CorrelationID string `json:"correlation_id"`
	Caller        string `json:"caller"`
	Result        any    `json:"result,omitempty"`
	Error         string `json:"error,omitempty"`
	DurationMS    int64  `json:"duration_ms"`
	CreatedAt     string `json:"created_at"`
}

type jsonHistoryResponse struct {
	shared.JSONResponse
	Runs []jsonRun `json:"runs"`
}

func printJSON(runs []history.Run) error {
	out := make([]jsonRun, len(runs))
	for i, r := range runs {
		out[i] = jsonRun{
			ID:            r.ID,
			Target:        r.Target,
			CorrelationID: r.CorrelationID,
			Caller:        r.Caller,
			Result:        r.Result,
			Error:         r.Error,
			DurationMS:    r.DurationMS,
			CreatedAt:     r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}

	return shared.EmitJSON(jsonHistoryResponse{
		JSONResponse: shared.JSONResponse{Version: "1.0", Command: "history", Success: true},
		Runs:         out,
	})
}

func printText(cmd *cobra.Command, runs []history.Run) error {
	if len(runs) == 0 {
		cmd.Println(shared.RenderLabel("no recorded runs"))
		return nil
	}

	cmd.Println(shared.Header.Render("Recent runs:"))
	for _, r := range runs {
		when := r.CreatedAt.Format("2006-01-02 15:04:05")
		if r.Error != "" {
			cmd.Println(shared.RenderError(fmt.Sprintf("%s  %-20s %dms  %s", when, r.Target, r.DurationMS, r.Error)))
			continue
		}
		cmd.Println(shared.RenderOK(fmt.Sprintf("%s  %-20s %dms  %v", when, r.Target, r.DurationMS, r.Result)))
	}
	return nil
}
