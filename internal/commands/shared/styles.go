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

package shared

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	StatusOK    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	StatusWarn  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	StatusError = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	StatusInfo  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	Muted       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	Bold        = lipgloss.NewStyle().Bold(true)
	Header      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
)

const (
	SymbolOK    = "✓"
	SymbolWarn  = "⚠"
	SymbolError = "✗"
	SymbolInfo  = "•"
)

// RenderOK renders a success message with a green checkmark.
func RenderOK(msg string) string {
	return StatusOK.Render(SymbolOK) + " " + msg
}

// RenderWarn renders a warning message with an orange symbol.
func RenderWarn(msg string) string {
	return StatusWarn.Render(SymbolWarn) + " " + msg
}

// RenderError renders an error message with a red X.
func RenderError(msg string) string {
	return StatusError.Render(SymbolError) + " " + msg
}

// RenderLabel renders a dim label, for key: value pairs.
func RenderLabel(label string) string {
	return Muted.Render(label)
}
