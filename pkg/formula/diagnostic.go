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

package formula

import "fmt"

// Severity orders diagnostics from least to most significant. Error is the
// only severity that aborts compilation; the others are informational and
// are carried through to a successful EvaluationState.
type Severity int

const (
	Hidden Severity = iota
	Info
	Warning
	Error
)

// String implements fmt.Stringer.
func (s Severity) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Diagnostic is a single severity-tagged message produced at any stage of
// parsing, composing, or running a formula.
type Diagnostic struct {
	Severity Severity
	Message  string
}

// HasErrors reports whether any diagnostic in diags is Error severity.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s", d.Severity, d.Message)
}
