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

// ArgumentMissingError signals a required argument was nil/empty.
type ArgumentMissingError struct {
	Param string
}

func (e *ArgumentMissingError) Error() string {
	return fmt.Sprintf("formula: argument missing: %s", e.Param)
}

// NoFormulaForIdentifierError signals a referenced or requested name has no
// formula and cannot be resolved as a context member.
type NoFormulaForIdentifierError struct {
	Name string
}

func (e *NoFormulaForIdentifierError) Error() string {
	return fmt.Sprintf("formula: no formula for identifier %q", e.Name)
}

// CompilationError signals the composite fragment produced at least one
// Error-severity diagnostic. All diagnostics, including warnings and info,
// are retained.
type CompilationError struct {
	Identifier  string
	Diagnostics []Diagnostic
	Code        string // the composite source text, for host diagnostics/tooling
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("formula: compilation failed for %q: %s", e.Identifier, firstError(e.Diagnostics))
}

func firstError(diags []Diagnostic) string {
	for _, d := range diags {
		if d.Severity == Error {
			return d.Message
		}
	}
	if len(diags) > 0 {
		return diags[0].Message
	}
	return "no diagnostics"
}

// NameAccessDeniedError signals the composite fragment contains an
// identifier-name or simple-member-access textually matching an entry in
// the denied-names set.
type NameAccessDeniedError struct {
	Name string
}

func (e *NameAccessDeniedError) Error() string {
	return fmt.Sprintf("formula: access to %q is denied", e.Name)
}

// EvaluationError wraps unexpected failures: an unknown diagnostic
// severity, a runtime failure inside an expression, or a cast failure in
// Evaluate[T].
type EvaluationError struct {
	Cause error
}

func (e *EvaluationError) Error() string {
	if e.Cause == nil {
		return "formula: evaluation failed"
	}
	return fmt.Sprintf("formula: evaluation failed: %s", e.Cause.Error())
}

func (e *EvaluationError) Unwrap() error {
	return e.Cause
}
