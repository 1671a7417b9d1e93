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

// EvaluationVariable is one named value produced by a Run: either the
// target formula itself, or one of its transitive formula dependencies.
type EvaluationVariable struct {
	Name       string
	Type       Type
	IsReadOnly bool
	Value      any

	// FormulaExpression is the originating expression text when Name was a
	// defined formula. It is empty when the variable came from the context
	// or a built-in rather than a Definition.
	FormulaExpression string

	// IsRounded is true iff the rounding rewrite was applied when computing
	// Value.
	IsRounded bool
}

// EvaluationState is the immutable result of a single Evaluator.Run call.
type EvaluationState struct {
	Identifier      string
	Variables       []EvaluationVariable
	VariablesByName map[string]EvaluationVariable
	Diagnostics     []Diagnostic
}

// ReturnValue is the computed value of Identifier, i.e.
// VariablesByName[Identifier].Value.
func (s *EvaluationState) ReturnValue() any {
	if s == nil {
		return nil
	}
	return s.VariablesByName[s.Identifier].Value
}

func newEvaluationState(target string, vars []EvaluationVariable, diags []Diagnostic) *EvaluationState {
	byName := make(map[string]EvaluationVariable, len(vars))
	for _, v := range vars {
		byName[v.Name] = v
	}
	return &EvaluationState{
		Identifier:      target,
		Variables:       vars,
		VariablesByName: byName,
		Diagnostics:     diags,
	}
}
