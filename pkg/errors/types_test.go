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

package errors_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	formulaeerrors "github.com/tombee/formulae/pkg/errors"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *formulaeerrors.ValidationError
		wantMsg string
	}{
		{
			name: "with field",
			err: &formulaeerrors.ValidationError{
				Field:      "rounding.precision",
				Message:    "must be non-negative",
				Suggestion: "set precision to 0 or greater",
			},
			wantMsg: "validation failed on rounding.precision: must be non-negative",
		},
		{
			name: "without field",
			err: &formulaeerrors.ValidationError{
				Message: "definition set is empty",
			},
			wantMsg: "validation failed: definition set is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("ValidationError.Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestNotFoundError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *formulaeerrors.NotFoundError
		wantMsg string
	}{
		{
			name: "definition not found",
			err: &formulaeerrors.NotFoundError{
				Resource: "definition",
				ID:       "totalCost",
			},
			wantMsg: "definition not found: totalCost",
		},
		{
			name: "run not found",
			err: &formulaeerrors.NotFoundError{
				Resource: "run",
				ID:       "run-123",
			},
			wantMsg: "run not found: run-123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("NotFoundError.Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestConfigError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *formulaeerrors.ConfigError
		wantMsg string
	}{
		{
			name: "with key",
			err: &formulaeerrors.ConfigError{
				Key:    "definitions.path",
				Reason: "file does not exist",
			},
			wantMsg: "config error at definitions.path: file does not exist",
		},
		{
			name: "without key",
			err: &formulaeerrors.ConfigError{
				Reason: "no definition files matched the glob",
			},
			wantMsg: "config error: no definition files matched the glob",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("ConfigError.Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestConfigError_Unwrap(t *testing.T) {
	cause := errors.New("file read error")
	err := &formulaeerrors.ConfigError{
		Key:    "definitions.path",
		Reason: "failed to load",
		Cause:  cause,
	}

	if got := err.Unwrap(); got != cause {
		t.Errorf("ConfigError.Unwrap() = %v, want %v", got, cause)
	}
}

func TestTimeoutError_Error(t *testing.T) {
	err := &formulaeerrors.TimeoutError{
		Operation: "evaluator run",
		Duration:  30 * time.Second,
	}

	want := "evaluator run operation timed out after 30s"
	if got := err.Error(); got != want {
		t.Errorf("TimeoutError.Error() = %q, want %q", got, want)
	}
}

func TestTimeoutError_Unwrap(t *testing.T) {
	cause := errors.New("context deadline exceeded")
	err := &formulaeerrors.TimeoutError{
		Operation: "evaluator run",
		Duration:  5 * time.Second,
		Cause:     cause,
	}

	if got := err.Unwrap(); got != cause {
		t.Errorf("TimeoutError.Unwrap() = %v, want %v", got, cause)
	}
}

func TestErrorWrapping(t *testing.T) {
	t.Run("ValidationError can be wrapped", func(t *testing.T) {
		original := &formulaeerrors.ValidationError{
			Field:   "target",
			Message: "must not be empty",
		}
		wrapped := fmt.Errorf("running evaluator: %w", original)

		var target *formulaeerrors.ValidationError
		if !errors.As(wrapped, &target) {
			t.Error("errors.As should find ValidationError in wrapped error")
		}
		if target.Field != "target" {
			t.Errorf("unwrapped error Field = %q, want %q", target.Field, "target")
		}
	})

	t.Run("NotFoundError can be wrapped", func(t *testing.T) {
		original := &formulaeerrors.NotFoundError{
			Resource: "definition",
			ID:       "totalCost",
		}
		wrapped := fmt.Errorf("resolving target: %w", original)

		var target *formulaeerrors.NotFoundError
		if !errors.As(wrapped, &target) {
			t.Error("errors.As should find NotFoundError in wrapped error")
		}
		if target.Resource != "definition" {
			t.Errorf("unwrapped error Resource = %q, want %q", target.Resource, "definition")
		}
	})

	t.Run("ConfigError preserves cause through wrapping", func(t *testing.T) {
		rootCause := errors.New("file not found")
		configErr := &formulaeerrors.ConfigError{
			Key:    "definitions.path",
			Reason: "missing required field",
			Cause:  rootCause,
		}
		wrapped := fmt.Errorf("loading config: %w", configErr)

		var target *formulaeerrors.ConfigError
		if !errors.As(wrapped, &target) {
			t.Error("errors.As should find ConfigError in wrapped error")
		}

		if target.Unwrap() != rootCause {
			t.Error("ConfigError.Unwrap() should return root cause")
		}
	})

	t.Run("TimeoutError preserves cause through wrapping", func(t *testing.T) {
		rootCause := errors.New("context deadline exceeded")
		timeoutErr := &formulaeerrors.TimeoutError{
			Operation: "evaluator run",
			Duration:  5 * time.Second,
			Cause:     rootCause,
		}
		wrapped := fmt.Errorf("operation timeout: %w", timeoutErr)

		var target *formulaeerrors.TimeoutError
		if !errors.As(wrapped, &target) {
			t.Error("errors.As should find TimeoutError in wrapped error")
		}

		if target.Unwrap() != rootCause {
			t.Error("TimeoutError.Unwrap() should return root cause")
		}
	})
}

func TestErrorsIs(t *testing.T) {
	t.Run("errors.Is works with wrapped ValidationError", func(t *testing.T) {
		original := &formulaeerrors.ValidationError{Field: "test"}
		wrapped := fmt.Errorf("wrapper: %w", original)

		if !errors.Is(wrapped, original) {
			t.Error("errors.Is should find original error in chain")
		}
	})

	t.Run("errors.Is works with wrapped NotFoundError", func(t *testing.T) {
		original := &formulaeerrors.NotFoundError{Resource: "definition", ID: "123"}
		wrapped := fmt.Errorf("wrapper: %w", original)

		if !errors.Is(wrapped, original) {
			t.Error("errors.Is should find original error in chain")
		}
	})
}
