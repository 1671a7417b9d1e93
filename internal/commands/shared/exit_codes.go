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
	"errors"
	"fmt"
	"os"

	pkgerrors "github.com/tombee/formulae/pkg/errors"
)

// Exit codes for the formulae CLI.
const (
	ExitSuccess          = 0
	ExitEvaluationFailed = 1
	ExitInvalidConfig    = 2
	ExitMissingTarget    = 3
	ExitCompilationError = 4
)

// ExitError is an error that carries an exit code.
type ExitError struct {
	Code    int
	Message string
	Cause   error
}

func (e *ExitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewEvaluationError creates an error for evaluation-run failures.
func NewEvaluationError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitEvaluationFailed, Message: msg, Cause: cause}
}

// NewInvalidConfigError creates an error for malformed definition files.
func NewInvalidConfigError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitInvalidConfig, Message: msg, Cause: cause}
}

// NewMissingTargetError creates an error for an unresolvable target identifier.
func NewMissingTargetError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitMissingTarget, Message: msg, Cause: cause}
}

// NewCompilationError creates an error for formula compilation failures.
func NewCompilationError(msg string, cause error) *ExitError {
	return &ExitError{Code: ExitCompilationError, Message: msg, Cause: cause}
}

// HandleExitError checks if an error is an ExitError and exits with the
// appropriate code.
func HandleExitError(err error) {
	if err == nil {
		return
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		msg := exitErr.Error()
		if len(msg) > 0 {
			fmt.Fprintln(os.Stderr, "Error:", msg)
		}

		printUserVisibleSuggestion(err)

		os.Exit(exitErr.Code)
	}

	fmt.Fprintln(os.Stderr, "Error:", err.Error())
	printUserVisibleSuggestion(err)
	os.Exit(ExitEvaluationFailed)
}

// printUserVisibleSuggestion walks the error chain for a
// pkgerrors.UserVisibleError and prints its suggestion, if any.
func printUserVisibleSuggestion(err error) {
	for err != nil {
		if userErr, ok := err.(pkgerrors.UserVisibleError); ok {
			if userErr.IsUserVisible() {
				if suggestion := userErr.Suggestion(); suggestion != "" {
					fmt.Fprintf(os.Stderr, "\nSuggestion: %s\n", suggestion)
				}
			}
			return
		}
		err = errors.Unwrap(err)
	}
}
