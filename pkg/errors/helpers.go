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

package errors

import (
	"errors"
	"fmt"
)

// Wrap attaches message as context ahead of err, preserving err in the
// chain for errors.Is/errors.As. Returns nil if err is nil.
//
//	defs, err := loader.Load(pattern)
//	if err != nil {
//	    return errors.Wrap(err, "loading formula definitions")
//	}
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a formatted message.
//
//	if err := store.Record(ctx, run); err != nil {
//	    return errors.Wrapf(err, "recording run for target %q", run.Target)
//	}
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target. A thin
// re-export of the standard library's errors.Is so callers only need one
// import for wrapping and matching.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain assignable to target's type and,
// if found, assigns it and returns true. A thin re-export of the standard
// library's errors.As.
//
//	var notFound *NotFoundError
//	if errors.As(err, &notFound) {
//	    log.Printf("missing %s %q", notFound.Resource, notFound.ID)
//	}
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Unwrap returns the result of calling err's Unwrap method, or nil if it
// has none.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// New creates an error from message. A thin re-export of the standard
// library's errors.New, kept here so callers importing this package for
// the typed errors above don't also need the stdlib errors package.
func New(message string) error {
	return errors.New(message)
}
