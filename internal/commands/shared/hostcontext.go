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
	"encoding/json"
	"io"
	"os"
	"strings"
)

// BuildHostContext assembles the map[string]any a formula.Evaluator.Run
// call treats as its host context, from a JSON file (or stdin, via "-")
// and a set of "key=value" overrides applied on top of it. Overrides are
// parsed as JSON when possible (so "42", "true", "\"x\"" behave as a user
// expects) and fall back to a raw string otherwise.
func BuildHostContext(contextFile string, sets []string) (map[string]any, error) {
	ctx := map[string]any{}

	if contextFile != "" {
		var data []byte
		var err error
		if contextFile == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(contextFile)
		}
		if err != nil {
			return nil, NewInvalidConfigError("could not read context file", err)
		}
		if err := json.Unmarshal(data, &ctx); err != nil {
			return nil, NewInvalidConfigError("context file is not valid JSON", err)
		}
	}

	for _, kv := range sets {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, NewInvalidConfigError("--set must be in key=value form, got "+kv, nil)
		}
		ctx[key] = parseSetValue(value)
	}

	return ctx, nil
}

// parseSetValue interprets a --set value as JSON when it looks like one,
// so "--set active=true" and "--set count=3" produce bool/float64 rather
// than the literal strings "true"/"3", matching how a JSON context file
// would encode the same values. Anything that doesn't parse as JSON is
// passed through as a raw string.
func parseSetValue(raw string) any {
	var generic any
	if err := json.Unmarshal([]byte(raw), &generic); err == nil {
		return generic
	}
	return raw
}
