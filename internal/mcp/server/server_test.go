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

package server

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLogger_ValidLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		logger, err := createLogger(tt.level)
		require.NoError(t, err)
		assert.True(t, logger.Enabled(nil, tt.expected))
	}
}

func TestCreateLogger_InvalidLevel(t *testing.T) {
	_, err := createLogger("nonsense")
	assert.Error(t, err)
}

func writeDefinitions(t *testing.T, dir, yaml string) string {
	t.Helper()
	path := filepath.Join(dir, "defs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func TestNewServer_LoadsDefinitions(t *testing.T) {
	dir := t.TempDir()
	writeDefinitions(t, dir, `
formulas:
  - identifier: total
    type: decimal
    expression: "quantity * unitPrice"
`)

	s, err := NewServer(Config{DefinitionsGlob: filepath.Join(dir, "*.yaml")})
	require.NoError(t, err)
	assert.Len(t, s.definitions, 1)
	assert.NotNil(t, s.evaluator)
}

func TestNewServer_NoMatchingDefinitions(t *testing.T) {
	dir := t.TempDir()
	_, err := NewServer(Config{DefinitionsGlob: filepath.Join(dir, "*.yaml")})
	assert.Error(t, err)
}
