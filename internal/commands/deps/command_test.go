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

package deps

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/formulae/internal/commands/shared"
)

func writeDefinitions(t *testing.T, dir string, yaml string) string {
	t.Helper()
	path := filepath.Join(dir, "defs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func TestNewCommand_Use(t *testing.T) {
	cmd := NewCommand()
	assert.Equal(t, "deps <target>", cmd.Use)
}

func TestRunDeps_ListsTransitiveDependencies(t *testing.T) {
	dir := t.TempDir()
	writeDefinitions(t, dir, `
formulas:
  - identifier: subtotal
    type: decimal
    expression: "quantity * unitPrice"
  - identifier: total
    type: decimal
    expression: "subtotal + tax"
`)
	shared.SetConfigPathForTest(filepath.Join(dir, "*.yaml"))
	defer shared.SetConfigPathForTest("")

	cmd := NewCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"total"})

	err := cmd.Execute()
	require.NoError(t, err)
	assert.Contains(t, out.String(), "subtotal")
}

func TestRunDeps_UnknownTarget(t *testing.T) {
	dir := t.TempDir()
	writeDefinitions(t, dir, `
formulas:
  - identifier: total
    type: int
    expression: "1"
`)
	shared.SetConfigPathForTest(filepath.Join(dir, "*.yaml"))
	defer shared.SetConfigPathForTest("")

	cmd := NewCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"does-not-exist"})

	err := cmd.Execute()
	assert.Error(t, err)
}
