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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTracer_DisabledReturnsNoopTracer(t *testing.T) {
	traceFlag = false
	tracer, shutdown, err := BuildTracer("formulae.test", "dev")
	require.NoError(t, err)
	assert.NotNil(t, tracer)
	assert.NotPanics(t, shutdown)
}

func TestBuildTracer_EnabledBuildsProvider(t *testing.T) {
	traceFlag = true
	defer func() { traceFlag = false }()

	tracer, shutdown, err := BuildTracer("formulae.test", "dev")
	require.NoError(t, err)
	assert.NotNil(t, tracer)
	defer shutdown()
}
