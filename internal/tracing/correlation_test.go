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

package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCorrelationID(t *testing.T) {
	id := NewCorrelationID()

	assert.NotEmpty(t, id)
	assert.True(t, id.IsValid())
	assert.Len(t, id.String(), 36)
}

func TestCorrelationID_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		id    CorrelationID
		valid bool
	}{
		{"valid UUID", CorrelationID("550e8400-e29b-41d4-a716-446655440000"), true},
		{"valid UUID uppercase", CorrelationID("550E8400-E29B-41D4-A716-446655440000"), true},
		{"empty", CorrelationID(""), false},
		{"not a UUID", CorrelationID("totalCost"), false},
		{"too short", CorrelationID("550e8400-e29b-41d4-a716"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.id.IsValid())
		})
	}
}

func TestCorrelationID_Context(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, FromContextOrEmpty(ctx))

	id := NewCorrelationID()
	ctx = ToContext(ctx, id)

	assert.Equal(t, id, FromContext(ctx))
	assert.Equal(t, id, FromContextOrEmpty(ctx))
}

func TestFromContext_GeneratesWhenMissing(t *testing.T) {
	id := FromContext(context.Background())
	assert.True(t, id.IsValid())
}
