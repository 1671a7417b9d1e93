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
	"testing"

	"github.com/stretchr/testify/assert"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestNewSampler_DisabledSamplesAll(t *testing.T) {
	sampler := NewSampler(SamplingConfig{Enabled: false})
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler.Description())
}

func TestNewSampler_RateOne(t *testing.T) {
	sampler := NewSampler(SamplingConfig{Enabled: true, Rate: 1.0})
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler.Description())
}

func TestNewSampler_ZeroRateWithErrorOverride(t *testing.T) {
	sampler := NewSampler(SamplingConfig{Enabled: true, Rate: 0, AlwaysSampleErrors: true})
	_, ok := sampler.(*errorAwareSampler)
	assert.True(t, ok)
}

func TestNewSampler_PartialRateWithErrorOverride(t *testing.T) {
	sampler := NewSampler(SamplingConfig{Enabled: true, Rate: 0.25, AlwaysSampleErrors: true})
	_, ok := sampler.(*errorAwareSampler)
	assert.True(t, ok)
	assert.Contains(t, sampler.Description(), "ErrorAwareSampler")
}

func TestNewSampler_PartialRateNoErrorOverride(t *testing.T) {
	sampler := NewSampler(SamplingConfig{Enabled: true, Rate: 0.25})
	assert.Contains(t, sampler.Description(), "TraceIDRatioBased")
}
