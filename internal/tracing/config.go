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

// Config holds tracing configuration for a formula evaluation host (the CLI
// or the MCP server).
type Config struct {
	// Enabled controls whether tracing is active.
	Enabled bool

	// ServiceName identifies this process in exported spans.
	ServiceName string

	// ServiceVersion is the application version.
	ServiceVersion string

	// Sampling configures trace sampling.
	Sampling SamplingConfig

	// Console, when true, writes spans to stdout as they complete. This is
	// the only exporter wired up; there is no OTLP collector in scope.
	Console bool
}

// SamplingConfig controls which traces are recorded.
type SamplingConfig struct {
	// Enabled activates sampling (default: false - sample all).
	Enabled bool

	// Rate is the fraction of traces to sample (0.0 - 1.0).
	Rate float64

	// AlwaysSampleErrors samples all traces with errors regardless of Rate.
	AlwaysSampleErrors bool
}

// DefaultConfig returns configuration with sensible defaults. Tracing is
// opt-in: Enabled is false until a host explicitly turns it on.
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		ServiceName:    "formulae",
		ServiceVersion: "unknown",
		Sampling: SamplingConfig{
			Enabled:            false,
			Rate:               1.0,
			AlwaysSampleErrors: true,
		},
		Console: true,
	}
}
