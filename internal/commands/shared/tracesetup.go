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
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/formulae/internal/tracing"
)

// BuildTracer constructs a tracer for the current process when --trace was
// requested. The returned shutdown func must be called before the process
// exits to flush pending spans; it is a no-op when tracing is disabled.
//
// The returned tracer is never nil: when tracing is disabled it comes from
// the global no-op TracerProvider, so callers can start spans unconditionally.
func BuildTracer(serviceName, serviceVersion string) (trace.Tracer, func(), error) {
	if !GetTrace() {
		return otel.Tracer(serviceName), func() {}, nil
	}

	cfg := tracing.DefaultConfig()
	cfg.Enabled = true
	cfg.ServiceName = serviceName
	cfg.ServiceVersion = serviceVersion

	provider, err := tracing.NewOTelProviderWithConfig(cfg)
	if err != nil {
		return nil, nil, NewInvalidConfigError("could not initialize tracing", err)
	}

	shutdown := func() {
		_ = provider.ForceFlush(context.Background())
		_ = provider.Shutdown(context.Background())
	}

	return otel.Tracer(serviceName), shutdown, nil
}
