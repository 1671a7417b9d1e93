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
	"sync"
	"time"
)

// RateLimiter implements token-bucket rate limiting for MCP tool calls, so
// a misbehaving client can't flood the evaluator with compilation work.
type RateLimiter struct {
	callBucket *tokenBucket
}

type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// NewRateLimiter creates a rate limiter allowing callsPerMinute tool calls
// per minute, refilled continuously.
func NewRateLimiter(callsPerMinute int) *RateLimiter {
	return &RateLimiter{
		callBucket: &tokenBucket{
			tokens:     float64(callsPerMinute),
			maxTokens:  float64(callsPerMinute),
			refillRate: float64(callsPerMinute) / 60.0,
			lastRefill: time.Now(),
		},
	}
}

// AllowCall reports whether another tool call may proceed right now.
func (rl *RateLimiter) AllowCall() bool {
	return rl.callBucket.take(1)
}

func (tb *tokenBucket) take(n float64) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.tokens = minFloat(tb.maxTokens, tb.tokens+elapsed*tb.refillRate)
	tb.lastRefill = now

	if tb.tokens >= n {
		tb.tokens -= n
		return true
	}
	return false
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
