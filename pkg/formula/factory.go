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

package formula

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"sync"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/singleflight"
)

// FormulaDefinitionsKey fingerprints a set of Definitions for cache lookup.
// Two definition sets with the same FormulaID values, regardless of slice
// order, produce the same key; changing even one Definition's FormulaID
// (which the host is responsible for deriving from its Expression and
// everything else that should invalidate a cached Evaluator) changes the
// key.
type FormulaDefinitionsKey string

// NewFormulaDefinitionsKey sorts the FormulaIDs of defs and hashes them with
// blake2b, so the Factory can key a cached Evaluator by its definition set.
func NewFormulaDefinitionsKey(defs []Definition) FormulaDefinitionsKey {
	ids := make([]string, len(defs))
	for i, d := range defs {
		ids[i] = d.FormulaID
		if ids[i] == "" {
			ids[i] = d.Identifier + ":" + d.Expression
		}
	}
	sort.Strings(ids)

	h, _ := blake2b.New256(nil)
	for _, id := range ids {
		_, _ = h.Write([]byte(id))
		_, _ = h.Write([]byte{0})
	}
	return FormulaDefinitionsKey(hex.EncodeToString(h.Sum(nil)))
}

// FactoryOptions configures a Factory. It mirrors Options plus the handful
// of Evaluator-construction knobs a host needs at the factory level rather
// than per-call.
type FactoryOptions struct {
	Options

	// Rounding, when non-nil, is applied to every Evaluator the Factory
	// builds, subject to ConversionChecker and each Definition's
	// IgnoreRoundingOptions.
	Rounding *RoundingOptions

	// ConversionChecker overrides DefaultConversionChecker for every
	// Evaluator the Factory builds.
	ConversionChecker ConversionChecker

	// MaxCachedEvaluators bounds the MRU cache of built Evaluators. Zero
	// means unbounded.
	MaxCachedEvaluators int

	// Metrics, when non-nil, is attached to every Evaluator the Factory
	// builds.
	Metrics EvaluatorMetrics
}

// Factory is the host-facing entry point for building Evaluators: it builds
// and caches them keyed by FormulaDefinitionsKey, deduplicating concurrent
// requests for the same key via singleflight and bounding memory with an
// MRU eviction policy.
type Factory struct {
	opts FactoryOptions

	mu       sync.Mutex
	entries  map[FormulaDefinitionsKey]*list.Element // key -> node in lru
	lru      *list.List                              // front = most recently used
	maxSize  int
	building singleflight.Group

	parserOnce sync.Once
	parser     *Parser
}

type cacheNode struct {
	key       FormulaDefinitionsKey
	evaluator *Evaluator
}

// NewFactory builds a Factory with the given fixed options.
func NewFactory(opts FactoryOptions) *Factory {
	return &Factory{
		opts:    opts,
		entries: make(map[FormulaDefinitionsKey]*list.Element),
		lru:     list.New(),
		maxSize: opts.MaxCachedEvaluators,
	}
}

// GetParser returns the Factory's shared Parser, building it lazily on
// first use. All Evaluators the Factory builds share this Parser, since its
// policy (denied names, context exemplar) is fixed for the Factory's
// lifetime.
func (f *Factory) GetParser() *Parser {
	f.parserOnce.Do(func() {
		f.parser = NewParser(f.opts.Options)
	})
	return f.parser
}

// GetEvaluator returns a cached Evaluator for defs if one exists, or builds,
// caches, and returns a new one. Concurrent calls for the same
// FormulaDefinitionsKey are deduplicated: only one caller actually builds
// the Evaluator, and all callers receive the same instance.
func (f *Factory) GetEvaluator(ctx context.Context, defs []Definition) (*Evaluator, error) {
	key := NewFormulaDefinitionsKey(defs)

	if e, ok := f.lookup(key); ok {
		return e, nil
	}

	result, err, _ := f.building.Do(string(key), func() (any, error) {
		if e, ok := f.lookup(key); ok {
			return e, nil
		}
		evaluator := newEvaluator(
			NewDefinitionSet(defs),
			f.GetParser(),
			f.opts.Options,
			f.opts.Rounding,
			f.opts.ConversionChecker,
			f.opts.Metrics,
		)
		f.store(key, evaluator)
		return evaluator, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Evaluator), nil
}

func (f *Factory) lookup(key FormulaDefinitionsKey) (*Evaluator, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	elem, ok := f.entries[key]
	if !ok {
		return nil, false
	}
	f.lru.MoveToFront(elem)
	return elem.Value.(*cacheNode).evaluator, true
}

func (f *Factory) store(key FormulaDefinitionsKey, e *Evaluator) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if elem, ok := f.entries[key]; ok {
		f.lru.MoveToFront(elem)
		elem.Value.(*cacheNode).evaluator = e
		return
	}

	elem := f.lru.PushFront(&cacheNode{key: key, evaluator: e})
	f.entries[key] = elem

	if f.maxSize > 0 {
		for f.lru.Len() > f.maxSize {
			oldest := f.lru.Back()
			if oldest == nil {
				break
			}
			f.lru.Remove(oldest)
			delete(f.entries, oldest.Value.(*cacheNode).key)
		}
	}
}

// FlushCache discards every cached Evaluator. In-flight GetEvaluator calls
// are unaffected; subsequent calls rebuild from scratch.
func (f *Factory) FlushCache() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = make(map[FormulaDefinitionsKey]*list.Element)
	f.lru = list.New()
}

// CacheSize returns the number of Evaluators currently cached.
func (f *Factory) CacheSize() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lru.Len()
}

// digestDefinitions returns a stable, human-loggable short digest of a
// definition set: the first 12 hex digits of a SHA-256 over its sorted
// identifiers, shorter than the full blake2b FormulaDefinitionsKey. It is
// unexported and has no caller in this module.
func digestDefinitions(defs []Definition) string {
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Identifier
	}
	sort.Strings(names)
	sum := sha256.Sum256([]byte(strings.Join(names, ",")))
	return hex.EncodeToString(sum[:])[:12]
}
