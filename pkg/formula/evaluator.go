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
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/expr-lang/expr/vm"
)

// compiledEntry is what the per-identifier fragment cache stores: the
// unfinalized composite (reusable source text for splicing into an
// ancestor's composite) and the fully compiled, directly runnable program
// for this identifier on its own.
type compiledEntry struct {
	composite *Fragment
	program   *vm.Program
}

// Evaluator is the core evaluation engine: it owns an immutable definition
// set, resolves a target identifier's transitive dependencies, composes a
// chained program, compiles and runs it, and produces an EvaluationState.
//
// An Evaluator is safe for concurrent use from multiple goroutines; the
// fragment cache is a sync.Map, giving an at-least-once compilation
// guarantee (two goroutines racing on the same identifier may both build a
// composite, but only one is retained, and the two are interchangeable
// because composition is a pure function of the Evaluator's immutable
// state and the target name).
type Evaluator struct {
	definitions       *DefinitionSet
	parser            *Parser
	rounding          *RoundingOptions
	conversionChecker ConversionChecker
	deniedNames       map[string]struct{}
	onFragmentCreated func(*Fragment) *Fragment

	fragments sync.Map // string -> *compiledEntry

	metrics EvaluatorMetrics
}

// EvaluatorMetrics receives lifecycle notifications from an Evaluator. All
// methods are optional no-ops on the zero value; hosts that want
// instrumentation embed NopEvaluatorMetrics and override what they need.
// See internal/metrics for the Prometheus-backed implementation.
type EvaluatorMetrics interface {
	CacheHit(identifier string)
	CacheMiss(identifier string)
	Compiled(identifier string)
	Run(identifier string, ok bool)
}

// NopEvaluatorMetrics implements EvaluatorMetrics with no-ops.
type NopEvaluatorMetrics struct{}

func (NopEvaluatorMetrics) CacheHit(string)       {}
func (NopEvaluatorMetrics) CacheMiss(string)      {}
func (NopEvaluatorMetrics) Compiled(string)       {}
func (NopEvaluatorMetrics) Run(string, bool)      {}

func newEvaluator(defs *DefinitionSet, parser *Parser, opts Options, rounding *RoundingOptions, checker ConversionChecker, metrics EvaluatorMetrics) *Evaluator {
	if checker == nil {
		checker = DefaultConversionChecker
	}
	if metrics == nil {
		metrics = NopEvaluatorMetrics{}
	}
	return &Evaluator{
		definitions:       defs,
		parser:            parser,
		rounding:          rounding,
		conversionChecker: checker,
		deniedNames:       opts.DeniedNames,
		onFragmentCreated: func(f *Fragment) *Fragment { return f },
		metrics:           metrics,
	}
}

// SetOnFragmentCreated installs a host-supplied rewrite hook applied to
// every composite immediately after its own declaration is appended and
// before denied-name enforcement and compilation. The default is the
// identity function.
func (e *Evaluator) SetOnFragmentCreated(hook func(*Fragment) *Fragment) {
	if hook == nil {
		hook = func(f *Fragment) *Fragment { return f }
	}
	e.onFragmentCreated = hook
}

// Run compiles and executes the composite program for target, returning the
// full evaluation record.
func (e *Evaluator) Run(ctx context.Context, hostContext any, target string) (*EvaluationState, error) {
	if hostContext == nil {
		return nil, &ArgumentMissingError{Param: "context"}
	}
	if target == "" {
		return nil, &ArgumentMissingError{Param: "target"}
	}

	entry, err := e.resolve(ctx, target, map[string]struct{}{})
	if err != nil {
		e.metrics.Run(target, false)
		return nil, err
	}

	values, _, diags := e.parser.Run(entry.program, entry.composite, hostContext)
	if HasErrors(diags) {
		e.metrics.Run(target, false)
		return nil, &EvaluationError{Cause: fmt.Errorf("%s", firstError(diags))}
	}

	vars := make([]EvaluationVariable, 0, len(entry.composite.Declared))
	for _, name := range entry.composite.Declared {
		v := EvaluationVariable{
			Name:       name,
			Value:      values[name],
			IsReadOnly: true,
		}
		if def, ok := e.definitions.Lookup(name); ok {
			v.Type = def.DataType
			v.FormulaExpression = def.Expression
			v.IsRounded = e.isRounded(def)
		}
		vars = append(vars, v)
	}

	e.metrics.Run(target, true)
	return newEvaluationState(target, vars, diags), nil
}

// isRounded reports whether def's value was computed under the rounding
// rewrite: its DataType is roundable per the Evaluator's ConversionChecker,
// rounding options are configured, and the definition doesn't opt out.
func (e *Evaluator) isRounded(def *Definition) bool {
	return e.rounding != nil && !def.IgnoreRoundingOptions && e.conversionChecker(def.DataType)
}

// Evaluate runs the composite for target and casts its return value to T.
// A type mismatch surfaces as *EvaluationError.
func Evaluate[T any](ctx context.Context, e *Evaluator, hostContext any, target string) (T, error) {
	var zero T
	state, err := e.Run(ctx, hostContext, target)
	if err != nil {
		return zero, err
	}
	v, ok := state.ReturnValue().(T)
	if !ok {
		return zero, &EvaluationError{Cause: fmt.Errorf("return value of %q is %T, not %T", target, state.ReturnValue(), zero)}
	}
	return v, nil
}

// GetContainedIdentifiers compiles the composite for target (via the same
// resolver Run uses) and returns, in ascending name order, every identifier
// textually referenced anywhere in that composite's chain of dependency
// expressions, each annotated with its backing Definition when known.
//
// The target's own name is never included unless it happens to reference
// itself directly (a cycle), since GetContainedIdentifiers walks the
// right-hand sides of every `let` declaration in the chain, and the
// target's own name only ever appears as a declaration's left-hand side.
func (e *Evaluator) GetContainedIdentifiers(ctx context.Context, target string) ([]Identifier, error) {
	entry, err := e.resolve(ctx, target, map[string]struct{}{})
	if err != nil {
		return nil, err
	}

	tree, parseErr := e.parser.parseForIntrospection(entry.composite)
	if parseErr != nil {
		return nil, &CompilationError{Identifier: target, Diagnostics: []Diagnostic{{Severity: Error, Message: parseErr.Error()}}}
	}

	seen := map[string]struct{}{}
	var names []string
	collectIdentifiers(tree, func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	})

	names = sortedNames(names)
	out := make([]Identifier, len(names))
	for i, n := range names {
		id := Identifier{Name: n}
		if def, ok := e.definitions.Lookup(n); ok {
			id.Definition = def
		}
		out[i] = id
	}
	return out, nil
}

// resolve implements the script composition algorithm: it looks up target,
// recursively resolves every formula-valued identifier its expression
// references (skipping names already emitted into the composite, and
// skipping names currently on the active recursion path to break cycles),
// composes the chained program, applies the OnFragmentCreated hook,
// enforces denied names, and compiles. The result is cached under target.
func (e *Evaluator) resolve(ctx context.Context, target string, path map[string]struct{}) (*compiledEntry, error) {
	if cached, ok := e.fragments.Load(target); ok {
		e.metrics.CacheHit(target)
		return cached.(*compiledEntry), nil
	}
	e.metrics.CacheMiss(target)

	def, ok := e.definitions.Lookup(target)
	if !ok {
		return nil, &NoFormulaForIdentifierError{Name: target}
	}

	preParse, err := e.parser.CreateFragment(def.Expression)
	if err != nil {
		return nil, &CompilationError{
			Identifier:  target,
			Diagnostics: []Diagnostic{{Severity: Error, Message: err.Error()}},
		}
	}
	refs := e.parser.IdentifierReferences(preParse)

	nextPath := make(map[string]struct{}, len(path)+1)
	for k := range path {
		nextPath[k] = struct{}{}
	}
	nextPath[target] = struct{}{}

	resolved := map[string]struct{}{}
	var composite *Fragment
	var cyclePath []string

	for _, name := range refs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if _, isFormula := e.definitions.Lookup(name); !isFormula {
			continue // context member or built-in, not a formula dependency
		}
		if _, already := resolved[name]; already {
			continue
		}
		if _, onPath := nextPath[name]; onPath {
			cyclePath = append(cyclePath, name)
			continue
		}

		dep, err := e.resolve(ctx, name, nextPath)
		if err != nil {
			return nil, err
		}
		for _, d := range dep.composite.Declared {
			depDef, ok := e.definitions.Lookup(d)
			if _, already := resolved[d]; already || !ok {
				continue
			}
			depExpr := depDef.Expression
			if e.isRounded(depDef) {
				depExpr = roundingExpr(depDef.Expression, *e.rounding)
			}
			composite = e.parser.Chain(composite, e.parser.DeclareFragment(d, depExpr))
			resolved[d] = struct{}{}
		}
	}

	finalExpr := def.Expression
	isRounded := e.isRounded(def)
	if isRounded {
		finalExpr = roundingExpr(def.Expression, *e.rounding)
	}
	ownDecl := e.parser.DeclareFragment(target, finalExpr)
	composite = e.parser.Chain(composite, ownDecl)
	resolved[target] = struct{}{}

	composite = e.onFragmentCreated(composite)

	final := e.parser.Finalize(composite)

	if err := e.parser.EnforceDeniedNames(final, e.deniedNames); err != nil {
		return nil, err
	}

	program, diags := e.parser.Compile(final)
	if HasErrors(diags) {
		if len(cyclePath) > 0 {
			diags = append(diags, Diagnostic{
				Severity: Warning,
				Message:  fmt.Sprintf("circular dependency detected, eliding re-emission of: %s", strings.Join(cyclePath, ", ")),
			})
		}
		return nil, &CompilationError{Identifier: target, Diagnostics: diags, Code: final.Source}
	}
	e.metrics.Compiled(target)

	entry := &compiledEntry{composite: composite, program: program}
	actual, _ := e.fragments.LoadOrStore(target, entry)
	return actual.(*compiledEntry), nil
}
