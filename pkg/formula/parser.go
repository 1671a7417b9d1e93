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

// Package formula evaluates a network of user-supplied formulae against a
// caller-supplied context object. Each formula is a named expression in a
// small typed language (github.com/expr-lang/expr); it may reference other
// formulae by name and may read, never write, fields of the context.
//
// The adapter in this file (Parser) wraps expr-lang with a fixed policy: no
// unsafe builtins are registered into the environment, and expr-lang's VM
// already traps overflow/division errors as runtime errors, so neither
// needs to be separately configured. The Evaluator (evaluator.go) discovers
// a target's transitive formula dependencies by statically walking each
// formula's own syntax tree (IdentifierReferences), chains their compiled
// fragments into one composite program (Chain), and runs that single
// program once per call (Run).
package formula

import (
	"fmt"
	"sort"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/vm"
)

// Fragment is an opaque handle to a parsed program fragment, chainable to
// form a composite script. The chain is a singly linked list via Previous.
type Fragment struct {
	// Source is the expr-lang source text accumulated by this fragment
	// (its own declarations plus everything chained before it).
	Source string

	// Declared is the ordered list of names this fragment (and everything
	// it was chained from) declares via `let`.
	Declared []string

	// Previous is the fragment this one was chained onto, or nil for a
	// fragment created directly by CreateFragment.
	Previous *Fragment

	tree ast.Node // parsed syntax tree of this fragment's OWN expression text, when single-expression
}

// Options fixes the Parser's compile-time policy.
type Options struct {
	// DeniedNames is the set of identifier/member spellings formulae may
	// not reference, matched by exact textual spelling (no prefix/suffix
	// matching).
	DeniedNames map[string]struct{}

	// ContextExemplar is a zero-value-shaped instance of the context type;
	// its exported fields become the environment expr-lang type-checks
	// against. May be nil; the environment then holds only the round
	// builtin.
	ContextExemplar any
}

// Parser is a narrow, fixed-policy expression-compiler adapter over
// expr-lang/expr.
type Parser struct {
	opts Options
}

// NewParser builds a Parser with the given fixed options.
func NewParser(opts Options) *Parser {
	if opts.DeniedNames == nil {
		opts.DeniedNames = map[string]struct{}{}
	}
	return &Parser{opts: opts}
}

// Validate parses expression text in isolation and returns parser-phase
// diagnostics only: no name-denial check, no semantic check, and the
// expression is never executed.
func (p *Parser) Validate(expression string) []Diagnostic {
	_, err := expr.Parse(expression)
	if err == nil {
		return nil
	}
	return []Diagnostic{{Severity: Error, Message: err.Error()}}
}

// CreateFragment parses expressionText and returns a handle representing a
// parsed-but-not-executed fragment. It does not declare any name; callers
// combine it with a `let` declaration via DeclareFragment before chaining
// it into a composite.
func (p *Parser) CreateFragment(expressionText string) (*Fragment, error) {
	tree, err := expr.Parse(expressionText)
	if err != nil {
		return nil, err
	}
	return &Fragment{Source: expressionText, tree: tree.Node}, nil
}

// DeclareFragment wraps a compiled dependency's final expression into a
// `let` statement declaring name, producing the fragment that gets chained
// into a composite in its place.
func (p *Parser) DeclareFragment(name, expressionText string) *Fragment {
	src := fmt.Sprintf("let %s = (%s);", name, expressionText)
	return &Fragment{Source: src, Declared: []string{name}}
}

// Chain produces a new fragment representing target then source,
// preserving source's declared variables. Chain is associative over a
// well-formed sequence of chained fragments.
func (p *Parser) Chain(target, source *Fragment) *Fragment {
	if target == nil {
		return source
	}
	if source == nil {
		return target
	}
	combined := target.Source
	if combined != "" && source.Source != "" {
		combined += "\n"
	}
	combined += source.Source

	declared := make([]string, 0, len(target.Declared)+len(source.Declared))
	declared = append(declared, target.Declared...)
	declared = append(declared, source.Declared...)

	return &Fragment{
		Source:   combined,
		Declared: declared,
		Previous: target,
	}
}

// Finalize appends a trailing map-literal expression exposing every
// declared name, turning the composite's accumulated `let` statements into
// a single runnable program whose result is a map[string]any of every
// intermediate variable computed along the way: rather than introspecting
// an opaque VM's locals after the fact, the composite itself is made to
// return them.
func (p *Parser) Finalize(f *Fragment) *Fragment {
	pairs := make([]string, len(f.Declared))
	for i, name := range f.Declared {
		pairs[i] = fmt.Sprintf("%q: %s", name, name)
	}
	mapLiteral := "{" + strings.Join(pairs, ", ") + "}"

	src := f.Source
	if src != "" {
		src += "\n"
	}
	src += mapLiteral

	return &Fragment{Source: src, Declared: f.Declared, Previous: f}
}

// Compile performs full semantic analysis of fragment's accumulated
// source against the Parser's context environment.
func (p *Parser) Compile(fragment *Fragment) (*vm.Program, []Diagnostic) {
	env := contextEnv(p.opts.ContextExemplar)
	prog, err := expr.Compile(fragment.Source, expr.Env(env))
	if err != nil {
		return nil, []Diagnostic{{Severity: Error, Message: err.Error()}}
	}
	return prog, nil
}

// Run executes program against globals, returning the ordered list of
// declared variables (reconstructed from the trailing map literal that
// Finalize appended) and the final expression's return value.
func (p *Parser) Run(program *vm.Program, fragment *Fragment, globals any) (map[string]any, any, []Diagnostic) {
	env := contextEnv(globals)
	result, err := expr.Run(program, env)
	if err != nil {
		return nil, nil, []Diagnostic{{Severity: Error, Message: err.Error()}}
	}

	values, ok := result.(map[string]any)
	if !ok {
		return nil, result, nil
	}
	return values, result, nil
}

// IdentifierReferences returns the distinct text of every identifier-name
// node syntactically referenced in fragment's own parsed tree, except
// those that are the literal property of a member-access expression (the
// `b` in `a.b`). An identifier appearing as a simple reference may name a
// sibling formula; an identifier appearing as a field access on an
// expression never does. The returned order is a stable pre-order,
// left-to-right walk of the syntax tree (duplicates removed, first
// occurrence wins).
func (p *Parser) IdentifierReferences(fragment *Fragment) []string {
	if fragment == nil || fragment.tree == nil {
		return nil
	}
	seen := map[string]struct{}{}
	var order []string
	collectIdentifiers(fragment.tree, func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		order = append(order, name)
	})
	return order
}

// EnforceDeniedNames walks every identifier-name node and every
// member-access expression in fragment's syntax tree; if the textual
// spelling of such a node is contained in deniedNames, it returns
// NameAccessDeniedError for the first match encountered in a pre-order
// walk.
func (p *Parser) EnforceDeniedNames(fragment *Fragment, deniedNames map[string]struct{}) error {
	if len(deniedNames) == 0 || fragment == nil {
		return nil
	}
	tree, err := expr.Parse(fragment.Source)
	if err != nil {
		// Composite didn't even parse; Compile will report the real
		// diagnostic, denial enforcement has nothing to check.
		return nil
	}

	var denied string
	walkNode(tree.Node, func(path string, _ bool) bool {
		if _, ok := deniedNames[path]; ok {
			denied = path
			return false
		}
		return true
	})
	if denied != "" {
		return &NameAccessDeniedError{Name: denied}
	}
	return nil
}

// parseForIntrospection parses fragment's accumulated `let` chain for
// read-only tree walks such as Evaluator.GetContainedIdentifiers. A trailing
// `nil` is appended so the chain parses as one expression without
// referencing any declared name. It performs no semantic analysis.
func (p *Parser) parseForIntrospection(fragment *Fragment) (ast.Node, error) {
	tree, err := expr.Parse(fragment.Source + "\nnil")
	if err != nil {
		return nil, err
	}
	return tree.Node, nil
}

// collectIdentifiers walks node, invoking emit(name) for every identifier
// reference that is not the literal property of a member-access node.
func collectIdentifiers(node ast.Node, emit func(string)) {
	walkNode(node, func(path string, isIdentifier bool) bool {
		if isIdentifier {
			emit(path)
		}
		return true
	})
}

// walkNode performs a pre-order, left-to-right traversal of node, invoking
// visit(spelling, isBareIdentifier) for every identifier-name node and
// every member-access expression encountered. visit returns false to stop
// the walk early (used by EnforceDeniedNames).
//
// Member-access property nodes that are literal field names (StringNode)
// are never reported as bare identifiers; computed member access
// (`obj[expr]`) still walks its key expression since that key can
// reference a sibling formula.
func walkNode(node ast.Node, visit func(spelling string, isBareIdentifier bool) bool) bool {
	if node == nil {
		return true
	}
	switch n := node.(type) {
	case *ast.IdentifierNode:
		return visit(n.Value, true)

	case *ast.MemberNode:
		if !walkNode(n.Node, visit) {
			return false
		}
		if path, ok := flattenMemberPath(n); ok {
			if !visit(path, false) {
				return false
			}
			return true // literal property name, not a bare identifier
		}
		// Computed member access: the property is itself an expression.
		return walkNode(n.Property, visit)

	case *ast.UnaryNode:
		return walkNode(n.Node, visit)

	case *ast.BinaryNode:
		if !walkNode(n.Left, visit) {
			return false
		}
		return walkNode(n.Right, visit)

	case *ast.ChainNode:
		return walkNode(n.Node, visit)

	case *ast.SliceNode:
		if !walkNode(n.Node, visit) {
			return false
		}
		if !walkNode(n.From, visit) {
			return false
		}
		return walkNode(n.To, visit)

	case *ast.CallNode:
		if !walkNode(n.Callee, visit) {
			return false
		}
		for _, a := range n.Arguments {
			if !walkNode(a, visit) {
				return false
			}
		}
		return true

	case *ast.BuiltinNode:
		for _, a := range n.Arguments {
			if !walkNode(a, visit) {
				return false
			}
		}
		return true

	case *ast.PredicateNode:
		return walkNode(n.Node, visit)

	case *ast.VariableDeclaratorNode:
		if !walkNode(n.Value, visit) {
			return false
		}
		return walkNode(n.Expr, visit)

	case *ast.SequenceNode:
		for _, s := range n.Nodes {
			if !walkNode(s, visit) {
				return false
			}
		}
		return true

	case *ast.ConditionalNode:
		if !walkNode(n.Cond, visit) {
			return false
		}
		if !walkNode(n.Exp1, visit) {
			return false
		}
		return walkNode(n.Exp2, visit)

	case *ast.ArrayNode:
		for _, e := range n.Nodes {
			if !walkNode(e, visit) {
				return false
			}
		}
		return true

	case *ast.MapNode:
		for _, pair := range n.Pairs {
			if !walkNode(pair, visit) {
				return false
			}
		}
		return true

	case *ast.PairNode:
		if !walkNode(n.Key, visit) {
			return false
		}
		return walkNode(n.Value, visit)

	default:
		// Literal/constant leaf nodes (IntegerNode, FloatNode, StringNode,
		// BoolNode, NilNode, ConstantNode, PointerNode, ...): nothing to
		// walk into.
		return true
	}
}

// flattenMemberPath renders a chain of dot-member accesses
// (MemberNode(MemberNode(Identifier("a"), "b"), "c")) as "a.b.c", returning
// ok=false if any segment is a computed (non-literal) property.
func flattenMemberPath(n *ast.MemberNode) (string, bool) {
	prop, ok := n.Property.(*ast.StringNode)
	if !ok {
		return "", false
	}
	switch base := n.Node.(type) {
	case *ast.IdentifierNode:
		return base.Value + "." + prop.Value, true
	case *ast.MemberNode:
		basePath, ok := flattenMemberPath(base)
		if !ok {
			return "", false
		}
		return basePath + "." + prop.Value, true
	default:
		return "", false
	}
}

// sortedNames returns names sorted in ascending order, used wherever a
// stable name order is required (e.g. Evaluator.GetContainedIdentifiers).
func sortedNames(names []string) []string {
	out := append([]string(nil), names...)
	sort.Strings(out)
	return out
}
