package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_Validate(t *testing.T) {
	p := NewParser(Options{})

	assert.Empty(t, p.Validate("1 + 2"))

	diags := p.Validate("1 +")
	require.NotEmpty(t, diags)
	assert.Equal(t, Error, diags[0].Severity)
}

func TestParser_IdentifierReferences(t *testing.T) {
	p := NewParser(Options{})

	frag, err := p.CreateFragment("a + b * a")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, p.IdentifierReferences(frag))
}

func TestParser_IdentifierReferences_ExcludesMemberLiteralProperty(t *testing.T) {
	p := NewParser(Options{})

	frag, err := p.CreateFragment("customer.balance + rate")
	require.NoError(t, err)

	refs := p.IdentifierReferences(frag)
	assert.Contains(t, refs, "customer")
	assert.Contains(t, refs, "rate")
	assert.NotContains(t, refs, "balance")
	assert.NotContains(t, refs, "customer.balance")
}

func TestParser_ChainAndFinalize(t *testing.T) {
	p := NewParser(Options{})

	a := p.DeclareFragment("a", "2")
	b := p.DeclareFragment("b", "a * 10")
	composite := p.Chain(nil, a)
	composite = p.Chain(composite, b)

	final := p.Finalize(composite)
	assert.Equal(t, []string{"a", "b"}, final.Declared)

	program, diags := p.Compile(final)
	require.Empty(t, diags)
	require.NotNil(t, program)

	values, _, runDiags := p.Run(program, final, struct{}{})
	require.Empty(t, runDiags)
	assert.Equal(t, 2, values["a"])
	assert.Equal(t, 20, values["b"])
}

type contextExemplar struct {
	Rate float64
}

func TestParser_Compile_UsesContextExemplar(t *testing.T) {
	p := NewParser(Options{ContextExemplar: contextExemplar{}})

	frag := p.DeclareFragment("cost", "Rate * 2")
	final := p.Finalize(p.Chain(nil, frag))

	program, diags := p.Compile(final)
	require.Empty(t, diags)

	values, _, runDiags := p.Run(program, final, contextExemplar{Rate: 3})
	require.Empty(t, runDiags)
	assert.Equal(t, float64(6), values["cost"])
}

func TestParser_EnforceDeniedNames_BareIdentifier(t *testing.T) {
	p := NewParser(Options{})
	frag := p.DeclareFragment("x", "secretValue + 1")
	composite := p.Chain(nil, frag)
	final := p.Finalize(composite)

	err := p.EnforceDeniedNames(final, map[string]struct{}{"secretValue": {}})
	require.Error(t, err)
	var denied *NameAccessDeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, "secretValue", denied.Name)
}

func TestParser_EnforceDeniedNames_MemberPath(t *testing.T) {
	p := NewParser(Options{})
	frag := p.DeclareFragment("x", "customer.ssn")
	final := p.Finalize(p.Chain(nil, frag))

	err := p.EnforceDeniedNames(final, map[string]struct{}{"customer.ssn": {}})
	require.Error(t, err)
}

func TestParser_EnforceDeniedNames_ExactSpellingOnly(t *testing.T) {
	p := NewParser(Options{})
	frag := p.DeclareFragment("x", "customer.ssnLookup")
	final := p.Finalize(p.Chain(nil, frag))

	err := p.EnforceDeniedNames(final, map[string]struct{}{"customer.ssn": {}})
	assert.NoError(t, err)
}

func TestParser_EnforceDeniedNames_NoDeniedNamesIsNoop(t *testing.T) {
	p := NewParser(Options{})
	frag := p.DeclareFragment("x", "anything")
	final := p.Finalize(p.Chain(nil, frag))

	assert.NoError(t, p.EnforceDeniedNames(final, nil))
}
