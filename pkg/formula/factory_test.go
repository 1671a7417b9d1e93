package formula

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFormulaDefinitionsKey_OrderIndependent(t *testing.T) {
	a := []Definition{
		{Identifier: "x", FormulaID: "x-1"},
		{Identifier: "y", FormulaID: "y-1"},
	}
	b := []Definition{
		{Identifier: "y", FormulaID: "y-1"},
		{Identifier: "x", FormulaID: "x-1"},
	}
	assert.Equal(t, NewFormulaDefinitionsKey(a), NewFormulaDefinitionsKey(b))
}

func TestNewFormulaDefinitionsKey_ChangesWithFormulaID(t *testing.T) {
	a := []Definition{{Identifier: "x", FormulaID: "x-1"}}
	b := []Definition{{Identifier: "x", FormulaID: "x-2"}}
	assert.NotEqual(t, NewFormulaDefinitionsKey(a), NewFormulaDefinitionsKey(b))
}

func TestFactory_GetEvaluator_CachesByKey(t *testing.T) {
	f := NewFactory(FactoryOptions{})
	defs := []Definition{{Identifier: "a", FormulaID: "a-1", Expression: "1"}}

	e1, err := f.GetEvaluator(context.Background(), defs)
	require.NoError(t, err)
	e2, err := f.GetEvaluator(context.Background(), defs)
	require.NoError(t, err)

	assert.Same(t, e1, e2)
	assert.Equal(t, 1, f.CacheSize())
}

func TestFactory_GetEvaluator_DedupesConcurrentBuilds(t *testing.T) {
	f := NewFactory(FactoryOptions{})
	defs := []Definition{{Identifier: "a", FormulaID: "a-1", Expression: "1"}}

	const n = 16
	results := make([]*Evaluator, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			e, err := f.GetEvaluator(context.Background(), defs)
			require.NoError(t, err)
			results[i] = e
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Same(t, results[0], results[i])
	}
}

func TestFactory_FlushCache(t *testing.T) {
	f := NewFactory(FactoryOptions{})
	defs := []Definition{{Identifier: "a", FormulaID: "a-1", Expression: "1"}}

	_, err := f.GetEvaluator(context.Background(), defs)
	require.NoError(t, err)
	require.Equal(t, 1, f.CacheSize())

	f.FlushCache()
	assert.Equal(t, 0, f.CacheSize())
}

func TestFactory_MaxCachedEvaluators_EvictsLeastRecentlyUsed(t *testing.T) {
	f := NewFactory(FactoryOptions{MaxCachedEvaluators: 2})

	defsFor := func(id string) []Definition {
		return []Definition{{Identifier: "a", FormulaID: id, Expression: "1"}}
	}

	_, err := f.GetEvaluator(context.Background(), defsFor("k1"))
	require.NoError(t, err)
	_, err = f.GetEvaluator(context.Background(), defsFor("k2"))
	require.NoError(t, err)
	_, err = f.GetEvaluator(context.Background(), defsFor("k3"))
	require.NoError(t, err)

	assert.Equal(t, 2, f.CacheSize())

	k1, ok := f.lookup(NewFormulaDefinitionsKey(defsFor("k1")))
	assert.Nil(t, k1)
	assert.False(t, ok)
}

func TestFactory_GetParser_IsSharedAndLazy(t *testing.T) {
	f := NewFactory(FactoryOptions{})
	p1 := f.GetParser()
	p2 := f.GetParser()
	assert.Same(t, p1, p2)
}
