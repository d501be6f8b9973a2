package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sablelang/sable/internal/token"
)

func TestScopeInsertRejectsDuplicate(t *testing.T) {
	scope := NewScope(ModuleScope, "main", nil)
	first := NewSymbol(VarSymbol, scope, false, "x", token.NoPosition)
	second := NewSymbol(VarSymbol, scope, false, "x", token.NoPosition)

	require.Nil(t, scope.Insert("x", first))
	existing := scope.Insert("x", second)
	require.NotNil(t, existing)
	assert.Same(t, first, existing)
	assert.Same(t, first, scope.LookupLocal("x"))
	assert.Equal(t, 1, scope.Len())
}

func TestScopeLookupWalksParents(t *testing.T) {
	global := NewScope(GlobalScope, "", nil)
	module := NewScope(ModuleScope, "main", global)
	fun := NewScope(FuncScope, "f", module)

	sym := NewSymbol(VarSymbol, module, false, "x", token.NoPosition)
	require.Nil(t, module.Insert("x", sym))

	assert.Same(t, sym, fun.Lookup("x"))
	assert.Nil(t, fun.LookupLocal("x"))
	assert.Nil(t, global.Lookup("x"))
}

func TestScopeShadowing(t *testing.T) {
	module := NewScope(ModuleScope, "main", nil)
	blockScope := NewScope(BlockScope, "", module)

	outer := NewSymbol(VarSymbol, module, false, "x", token.NoPosition)
	inner := NewSymbol(VarSymbol, blockScope, false, "x", token.NoPosition)
	require.Nil(t, module.Insert("x", outer))
	require.Nil(t, blockScope.Insert("x", inner))

	assert.Same(t, inner, blockScope.Lookup("x"))
	assert.Same(t, outer, module.Lookup("x"))
}

func TestScopeSymbolsInsertionOrder(t *testing.T) {
	scope := NewScope(ModuleScope, "main", nil)
	for _, name := range []string{"c", "a", "b"} {
		require.Nil(t, scope.Insert(name, NewSymbol(VarSymbol, scope, false, name, token.NoPosition)))
	}

	var names []string
	for _, sym := range scope.Symbols() {
		names = append(names, sym.Name)
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)
}

func TestScopeModFQN(t *testing.T) {
	global := NewScope(GlobalScope, "", nil)
	module := NewScope(ModuleScope, "gfx.sprites", global)
	fun := NewScope(FuncScope, "draw", module)
	inner := NewScope(BlockScope, "", fun)

	assert.Equal(t, "gfx.sprites", inner.ModFQN())
	assert.Equal(t, "gfx.sprites", module.ModFQN())
	assert.Equal(t, "", global.ModFQN())
}
