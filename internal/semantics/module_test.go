package semantics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sablelang/sable/internal/common"
	"github.com/sablelang/sable/internal/target"
)

func TestImportChain(t *testing.T) {
	a := exported(unit("a",
		vardecl("x", id("byte"), lit(1)),
	), "x")
	b := exported(importing(unit("b",
		vardecl("y", id("byte"), id("x")),
	), "a", "x"), "y")
	c := exported(importing(unit("c",
		fn("run", nil, nil,
			assign(id("y"), lit(2)),
		),
	), "b", "y"), "run")

	// Resolution order must not depend on input order.
	res, ok := analyze(t, c, b, a)
	require.True(t, ok)
	require.Empty(t, res.Errors)

	var fqns []string
	for _, u := range res.Units {
		fqns = append(fqns, u.FQN())
	}
	assert.Equal(t, []string{"a", "b", "c"}, fqns)
}

func TestImportedSymbolIsAlias(t *testing.T) {
	a := exported(unit("a",
		vardecl("x", id("word"), lit(1000)),
	), "x")
	b := exported(importing(unit("b",
		fn("get", nil, id("word"),
			ret(id("x")),
		),
	), "a", "x"), "get")

	res, ok := analyze(t, a, b)
	require.True(t, ok)
	require.Empty(t, res.Errors)

	orig := res.Module("a").LookupLocal("x")
	alias := res.Module("b").LookupLocal("x")
	require.NotNil(t, orig)
	require.NotNil(t, alias)
	assert.NotSame(t, orig, alias)
	assert.True(t, alias.IsImported())
	assert.True(t, alias.T.Equals(orig.T))
}

func TestCircularDependency(t *testing.T) {
	a := exported(importing(unit("a",
		vardecl("x", id("byte"), lit(1)),
	), "b", "y"), "x")
	b := exported(importing(unit("b",
		vardecl("y", id("byte"), lit(2)),
	), "a", "x"), "y")

	res, ok := analyze(t, a, b)
	require.False(t, ok)
	assert.Equal(t, 1, countKind(res.Errors, common.CircularDependency))

	for _, err := range res.Errors {
		if err.Kind == common.CircularDependency {
			assert.NotEmpty(t, err.Context)
		}
	}
}

func TestSelfImportCycle(t *testing.T) {
	a := exported(importing(unit("a",
		vardecl("x", id("byte"), lit(1)),
	), "a", "x"), "x")

	res, ok := analyze(t, a)
	require.False(t, ok)
	assert.Equal(t, 1, countKind(res.Errors, common.CircularDependency))
}

func TestModuleNotFound(t *testing.T) {
	main := exported(unit("main",
		vardecl("x", id("byte"), lit(1)),
	), "x")
	app := importing(unit("app", fn("noop", nil, nil)), "mian", "x")

	res, ok := analyze(t, main, app)
	require.False(t, ok)
	require.Equal(t, 1, countKind(res.Errors, common.ModuleNotFound))

	for _, err := range res.Errors {
		if err.Kind == common.ModuleNotFound {
			require.NotEmpty(t, err.Suggestions)
			assert.Contains(t, err.Suggestions[0], "main")
		}
	}
}

func TestImportNotFound(t *testing.T) {
	a := exported(unit("a",
		vardecl("x", id("byte"), lit(1)),
	), "x")
	b := importing(unit("b", fn("noop", nil, nil)), "a", "z")

	res, ok := analyze(t, a, b)
	require.False(t, ok)
	require.Equal(t, 1, countKind(res.Errors, common.ImportNotFound))

	for _, err := range res.Errors {
		if err.Kind == common.ImportNotFound {
			assert.Contains(t, err.Suggestions, "check available exports of module 'a'")
		}
	}
}

func TestImportOfPrivateSymbol(t *testing.T) {
	a := unit("a",
		vardecl("secret", id("byte"), lit(1)),
	)
	b := importing(unit("b", fn("noop", nil, nil)), "a", "secret")

	res, ok := analyze(t, a, b)
	require.False(t, ok)
	assert.Equal(t, 1, countKind(res.Errors, common.ImportNotFound))
}

func TestExportNotFound(t *testing.T) {
	a := exported(unit("a",
		vardecl("x", id("byte"), lit(1)),
	), "missing")

	res, ok := analyze(t, a)
	require.False(t, ok)
	assert.Equal(t, 1, countKind(res.Errors, common.ExportNotFound))
}

func TestDuplicateModule(t *testing.T) {
	a1 := unit("main", vardecl("x", id("byte"), lit(1)))
	a2 := unit("main", vardecl("y", id("byte"), lit(2)))

	res, ok := analyze(t, a1, a2)
	require.False(t, ok)
	assert.Equal(t, 1, countKind(res.Errors, common.DuplicateSymbol))
}

func TestRerunAgainstSharedGlobalScope(t *testing.T) {
	ctx := common.NewBuildContext()
	prof := target.Default6502()

	first, ok := Check(ctx, prof, exported(unit("main", fn("f", nil, nil)), "f"))
	require.True(t, ok)

	res, ok := CheckWithScope(ctx, prof, first.GlobalScope,
		exported(unit("main", fn("g", nil, nil)), "g"))
	require.False(t, ok)
	assert.Equal(t, 1, countKind(res.Errors, common.DuplicateSymbol))

	// The first definition stays bound to the shared scope.
	scope := res.Module("main")
	require.NotNil(t, scope)
	assert.NotNil(t, scope.LookupLocal("f"))
	assert.Nil(t, scope.LookupLocal("g"))
}

func TestImportCollidesWithDeclaration(t *testing.T) {
	a := exported(unit("a",
		vardecl("x", id("byte"), lit(1)),
	), "x")
	b := importing(unit("b",
		vardecl("x", id("byte"), lit(2)),
	), "a", "x")

	res, ok := analyze(t, a, b)
	require.False(t, ok)
	assert.Equal(t, 1, countKind(res.Errors, common.DuplicateSymbol))
}

func TestQualifiedReference(t *testing.T) {
	gfx := exported(unit("gfx.sprites",
		vardecl("count", id("byte"), lit(8)),
	), "count")
	game := exported(unit("game",
		fn("run", nil, id("byte"),
			ret(dot(dot(id("gfx"), "sprites"), "count")),
		),
	), "run")

	res, ok := analyze(t, gfx, game)
	require.True(t, ok)
	assert.Empty(t, res.Errors)
}

func TestQualifiedReferenceToPrivateSymbol(t *testing.T) {
	a := exported(unit("a",
		vardecl("hidden", id("byte"), lit(1)),
		vardecl("seen", id("byte"), id("hidden")),
	), "seen")
	b := exported(unit("b",
		fn("run", nil, id("byte"),
			ret(dot(id("a"), "hidden")),
		),
	), "run")

	res, ok := analyze(t, a, b)
	require.False(t, ok)
	assert.Equal(t, 1, countKind(res.Errors, common.ImportNotFound))
}

func TestQualifiedReferenceUnknownMember(t *testing.T) {
	a := exported(unit("a",
		vardecl("x", id("byte"), lit(1)),
	), "x")
	b := exported(unit("b",
		fn("run", nil, id("byte"),
			ret(dot(id("a"), "z")),
		),
	), "run")

	res, ok := analyze(t, a, b)
	require.False(t, ok)
	assert.Equal(t, 1, countKind(res.Errors, common.ImportNotFound))
}
