package semantics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sablelang/sable/internal/ir"
	"github.com/sablelang/sable/internal/token"
)

func varMeta(t *testing.T, res *Result, module string, name string) *ir.VarMetadata {
	t.Helper()
	sym := res.Module(module).LookupLocal(name)
	require.NotNil(t, sym)
	require.NotNil(t, sym.VarMeta)
	return sym.VarMeta
}

func funcMeta(t *testing.T, res *Result, module string, name string) *ir.FuncMetadata {
	t.Helper()
	sym := res.Module(module).LookupLocal(name)
	require.NotNil(t, sym)
	require.NotNil(t, sym.FuncMeta)
	return sym.FuncMeta
}

func TestZeroPageVetoes(t *testing.T) {
	u := unit("main",
		storedVar("fast", ir.SCZeroPage, id("byte"), lit(1)),
		storedVar("port", ir.SCIO, id("byte"), nil),
		storedVar("tiles", ir.SCData, arrayType(id("byte"), lit(2)),
			arrayLit(lit(1), lit(2))),
	)

	res, ok := analyze(t, u)
	require.True(t, ok)
	require.Empty(t, res.Errors)

	cases := map[string]string{
		"fast":  "already assigned to the zero page",
		"port":  "io mapped at a fixed address",
		"tiles": "array too large for the zero page",
	}
	for name, reason := range cases {
		zp := varMeta(t, res, "main", name).ZeroPage
		assert.True(t, zp.Vetoed, name)
		assert.Equal(t, 0, zp.Score, name)
		assert.Equal(t, ir.ZPVetoed, zp.Tier, name)
		assert.Equal(t, reason, zp.Reason, name)
	}
}

func TestZeroPageScoreGrowsWithLoopUse(t *testing.T) {
	flat := exported(unit("main",
		vardecl("n", id("byte"), lit(0)),
		fn("f", nil, nil,
			assign(id("n"), bin(token.Add, id("n"), lit(1))),
		),
	), "f")
	resFlat, ok := analyze(t, flat)
	require.True(t, ok)

	nested := exported(unit("main",
		vardecl("n", id("byte"), lit(0)),
		fn("f", nil, nil,
			while(boolLit(true),
				while(boolLit(true),
					assign(id("n"), bin(token.Add, id("n"), lit(1))),
				),
			),
		),
	), "f")
	resNested, ok := analyze(t, nested)
	require.True(t, ok)

	zpFlat := varMeta(t, resFlat, "main", "n").ZeroPage
	zpNested := varMeta(t, resNested, "main", "n").ZeroPage
	assert.Greater(t, zpNested.Score, zpFlat.Score)
	assert.Equal(t, ir.ZPHigh, zpNested.Tier)

	usage := varMeta(t, resNested, "main", "n").Usage
	assert.True(t, usage.HotPath)
	assert.Equal(t, 2, usage.MaxLoopDepth)
	assert.Equal(t, ir.PatternHotPath, usage.Pattern)
}

func TestRegisterCandidacy(t *testing.T) {
	u := unit("main",
		vardecl("b", id("byte"), lit(1)),
		vardecl("w", id("word"), lit(1000)),
		storedVar("tiles", ir.SCData, arrayType(id("byte"), lit(4)),
			arrayLit(lit(1), lit(2), lit(3), lit(4))),
	)

	res, ok := analyze(t, u)
	require.True(t, ok)

	b := varMeta(t, res, "main", "b").Register
	assert.True(t, b.Candidate)
	assert.Equal(t, ir.RegAccumulator, b.Preferred)
	assert.Equal(t, []ir.RegisterClass{ir.RegIndexX, ir.RegIndexY}, b.Alternates)

	w := varMeta(t, res, "main", "w").Register
	assert.Equal(t, ir.RegZeroPagePair, w.Preferred)

	tiles := varMeta(t, res, "main", "tiles").Register
	assert.False(t, tiles.Candidate)
	assert.Equal(t, ir.RegNone, tiles.Preferred)
}

func TestLifetimeScopes(t *testing.T) {
	local := vardecl("l", id("byte"), lit(1))
	u := exported(unit("main",
		vardecl("g", id("byte"), lit(1)),
		fn("f", nil, nil,
			declStmt(local),
			assign(id("l"), lit(2)),
		),
	), "f")

	res, ok := analyze(t, u)
	require.True(t, ok)
	require.Empty(t, res.Errors)

	global := varMeta(t, res, "main", "g").Lifetime
	assert.Equal(t, ir.ModuleScope, global.ScopeKind)

	require.NotNil(t, local.Sym)
	require.NotNil(t, local.Sym.VarMeta)
	inner := local.Sym.VarMeta.Lifetime
	assert.Equal(t, ir.BlockScope, inner.ScopeKind)
	assert.Less(t, inner.Duration, global.Duration)
	assert.Len(t, inner.DefPoints, 1)
}

func TestUsagePatterns(t *testing.T) {
	u := exported(unit("main",
		vardecl("r", id("byte"), lit(1)),
		vardecl("w", id("byte"), lit(0)),
		fn("f", nil, id("byte"),
			assign(id("w"), lit(1)),
			assign(id("w"), lit(2)),
			ret(bin(token.Add, bin(token.Add, id("r"), id("r")), id("r"))),
		),
	), "f")

	res, ok := analyze(t, u)
	require.True(t, ok)

	reads := varMeta(t, res, "main", "r").Usage
	assert.Equal(t, 3, reads.Reads)
	assert.Equal(t, ir.PatternReadHeavy, reads.Pattern)
	assert.Equal(t, ir.FreqOccasional, reads.Frequency)

	writes := varMeta(t, res, "main", "w").Usage
	assert.Equal(t, 3, writes.Writes)
	assert.Equal(t, ir.PatternWriteHeavy, writes.Pattern)
}

func TestInlineExcludesCallbacks(t *testing.T) {
	u := exported(unit("main",
		vardecl("x", id("byte"), lit(0)),
		cb("tick", nil,
			assign(id("x"), lit(1)),
		),
		fn("small", nil, nil,
			assign(id("x"), lit(2)),
		),
	), "small")

	res, ok := analyze(t, u)
	require.True(t, ok)

	tick := funcMeta(t, res, "main", "tick").Inline
	assert.False(t, tick.Candidate)
	assert.Equal(t, []string{"callback_function"}, tick.Factors)

	small := funcMeta(t, res, "main", "small").Inline
	assert.True(t, small.Candidate)
	assert.Contains(t, small.Factors, "small_body")
	assert.Contains(t, small.Factors, "leaf_function")
	assert.Positive(t, small.Score)
}

func TestInlineRejectsLoops(t *testing.T) {
	u := exported(unit("main",
		vardecl("x", id("byte"), lit(0)),
		fn("spin", nil, nil,
			while(boolLit(true),
				assign(id("x"), lit(1)),
			),
		),
	), "spin")

	res, ok := analyze(t, u)
	require.True(t, ok)

	meta := funcMeta(t, res, "main", "spin")
	assert.True(t, meta.Complexity.HasLoops)
	assert.False(t, meta.Inline.Candidate)
	assert.Contains(t, meta.Inline.Factors, "has_loops")
}

func TestCyclomaticComplexity(t *testing.T) {
	u := exported(unit("main",
		vardecl("x", id("byte"), lit(0)),
		vardecl("flag", id("boolean"), boolLit(true)),
		fn("f", nil, nil,
			ifStmt(id("flag"), assign(id("x"), lit(1))),
			while(id("flag"), assign(id("x"), lit(2))),
		),
	), "f")

	res, ok := analyze(t, u)
	require.True(t, ok)

	meta := funcMeta(t, res, "main", "f")
	assert.Equal(t, 3, meta.Complexity.Cyclomatic)
	assert.Positive(t, meta.Complexity.NodeCount)
	assert.Positive(t, meta.Complexity.CodeSize)
}

func TestCallConvRegisterParams(t *testing.T) {
	u := unit("main",
		fn("two", []*ir.ParamDecl{param("a", "byte"), param("b", "byte")}, nil),
		fn("wide", []*ir.ParamDecl{
			param("a", "word"), param("b", "word"), param("c", "word"),
		}, nil),
	)

	res, ok := analyze(t, u)
	require.True(t, ok)

	two := funcMeta(t, res, "main", "two").CallConv
	assert.Equal(t, 2, two.RegisterParams)
	assert.Equal(t, 0, two.StackParams)
	assert.Equal(t, []ir.RegisterClass{ir.RegAccumulator, ir.RegIndexX}, two.ParamRegisters)
	assert.True(t, two.Efficient)

	wide := funcMeta(t, res, "main", "wide").CallConv
	assert.Equal(t, 0, wide.RegisterParams)
	assert.Equal(t, 3, wide.StackParams)
	assert.False(t, wide.Efficient)
	assert.Greater(t, wide.EstimatedCycles, two.EstimatedCycles)
}

func TestCallbackDispatchMetadata(t *testing.T) {
	u := unit("main",
		vardecl("x", id("byte"), lit(0)),
		cb("tick", nil,
			assign(id("x"), lit(1)),
		),
		fn("plain", nil, nil),
	)

	res, ok := analyze(t, u)
	require.True(t, ok)

	tick := funcMeta(t, res, "main", "tick")
	require.NotNil(t, tick.Callback)
	assert.Len(t, tick.Callback.PreserveRegisters, 3)
	assert.Equal(t, 11, tick.Callback.IndirectCallCycles)
	assert.Equal(t, 5, tick.Callback.DispatchOverhead)
	assert.GreaterOrEqual(t, tick.Callback.MaxLatencyCycles, 11)
	assert.Equal(t, ir.AllocConservative, tick.Hints.Strategy)

	plain := funcMeta(t, res, "main", "plain")
	assert.Nil(t, plain.Callback)
	assert.Equal(t, ir.AllocBalanced, plain.Hints.Strategy)
}

func TestProfileRecommendations(t *testing.T) {
	u := unit("main",
		fn("wide", []*ir.ParamDecl{
			param("a", "word"), param("b", "word"), param("c", "word"),
		}, nil),
	)

	res, ok := analyze(t, u)
	require.True(t, ok)

	profile := funcMeta(t, res, "main", "wide").Profile
	var whats []string
	for _, rec := range profile.Recommendations {
		whats = append(whats, rec.What)
	}
	assert.Contains(t, whats, "reduce parameter count to fit the register convention")

	for i := 1; i < len(profile.Recommendations); i++ {
		assert.GreaterOrEqual(t,
			profile.Recommendations[i-1].Benefit,
			profile.Recommendations[i].Benefit)
	}
}

func TestNestedBranchingBarsInlining(t *testing.T) {
	u := exported(unit("main",
		fn("route", []*ir.ParamDecl{param("n", "byte")}, nil,
			ifStmt(bin(token.Lt, id("n"), lit(4)),
				ifStmt(bin(token.Lt, id("n"), lit(2)),
					assign(id("n"), lit(0)),
				),
			),
		),
		fn("flat", []*ir.ParamDecl{param("m", "byte")}, nil,
			ifStmt(bin(token.Lt, id("m"), lit(4)),
				assign(id("m"), lit(0)),
			),
		),
	), "route", "flat")

	res, ok := analyze(t, u)
	require.True(t, ok)
	require.Empty(t, res.Errors)

	route := funcMeta(t, res, "main", "route")
	assert.True(t, route.Complexity.HasComplexFlow)
	assert.Contains(t, route.Inline.Factors, "complex_control_flow")
	assert.False(t, route.Inline.Candidate)

	flat := funcMeta(t, res, "main", "flat")
	assert.False(t, flat.Complexity.HasComplexFlow)
	assert.True(t, flat.Inline.Candidate)
}

func TestElseIfChainIsComplexFlow(t *testing.T) {
	chain := &ir.IfStmt{
		Cond: bin(token.Lt, id("n"), lit(2)),
		Body: block(assign(id("n"), lit(0))),
		Else: &ir.IfStmt{
			Cond: bin(token.Lt, id("n"), lit(4)),
			Body: block(assign(id("n"), lit(1))),
		},
	}
	u := exported(unit("main",
		fn("pick", []*ir.ParamDecl{param("n", "byte")}, nil, chain),
	), "pick")

	res, ok := analyze(t, u)
	require.True(t, ok)
	require.Empty(t, res.Errors)

	meta := funcMeta(t, res, "main", "pick")
	assert.True(t, meta.Complexity.HasComplexFlow)
	assert.Equal(t, 4, meta.Complexity.Cyclomatic)
}

func TestSignatureOnlyFunctionGetsMetadata(t *testing.T) {
	ext := &ir.FuncDecl{
		Name:   id("vblank"),
		Params: []*ir.ParamDecl{param("n", "byte")},
	}
	u := exported(unit("main", ext), "vblank")

	res, ok := analyze(t, u)
	require.True(t, ok)
	require.Empty(t, res.Errors)

	meta := funcMeta(t, res, "main", "vblank")
	assert.Equal(t, 0, meta.Complexity.NodeCount)
	assert.Equal(t, 1, meta.CallConv.RegisterParams)
}
