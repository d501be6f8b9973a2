package semantics

import (
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/sablelang/sable/internal/ir"
)

// annotate runs the metadata phase: every variable and function symbol
// gets its optimization record, computed from the usage log the
// typecheck phase produced. Metadata is immutable once attached.
func (c *checker) annotate() {
	vars := 0
	for _, sym := range c.usage.variables() {
		sym.VarMeta = c.varMetadata(sym)
		vars++
	}
	funs := 0
	for sym, stats := range c.stats {
		sym.FuncMeta = c.funcMetadata(sym, stats)
		funs++
	}
	// Functions without a body still get a record for their signature.
	for _, unit := range c.units {
		for _, sym := range unit.Scope.Symbols() {
			if sym.Kind == ir.FuncSymbol && sym.FuncMeta == nil && !sym.IsImported() {
				sym.FuncMeta = c.funcMetadata(sym, newFuncStats(nil))
				funs++
			}
		}
	}
	c.warnUnused()
	c.ctx.Logger.Debug("metadata attached",
		zap.Int("variables", vars),
		zap.Int("functions", funs))
}

// warnUnused flags private declarations nothing ever touched.
// Parameters are exempt; an unused parameter is part of a signature
// contract, not dead storage.
func (c *checker) warnUnused() {
	for _, sym := range c.usage.variables() {
		if sym.Public || sym.VarMeta.Usage.Total() > 0 {
			continue
		}
		if c.usage.scopes[sym] == ir.FuncScope {
			continue
		}
		c.warning(sym.DeclPos, "variable '%s' is declared and not used", sym.Name)
	}
	for _, unit := range c.units {
		for _, sym := range unit.Scope.Symbols() {
			if sym.Kind != ir.FuncSymbol || sym.Public || sym.IsImported() {
				continue
			}
			if c.calls[sym] == 0 && !sym.IsCallback() {
				c.warning(sym.DeclPos, "function '%s' is declared and never called", sym.Name)
			}
		}
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func (c *checker) varMetadata(sym *ir.Symbol) *ir.VarMetadata {
	usage := c.usage.stats(sym)
	size := c.profile.Sizeof(sym.T)
	return &ir.VarMetadata{
		Usage:    usage,
		ZeroPage: c.zeroPageInfo(sym, usage, size),
		Register: c.registerInfo(sym, usage, size),
		Lifetime: c.lifetimeInfo(sym, usage),
	}
}

// zeroPageInfo scores a variable for zero-page promotion. Variables
// already placed (zp) or pinned (io) are vetoed outright, as are
// arrays; the zero page is too scarce for aggregates.
func (c *checker) zeroPageInfo(sym *ir.Symbol, usage ir.UsageStats, size int) ir.ZeroPageInfo {
	w := c.profile.Weights

	veto := func(reason string) ir.ZeroPageInfo {
		return ir.ZeroPageInfo{Score: 0, Vetoed: true, Reason: reason, Tier: ir.ZPVetoed}
	}
	switch {
	case sym.Storage == ir.SCZeroPage:
		return veto("already assigned to the zero page")
	case sym.Storage == ir.SCIO:
		return veto("io mapped at a fixed address")
	case sym.T.Kind() == ir.TArray:
		return veto("array too large for the zero page")
	}

	score := 0
	if size == 1 {
		score += w.ZPSmallSize
	} else if size > 2 {
		score -= w.ZPLargeSize
	}
	if usage.HotPath {
		score += w.ZPHotPath
	}
	if usage.MaxLoopDepth > 0 {
		score += w.ZPLoopUse
	}
	if usage.Frequency >= ir.FreqFrequent {
		score += w.ZPFrequentUse
	}
	score = clampScore(score)

	return ir.ZeroPageInfo{Score: score, Tier: zeroPageTier(score)}
}

func zeroPageTier(score int) ir.ZeroPageTier {
	switch {
	case score >= 70:
		return ir.ZPHigh
	case score >= 45:
		return ir.ZPModerate
	case score >= 20:
		return ir.ZPLow
	default:
		return ir.ZPAvoid
	}
}

// registerInfo scores a variable for register allocation. Byte values
// prefer the accumulator with the index registers as alternates; word
// values only fit a zero-page pair; arrays are never candidates.
func (c *checker) registerInfo(sym *ir.Symbol, usage ir.UsageStats, size int) ir.RegisterInfo {
	w := c.profile.Weights

	if sym.T.Kind() == ir.TArray || sym.Storage == ir.SCIO {
		return ir.RegisterInfo{Candidate: false, Preferred: ir.RegNone}
	}

	var info ir.RegisterInfo
	switch size {
	case 1:
		info.Preferred = ir.RegAccumulator
		info.Alternates = []ir.RegisterClass{ir.RegIndexX, ir.RegIndexY}
		info.Score += w.RegByteSize
	case 2:
		info.Preferred = ir.RegZeroPagePair
	default:
		return ir.RegisterInfo{Candidate: false, Preferred: ir.RegNone}
	}
	if usage.HotPath {
		info.Score += w.RegHotPath
	}
	if usage.MaxLoopDepth > 0 {
		info.Score += w.RegLoopUse
	}
	info.Score = clampScore(info.Score)
	info.Candidate = usage.Total() > 0
	return info
}

// lifetimeInfo estimates a variable's live range. Locals die with
// their scope and score a short duration; globals are assumed live for
// the whole program.
func (c *checker) lifetimeInfo(sym *ir.Symbol, usage ir.UsageStats) ir.LifetimeInfo {
	kind := c.usage.scopes[sym]
	base := 0
	switch kind {
	case ir.BlockScope:
		base = 8
	case ir.FuncScope:
		base = 32
	default:
		base = 256
	}
	return ir.LifetimeInfo{
		DefPoints: c.usage.defs[sym],
		ScopeKind: kind,
		Duration:  base + usage.Total(),
	}
}

func (c *checker) funcMetadata(sym *ir.Symbol, stats *funcStats) *ir.FuncMetadata {
	sig := sym.Callback()
	if sig == nil {
		sig = ir.NewCallbackType(nil, ir.TBuiltinVoid)
	}
	complexity := ir.ComplexityInfo{
		NodeCount:      stats.nodeCount,
		CodeSize:       stats.codeSize,
		Cyclomatic:     stats.cyclomatic,
		HasLoops:       stats.hasLoops,
		HasComplexFlow: stats.hasComplexFlow,
	}

	meta := &ir.FuncMetadata{
		Complexity: complexity,
		Inline:     c.inlineInfo(sym, complexity, stats),
		CallConv:   c.callConvInfo(sig),
		Hints:      c.hintInfo(sym, stats),
	}
	if sym.IsCallback() {
		meta.Callback = c.callbackInfo(stats)
	}
	meta.Profile = c.profileInfo(sig, stats, meta)
	return meta
}

// inlineInfo scores a function for inlining. Callback functions are
// always excluded: their identity must remain addressable for indirect
// dispatch.
func (c *checker) inlineInfo(sym *ir.Symbol, complexity ir.ComplexityInfo, stats *funcStats) ir.InlineInfo {
	w := c.profile.Weights
	var info ir.InlineInfo

	if sym.IsCallback() {
		info.Factors = append(info.Factors, "callback_function")
		return info
	}

	score := 0
	if complexity.NodeCount <= w.InlineMaxNodes/2 {
		score += w.InlineSmallBody
		info.Factors = append(info.Factors, "small_body")
	}
	if !stats.hasCalls {
		score += w.InlineLeaf
		info.Factors = append(info.Factors, "leaf_function")
	}
	if complexity.HasLoops {
		score -= w.InlineLoopPenalty
		info.Factors = append(info.Factors, "has_loops")
	}
	if complexity.HasComplexFlow {
		info.Factors = append(info.Factors, "complex_control_flow")
	}
	info.Score = clampScore(score)
	info.Candidate = !complexity.HasLoops && !complexity.HasComplexFlow &&
		complexity.NodeCount <= w.InlineMaxNodes && complexity.CodeSize <= w.InlineMaxSize
	return info
}

// callConvInfo prices the calling convention: the first small
// parameters ride in registers, the rest go through the emulated
// stack.
func (c *checker) callConvInfo(sig *ir.CallbackType) ir.CallConvInfo {
	costs := c.profile.Costs
	var info ir.CallConvInfo

	regsLeft := c.profile.RegisterParams
	regs := []ir.RegisterClass{ir.RegAccumulator, ir.RegIndexX, ir.RegIndexY}
	for _, param := range sig.Params {
		size := c.profile.Sizeof(param.T)
		if size == 1 && regsLeft > 0 {
			info.ParamRegisters = append(info.ParamRegisters, regs[len(info.ParamRegisters)%len(regs)])
			info.RegisterParams++
			regsLeft--
		} else {
			info.ParamRegisters = append(info.ParamRegisters, ir.RegNone)
			info.StackParams++
		}
	}

	info.EstimatedCycles = costs.Call + costs.Return +
		info.RegisterParams*costs.ArithOp +
		info.StackParams*(costs.StackPush+costs.StackPull)
	info.Efficient = info.EstimatedCycles <= c.profile.Weights.EfficientCallCycles
	return info
}

// callbackInfo prices the interrupt/indirect entry of a callback: all
// registers must survive the dispatch and the call itself goes through
// a vector.
func (c *checker) callbackInfo(stats *funcStats) *ir.CallbackInfo {
	costs := c.profile.Costs
	return &ir.CallbackInfo{
		PreserveRegisters:  []ir.RegisterClass{ir.RegAccumulator, ir.RegIndexX, ir.RegIndexY},
		IndirectCallCycles: costs.IndirectCall,
		DispatchOverhead:   costs.IndirectCall - costs.Call,
		MaxLatencyCycles:   costs.IndirectCall + stats.cycles,
	}
}

func (c *checker) hintInfo(sym *ir.Symbol, stats *funcStats) ir.HintInfo {
	var info ir.HintInfo
	info.ZeroPageBenefit = stats.hasLoops || stats.maxLoopDepth > 0
	switch {
	case sym.IsCallback():
		info.Strategy = ir.AllocConservative
	case stats.hasLoops && stats.nodeCount <= c.profile.Weights.InlineMaxNodes:
		info.Strategy = ir.AllocAggressive
	default:
		info.Strategy = ir.AllocBalanced
	}
	return info
}

func (c *checker) profileInfo(sig *ir.CallbackType, stats *funcStats, meta *ir.FuncMetadata) ir.ProfileInfo {
	costs := c.profile.Costs

	zpBytes := 0
	for _, param := range sig.Params {
		if c.profile.Sizeof(param.T) > 1 {
			zpBytes += c.profile.Sizeof(param.T)
		}
	}

	info := ir.ProfileInfo{
		EstimatedCycles: stats.cycles + meta.CallConv.EstimatedCycles,
		StackDepth:      meta.CallConv.StackParams,
		RegistersUsed:   meta.CallConv.RegisterParams,
		ZeroPageBytes:   zpBytes,
	}
	if stats.hasCalls {
		info.StackDepth += 2
	}

	if meta.Inline.Candidate {
		info.Recommendations = append(info.Recommendations, ir.Recommendation{
			What:    "inline at call sites",
			Benefit: costs.Call + costs.Return,
		})
	}
	if meta.Hints.ZeroPageBenefit {
		info.Recommendations = append(info.Recommendations, ir.Recommendation{
			What:    "promote loop variables to the zero page",
			Benefit: (costs.AbsoluteLoad - costs.ZeroPageLoad) * (1 + stats.maxLoopDepth),
		})
	}
	if !meta.CallConv.Efficient {
		info.Recommendations = append(info.Recommendations, ir.Recommendation{
			What:    "reduce parameter count to fit the register convention",
			Benefit: meta.CallConv.StackParams * (costs.StackPush + costs.StackPull),
		})
	}
	slices.SortStableFunc(info.Recommendations, func(a, b ir.Recommendation) bool {
		return a.Benefit > b.Benefit
	})
	return info
}
