package semantics

import (
	"github.com/sablelang/sable/internal/ir"
	"github.com/sablelang/sable/internal/token"
)

// accessKind classifies one variable access.
type accessKind int

// Access kinds.
const (
	accessRead accessKind = iota
	accessWrite
	accessModify
)

func (k accessKind) String() string {
	switch k {
	case accessRead:
		return "read"
	case accessWrite:
		return "write"
	case accessModify:
		return "modify"
	}
	return "read"
}

type access struct {
	kind      accessKind
	pos       token.Position
	loopDepth int
	hot       bool
}

// usageLog collects the expression analyzer's per-variable access
// records. The metadata pass consumes it after the typecheck phase is
// complete; the two-phase ordering is enforced by this type changing
// hands, not by convention.
type usageLog struct {
	order    []*ir.Symbol
	defs     map[*ir.Symbol][]token.Position
	scopes   map[*ir.Symbol]ir.ScopeKind
	accesses map[*ir.Symbol][]access
	total    int
}

func newUsageLog() *usageLog {
	return &usageLog{
		defs:     make(map[*ir.Symbol][]token.Position),
		scopes:   make(map[*ir.Symbol]ir.ScopeKind),
		accesses: make(map[*ir.Symbol][]access),
	}
}

// define records a definition point for a variable.
func (u *usageLog) define(sym *ir.Symbol, pos token.Position, kind ir.ScopeKind) {
	if _, ok := u.defs[sym]; !ok {
		u.order = append(u.order, sym)
		u.scopes[sym] = kind
	}
	u.defs[sym] = append(u.defs[sym], pos)
}

// access records one read, write or modify of a variable together with
// its loop depth and hot-path context.
func (u *usageLog) access(sym *ir.Symbol, kind accessKind, pos token.Position, loopDepth int, hot bool) {
	u.accesses[sym] = append(u.accesses[sym], access{
		kind:      kind,
		pos:       pos,
		loopDepth: loopDepth,
		hot:       hot,
	})
	u.total++
}

func (u *usageLog) write(sym *ir.Symbol, pos token.Position, loopDepth int, hot bool) {
	u.access(sym, accessWrite, pos, loopDepth, hot)
}

// variables returns every defined variable in definition order.
func (u *usageLog) variables() []*ir.Symbol {
	return u.order
}

// stats folds a variable's access records into the summary the
// metadata pass scores against.
func (u *usageLog) stats(sym *ir.Symbol) ir.UsageStats {
	var stats ir.UsageStats
	for _, acc := range u.accesses[sym] {
		switch acc.kind {
		case accessRead:
			stats.Reads++
		case accessWrite:
			stats.Writes++
		case accessModify:
			stats.Modifies++
		}
		if acc.loopDepth > stats.MaxLoopDepth {
			stats.MaxLoopDepth = acc.loopDepth
		}
		if acc.hot {
			stats.HotPath = true
		}
	}
	stats.Frequency = classifyFrequency(stats)
	stats.Pattern = classifyPattern(stats)
	return stats
}

func classifyFrequency(stats ir.UsageStats) ir.AccessFrequency {
	total := stats.Total()
	switch {
	case total == 0:
		return ir.FreqNever
	case stats.HotPath || total > 15:
		return ir.FreqHot
	case total > 5:
		return ir.FreqFrequent
	case total > 2:
		return ir.FreqOccasional
	default:
		return ir.FreqRare
	}
}

func classifyPattern(stats ir.UsageStats) ir.AccessPattern {
	total := stats.Total()
	switch {
	case total == 0:
		return ir.PatternUnused
	case stats.HotPath:
		return ir.PatternHotPath
	case total == 1:
		return ir.PatternSingleUse
	case stats.Reads > 2*(stats.Writes+stats.Modifies):
		return ir.PatternReadHeavy
	case stats.Writes+stats.Modifies > 2*stats.Reads:
		return ir.PatternWriteHeavy
	default:
		return ir.PatternBalanced
	}
}
