// Package semantics validates Sable compilation units against the
// language's type and scoping rules and annotates every variable and
// function symbol with the optimization metadata the code generator
// consumes.
package semantics

import (
	"go.uber.org/zap"

	"github.com/sablelang/sable/internal/common"
	"github.com/sablelang/sable/internal/ir"
	"github.com/sablelang/sable/internal/target"
	"github.com/sablelang/sable/internal/token"
)

// Result is the aggregated output of one analysis run.
type Result struct {
	GlobalScope *ir.Scope
	Units       []*ir.Unit
	Errors      []*common.Error
	Warnings    []*common.Error
}

// Err flattens the run's errors into a single error value, or nil.
func (r *Result) Err() error {
	list := &common.ErrorList{Errors: r.Errors}
	return list.Combined()
}

// Module returns the scope of the named module, or nil.
func (r *Result) Module(fqn string) *ir.Scope {
	sym := r.GlobalScope.LookupLocal(fqn)
	if sym == nil {
		return nil
	}
	if t, ok := sym.T.(*ir.ModuleType); ok {
		return t.Scope
	}
	return nil
}

// Check analyzes a set of compilation units against a fresh global
// scope. The returned bool is false if any error was produced during
// this run.
func Check(ctx *common.BuildContext, profile *target.Profile, units ...*ir.Unit) (*Result, bool) {
	global := ir.NewScope(ir.GlobalScope, "", nil)
	return CheckWithScope(ctx, profile, global, units...)
}

// CheckWithScope analyzes a set of compilation units against an already
// constructed global scope.
func CheckWithScope(ctx *common.BuildContext, profile *target.Profile, global *ir.Scope, units ...*ir.Unit) (*Result, bool) {
	ctx.SetCheckpoint()
	c := newChecker(ctx, profile, global)
	c.resolveModules(units)
	c.checkUnits()
	c.annotate()
	ctx.Errors.Sort()
	res := &Result{
		GlobalScope: global,
		Units:       c.units,
		Errors:      ctx.Errors.Errors,
		Warnings:    ctx.Errors.Warnings,
	}
	return res, !ctx.IsErrorSinceCheckpoint()
}

// CheckUnit analyzes a single unit. Kept for incremental and partial
// analysis callers.
func CheckUnit(ctx *common.BuildContext, profile *target.Profile, unit *ir.Unit) (*Result, bool) {
	return Check(ctx, profile, unit)
}

type checker struct {
	ctx     *common.BuildContext
	profile *target.Profile
	global  *ir.Scope

	units   []*ir.Unit
	unitMap map[string]*ir.Unit

	// Module dependency walk state, rebuilt every run.
	colors map[*ir.Unit]ir.Color
	stack  []*ir.Unit
	order  []*ir.Unit

	// Ast traversal state.
	scope     *ir.Scope
	fun       *ir.Symbol
	loopDepth int

	usage *usageLog
	stats map[*ir.Symbol]*funcStats
	calls map[*ir.Symbol]int
}

func newChecker(ctx *common.BuildContext, profile *target.Profile, global *ir.Scope) *checker {
	return &checker{
		ctx:     ctx,
		profile: profile,
		global:  global,
		scope:   global,
		unitMap: make(map[string]*ir.Unit),
		colors:  make(map[*ir.Unit]ir.Color),
		usage:   newUsageLog(),
		stats:   make(map[*ir.Symbol]*funcStats),
		calls:   make(map[*ir.Symbol]int),
	}
}

func (c *checker) error(kind common.ErrorKind, pos token.Position, format string, args ...interface{}) {
	c.ctx.Errors.Add(kind, pos, format, args...)
}

func (c *checker) errorNode(kind common.ErrorKind, node ir.Node, format string, args ...interface{}) {
	c.ctx.Errors.AddRange(kind, node.Pos(), node.EndPos(), format, args...)
}

func (c *checker) errorSuggest(kind common.ErrorKind, pos token.Position, suggestions []string, format string, args ...interface{}) {
	c.ctx.Errors.AddSuggested(kind, pos, suggestions, format, args...)
}

func (c *checker) warning(pos token.Position, format string, args ...interface{}) {
	c.ctx.Errors.AddWarning(pos, format, args...)
}

func (c *checker) setScope(scope *ir.Scope) *ir.Scope {
	prev := c.scope
	c.scope = scope
	return prev
}

func (c *checker) openScope(kind ir.ScopeKind, name string) *ir.Scope {
	c.scope = ir.NewScope(kind, name, c.scope)
	return c.scope
}

func (c *checker) closeScope() {
	c.scope = c.scope.Parent
}

func (c *checker) lookup(name string) *ir.Symbol {
	return c.scope.Lookup(name)
}

// checkUnits runs the typecheck phase over every resolved unit. The
// declaration pass has already populated the module scopes; this pass
// checks initializers, signatures and bodies and fills the usage log.
func (c *checker) checkUnits() {
	for _, unit := range c.units {
		c.ctx.Logger.Debug("checking unit",
			zap.String("module", unit.FQN()),
			zap.Int("decls", len(unit.Decls)))
		prev := c.setScope(unit.Scope)
		for _, decl := range unit.Decls {
			c.checkDeclBody(decl)
		}
		c.setScope(prev)
	}
}
