package semantics

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sablelang/sable/internal/common"
	"github.com/sablelang/sable/internal/ir"
)

// resolveModules runs the module phase: register every unit, build the
// import dependency graph, reject cycles, and process imports in
// topological order so a module's exports are fully known before any
// importer reads them.
func (c *checker) resolveModules(units []*ir.Unit) {
	c.createUnitMap(units)
	c.detectCycles()
	c.sortUnits()
	for _, unit := range c.order {
		prev := c.setScope(unit.Scope)
		c.resolveImports(unit)
		c.declareUnit(unit)
		c.validateExports(unit)
		c.setScope(prev)
	}
	c.units = c.order
	c.ctx.Logger.Debug("modules resolved", zap.Int("units", len(c.units)))
}

func (c *checker) createUnitMap(units []*ir.Unit) {
	for _, unit := range units {
		fqn := unit.FQN()
		sym := ir.NewSymbol(ir.ModuleSymbol, c.global, true, fqn, unit.Name.Pos())
		sym.Flags = ir.SymFlagDefined | ir.SymFlagReadOnly
		// The insert also collides with module symbols a previous run
		// left in a shared global scope.
		if existing := c.global.Insert(fqn, sym); existing != nil {
			c.error(common.DuplicateSymbol, unit.Name.Pos(),
				"redefinition of module '%s' (different definition is at '%s')", fqn, existing.DeclPos)
			continue
		}
		unit.Scope = ir.NewScope(ir.ModuleScope, fqn, c.global)
		sym.T = ir.NewModuleType(sym, unit.Scope)
		unit.Sym = sym
		c.unitMap[fqn] = unit
	}
}

// detectCycles walks the import graph depth-first. A unit revisited
// while still on the processing stack closes a cycle; the cycle is
// reported once, on the unit that closed it.
func (c *checker) detectCycles() {
	for _, unit := range c.orderedUnits() {
		if c.colors[unit] == ir.WhiteColor {
			c.visitUnit(unit)
		}
	}
}

// orderedUnits returns the registered units in registration order.
func (c *checker) orderedUnits() []*ir.Unit {
	var res []*ir.Unit
	for _, sym := range c.global.Symbols() {
		if sym.Kind != ir.ModuleSymbol {
			continue
		}
		if unit, ok := c.unitMap[sym.Name]; ok {
			res = append(res, unit)
		}
	}
	return res
}

func (c *checker) visitUnit(unit *ir.Unit) {
	c.colors[unit] = ir.GrayColor
	c.stack = append(c.stack, unit)

	for _, imp := range unit.Imports {
		dep, ok := c.unitMap[imp.From.Literal]
		if !ok {
			// Reported as ModuleNotFound during import resolution.
			continue
		}
		switch c.colors[dep] {
		case ir.WhiteColor:
			c.visitUnit(dep)
		case ir.GrayColor:
			c.reportCycle(unit, dep, imp)
		}
	}

	c.stack = c.stack[:len(c.stack)-1]
	c.colors[unit] = ir.BlackColor
	c.order = append(c.order, unit)
}

func (c *checker) reportCycle(unit *ir.Unit, dep *ir.Unit, imp *ir.Import) {
	// Find the start of the cycle on the processing stack.
	start := 0
	for i, s := range c.stack {
		if s == dep {
			start = i
			break
		}
	}
	trace := c.stack[start:]

	var lines []string
	for i, s := range trace {
		next := i + 1
		if next == len(trace) {
			next = 0
		}
		lines = append(lines, fmt.Sprintf("  >> [%d] %s imports [%d] %s", i, s.FQN(), next, trace[next].FQN()))
	}

	c.ctx.Errors.AddContext(common.CircularDependency, imp.Pos(), lines,
		"circular dependency between module '%s' and module '%s'", unit.FQN(), dep.FQN())
}

// sortUnits finalizes the topological resolution order. Units that were
// part of a reported cycle still appear so later passes can run.
func (c *checker) sortUnits() {
	seen := make(map[*ir.Unit]bool)
	for _, unit := range c.order {
		seen[unit] = true
	}
	for _, unit := range c.orderedUnits() {
		if !seen[unit] {
			c.order = append(c.order, unit)
		}
	}
}

// resolveImports injects each imported symbol into the importing
// module's scope. The exporter has already been fully processed.
func (c *checker) resolveImports(unit *ir.Unit) {
	for _, imp := range unit.Imports {
		from, ok := c.unitMap[imp.From.Literal]
		if !ok {
			c.errorSuggest(common.ModuleNotFound, imp.From.Pos(),
				c.moduleSuggestions(imp.From.Literal),
				"module '%s' not found", imp.From.Literal)
			continue
		}
		for _, name := range imp.Names {
			sym := from.Scope.LookupLocal(name.Literal)
			if sym == nil || !sym.Public {
				c.errorSuggest(common.ImportNotFound, name.Pos(),
					c.exportSuggestions(from, name.Literal),
					"module '%s' does not export '%s'", from.FQN(), name.Literal)
				continue
			}
			alias := ir.NewSymbol(sym.Kind, unit.Scope, false, sym.Name, name.Pos())
			alias.T = sym.T
			alias.Storage = sym.Storage
			alias.Flags = sym.Flags | ir.SymFlagImported
			alias.VarMeta = sym.VarMeta
			alias.FuncMeta = sym.FuncMeta
			if existing := unit.Scope.Insert(name.Literal, alias); existing != nil {
				c.error(common.DuplicateSymbol, name.Pos(),
					"import '%s' collides with declaration at '%s'", name.Literal, existing.DeclPos)
			}
		}
	}
}

// validateExports checks that every name on the export list names a
// declared symbol and marks it public.
func (c *checker) validateExports(unit *ir.Unit) {
	for _, name := range unit.Exports {
		sym := unit.Scope.LookupLocal(name.Literal)
		if sym == nil || sym.IsImported() {
			c.errorSuggest(common.ExportNotFound, name.Pos(),
				c.declSuggestions(unit, name.Literal),
				"module '%s' exports undeclared symbol '%s'", unit.FQN(), name.Literal)
			continue
		}
		sym.Public = true
	}
}

// resolveQualified resolves a dotted reference by matching module
// identity first and symbol name second.
func (c *checker) resolveQualified(parts []string) (*ir.Symbol, *ir.Unit) {
	for i := len(parts) - 1; i > 0; i-- {
		fqn := strings.Join(parts[:i], ".")
		unit, ok := c.unitMap[fqn]
		if !ok {
			continue
		}
		scope := unit.Scope
		var sym *ir.Symbol
		for _, part := range parts[i:] {
			if scope == nil {
				return nil, unit
			}
			sym = scope.LookupLocal(part)
			if sym == nil {
				return nil, unit
			}
			scope = nil
			if t, ok := sym.T.(*ir.ModuleType); ok {
				scope = t.Scope
			}
		}
		return sym, unit
	}
	return nil, nil
}
