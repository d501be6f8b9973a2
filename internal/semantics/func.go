package semantics

import (
	"github.com/sablelang/sable/internal/common"
	"github.com/sablelang/sable/internal/ir"
)

// Callback functions are entered through interrupt or indirect dispatch
// and pass everything in registers and fixed zero-page slots, which
// caps the signature.
const maxCallbackParams = 4

// declareFuncDecl validates and declares one function signature. The
// body is checked in a later phase, after every module symbol exists.
func (c *checker) declareFuncDecl(decl *ir.FuncDecl) {
	if len(decl.Name.Literal) == 0 {
		c.error(common.InvalidOperation, decl.Name.Pos(), "function name cannot be empty")
		return
	}
	if c.scope.Kind != ir.ModuleScope && c.scope.Kind != ir.GlobalScope {
		c.error(common.InvalidScope, decl.Name.Pos(),
			"function '%s' may only be declared at module scope", decl.Name.Literal)
	}

	sym := c.declare(ir.FuncSymbol, decl.Name)
	if sym == nil {
		return
	}

	decl.Scope = ir.NewScope(ir.FuncScope, decl.Name.Literal, c.scope)
	prev := c.setScope(decl.Scope)

	var params []ir.Param
	for _, param := range decl.Params {
		tparam := ir.Type(ir.TBuiltinUnknown)
		if param.Type != nil {
			tparam = c.resolveTypeExpr(param.Type)
		}
		optional := param.Optional || param.Default != nil
		if param.Default != nil {
			c.checkExpr(param.Default)
			if _, ok := c.evalConst(param.Default); !ok {
				c.errorNode(common.ConstantRequired, param.Default,
					"default value of parameter '%s' must be a constant expression", param.Name.Literal)
			}
			if !ir.IsAssignable(param.Default.Type(), tparam) {
				c.errorNode(common.TypeMismatch, param.Default,
					"default value type %s is not assignable to %s", param.Default.Type(), tparam)
			}
		}
		psym := c.declare(ir.VarSymbol, param.Name)
		if psym != nil {
			psym.T = tparam
			psym.Flags |= ir.SymFlagDefined
			param.Sym = psym
			c.usage.define(psym, param.Name.Pos(), ir.FuncScope)
		}
		params = append(params, ir.Param{
			Name:     param.Name.Literal,
			T:        tparam,
			Optional: optional,
			Default:  param.Default,
		})
	}

	ret := ir.Type(ir.TBuiltinVoid)
	if decl.Return != nil {
		ret = c.resolveTypeExpr(decl.Return)
	}

	c.setScope(prev)

	if decl.IsCallback {
		if len(params) > maxCallbackParams {
			c.error(common.CallbackMismatch, decl.Name.Pos(),
				"callback '%s' has %d parameters, at most %d are allowed",
				decl.Name.Literal, len(params), maxCallbackParams)
		}
		for _, param := range params {
			if !ir.IsSimpleType(param.T) && !ir.IsUntyped(param.T) {
				c.error(common.CallbackMismatch, decl.Name.Pos(),
					"callback '%s' parameter '%s' has non-simple type %s",
					decl.Name.Literal, param.Name, param.T)
			}
		}
		sym.Flags |= ir.SymFlagCallback
	}

	sym.T = ir.NewCallbackType(params, ret)
	sym.Flags |= ir.SymFlagDefined
	decl.Sym = sym
}

// checkCallbackAssign validates assigning an expression to a
// callback-typed location. A function candidate must itself be
// callback-flagged and match the target signature exactly; there is no
// widening across a callback boundary.
func (c *checker) checkCallbackAssign(target *ir.CallbackType, expr ir.Expr) {
	sym := ir.ExprSymbol(expr)
	if sym != nil && sym.Kind == ir.FuncSymbol {
		if !sym.IsCallback() {
			c.errorNode(common.CallbackMismatch, expr,
				"function '%s' is not a callback and cannot be assigned to a callback variable", sym.Name)
			return
		}
		if !isGenericCallback(target) && !sym.T.Equals(target) {
			c.errorNode(common.CallbackMismatch, expr,
				"callback '%s' has signature %s, expected %s", sym.Name, sym.T, target)
		}
		return
	}

	texpr := expr.Type()
	if ir.IsUntyped(texpr) {
		return
	}
	if tcb, ok := texpr.(*ir.CallbackType); ok {
		if !isGenericCallback(target) && !tcb.Equals(target) {
			c.errorNode(common.CallbackMismatch, expr,
				"callback type %s does not match %s", tcb, target)
		}
		return
	}
	c.errorNode(common.TypeMismatch, expr,
		"type %s is not assignable to callback type %s", texpr, target)
}

// checkCall validates a call site against the callee's signature and
// returns the call's result type.
func (c *checker) checkCall(call *ir.CallExpr, sig *ir.CallbackType, name string) ir.Type {
	required := sig.RequiredParams()
	total := len(sig.Params)
	if len(call.Args) < required || len(call.Args) > total {
		if required == total {
			c.errorNode(common.TypeMismatch, call,
				"'%s' expects %d argument(s), got %d", name, total, len(call.Args))
		} else {
			c.errorNode(common.TypeMismatch, call,
				"'%s' expects between %d and %d argument(s), got %d", name, required, total, len(call.Args))
		}
	}

	for i, arg := range call.Args {
		if i >= total {
			break
		}
		tparam := sig.Params[i].T
		if tcb, ok := tparam.(*ir.CallbackType); ok {
			c.checkCallbackAssign(tcb, arg)
		} else if !ir.IsAssignable(arg.Type(), tparam) {
			c.errorNode(common.TypeMismatch, arg,
				"argument %d has type %s, expected %s", i+1, arg.Type(), tparam)
		}
	}

	return sig.Return
}

// checkFuncBody type checks a function body and records the complexity
// statistics the metadata pass consumes.
func (c *checker) checkFuncBody(decl *ir.FuncDecl) {
	if decl.Sym == nil || decl.Body == nil {
		return
	}
	prevFun := c.fun
	c.fun = decl.Sym
	prev := c.setScope(decl.Scope)

	stats := newFuncStats(decl)
	c.stats[decl.Sym] = stats

	info := c.checkBlock(decl.Body)
	stats.absorb(info)

	tret := decl.Sym.Callback().Return
	if tret.Kind() != ir.TVoid && !info.terminal {
		c.warning(decl.Name.Pos(),
			"function '%s' may not return a %s value on all paths", decl.Name.Literal, tret)
	}

	c.setScope(prev)
	c.fun = prevFun
}

// funcStats is the per-function complexity record filled during the
// body phase and consumed by the metadata pass.
type funcStats struct {
	decl           *ir.FuncDecl
	nodeCount      int
	codeSize       int
	cyclomatic     int
	hasLoops       bool
	hasComplexFlow bool
	hasCalls       bool
	cycles         int
	maxLoopDepth   int
}

func newFuncStats(decl *ir.FuncDecl) *funcStats {
	return &funcStats{decl: decl, cyclomatic: 1}
}

func (s *funcStats) absorb(info stmtInfo) {
	s.nodeCount += info.nodeCount
	s.codeSize += info.size
	s.cyclomatic += info.branches
	s.cycles += info.cycles
	if info.hasLoops {
		s.hasLoops = true
	}
	if info.hasComplexFlow {
		s.hasComplexFlow = true
	}
	if info.hasCalls {
		s.hasCalls = true
	}
	if info.maxLoopDepth > s.maxLoopDepth {
		s.maxLoopDepth = info.maxLoopDepth
	}
}
