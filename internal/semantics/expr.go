package semantics

import (
	"fmt"
	"strings"

	"github.com/sablelang/sable/internal/common"
	"github.com/sablelang/sable/internal/ir"
	"github.com/sablelang/sable/internal/token"
)

// exprInfo is the expression analyzer's per-expression output: what the
// metadata pass needs to score variables and functions without
// re-walking the tree.
type exprInfo struct {
	constant          bool
	sideEffect        bool
	hasCalls          bool
	complexAddressing bool
	nodeCount         int
	depth             int
	cycles            int
	registerPressure  int
}

func (i exprInfo) pure() bool {
	return !i.sideEffect
}

// complexity is a single comparable score derived from the node count
// and nesting depth.
func (i exprInfo) complexity() int {
	return i.nodeCount + 2*i.depth
}

func mergeInfo(infos ...exprInfo) exprInfo {
	var res exprInfo
	res.constant = true
	maxDepth := 0
	for _, info := range infos {
		res.constant = res.constant && info.constant
		res.sideEffect = res.sideEffect || info.sideEffect
		res.hasCalls = res.hasCalls || info.hasCalls
		res.complexAddressing = res.complexAddressing || info.complexAddressing
		res.nodeCount += info.nodeCount
		res.cycles += info.cycles
		if info.depth > maxDepth {
			maxDepth = info.depth
		}
		if info.registerPressure > res.registerPressure {
			res.registerPressure = info.registerPressure
		}
	}
	res.depth = maxDepth
	return res
}

// inHotPath reports whether the current traversal point is on a hot
// path: nested looping, or any callback body since those run on
// interrupt time.
func (c *checker) inHotPath() bool {
	if c.loopDepth >= 2 {
		return true
	}
	return c.fun != nil && c.fun.IsCallback()
}

// checkExpr type checks an expression tree, records variable accesses
// and returns the analysis record.
func (c *checker) checkExpr(expr ir.Expr) exprInfo {
	return c.checkExprAccess(expr, accessRead)
}

func (c *checker) checkExprAccess(expr ir.Expr, kind accessKind) exprInfo {
	var info exprInfo

	switch expr := expr.(type) {
	case *ir.BasicLit:
		info = c.checkBasicLit(expr)
	case *ir.StringLit:
		info = c.checkStringLit(expr)
	case *ir.ArrayLit:
		info = c.checkArrayLit(expr)
	case *ir.Ident:
		info = c.checkIdent(expr, kind)
	case *ir.DotExpr:
		info = c.checkDotExpr(expr, kind)
	case *ir.BinaryExpr:
		info = c.checkBinaryExpr(expr)
	case *ir.UnaryExpr:
		info = c.checkUnaryExpr(expr)
	case *ir.CallExpr:
		info = c.checkCallExpr(expr)
	case *ir.IndexExpr:
		info = c.checkIndexExpr(expr, kind)
	case *ir.ArrayTypeExpr, *ir.CallbackTypeExpr:
		c.errorNode(common.InvalidOperation, expr, "type expression is not a value")
		expr.SetType(ir.TBuiltinInvalid)
	default:
		panic(fmt.Sprintf("Unhandled expr %T", expr))
	}

	info.nodeCount++
	info.depth++
	return info
}

func (c *checker) checkBasicLit(lit *ir.BasicLit) exprInfo {
	info := exprInfo{constant: true, registerPressure: 1}
	if lit.IsBool {
		lit.SetType(ir.TBuiltinBool)
		return info
	}
	switch {
	case lit.Value >= 0 && lit.Value <= ir.MaxByte:
		lit.SetType(ir.TBuiltinByte)
	case lit.Value >= 0 && lit.Value <= ir.MaxWord:
		lit.SetType(ir.TBuiltinWord)
		info.cycles += c.profile.Costs.WordPenalty
	default:
		c.errorNode(common.TypeMismatch, lit, "literal %d does not fit in a word", lit.Value)
		lit.SetType(ir.TBuiltinInvalid)
	}
	return info
}

func (c *checker) checkStringLit(lit *ir.StringLit) exprInfo {
	lit.SetType(ir.NewArrayType(ir.TBuiltinByte, len(lit.Value)))
	return exprInfo{constant: true, registerPressure: 1}
}

func (c *checker) checkArrayLit(lit *ir.ArrayLit) exprInfo {
	if len(lit.Initializers) == 0 {
		c.errorNode(common.TypeMismatch, lit, "array literal requires at least one element")
		lit.SetType(ir.TBuiltinInvalid)
		return exprInfo{}
	}
	var infos []exprInfo
	for _, init := range lit.Initializers {
		infos = append(infos, c.checkExpr(init))
	}
	telem := lit.Initializers[0].Type()
	for _, init := range lit.Initializers[1:] {
		if !init.Type().Equals(telem) && !ir.IsUntyped(init.Type()) && !ir.IsUntyped(telem) {
			c.errorNode(common.TypeMismatch, init,
				"array element has type %s, expected %s", init.Type(), telem)
		}
	}
	lit.SetType(ir.NewArrayType(telem, len(lit.Initializers)))
	return mergeInfo(infos...)
}

func (c *checker) checkIdent(name *ir.Ident, kind accessKind) exprInfo {
	sym := c.lookup(name.Literal)
	if sym == nil {
		c.errorSuggest(common.UndefinedSymbol, name.Pos(),
			c.nameSuggestions(name.Literal), "undefined symbol '%s'", name.Literal)
		name.SetType(ir.TBuiltinUnknown)
		return exprInfo{}
	}
	name.SetSymbol(sym)
	return c.symbolAccess(sym, name.Pos(), kind)
}

// symbolAccess records the access and prices the reference.
func (c *checker) symbolAccess(sym *ir.Symbol, pos token.Position, kind accessKind) exprInfo {
	info := exprInfo{registerPressure: 1}
	switch sym.Kind {
	case ir.VarSymbol:
		c.usage.access(sym, kind, pos, c.loopDepth, c.inHotPath())
		if kind != accessRead && sym.ReadOnly() {
			c.error(common.InvalidOperation, pos, "cannot assign to read-only '%s'", sym.Name)
		}
		// Constant variables fold at compile time.
		info.constant = sym.Storage == ir.SCConst
		if sym.Storage == ir.SCZeroPage {
			info.cycles += c.profile.Costs.ZeroPageLoad
		} else {
			info.cycles += c.profile.Costs.AbsoluteLoad
		}
		if c.profile.Sizeof(sym.T) > 1 {
			info.cycles += c.profile.Costs.WordPenalty
		}
	case ir.FuncSymbol:
		// A function name used as a value has its synthesized
		// callback type; the address is a link-time constant.
		c.calls[sym]++
		info.constant = true
	case ir.ModuleSymbol:
		// The enclosing dot expression validates the member access.
	case ir.TypeSymbol, ir.EnumSymbol:
		c.error(common.TypeMismatch, pos, "'%s' is a type, not a value", sym.Name)
	}
	return info
}

func (c *checker) checkDotExpr(dot *ir.DotExpr, kind accessKind) exprInfo {
	parts := flattenQualified(dot)
	if parts != nil {
		if sym, unit := c.resolveQualified(parts); sym != nil {
			if !sym.Public && sym.ModFQN() != c.scope.ModFQN() {
				c.error(common.ImportNotFound, dot.Name.Pos(),
					"module '%s' does not export '%s'", unit.FQN(), dot.Name.Literal)
			}
			dot.Name.SetSymbol(sym)
			dot.SetType(dot.Name.Type())
			return c.symbolAccess(sym, dot.Name.Pos(), kind)
		} else if unit != nil {
			c.errorSuggest(common.ImportNotFound, dot.Name.Pos(),
				c.exportSuggestions(unit, dot.Name.Literal),
				"module '%s' has no symbol '%s'", unit.FQN(), dot.Name.Literal)
			dot.SetType(ir.TBuiltinUnknown)
			return exprInfo{}
		}
	}

	info := c.checkExpr(dot.X)
	sym := ir.ExprSymbol(dot.X)
	if sym != nil && sym.Kind == ir.ModuleSymbol {
		tmod := sym.T.(*ir.ModuleType)
		member := tmod.Scope.LookupLocal(dot.Name.Literal)
		if member == nil {
			c.errorSuggest(common.UndefinedSymbol, dot.Name.Pos(),
				c.nameSuggestions(dot.Name.Literal),
				"module '%s' has no symbol '%s'", sym.Name, dot.Name.Literal)
			dot.SetType(ir.TBuiltinUnknown)
			return info
		}
		dot.Name.SetSymbol(member)
		dot.SetType(dot.Name.Type())
		return mergeInfo(info, c.symbolAccess(member, dot.Name.Pos(), kind))
	}

	c.errorNode(common.InvalidOperation, dot,
		"'%s' is not a module reference", exprString(dot.X))
	dot.SetType(ir.TBuiltinUnknown)
	return info
}

func flattenQualified(expr ir.Expr) []string {
	switch expr := expr.(type) {
	case *ir.Ident:
		return []string{expr.Literal}
	case *ir.DotExpr:
		left := flattenQualified(expr.X)
		if left == nil {
			return nil
		}
		return append(left, expr.Name.Literal)
	}
	return nil
}

func exprString(expr ir.Expr) string {
	if parts := flattenQualified(expr); parts != nil {
		return strings.Join(parts, ".")
	}
	return "expression"
}

func (c *checker) checkBinaryExpr(bin *ir.BinaryExpr) exprInfo {
	left := c.checkExpr(bin.Left)
	right := c.checkExpr(bin.Right)
	info := mergeInfo(left, right)
	// Both operands stay live while the second evaluates.
	if right.registerPressure >= left.registerPressure {
		info.registerPressure = right.registerPressure + 1
	}
	info.cycles += c.profile.Costs.ArithOp

	tleft := bin.Left.Type()
	tright := bin.Right.Type()

	if !bin.Op.IsBinaryOp() {
		c.errorNode(common.InvalidOperation, bin, "unknown binary operator '%s'", bin.Op)
		bin.SetType(ir.TBuiltinInvalid)
		return info
	}

	if ir.IsUntyped(tleft) || ir.IsUntyped(tright) {
		bin.SetType(ir.TBuiltinUnknown)
		return info
	}

	switch {
	case bin.Op.IsArith():
		if !ir.IsNumericType(tleft) || !ir.IsNumericType(tright) {
			c.errorNode(common.TypeMismatch, bin,
				"operator '%s' requires numeric operands, got %s and %s", bin.Op, tleft, tright)
			bin.SetType(ir.TBuiltinUnknown)
			return info
		}
		t := ir.WidenedType(tleft, tright)
		if t.Kind() == ir.TWord {
			info.cycles += c.profile.Costs.WordPenalty
		}
		bin.SetType(t)
	case bin.Op.IsLogical():
		if tleft.Kind() != ir.TBool || tright.Kind() != ir.TBool {
			c.errorNode(common.TypeMismatch, bin,
				"operator '%s' requires boolean operands, got %s and %s", bin.Op, tleft, tright)
		}
		info.cycles += c.profile.Costs.Branch
		bin.SetType(ir.TBuiltinBool)
	case bin.Op.IsCompare():
		comparable := tleft.Equals(tright) ||
			(ir.IsNumericType(tleft) && ir.IsNumericType(tright))
		if !comparable {
			c.errorNode(common.TypeMismatch, bin,
				"cannot compare %s and %s", tleft, tright)
		}
		info.cycles += c.profile.Costs.Branch
		bin.SetType(ir.TBuiltinBool)
	}
	return info
}

func (c *checker) checkUnaryExpr(un *ir.UnaryExpr) exprInfo {
	switch un.Op {
	case token.Sub:
		info := c.checkExpr(un.X)
		tx := un.X.Type()
		if !ir.IsNumericType(tx) && !ir.IsUntyped(tx) {
			c.errorNode(common.TypeMismatch, un,
				"operator '%s' requires a numeric operand, got %s", un.Op, tx)
		}
		info.cycles += c.profile.Costs.ArithOp
		un.SetType(tx)
		return info
	case token.Lnot:
		info := c.checkExpr(un.X)
		tx := un.X.Type()
		if tx.Kind() != ir.TBool && !ir.IsUntyped(tx) {
			c.errorNode(common.TypeMismatch, un,
				"operator '%s' requires a boolean operand, got %s", un.Op, tx)
		}
		un.SetType(ir.TBuiltinBool)
		return info
	case token.Inc, token.Dec:
		info := c.checkExprAccess(un.X, accessModify)
		tx := un.X.Type()
		if !un.X.Lvalue() {
			c.errorNode(common.InvalidOperation, un,
				"operand of '%s' must be an assignable reference", un.Op)
		}
		if !ir.IsNumericType(tx) && !ir.IsUntyped(tx) {
			c.errorNode(common.TypeMismatch, un,
				"operator '%s' requires a numeric operand, got %s", un.Op, tx)
		}
		info.sideEffect = true
		info.constant = false
		info.cycles += c.profile.Costs.ArithOp
		un.SetType(tx)
		return info
	default:
		c.errorNode(common.InvalidOperation, un, "unknown unary operator '%s'", un.Op)
		info := c.checkExpr(un.X)
		un.SetType(ir.TBuiltinInvalid)
		return info
	}
}

func (c *checker) checkCallExpr(call *ir.CallExpr) exprInfo {
	info := c.checkExpr(call.X)

	var infos []exprInfo
	for _, arg := range call.Args {
		infos = append(infos, c.checkExpr(arg))
	}
	info = mergeInfo(append([]exprInfo{info}, infos...)...)
	info.sideEffect = true
	info.constant = false
	info.hasCalls = true

	sym := ir.ExprSymbol(call.X)
	name := exprString(call.X)

	var sig *ir.CallbackType
	indirect := false
	switch {
	case sym != nil && sym.Kind == ir.FuncSymbol:
		sig = sym.Callback()
	case sym != nil && sym.Kind == ir.VarSymbol:
		if tcb, ok := sym.T.(*ir.CallbackType); ok {
			sig = tcb
			indirect = true
		}
	default:
		if tcb, ok := call.X.Type().(*ir.CallbackType); ok {
			sig = tcb
			indirect = true
		}
	}

	if sig == nil {
		if !ir.IsUntyped(call.X.Type()) {
			c.errorNode(common.InvalidOperation, call,
				"'%s' is not a function or callback variable", name)
		}
		call.SetType(ir.TBuiltinUnknown)
		return info
	}

	if indirect {
		info.cycles += c.profile.Costs.IndirectCall
	} else {
		info.cycles += c.profile.Costs.Call + c.profile.Costs.Return
	}
	info.cycles += len(call.Args) * c.profile.Costs.StackPush

	call.SetType(c.checkCall(call, sig, name))
	return info
}

func (c *checker) checkIndexExpr(index *ir.IndexExpr, kind accessKind) exprInfo {
	// Writing a[i] writes the array; the index itself is read.
	baseKind := kind
	base := c.checkExprAccess(index.X, baseKind)
	idx := c.checkExpr(index.Index)
	info := mergeInfo(base, idx)
	info.complexAddressing = true
	info.cycles += c.profile.Costs.AbsoluteLoad + c.profile.Costs.ArithOp

	if !ir.IsNumericType(index.Index.Type()) && !ir.IsUntyped(index.Index.Type()) {
		c.errorNode(common.TypeMismatch, index.Index,
			"array index must be numeric, got %s", index.Index.Type())
	}

	tbase := ir.ToUnderlying(index.X.Type())
	if tarray, ok := tbase.(*ir.ArrayType); ok {
		index.SetType(tarray.Elem)
	} else {
		if !ir.IsUntyped(tbase) {
			c.errorNode(common.TypeMismatch, index,
				"'%s' has type %s, expected an array", exprString(index.X), index.X.Type())
		}
		index.SetType(ir.TBuiltinUnknown)
	}
	return info
}
