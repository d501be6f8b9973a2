package semantics

import (
	"github.com/sablelang/sable/internal/common"
	"github.com/sablelang/sable/internal/ir"
	"github.com/sablelang/sable/internal/token"
)

// evalConst folds a compile-time constant integer expression: a literal
// or arithmetic over literals. Calls and variable references are never
// constant in this strict sense; array sizes and enum member values
// require it.
func (c *checker) evalConst(expr ir.Expr) (int64, bool) {
	switch expr := expr.(type) {
	case *ir.BasicLit:
		if expr.IsBool {
			return 0, false
		}
		return expr.Value, true
	case *ir.UnaryExpr:
		if expr.Op != token.Sub {
			return 0, false
		}
		val, ok := c.evalConst(expr.X)
		if !ok {
			return 0, false
		}
		return -val, true
	case *ir.BinaryExpr:
		if !expr.Op.IsArith() {
			return 0, false
		}
		left, ok := c.evalConst(expr.Left)
		if !ok {
			return 0, false
		}
		right, ok := c.evalConst(expr.Right)
		if !ok {
			return 0, false
		}
		return c.evalBinary(expr, left, right)
	}
	return 0, false
}

func (c *checker) evalBinary(expr *ir.BinaryExpr, left int64, right int64) (int64, bool) {
	switch expr.Op {
	case token.Add:
		return left + right, true
	case token.Sub:
		return left - right, true
	case token.Mul:
		return left * right, true
	case token.Div:
		if right == 0 {
			c.errorNode(common.InvalidOperation, expr, "division by zero in constant expression")
			return 0, false
		}
		return left / right, true
	case token.Mod:
		if right == 0 {
			c.errorNode(common.InvalidOperation, expr, "division by zero in constant expression")
			return 0, false
		}
		return left % right, true
	}
	return 0, false
}
