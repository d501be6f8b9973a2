package semantics

import (
	"fmt"

	"github.com/sablelang/sable/internal/common"
	"github.com/sablelang/sable/internal/ir"
)

// flowKind classifies a statement's control-flow shape.
type flowKind int

// Flow kinds.
const (
	flowNone flowKind = iota
	flowConditional
	flowLoop
	flowReturn
)

func (k flowKind) String() string {
	switch k {
	case flowConditional:
		return "conditional"
	case flowLoop:
		return "loop"
	case flowReturn:
		return "return"
	default:
		return "none"
	}
}

// stmtInfo aggregates a statement subtree's analysis.
type stmtInfo struct {
	flow           flowKind
	terminal       bool
	constCond      bool
	stmtCount      int
	nodeCount      int
	size           int
	cycles         int
	branches       int
	accesses       int
	maxLoopDepth   int
	hasLoops       bool
	hasComplexFlow bool
	hasCalls       bool
}

func (i *stmtInfo) addExpr(info exprInfo) {
	i.nodeCount += info.nodeCount
	i.size += 2 * info.nodeCount
	i.cycles += info.cycles
	if info.hasCalls {
		i.hasCalls = true
	}
}

func (i *stmtInfo) addChild(child stmtInfo) {
	i.stmtCount += child.stmtCount
	i.nodeCount += child.nodeCount
	i.size += child.size
	i.cycles += child.cycles
	i.branches += child.branches
	i.accesses += child.accesses
	if child.maxLoopDepth > i.maxLoopDepth {
		i.maxLoopDepth = child.maxLoopDepth
	}
	if child.hasLoops {
		i.hasLoops = true
	}
	if child.hasComplexFlow {
		i.hasComplexFlow = true
	}
	if child.hasCalls {
		i.hasCalls = true
	}
}

// checkBlock opens a block scope and aggregates the statement analyses
// of a statement sequence.
func (c *checker) checkBlock(block *ir.BlockStmt) stmtInfo {
	block.Scope = c.openScope(ir.BlockScope, "")
	defer c.closeScope()

	var info stmtInfo
	for _, stmt := range block.Stmts {
		child := c.checkStmt(stmt)
		info.addChild(child)
		if child.terminal {
			info.terminal = true
		}
	}
	return info
}

func (c *checker) checkStmt(stmt ir.Stmt) stmtInfo {
	var info stmtInfo
	info.stmtCount = 1

	before := c.usage.total

	switch stmt := stmt.(type) {
	case *ir.BlockStmt:
		child := c.checkBlock(stmt)
		child.stmtCount++
		return child
	case *ir.DeclStmt:
		switch decl := stmt.D.(type) {
		case *ir.VarDecl:
			c.declareVarDecl(decl)
			if decl.Initializer != nil {
				var init exprInfo
				init.nodeCount = countNodes(decl.Initializer)
				info.addExpr(init)
				info.cycles += c.profile.Costs.AbsoluteStore
			}
		case *ir.FuncDecl:
			c.error(common.InvalidScope, decl.Name.Pos(),
				"function '%s' may only be declared at module scope", decl.Name.Literal)
		default:
			panic(fmt.Sprintf("Unhandled decl stmt %T", decl))
		}
	case *ir.IfStmt:
		cond := c.checkExpr(stmt.Cond)
		c.wantBool(stmt.Cond)
		info.addExpr(cond)
		info.flow = flowConditional
		info.constCond = cond.constant
		info.branches++
		info.cycles += c.profile.Costs.Branch
		c.checkConstCond(info, stmt.Cond)
		body := c.checkBlock(stmt.Body)
		info.addChild(body)
		// Branching nested under a conditional arm is complex flow.
		if body.branches > 0 {
			info.hasComplexFlow = true
		}
		if stmt.Else != nil {
			info.branches++
			elseInfo := c.checkStmt(stmt.Else)
			info.addChild(elseInfo)
			if elseInfo.branches > 0 {
				info.hasComplexFlow = true
			}
			// Both arms returning makes the conditional terminal.
			if elseInfo.terminal && c.blockReturns(stmt.Body) {
				info.terminal = true
			}
		}
	case *ir.WhileStmt:
		cond := c.checkExpr(stmt.Cond)
		c.wantBool(stmt.Cond)
		info.addExpr(cond)
		info.flow = flowLoop
		info.constCond = cond.constant
		info.branches++
		info.hasLoops = true
		info.cycles += c.profile.Costs.Branch
		c.checkConstCond(info, stmt.Cond)
		c.loopDepth++
		body := c.checkBlock(stmt.Body)
		c.loopDepth--
		info.addChild(body)
		if c.loopDepth+1 > info.maxLoopDepth {
			info.maxLoopDepth = c.loopDepth + 1
		}
	case *ir.ForStmt:
		c.openScope(ir.BlockScope, "")
		if stmt.Init != nil {
			init := c.checkStmt(&ir.DeclStmt{D: stmt.Init})
			info.addChild(init)
			info.stmtCount--
		}
		if stmt.Cond != nil {
			cond := c.checkExpr(stmt.Cond)
			c.wantBool(stmt.Cond)
			info.addExpr(cond)
			info.constCond = cond.constant
		}
		info.flow = flowLoop
		info.branches++
		info.hasLoops = true
		info.cycles += c.profile.Costs.Branch
		if stmt.Cond != nil {
			c.checkConstCond(info, stmt.Cond)
		}
		c.loopDepth++
		if stmt.Inc != nil {
			info.addChild(c.checkStmt(stmt.Inc))
			info.stmtCount--
		}
		info.addChild(c.checkBlock(stmt.Body))
		c.loopDepth--
		c.closeScope()
		if c.loopDepth+1 > info.maxLoopDepth {
			info.maxLoopDepth = c.loopDepth + 1
		}
	case *ir.ReturnStmt:
		info.flow = flowReturn
		info.terminal = true
		info.cycles += c.profile.Costs.Return
		tret := ir.Type(ir.TBuiltinVoid)
		if c.fun != nil {
			tret = c.fun.Callback().Return
		}
		if stmt.X != nil {
			ret := c.checkExpr(stmt.X)
			info.addExpr(ret)
			if !ir.IsAssignable(stmt.X.Type(), tret) {
				c.errorNode(common.TypeMismatch, stmt.X,
					"return value type %s is not assignable to %s", stmt.X.Type(), tret)
			}
		} else if tret.Kind() != ir.TVoid {
			c.errorNode(common.TypeMismatch, stmt,
				"missing return value of type %s", tret)
		}
	case *ir.AssignStmt:
		info.addChild(c.checkAssign(stmt))
		info.stmtCount--
	case *ir.ExprStmt:
		x := c.checkExpr(stmt.X)
		info.addExpr(x)
		if x.pure() {
			c.warning(stmt.X.Pos(), "expression statement has no effect")
		}
	default:
		panic(fmt.Sprintf("Unhandled stmt %T", stmt))
	}

	info.accesses += c.usage.total - before
	return info
}

// checkAssign validates an assignment. The left side must be an
// assignable reference; an assignment is always a side effect.
func (c *checker) checkAssign(stmt *ir.AssignStmt) stmtInfo {
	var info stmtInfo
	info.stmtCount = 1

	left := c.checkExprAccess(stmt.Left, accessWrite)
	right := c.checkExpr(stmt.Right)
	info.addExpr(left)
	info.addExpr(right)
	info.cycles += c.profile.Costs.AbsoluteStore

	if !stmt.Left.Lvalue() {
		c.errorNode(common.InvalidOperation, stmt.Left,
			"left side of assignment must be an assignable reference")
		return info
	}

	tleft := stmt.Left.Type()
	if tcb, ok := tleft.(*ir.CallbackType); ok {
		c.checkCallbackAssign(tcb, stmt.Right)
	} else if !ir.IsAssignable(stmt.Right.Type(), tleft) {
		c.errorNode(common.TypeMismatch, stmt.Right,
			"type %s is not assignable to %s", stmt.Right.Type(), tleft)
	}
	return info
}

// checkConstCond flags branch and loop conditions that fold to a
// compile time constant. A bare 'while true' dispatch loop is the
// usual way to spin on the 6502 and stays quiet.
func (c *checker) checkConstCond(info stmtInfo, cond ir.Expr) {
	if !info.constCond {
		return
	}
	if info.flow == flowLoop && isTrueLit(cond) {
		return
	}
	c.warning(cond.Pos(), "%s condition is constant", info.flow)
}

func isTrueLit(expr ir.Expr) bool {
	lit, ok := expr.(*ir.BasicLit)
	return ok && lit.IsBool && lit.BoolVal
}

func (c *checker) wantBool(cond ir.Expr) {
	t := cond.Type()
	if t.Kind() != ir.TBool && !ir.IsUntyped(t) {
		c.errorNode(common.TypeMismatch, cond, "condition must be boolean, got %s", t)
	}
}

// blockReturns reports whether a block ends in a terminal statement.
func (c *checker) blockReturns(block *ir.BlockStmt) bool {
	for _, stmt := range block.Stmts {
		if _, ok := stmt.(*ir.ReturnStmt); ok {
			return true
		}
	}
	return false
}

func countNodes(expr ir.Expr) int {
	count := 1
	switch expr := expr.(type) {
	case *ir.BinaryExpr:
		count += countNodes(expr.Left) + countNodes(expr.Right)
	case *ir.UnaryExpr:
		count += countNodes(expr.X)
	case *ir.CallExpr:
		count += countNodes(expr.X)
		for _, arg := range expr.Args {
			count += countNodes(arg)
		}
	case *ir.IndexExpr:
		count += countNodes(expr.X) + countNodes(expr.Index)
	case *ir.ArrayLit:
		for _, init := range expr.Initializers {
			count += countNodes(init)
		}
	case *ir.DotExpr:
		count += countNodes(expr.X)
	}
	return count
}
