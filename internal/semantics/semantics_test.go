package semantics

import (
	"testing"

	"github.com/sablelang/sable/internal/common"
	"github.com/sablelang/sable/internal/ir"
	"github.com/sablelang/sable/internal/target"
	"github.com/sablelang/sable/internal/token"
)

// The analyzer consumes parser output, so the tests build their syntax
// trees by hand. Every helper returns fresh nodes; the analyzer
// annotates them in place and sharing a node between declarations would
// leak symbols across tests.

func id(name string) *ir.Ident {
	return &ir.Ident{Literal: name}
}

func lit(value int64) *ir.BasicLit {
	return &ir.BasicLit{Value: value}
}

func boolLit(value bool) *ir.BasicLit {
	return &ir.BasicLit{IsBool: true, BoolVal: value}
}

func strLit(value string) *ir.StringLit {
	return &ir.StringLit{Value: value}
}

func arrayLit(elems ...ir.Expr) *ir.ArrayLit {
	return &ir.ArrayLit{Initializers: elems}
}

func arrayType(elem ir.Expr, size ir.Expr) *ir.ArrayTypeExpr {
	return &ir.ArrayTypeExpr{Elem: elem, Size: size}
}

func cbType(ret ir.Expr, params ...ir.Expr) *ir.CallbackTypeExpr {
	return &ir.CallbackTypeExpr{Params: params, Return: ret}
}

func bin(op token.Token, left ir.Expr, right ir.Expr) *ir.BinaryExpr {
	return &ir.BinaryExpr{Op: op, Left: left, Right: right}
}

func un(op token.Token, x ir.Expr) *ir.UnaryExpr {
	return &ir.UnaryExpr{Op: op, X: x}
}

func call(x ir.Expr, args ...ir.Expr) *ir.CallExpr {
	return &ir.CallExpr{X: x, Args: args}
}

func index(x ir.Expr, idx ir.Expr) *ir.IndexExpr {
	return &ir.IndexExpr{X: x, Index: idx}
}

func dot(x ir.Expr, name string) *ir.DotExpr {
	return &ir.DotExpr{X: x, Name: id(name)}
}

func vardecl(name string, typ ir.Expr, init ir.Expr) *ir.VarDecl {
	return &ir.VarDecl{Name: id(name), Type: typ, Initializer: init}
}

func storedVar(name string, storage ir.StorageClass, typ ir.Expr, init ir.Expr) *ir.VarDecl {
	return &ir.VarDecl{Name: id(name), Storage: storage, Type: typ, Initializer: init}
}

func param(name string, typ string) *ir.ParamDecl {
	return &ir.ParamDecl{Name: id(name), Type: id(typ)}
}

func paramT(name string, typ ir.Expr) *ir.ParamDecl {
	return &ir.ParamDecl{Name: id(name), Type: typ}
}

func optParam(name string, typ string, def ir.Expr) *ir.ParamDecl {
	return &ir.ParamDecl{Name: id(name), Type: id(typ), Default: def}
}

func fn(name string, params []*ir.ParamDecl, ret ir.Expr, stmts ...ir.Stmt) *ir.FuncDecl {
	return &ir.FuncDecl{
		Name:   id(name),
		Params: params,
		Return: ret,
		Body:   block(stmts...),
	}
}

func cb(name string, params []*ir.ParamDecl, stmts ...ir.Stmt) *ir.FuncDecl {
	decl := fn(name, params, nil, stmts...)
	decl.IsCallback = true
	return decl
}

func block(stmts ...ir.Stmt) *ir.BlockStmt {
	return &ir.BlockStmt{Stmts: stmts}
}

func declStmt(decl ir.Decl) *ir.DeclStmt {
	return &ir.DeclStmt{D: decl}
}

func exprStmt(x ir.Expr) *ir.ExprStmt {
	return &ir.ExprStmt{X: x}
}

func assign(left ir.Expr, right ir.Expr) *ir.AssignStmt {
	return &ir.AssignStmt{Left: left, Right: right}
}

func ret(x ir.Expr) *ir.ReturnStmt {
	return &ir.ReturnStmt{X: x}
}

func ifStmt(cond ir.Expr, stmts ...ir.Stmt) *ir.IfStmt {
	return &ir.IfStmt{Cond: cond, Body: block(stmts...)}
}

func while(cond ir.Expr, stmts ...ir.Stmt) *ir.WhileStmt {
	return &ir.WhileStmt{Cond: cond, Body: block(stmts...)}
}

func unit(name string, decls ...ir.Decl) *ir.Unit {
	return &ir.Unit{Filename: name + ".sb", Name: id(name), Decls: decls}
}

func exported(u *ir.Unit, names ...string) *ir.Unit {
	for _, name := range names {
		u.Exports = append(u.Exports, id(name))
	}
	return u
}

func importing(u *ir.Unit, from string, names ...string) *ir.Unit {
	imp := &ir.Import{From: id(from)}
	for _, name := range names {
		imp.Names = append(imp.Names, id(name))
	}
	u.Imports = append(u.Imports, imp)
	return u
}

func analyze(t *testing.T, units ...*ir.Unit) (*Result, bool) {
	t.Helper()
	ctx := common.NewBuildContext()
	return Check(ctx, target.Default6502(), units...)
}

func kinds(errs []*common.Error) []common.ErrorKind {
	var res []common.ErrorKind
	for _, err := range errs {
		res = append(res, err.Kind)
	}
	return res
}

func countKind(errs []*common.Error, kind common.ErrorKind) int {
	n := 0
	for _, err := range errs {
		if err.Kind == kind {
			n++
		}
	}
	return n
}
