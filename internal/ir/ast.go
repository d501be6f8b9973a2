package ir

import (
	"github.com/sablelang/sable/internal/token"
)

// Node interface. The parser produces these; the analyzer annotates
// them in place with symbols and types.
type Node interface {
	node()
	Pos() token.Position
	EndPos() token.Position
	SetPos(token.Position)
	SetEndPos(token.Position)
	SetRange(token.Position, token.Position)
}

// Decl is the main interface for declaration nodes.
type Decl interface {
	Node
	declNode()
	Symbol() *Symbol
}

// Stmt is the main interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is the main interface for expression nodes.
type Expr interface {
	Node
	exprNode()
	Type() Type
	SetType(Type)
	Lvalue() bool
}

type baseNode struct {
	firstPos token.Position
	lastPos  token.Position
}

func (n *baseNode) node() {}

func (n *baseNode) Pos() token.Position {
	return n.firstPos
}

func (n *baseNode) EndPos() token.Position {
	return n.lastPos
}

func (n *baseNode) SetPos(pos token.Position) {
	n.firstPos = pos
}

func (n *baseNode) SetEndPos(pos token.Position) {
	n.lastPos = pos
}

func (n *baseNode) SetRange(pos1 token.Position, pos2 token.Position) {
	n.firstPos = pos1
	n.lastPos = pos2
}

// Unit is one compilation unit: a module with its imports, exports and
// top-level declarations.
type Unit struct {
	baseNode
	Filename string
	Name     *Ident
	Imports  []*Import
	Exports  []*Ident
	Decls    []Decl

	// Scope is the module scope, set by the analyzer.
	Scope *Scope
	Sym   *Symbol
}

// FQN returns the unit's qualified module name.
func (u *Unit) FQN() string {
	return u.Name.Literal
}

// Import names one or more symbols pulled from another module.
type Import struct {
	baseNode
	Names []*Ident
	From  *Ident // qualified module name
}

// Declaration nodes.

type baseDecl struct {
	baseNode
	Sym *Symbol
}

func (d *baseDecl) declNode() {}

func (d *baseDecl) Symbol() *Symbol {
	return d.Sym
}

// VarDecl declares a variable. Storage classes other than SCNone are
// legal only at module scope.
type VarDecl struct {
	baseDecl
	Name        *Ident
	Storage     StorageClass
	Type        Expr // type expression, nil if inferred from initializer is illegal (types are explicit)
	Initializer Expr
}

// ParamDecl declares one function parameter.
type ParamDecl struct {
	baseDecl
	Name     *Ident
	Type     Expr
	Optional bool
	Default  Expr
}

// FuncDecl declares a function or callback.
type FuncDecl struct {
	baseDecl
	Name       *Ident
	Params     []*ParamDecl
	Return     Expr // type expression, nil means void
	IsCallback bool
	Body       *BlockStmt

	// Scope covers the parameters and body, set by the analyzer.
	Scope *Scope
}

// FieldDecl declares one record field.
type FieldDecl struct {
	baseDecl
	Name *Ident
	Type Expr
}

// TypeDecl declares a named record type.
type TypeDecl struct {
	baseDecl
	Name   *Ident
	Fields []*FieldDecl
}

// EnumMemberDecl declares one enum member. Value is an optional constant
// expression; members without one take the previous value plus one.
type EnumMemberDecl struct {
	baseDecl
	Name  *Ident
	Value Expr
}

// EnumDecl declares an enum type with byte-valued member constants.
type EnumDecl struct {
	baseDecl
	Name    *Ident
	Members []*EnumMemberDecl
}

// Statement nodes.

type baseStmt struct {
	baseNode
}

func (s *baseStmt) stmtNode() {}

type BlockStmt struct {
	baseStmt
	Stmts []Stmt

	// Scope is set by the analyzer.
	Scope *Scope
}

type DeclStmt struct {
	baseStmt
	D Decl
}

type IfStmt struct {
	baseStmt
	Cond Expr
	Body *BlockStmt
	Else Stmt // *BlockStmt or *IfStmt, or nil
}

type WhileStmt struct {
	baseStmt
	Cond Expr
	Body *BlockStmt
}

type ForStmt struct {
	baseStmt
	Init Decl
	Cond Expr
	Inc  Stmt
	Body *BlockStmt
}

type ReturnStmt struct {
	baseStmt
	X Expr // nil for a bare return
}

type AssignStmt struct {
	baseStmt
	Left  Expr
	Right Expr
}

type ExprStmt struct {
	baseStmt
	X Expr
}

// Expression nodes.

type baseExpr struct {
	baseNode
	T Type
}

func (x *baseExpr) exprNode() {}

func (x *baseExpr) Type() Type {
	if x.T == nil {
		return TBuiltinUnknown
	}
	return x.T
}

func (x *baseExpr) SetType(t Type) {
	x.T = t
}

func (x *baseExpr) Lvalue() bool {
	return false
}

// Ident is a name reference. Sym is set during resolution.
type Ident struct {
	baseExpr
	Literal string
	Sym     *Symbol
}

func (x *Ident) Lvalue() bool {
	return x.Sym != nil && x.Sym.Kind == VarSymbol
}

func (x *Ident) SetSymbol(sym *Symbol) {
	x.Sym = sym
	if sym != nil {
		x.T = sym.T
	}
}

// DotExpr is a qualified reference: module.name.
type DotExpr struct {
	baseExpr
	X    Expr
	Name *Ident
}

func (x *DotExpr) Lvalue() bool {
	return x.Name.Lvalue()
}

// BasicLit is a numeric or boolean literal.
type BasicLit struct {
	baseExpr
	Value   int64
	IsBool  bool
	BoolVal bool
}

// StringLit is a string literal; it types as a fixed-size byte array.
type StringLit struct {
	baseExpr
	Value string
}

// ArrayLit is an array literal. Elements must share one type and at
// least one element is required.
type ArrayLit struct {
	baseExpr
	Initializers []Expr
}

type BinaryExpr struct {
	baseExpr
	Op    token.Token
	Left  Expr
	Right Expr
}

type UnaryExpr struct {
	baseExpr
	Op token.Token
	X  Expr
}

type CallExpr struct {
	baseExpr
	X    Expr
	Args []Expr
}

type IndexExpr struct {
	baseExpr
	X     Expr
	Index Expr
}

func (x *IndexExpr) Lvalue() bool {
	return true
}

// Type expression nodes. The parser cannot distinguish type names from
// value names, so types arrive as expressions and resolve here.

// ArrayTypeExpr is a fixed-size array type expression. Size must be a
// constant expression.
type ArrayTypeExpr struct {
	baseExpr
	Elem Expr
	Size Expr
}

// CallbackTypeExpr is a callback signature type expression.
type CallbackTypeExpr struct {
	baseExpr
	Params []Expr
	Return Expr // nil means void
}

// ExprSymbol unwraps the symbol behind an identifier or qualified
// reference, or nil.
func ExprSymbol(expr Expr) *Symbol {
	switch x := expr.(type) {
	case *Ident:
		return x.Sym
	case *DotExpr:
		return x.Name.Sym
	}
	return nil
}
