package semantics

import (
	"fmt"

	"github.com/sablelang/sable/internal/common"
	"github.com/sablelang/sable/internal/ir"
)

// declareUnit populates a module scope from the unit's top-level
// declarations. Types and enums go first so variable and function
// signatures can refer to them, then function signatures, then
// variables in source order.
func (c *checker) declareUnit(unit *ir.Unit) {
	for _, decl := range unit.Decls {
		switch decl := decl.(type) {
		case *ir.TypeDecl:
			c.declareTypeDecl(decl)
		case *ir.EnumDecl:
			c.declareEnumDecl(decl)
		}
	}
	for _, decl := range unit.Decls {
		if decl, ok := decl.(*ir.FuncDecl); ok {
			c.declareFuncDecl(decl)
		}
	}
	for _, decl := range unit.Decls {
		if decl, ok := decl.(*ir.VarDecl); ok {
			c.declareVarDecl(decl)
		}
	}
}

func (c *checker) declare(kind ir.SymbolKind, name *ir.Ident) *ir.Symbol {
	sym := ir.NewSymbol(kind, c.scope, false, name.Literal, name.Pos())
	if existing := c.scope.Insert(name.Literal, sym); existing != nil {
		c.error(common.DuplicateSymbol, name.Pos(),
			"redeclaration of '%s' (existing declaration at '%s')", name.Literal, existing.DeclPos)
		return nil
	}
	name.SetSymbol(sym)
	return sym
}

func (c *checker) declareTypeDecl(decl *ir.TypeDecl) {
	sym := c.declare(ir.TypeSymbol, decl.Name)
	if sym == nil {
		return
	}
	t := ir.NewNamedType(sym, nil)
	for _, field := range decl.Fields {
		ftype := c.resolveTypeExpr(field.Type)
		for _, existing := range t.Fields {
			if existing.Name == field.Name.Literal {
				c.error(common.DuplicateSymbol, field.Name.Pos(),
					"duplicate field '%s' in type '%s'", field.Name.Literal, decl.Name.Literal)
			}
		}
		t.Fields = append(t.Fields, ir.Field{Name: field.Name.Literal, T: ftype})
	}
	sym.T = t
	sym.Flags |= ir.SymFlagDefined
	decl.Sym = sym
}

func (c *checker) declareEnumDecl(decl *ir.EnumDecl) {
	sym := c.declare(ir.EnumSymbol, decl.Name)
	if sym == nil {
		return
	}
	sym.T = ir.NewNamedType(sym, ir.TBuiltinByte)
	sym.Flags |= ir.SymFlagDefined
	decl.Sym = sym

	// Members become read-only byte constants in the enclosing scope.
	next := int64(0)
	for _, member := range decl.Members {
		value := next
		if member.Value != nil {
			folded, ok := c.evalConst(member.Value)
			if !ok {
				c.errorNode(common.ConstantRequired, member.Value,
					"enum member '%s' requires a constant value", member.Name.Literal)
			} else {
				value = folded
			}
		}
		if value < 0 || value > ir.MaxByte {
			c.error(common.TypeMismatch, member.Name.Pos(),
				"enum member '%s' value %d does not fit in a byte", member.Name.Literal, value)
		}
		msym := c.declare(ir.VarSymbol, member.Name)
		if msym != nil {
			msym.T = ir.TBuiltinByte
			msym.Storage = ir.SCConst
			msym.Flags |= ir.SymFlagDefined | ir.SymFlagReadOnly
			lit := &ir.BasicLit{Value: value}
			lit.SetType(ir.TBuiltinByte)
			lit.SetRange(member.Name.Pos(), member.Name.EndPos())
			msym.Initializer = lit
			member.Sym = msym
		}
		next = value + 1
	}
}

// declareVarDecl validates and declares one variable. Validation keeps
// going past a failed sub-check by substituting safe defaults so one
// run reports multiple defects.
func (c *checker) declareVarDecl(decl *ir.VarDecl) {
	if decl.Storage != ir.SCNone && c.scope.Kind != ir.ModuleScope && c.scope.Kind != ir.GlobalScope {
		c.error(common.InvalidStorageClass, decl.Name.Pos(),
			"storage class '%s' is only legal on module-level declarations", decl.Storage)
	}

	tdecl := ir.Type(ir.TBuiltinUnknown)
	if decl.Type != nil {
		tdecl = c.resolveTypeExpr(decl.Type)
	}

	if decl.Initializer != nil {
		info := c.checkExpr(decl.Initializer)
		tinit := decl.Initializer.Type()

		// A bare callback type adopts the initializing function's
		// signature.
		if isGenericCallback(tdecl) {
			if fn := ir.ExprSymbol(decl.Initializer); fn != nil && fn.Kind == ir.FuncSymbol {
				tdecl = fn.T
			}
		}

		if tcb, ok := tdecl.(*ir.CallbackType); ok {
			c.checkCallbackAssign(tcb, decl.Initializer)
		} else if !ir.IsAssignable(tinit, tdecl) {
			c.errorNode(common.TypeMismatch, decl.Initializer,
				"initializer type %s is not assignable to %s", tinit, tdecl)
		}

		if decl.Storage.RequiresConstInitializer() && !info.constant {
			c.errorNode(common.ConstantRequired, decl.Initializer,
				"'%s' storage requires a compile-time constant initializer", decl.Storage)
		}
	} else if decl.Storage.RequiresConstInitializer() {
		c.error(common.ConstantRequired, decl.Name.Pos(),
			"'%s' variable '%s' requires an initializer", decl.Storage, decl.Name.Literal)
	}

	sym := c.declare(ir.VarSymbol, decl.Name)
	if sym == nil {
		return
	}
	sym.T = tdecl
	sym.Storage = decl.Storage
	sym.Initializer = decl.Initializer
	sym.Flags |= ir.SymFlagDefined
	if decl.Storage == ir.SCConst {
		sym.Flags |= ir.SymFlagReadOnly
	}
	decl.Sym = sym

	c.usage.define(sym, decl.Name.Pos(), c.scope.Kind)

	if decl.Initializer != nil {
		c.usage.write(sym, decl.Name.Pos(), c.loopDepth, c.inHotPath())
	}
	if sym.Storage == ir.SCZeroPage {
		size := c.profile.Sizeof(sym.T)
		if size > c.profile.ZeroPageBudget {
			c.warning(decl.Name.Pos(),
				"zp variable '%s' (%d bytes) exceeds the zero-page budget of %d bytes",
				sym.Name, size, c.profile.ZeroPageBudget)
		}
	}
}

// checkDeclBody runs the body phase of a declaration. Signatures and
// initializers were handled during the declaration pass.
func (c *checker) checkDeclBody(decl ir.Decl) {
	switch decl := decl.(type) {
	case *ir.VarDecl, *ir.TypeDecl, *ir.EnumDecl:
		// Fully handled at declaration.
	case *ir.FuncDecl:
		c.checkFuncBody(decl)
	default:
		panic(fmt.Sprintf("Unhandled decl %T", decl))
	}
}

// resolveTypeExpr resolves a parser-supplied type expression to a Type.
// Failed resolutions produce TBuiltinUnknown so dependent checks keep
// running.
func (c *checker) resolveTypeExpr(expr ir.Expr) ir.Type {
	switch expr := expr.(type) {
	case *ir.Ident:
		t := c.resolveTypeName(expr)
		expr.SetType(t)
		return t
	case *ir.ArrayTypeExpr:
		telem := c.resolveTypeExpr(expr.Elem)
		size := 0
		if expr.Size != nil {
			if folded, ok := c.evalConst(expr.Size); ok {
				if folded < 0 {
					c.errorNode(common.ConstantRequired, expr.Size,
						"array size must be non-negative, got %d", folded)
				} else {
					size = int(folded)
				}
			} else {
				c.errorNode(common.ConstantRequired, expr.Size,
					"array size must be a constant expression")
			}
		}
		t := ir.NewArrayType(telem, size)
		expr.SetType(t)
		return t
	case *ir.CallbackTypeExpr:
		var params []ir.Param
		for _, param := range expr.Params {
			params = append(params, ir.Param{T: c.resolveTypeExpr(param)})
		}
		ret := ir.Type(ir.TBuiltinVoid)
		if expr.Return != nil {
			ret = c.resolveTypeExpr(expr.Return)
		}
		t := ir.NewCallbackType(params, ret)
		expr.SetType(t)
		return t
	default:
		c.errorNode(common.TypeMismatch, expr, "expression is not a type")
		return ir.TBuiltinInvalid
	}
}

func (c *checker) resolveTypeName(name *ir.Ident) ir.Type {
	switch name.Literal {
	case "byte":
		return ir.TBuiltinByte
	case "word":
		return ir.TBuiltinWord
	case "boolean":
		return ir.TBuiltinBool
	case "void":
		return ir.TBuiltinVoid
	case "callback":
		// Bare callback: the signature is adopted from the assigned
		// function; on its own it is callback() void.
		return ir.NewCallbackType(nil, ir.TBuiltinVoid)
	}
	sym := c.lookup(name.Literal)
	if sym == nil {
		c.errorSuggest(common.UndefinedSymbol, name.Pos(),
			c.nameSuggestions(name.Literal), "undefined type '%s'", name.Literal)
		return ir.TBuiltinUnknown
	}
	if !sym.IsType() {
		c.error(common.TypeMismatch, name.Pos(), "'%s' is not a type", name.Literal)
		return ir.TBuiltinInvalid
	}
	name.SetSymbol(sym)
	if sym.T == nil {
		return ir.TBuiltinUnknown
	}
	return sym.T
}

func isGenericCallback(t ir.Type) bool {
	if tcb, ok := t.(*ir.CallbackType); ok {
		return tcb.Params == nil && tcb.Return.Kind() == ir.TVoid
	}
	return false
}
