package ir

import (
	"bytes"
	"fmt"
)

// TypeKind identifies the base type.
type TypeKind int

// Type kinds. The set is closed; every consumer switches exhaustively.
const (
	TUnknown TypeKind = iota
	TInvalid

	TVoid
	TBool
	TByte
	TWord

	TModule
	TNamed
	TArray
	TCallback
)

var types = [...]string{
	TUnknown:  "unknown",
	TInvalid:  "invalid",
	TVoid:     "void",
	TBool:     "boolean",
	TByte:     "byte",
	TWord:     "word",
	TModule:   "module",
	TNamed:    "named",
	TArray:    "array",
	TCallback: "callback",
}

func (id TypeKind) String() string {
	if 0 <= id && id < TypeKind(len(types)) {
		return types[id]
	}
	return "unknown"
}

// Built-in types.
var (
	TBuiltinUnknown = Type(NewBasicType(TUnknown))
	TBuiltinInvalid = Type(NewBasicType(TInvalid))
	TBuiltinVoid    = Type(NewBasicType(TVoid))
	TBuiltinBool    = Type(NewBasicType(TBool))
	TBuiltinByte    = Type(NewBasicType(TByte))
	TBuiltinWord    = Type(NewBasicType(TWord))
)

// Numeric limits of the value types.
const (
	MaxByte = 255
	MaxWord = 65535
)

// Type is the main representation of types in the analyzer.
type Type interface {
	Kind() TypeKind
	String() string
	// Equals is symmetric. Structural for arrays and callbacks, nominal
	// for named types.
	Equals(Type) bool
}

type baseType struct {
	kind TypeKind
}

func (t *baseType) Kind() TypeKind {
	return t.kind
}

type BasicType struct {
	baseType
}

func (t *BasicType) String() string {
	return t.kind.String()
}

func (t *BasicType) Equals(other Type) bool {
	if t2, ok := other.(*BasicType); ok {
		return t.kind == t2.kind
	}
	return false
}

// ModuleType is the type of a module symbol. Modules are not values and
// never compare equal.
type ModuleType struct {
	baseType
	Sym   *Symbol
	Scope *Scope
}

func (t *ModuleType) String() string {
	return t.Sym.FQN()
}

func (t *ModuleType) Equals(other Type) bool {
	return false
}

// Field describes one field of a record type.
type Field struct {
	Name string
	T    Type
}

// NamedType is a declared record or enum type. Equality is nominal.
// Enums carry an underlying value type; records carry fields.
type NamedType struct {
	baseType
	Sym        *Symbol
	Underlying Type
	Fields     []Field
}

func (t *NamedType) String() string {
	return t.Sym.Name
}

func (t *NamedType) Equals(other Type) bool {
	if t2, ok := other.(*NamedType); ok {
		return t.Sym.FQN() == t2.Sym.FQN()
	}
	return false
}

type ArrayType struct {
	baseType
	Elem Type
	Size int
}

func (t *ArrayType) String() string {
	return fmt.Sprintf("[%s:%d]", t.Elem.String(), t.Size)
}

func (t *ArrayType) Equals(other Type) bool {
	if t2, ok := other.(*ArrayType); ok {
		return t.Size == t2.Size && t.Elem.Equals(t2.Elem)
	}
	return false
}

// Param describes one parameter of a callback signature.
type Param struct {
	Name     string
	T        Type
	Optional bool
	Default  Expr
}

// CallbackType is a first-class function-pointer type.
type CallbackType struct {
	baseType
	Params []Param
	Return Type
}

func (t *CallbackType) String() string {
	var buf bytes.Buffer
	buf.WriteString("callback(")
	for i, param := range t.Params {
		buf.WriteString(param.T.String())
		if (i + 1) < len(t.Params) {
			buf.WriteString(", ")
		}
	}
	buf.WriteString(")")
	if t.Return.Kind() != TVoid {
		buf.WriteString(" ")
		buf.WriteString(t.Return.String())
	}
	return buf.String()
}

// Equals requires the exact parameter-type sequence and return type.
// Optionality and names do not participate; callers dispatch indirectly
// so no widening is allowed across a callback boundary.
func (t *CallbackType) Equals(other Type) bool {
	t2, ok := other.(*CallbackType)
	if !ok {
		return false
	}
	if len(t.Params) != len(t2.Params) {
		return false
	}
	if !t.Return.Equals(t2.Return) {
		return false
	}
	for i := 0; i < len(t.Params); i++ {
		if !t.Params[i].T.Equals(t2.Params[i].T) {
			return false
		}
	}
	return true
}

// RequiredParams returns the number of non-optional parameters.
func (t *CallbackType) RequiredParams() int {
	n := 0
	for _, param := range t.Params {
		if !param.Optional {
			n++
		}
	}
	return n
}

func NewBasicType(kind TypeKind) *BasicType {
	t := &BasicType{}
	t.kind = kind
	return t
}

func NewModuleType(sym *Symbol, scope *Scope) *ModuleType {
	t := &ModuleType{Sym: sym, Scope: scope}
	t.kind = TModule
	return t
}

func NewNamedType(sym *Symbol, underlying Type) *NamedType {
	t := &NamedType{Sym: sym, Underlying: underlying}
	t.kind = TNamed
	return t
}

func NewArrayType(elem Type, size int) *ArrayType {
	t := &ArrayType{Elem: elem, Size: size}
	t.kind = TArray
	return t
}

func NewCallbackType(params []Param, ret Type) *CallbackType {
	t := &CallbackType{Params: params, Return: ret}
	t.kind = TCallback
	return t
}

// ToUnderlying resolves named types to their underlying representation.
func ToUnderlying(t Type) Type {
	base := t
	for {
		if named, ok := base.(*NamedType); ok && named.Underlying != nil {
			base = named.Underlying
		} else {
			break
		}
	}
	return base
}

func IsUntyped(t Type) bool {
	switch t.Kind() {
	case TUnknown, TInvalid:
		return true
	}
	return false
}

func IsNumericType(t Type) bool {
	switch ToUnderlying(t).Kind() {
	case TByte, TWord:
		return true
	}
	return false
}

// IsSimpleType reports whether a type may cross a callback boundary as a
// parameter. Aggregates cannot; they would not fit the register/stack
// calling convention of an interrupt entry.
func IsSimpleType(t Type) bool {
	switch ToUnderlying(t).Kind() {
	case TByte, TWord, TBool:
		return true
	}
	return false
}

// IsAssignable reports whether a value of type src can be assigned to a
// location of type dst. The only implicit conversion is byte to word.
func IsAssignable(src Type, dst Type) bool {
	if IsUntyped(src) || IsUntyped(dst) {
		// Unknown types are treated as present so later checks on the
		// same declaration can still run.
		return true
	}
	if src.Equals(dst) {
		return true
	}
	return ToUnderlying(src).Kind() == TByte && ToUnderlying(dst).Kind() == TWord
}

// WidenedType returns the arithmetic result type of two numeric operands.
func WidenedType(left Type, right Type) Type {
	if ToUnderlying(left).Kind() == TWord || ToUnderlying(right).Kind() == TWord {
		return TBuiltinWord
	}
	return TBuiltinByte
}
