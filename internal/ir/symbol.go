package ir

import (
	"fmt"

	"github.com/sablelang/sable/internal/token"
)

// SymbolKind identifies the kind of symbol.
type SymbolKind int

// Symbol kinds.
const (
	VarSymbol SymbolKind = iota
	FuncSymbol
	ModuleSymbol
	TypeSymbol
	EnumSymbol
)

func (k SymbolKind) String() string {
	switch k {
	case VarSymbol:
		return "var"
	case FuncSymbol:
		return "fun"
	case ModuleSymbol:
		return "module"
	case TypeSymbol:
		return "type"
	case EnumSymbol:
		return "enum"
	default:
		return "symbol " + string(rune(k))
	}
}

// StorageClass is an explicit placement hint on a global variable.
type StorageClass int

// Storage classes.
const (
	SCNone StorageClass = iota
	SCZeroPage
	SCRAM
	SCData
	SCConst
	SCIO
)

var storageClasses = [...]string{
	SCNone:     "none",
	SCZeroPage: "zp",
	SCRAM:      "ram",
	SCData:     "data",
	SCConst:    "const",
	SCIO:       "io",
}

func (sc StorageClass) String() string {
	if 0 <= sc && sc < StorageClass(len(storageClasses)) {
		return storageClasses[sc]
	}
	return "none"
}

// RequiresConstInitializer reports whether the storage class demands a
// compile-time constant initializer.
func (sc StorageClass) RequiresConstInitializer() bool {
	return sc == SCConst || sc == SCData
}

// Symbol flags.
const (
	SymFlagReadOnly = 1 << 1
	SymFlagDefined  = 1 << 2
	SymFlagCallback = 1 << 3
	SymFlagImported = 1 << 4
)

// Symbol represents a unique declared name. The parent scope is a
// navigational back-reference; the scope tree owns the symbols.
type Symbol struct {
	Kind    SymbolKind
	Parent  *Scope
	Public  bool
	Name    string
	DeclPos token.Position
	T       Type
	Storage StorageClass
	Flags   int

	// Initializer records the declared initializer of a variable so
	// constant values survive into the metadata pass.
	Initializer Expr

	// Metadata is attached by the annotate phase and immutable after.
	VarMeta  *VarMetadata
	FuncMeta *FuncMetadata
}

// NewSymbol creates a new symbol.
func NewSymbol(kind SymbolKind, parent *Scope, public bool, name string, pos token.Position) *Symbol {
	return &Symbol{Kind: kind, Parent: parent, Public: public, Name: name, DeclPos: pos}
}

func (s *Symbol) String() string {
	return fmt.Sprintf("%s:%s:%s", s.Kind, s.DeclPos, s.Name)
}

func (s *Symbol) ReadOnly() bool {
	return (s.Flags & SymFlagReadOnly) != 0
}

func (s *Symbol) IsDefined() bool {
	return (s.Flags & SymFlagDefined) != 0
}

// IsCallback reports whether a function symbol was declared with the
// callback flag and may be the target of indirect dispatch.
func (s *Symbol) IsCallback() bool {
	return (s.Flags & SymFlagCallback) != 0
}

// IsImported reports whether the symbol was injected by import
// resolution rather than declared in its scope's module.
func (s *Symbol) IsImported() bool {
	return (s.Flags & SymFlagImported) != 0
}

func (s *Symbol) IsUntyped() bool {
	return s.T == nil || IsUntyped(s.T)
}

func (s *Symbol) IsType() bool {
	switch s.Kind {
	case TypeSymbol, EnumSymbol:
		return true
	}
	return false
}

// Callback returns the function symbol's signature type.
func (s *Symbol) Callback() *CallbackType {
	if t, ok := s.T.(*CallbackType); ok {
		return t
	}
	return nil
}

// ModFQN returns the fully qualified name of the module the symbol was
// declared in.
func (s *Symbol) ModFQN() string {
	return s.Parent.ModFQN()
}

// FQN returns the fully qualified symbol name.
func (s *Symbol) FQN() string {
	if s.Kind == ModuleSymbol {
		return s.Name
	}
	fqn := s.ModFQN()
	if len(fqn) == 0 {
		return s.Name
	}
	return fmt.Sprintf("%s.%s", fqn, s.Name)
}
