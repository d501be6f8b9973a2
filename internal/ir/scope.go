package ir

import (
	"bytes"
	"fmt"
)

// ScopeKind identifies the kind of scope.
type ScopeKind int

// Scope kinds.
const (
	GlobalScope ScopeKind = iota
	ModuleScope
	FuncScope
	BlockScope
)

func (k ScopeKind) String() string {
	switch k {
	case GlobalScope:
		return "GlobalScope"
	case ModuleScope:
		return "ModuleScope"
	case FuncScope:
		return "FuncScope"
	case BlockScope:
		return "BlockScope"
	default:
		return "Scope " + string(rune(k))
	}
}

// Scope is a node in the lexical scope tree. The parent link is
// navigational; a scope never outlives its parent. Symbols are kept in
// insertion order so analysis output is deterministic.
type Scope struct {
	Kind    ScopeKind
	Name    string
	Parent  *Scope
	symbols map[string]*Symbol
	order   []string
}

// NewScope creates a new scope nested in the parent scope.
func NewScope(kind ScopeKind, name string, parent *Scope) *Scope {
	return &Scope{
		Kind:    kind,
		Name:    name,
		Parent:  parent,
		symbols: make(map[string]*Symbol),
	}
}

func (s *Scope) String() string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("%s (%d)", s.Kind, len(s.order)))
	for _, name := range s.order {
		buf.WriteString("\n")
		buf.WriteString(fmt.Sprintf("%s = %s", name, s.symbols[name]))
	}
	return buf.String()
}

// Insert adds a symbol under the given alias. A duplicate is rejected,
// not overwritten; the existing symbol is returned so the caller can
// report where the first declaration lives.
func (s *Scope) Insert(alias string, sym *Symbol) *Symbol {
	if existing := s.symbols[alias]; existing != nil {
		return existing
	}
	s.symbols[alias] = sym
	s.order = append(s.order, alias)
	return nil
}

// Lookup walks from this scope to the global scope and returns the
// nearest match, or nil.
func (s *Scope) Lookup(name string) *Symbol {
	for scope := s; scope != nil; scope = scope.Parent {
		if sym := scope.symbols[name]; sym != nil {
			return sym
		}
	}
	return nil
}

// LookupLocal scans only this scope; shadowing across scopes is legal.
func (s *Scope) LookupLocal(name string) *Symbol {
	return s.symbols[name]
}

// Symbols returns the scope's symbols in insertion order.
func (s *Scope) Symbols() []*Symbol {
	syms := make([]*Symbol, 0, len(s.order))
	for _, name := range s.order {
		syms = append(syms, s.symbols[name])
	}
	return syms
}

// Len returns the number of symbols declared directly in the scope.
func (s *Scope) Len() int {
	return len(s.order)
}

// ModFQN returns the fully qualified name of the nearest enclosing
// module scope, or the empty string at global scope.
func (s *Scope) ModFQN() string {
	for scope := s; scope != nil; scope = scope.Parent {
		if scope.Kind == ModuleScope {
			return scope.Name
		}
	}
	return ""
}
