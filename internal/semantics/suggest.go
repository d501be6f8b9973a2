package semantics

import (
	"fmt"

	"github.com/agnivade/levenshtein"
	"golang.org/x/exp/slices"

	"github.com/sablelang/sable/internal/ir"
)

const maxSuggestions = 3

// maxEditDistance bounds how far a candidate may be from the misspelled
// name before it stops being a plausible suggestion.
const maxEditDistance = 3

type candidate struct {
	name string
	dist int
}

func rankCandidates(name string, names []string) []string {
	var ranked []candidate
	for _, cand := range names {
		if cand == name {
			continue
		}
		dist := levenshtein.ComputeDistance(name, cand)
		if dist <= maxEditDistance {
			ranked = append(ranked, candidate{name: cand, dist: dist})
		}
	}
	slices.SortStableFunc(ranked, func(a, b candidate) bool {
		if a.dist != b.dist {
			return a.dist < b.dist
		}
		return a.name < b.name
	})
	if len(ranked) > maxSuggestions {
		ranked = ranked[:maxSuggestions]
	}
	var res []string
	for _, cand := range ranked {
		res = append(res, fmt.Sprintf("did you mean '%s'?", cand.name))
	}
	return res
}

// nameSuggestions ranks names visible from the current scope against a
// misspelled identifier.
func (c *checker) nameSuggestions(name string) []string {
	var names []string
	for scope := c.scope; scope != nil; scope = scope.Parent {
		for _, sym := range scope.Symbols() {
			names = append(names, sym.Name)
		}
	}
	return rankCandidates(name, names)
}

// moduleSuggestions ranks known module names against a missing module.
func (c *checker) moduleSuggestions(fqn string) []string {
	var names []string
	for name := range c.unitMap {
		names = append(names, name)
	}
	slices.Sort(names)
	return rankCandidates(fqn, names)
}

// exportSuggestions ranks a module's exports against a missing import
// and points at the available exports.
func (c *checker) exportSuggestions(from *ir.Unit, name string) []string {
	var names []string
	for _, sym := range from.Scope.Symbols() {
		if sym.Public && !sym.IsImported() {
			names = append(names, sym.Name)
		}
	}
	res := rankCandidates(name, names)
	res = append(res, fmt.Sprintf("check available exports of module '%s'", from.FQN()))
	return res
}

// declSuggestions ranks a module's declared symbols against a bad
// export specifier.
func (c *checker) declSuggestions(unit *ir.Unit, name string) []string {
	var names []string
	for _, sym := range unit.Scope.Symbols() {
		if !sym.IsImported() {
			names = append(names, sym.Name)
		}
	}
	return rankCandidates(name, names)
}
