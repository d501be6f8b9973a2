package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sablelang/sable/internal/token"
)

func TestErrorListAddAndCount(t *testing.T) {
	var list ErrorList
	assert.False(t, list.IsError())
	assert.Nil(t, list.Combined())

	list.Add(TypeMismatch, token.NoPosition, "bad type")
	list.Add(DuplicateSymbol, token.NoPosition, "dup '%s'", "x")
	list.AddWarning(token.NoPosition, "just a warning")

	assert.True(t, list.IsError())
	assert.Len(t, list.Errors, 2)
	assert.Len(t, list.Warnings, 1)
	assert.Equal(t, 1, list.Count(TypeMismatch))
	assert.Equal(t, 1, list.Count(DuplicateSymbol))
	assert.Equal(t, 0, list.Count(CircularDependency))
}

func TestErrorListAppend(t *testing.T) {
	var a, b ErrorList
	a.Add(TypeMismatch, token.NoPosition, "bad type")
	a.AddWarning(token.NoPosition, "lint a")
	b.Add(UndefinedSymbol, token.NoPosition, "undefined 'x'")
	b.AddWarning(token.NoPosition, "lint b")

	a.Append(&b)

	assert.Equal(t, 1, a.Count(TypeMismatch))
	assert.Equal(t, 1, a.Count(UndefinedSymbol))
	assert.Len(t, a.Warnings, 2)
	assert.Len(t, b.Errors, 1)
}

func TestErrorListCombined(t *testing.T) {
	var list ErrorList
	list.Add(UndefinedSymbol, token.NoPosition, "undefined 'a'")
	list.Add(TypeMismatch, token.NoPosition, "bad type for 'b'")

	err := list.Combined()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined 'a'")
	assert.Contains(t, err.Error(), "bad type for 'b'")
}

func TestErrorListSort(t *testing.T) {
	var list ErrorList
	list.Add(TypeMismatch, token.NewPosition("b.sb", 0, 3, 1), "third")
	list.Add(TypeMismatch, token.NewPosition("a.sb", 0, 9, 1), "second")
	list.Add(TypeMismatch, token.NewPosition("a.sb", 0, 2, 1), "first")
	list.Sort()

	var msgs []string
	for _, err := range list.Errors {
		msgs = append(msgs, err.Msg)
	}
	assert.Equal(t, []string{"first", "second", "third"}, msgs)
}

func TestErrorRendersSuggestions(t *testing.T) {
	var list ErrorList
	list.AddSuggested(UndefinedSymbol, token.NewPosition("main.sb", 0, 4, 7),
		[]string{"did you mean 'counter'?"}, "undefined symbol 'countr'")

	require.Len(t, list.Errors, 1)
	rendered := list.Errors[0].Error()
	assert.Contains(t, rendered, "main.sb:4:7")
	assert.Contains(t, rendered, "undefined symbol 'countr'")
	assert.Contains(t, rendered, "hint: did you mean 'counter'?")
}

func TestErrorRendersContext(t *testing.T) {
	var list ErrorList
	list.AddContext(CircularDependency, token.NoPosition,
		[]string{"  >> [0] a imports [1] b", "  >> [1] b imports [0] a"},
		"circular dependency between module 'a' and module 'b'")

	require.Len(t, list.Errors, 1)
	rendered := list.Errors[0].Error()
	assert.Contains(t, rendered, "a imports [1] b")
	assert.Contains(t, rendered, "b imports [0] a")
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "duplicate symbol", DuplicateSymbol.String())
	assert.Equal(t, "circular dependency", CircularDependency.String())
	assert.Equal(t, "error", GenericError.String())
	assert.Equal(t, "error", ErrorKind(999).String())
}
