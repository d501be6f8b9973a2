package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sablelang/sable/internal/token"
)

const contextSrc = `module main

var count: byte = 0
coun = 1
`

func TestBuildContextFileMap(t *testing.T) {
	ctx := NewBuildContext()
	file := ctx.NewFile("main.sb", []byte(contextSrc))
	require.NotNil(t, file)
	assert.Same(t, file, ctx.LookupFile("main.sb"))
	assert.Nil(t, ctx.LookupFile("other.sb"))
}

func TestFormatErrorsAttachesSourceContext(t *testing.T) {
	ctx := NewBuildContext()
	ctx.NewFile("main.sb", []byte(contextSrc))
	ctx.Errors.AddRange(UndefinedSymbol,
		token.NewPosition("main.sb", 0, 4, 1),
		token.NewPosition("main.sb", 0, 4, 5),
		"undefined symbol 'coun'")

	ctx.FormatErrors()

	require.True(t, ctx.IsError())
	e := ctx.Errors.Errors[0]
	require.Len(t, e.Context, 2)
	assert.Equal(t, "coun = 1", e.Context[0])
	assert.Contains(t, e.Context[1], "~~~~")
}

func TestFormatErrorsMarksColumn(t *testing.T) {
	ctx := NewBuildContext()
	ctx.NewFile("main.sb", []byte(contextSrc))
	ctx.Errors.AddWarning(token.NewPosition("main.sb", 0, 3, 5),
		"variable 'count' is declared and not used")

	ctx.FormatErrors()

	w := ctx.Errors.Warnings[0]
	require.Len(t, w.Context, 2)
	assert.Equal(t, "var count: byte = 0", w.Context[0])
	assert.True(t, strings.HasPrefix(w.Context[1], "    "))
	assert.Contains(t, w.Context[1], "^")
}

func TestFormatErrorsSkipsUnknownFiles(t *testing.T) {
	ctx := NewBuildContext()
	ctx.Errors.Add(TypeMismatch, token.NewPosition("missing.sb", 0, 1, 1), "bad type")

	ctx.FormatErrors()

	assert.Empty(t, ctx.Errors.Errors[0].Context)
}

func TestErrorCheckpoint(t *testing.T) {
	ctx := NewBuildContext()
	ctx.Errors.Add(TypeMismatch, token.NoPosition, "first run")
	ctx.SetCheckpoint()
	assert.False(t, ctx.IsErrorSinceCheckpoint())

	ctx.Errors.Add(TypeMismatch, token.NoPosition, "second run")
	assert.True(t, ctx.IsErrorSinceCheckpoint())
}
