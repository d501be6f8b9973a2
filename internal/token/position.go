package token

import (
	"bytes"
	"fmt"
)

// Position of a syntax node in a source file.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

// NoPosition means it wasn't part of a file.
var NoPosition = Position{}

func NewPosition(filename string, offset int, line int, column int) Position {
	return Position{Filename: filename, Offset: offset, Line: line, Column: column}
}

func (p Position) String() string {
	var buf bytes.Buffer
	if len(p.Filename) > 0 {
		buf.WriteString(p.Filename)
	}

	if p.Line > 0 {
		if buf.Len() > 0 {
			buf.WriteString(":")
		}
		buf.WriteString(fmt.Sprintf("%d:%d", p.Line, p.Column))
	}

	if buf.Len() > 0 {
		return buf.String()
	}

	return "-"
}

// IsValid returns true if it's a valid file position.
func (p Position) IsValid() bool {
	return p.Line > 0
}
