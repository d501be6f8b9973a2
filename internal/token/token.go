package token

import (
	"strconv"
)

// Token represents an operator or keyword atom attached to a syntax node
// by the parser.
type Token int

// List of tokens.
const (
	Invalid Token = iota

	// Arithmetic
	Add
	Sub
	Mul
	Div
	Mod
	Inc
	Dec

	// Relational
	Eq
	Neq
	Gt
	GtEq
	Lt
	LtEq

	// Logical
	Land
	Lor
	Lnot

	Assign
)

var tokens = [...]string{
	Invalid: "invalid",
	Add:     "+",
	Sub:     "-",
	Mul:     "*",
	Div:     "/",
	Mod:     "%",
	Inc:     "++",
	Dec:     "--",
	Eq:      "==",
	Neq:     "!=",
	Gt:      ">",
	GtEq:    ">=",
	Lt:      "<",
	LtEq:    "<=",
	Land:    "and",
	Lor:     "or",
	Lnot:    "not",
	Assign:  "=",
}

func (tok Token) String() string {
	s := ""
	if 0 <= tok && tok < Token(len(tokens)) {
		s = tokens[tok]
	}
	if s == "" {
		s = "token(" + strconv.Itoa(int(tok)) + ")"
	}
	return s
}

// IsArith returns true for the arithmetic binary operators.
func (tok Token) IsArith() bool {
	switch tok {
	case Add, Sub, Mul, Div, Mod:
		return true
	}
	return false
}

// IsCompare returns true for the relational operators.
func (tok Token) IsCompare() bool {
	switch tok {
	case Eq, Neq, Gt, GtEq, Lt, LtEq:
		return true
	}
	return false
}

// IsLogical returns true for the boolean operators.
func (tok Token) IsLogical() bool {
	switch tok {
	case Land, Lor:
		return true
	}
	return false
}

// IsBinaryOp returns true if the token is a valid binary operator.
func (tok Token) IsBinaryOp() bool {
	return tok.IsArith() || tok.IsCompare() || tok.IsLogical()
}
