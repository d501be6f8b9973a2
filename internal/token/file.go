package token

// File holds the source text of a compilation unit, used to attach
// context lines to diagnostics.
type File struct {
	Filename string
	Src      []byte
}
