package ir

// Color is used to color nodes during dfs when walking dependencies.
type Color int

// The node colors.
//
// White: node not visited
// Gray: node visit in progress
// Black: node visit finished
const (
	WhiteColor Color = iota
	GrayColor
	BlackColor
)

func (c Color) String() string {
	switch c {
	case WhiteColor:
		return "White"
	case GrayColor:
		return "Gray"
	case BlackColor:
		return "Black"
	default:
		return "-"
	}
}
