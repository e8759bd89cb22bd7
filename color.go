package oleread

// Color is the red-black tree color of a directory entry. Readers only
// report it, lookups never depend on it.
type Color int

const (
	Red Color = iota
	Black
	InvalidColor
)

func ColorFromByte(b byte) Color {
	if b > COLOR_BLACK {
		return InvalidColor
	}
	return Color(b)
}

func (c Color) String() string {
	switch c {
	case Red:
		return "red"
	case Black:
		return "black"
	default:
		return "invalid"
	}
}
