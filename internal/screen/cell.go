package screen

// Cell is one screen position. Fg and Bg are opaque pre-formatted escape
// strings (empty means unset) that the renderer passes through verbatim.
// They must only select colors; a token that resets other attributes breaks
// the renderer's pen tracking.
//
// A Cell with Rune 0 is the trailing half of a wide glyph written into the
// cell to its left; the renderer never emits it.
type Cell struct {
	Rune rune
	Fg   string
	Bg   string
	Bold bool
	Dim  bool
}

// Blank is the cell every grid starts with.
var Blank = Cell{Rune: ' '}

// Style is the display attributes of a cell without its rune.
type Style struct {
	Fg   string
	Bg   string
	Bold bool
	Dim  bool
}

// Cell returns a cell showing r in this style.
func (s Style) Cell(r rune) Cell {
	return Cell{Rune: r, Fg: s.Fg, Bg: s.Bg, Bold: s.Bold, Dim: s.Dim}
}

// Style returns the attributes of c.
func (c Cell) Style() Style {
	return Style{Fg: c.Fg, Bg: c.Bg, Bold: c.Bold, Dim: c.Dim}
}

// invalid never equals a real cell; a previous grid filled with it forces
// the next flush to repaint everything.
var invalid = Cell{Rune: -1}
