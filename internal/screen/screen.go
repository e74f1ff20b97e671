// Package screen implements a cell-addressed double-buffered screen and the
// differential renderer that turns it into minimal ANSI output.
//
// The current grid is what views paint into; the previous grid is what the
// terminal is known to show. Flush emits only the cells that differ and then
// copies current into previous. Both grids are flat row-major slices of
// width*height cells and always have the same dimensions.
package screen

import "bytes"

// Screen owns the current and previous grids and the renderer state that
// mirrors the real terminal: cursor position and active SGR attributes.
type Screen struct {
	width  int
	height int

	cur  []Cell
	prev []Cell

	// Tracked terminal cursor, -1 when unknown
	cursorX int
	cursorY int

	pen      pen
	penValid bool

	out bytes.Buffer
}

// pen is the attribute state last emitted to the terminal
type pen struct {
	fg   string
	bg   string
	bold bool
	dim  bool
}

// New creates a screen with both grids blank. Non-positive dimensions are
// clamped to 1.
func New(width, height int) *Screen {
	width, height = clampSize(width, height)
	s := &Screen{
		width:    width,
		height:   height,
		cur:      newGrid(width * height),
		prev:     newGrid(width * height),
		cursorX:  -1,
		cursorY:  -1,
		penValid: true,
	}
	return s
}

func clampSize(width, height int) (int, int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return width, height
}

func newGrid(size int) []Cell {
	g := make([]Cell, size)
	for i := range g {
		g[i] = Blank
	}
	return g
}

// Width returns the number of columns.
func (s *Screen) Width() int { return s.width }

// Height returns the number of rows.
func (s *Screen) Height() int { return s.height }

// Size returns width and height.
func (s *Screen) Size() (int, int) { return s.width, s.height }

// InBounds reports whether (x, y) addresses a cell.
func (s *Screen) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < s.width && y < s.height
}

// Set writes c into the current grid. Out-of-range writes are ignored.
func (s *Screen) Set(x, y int, c Cell) {
	if !s.InBounds(x, y) {
		return
	}
	s.cur[y*s.width+x] = c
}

// Get returns the current cell at (x, y), or Blank when out of range.
func (s *Screen) Get(x, y int) Cell {
	if !s.InBounds(x, y) {
		return Blank
	}
	return s.cur[y*s.width+x]
}

// Previous returns the last flushed cell at (x, y), or Blank when out of range.
func (s *Screen) Previous(x, y int) Cell {
	if !s.InBounds(x, y) {
		return Blank
	}
	return s.prev[y*s.width+x]
}

// Clear blanks the current grid. The previous grid is left alone so the next
// flush still diffs against the last rendered frame.
func (s *Screen) Clear() {
	for i := range s.cur {
		s.cur[i] = Blank
	}
}

// Update applies fn to every cell of the current grid.
func (s *Screen) Update(fn func(Cell) Cell) {
	for i, c := range s.cur {
		s.cur[i] = fn(c)
	}
}

// Resize reallocates both grids, copies the top-left overlap of each and
// blanks newly exposed cells.
func (s *Screen) Resize(width, height int) {
	width, height = clampSize(width, height)
	if width == s.width && height == s.height {
		return
	}

	cur := newGrid(width * height)
	prev := newGrid(width * height)

	cols := min(width, s.width)
	rows := min(height, s.height)
	for y := 0; y < rows; y++ {
		copy(cur[y*width:y*width+cols], s.cur[y*s.width:y*s.width+cols])
		copy(prev[y*width:y*width+cols], s.prev[y*s.width:y*s.width+cols])
	}

	s.cur = cur
	s.prev = prev
	s.width = width
	s.height = height

	// The terminal may have moved the cursor while reflowing
	s.cursorX, s.cursorY = -1, -1
}

// Invalidate forgets what the terminal shows so the next flush repaints every
// cell from a reset attribute state.
func (s *Screen) Invalidate() {
	for i := range s.prev {
		s.prev[i] = invalid
	}
	s.cursorX, s.cursorY = -1, -1
	s.penValid = false
}
