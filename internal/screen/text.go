package screen

import (
	"unicode"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// Box drawing runes for single-line borders
const (
	boxTopLeft     = '┌'
	boxTopRight    = '┐'
	boxBottomLeft  = '└'
	boxBottomRight = '┘'
	boxHorizontal  = '─'
	boxVertical    = '│'
)

// RenderText writes text starting at (x, y) and returns the number of columns
// it advanced. Escape sequences and control characters are dropped, zero-width
// runes are skipped and wide runes take two cells. Text running past the right
// edge is clipped, never wrapped.
func (s *Screen) RenderText(x, y int, text string, st Style) int {
	if y < 0 || y >= s.height {
		return 0
	}

	col := x
	for _, r := range ansi.Strip(text) {
		if col >= s.width {
			break
		}
		if unicode.IsControl(r) {
			continue
		}
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if w > 1 {
			// A glyph cut by the left edge leaves no half behind
			if col < 0 {
				col += 2
				continue
			}
			if col+1 >= s.width {
				break
			}
			s.Set(col, y, st.Cell(r))
			s.Set(col+1, y, Cell{Fg: st.Fg, Bg: st.Bg, Bold: st.Bold, Dim: st.Dim})
			col += 2
			continue
		}
		s.Set(col, y, st.Cell(r))
		col++
	}
	return col - x
}

// RenderTextRight writes text so that it ends at column right (exclusive).
func (s *Screen) RenderTextRight(right, y int, text string, st Style) int {
	return s.RenderText(right-VisualWidth(text), y, text, st)
}

// Fill sets every cell of the rectangle to c, clipped to the screen.
func (s *Screen) Fill(x, y, width, height int, c Cell) {
	for row := y; row < y+height; row++ {
		for col := x; col < x+width; col++ {
			s.Set(col, row, c)
		}
	}
}

// HLine draws a horizontal run of r.
func (s *Screen) HLine(x, y, length int, r rune, st Style) {
	s.Fill(x, y, length, 1, st.Cell(r))
}

// VLine draws a vertical run of r.
func (s *Screen) VLine(x, y, length int, r rune, st Style) {
	s.Fill(x, y, 1, length, st.Cell(r))
}

// RenderBox draws a single-line border around the rectangle. Parts outside
// the screen are clipped. Boxes smaller than 2x2 draw nothing.
func (s *Screen) RenderBox(x, y, width, height int, st Style) {
	if width < 2 || height < 2 {
		return
	}
	right := x + width - 1
	bottom := y + height - 1

	s.HLine(x+1, y, width-2, boxHorizontal, st)
	s.HLine(x+1, bottom, width-2, boxHorizontal, st)
	s.VLine(x, y+1, height-2, boxVertical, st)
	s.VLine(right, y+1, height-2, boxVertical, st)

	s.Set(x, y, st.Cell(boxTopLeft))
	s.Set(right, y, st.Cell(boxTopRight))
	s.Set(x, bottom, st.Cell(boxBottomLeft))
	s.Set(right, bottom, st.Cell(boxBottomRight))
}

// VisualWidth returns the number of columns text occupies once escape
// sequences are removed.
func VisualWidth(text string) int {
	return runewidth.StringWidth(ansi.Strip(text))
}

// Truncate shortens text to at most width columns, ending with an ellipsis
// when something was cut.
func Truncate(text string, width int) string {
	if width <= 0 {
		return ""
	}
	plain := ansi.Strip(text)
	if runewidth.StringWidth(plain) <= width {
		return plain
	}
	return runewidth.Truncate(plain, width, "…")
}
