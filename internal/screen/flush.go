package screen

import (
	"bytes"
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"
)

// Flush writes the difference between the current and previous grids to w
// in a single Write call and then copies current into previous. When nothing
// changed no Write happens and 0 is returned.
//
// For every changed cell the renderer moves the cursor only when its tracked
// position is elsewhere, emits colors and intensity only when they differ
// from what the terminal already has, writes the glyph and advances the
// tracked cursor by the glyph width.
func (s *Screen) Flush(w io.Writer) (int, error) {
	out := &s.out
	out.Reset()

	for y := 0; y < s.height; y++ {
		row := y * s.width
		for x := 0; x < s.width; x++ {
			c := s.cur[row+x]
			if c == s.prev[row+x] {
				continue
			}
			if c.Rune == 0 {
				// Trailing half of a wide glyph, painted by its lead cell
				continue
			}

			if x != s.cursorX || y != s.cursorY {
				writeCursorPos(out, x, y)
				s.cursorX = x
				s.cursorY = y
			}

			s.writePen(out, c)
			writeRune(out, c.Rune)
			s.cursorX += glyphWidth(c.Rune)
		}
	}

	if out.Len() == 0 {
		return 0, nil
	}

	n, err := w.Write(out.Bytes())
	if err != nil {
		// The terminal received an unknown part of the frame
		s.Invalidate()
		return n, fmt.Errorf("failed to write frame: %w", err)
	}
	copy(s.prev, s.cur)
	return n, nil
}

// writePen emits the SGR changes needed to draw c given the current pen
func (s *Screen) writePen(out *bytes.Buffer, c Cell) {
	if !s.penValid {
		out.Write(sgrReset)
		s.pen = pen{}
		s.penValid = true
	}

	if c.Fg != s.pen.fg {
		if c.Fg != "" {
			out.WriteString(c.Fg)
		} else {
			out.Write(sgrDefaultFg)
		}
		s.pen.fg = c.Fg
	}

	if c.Bg != s.pen.bg {
		if c.Bg != "" {
			out.WriteString(c.Bg)
		} else {
			out.Write(sgrDefaultBg)
		}
		s.pen.bg = c.Bg
	}

	if c.Bold == s.pen.bold && c.Dim == s.pen.dim {
		return
	}

	// Bold and dim share one reset code, so turning either off clears both
	// and whichever stays on is emitted again.
	if (s.pen.bold && !c.Bold) || (s.pen.dim && !c.Dim) {
		out.Write(sgrNormalIntensity)
		if c.Bold {
			out.Write(sgrBold)
		}
		if c.Dim {
			out.Write(sgrDim)
		}
	} else {
		if c.Bold && !s.pen.bold {
			out.Write(sgrBold)
		}
		if c.Dim && !s.pen.dim {
			out.Write(sgrDim)
		}
	}
	s.pen.bold = c.Bold
	s.pen.dim = c.Dim
}

// glyphWidth is the number of columns the terminal advances after r
func glyphWidth(r rune) int {
	if r < 0x80 {
		return 1
	}
	if w := runewidth.RuneWidth(r); w > 1 {
		return w
	}
	return 1
}
