package screen

// Align positions content lines inside a box.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Box describes a bordered, padded block of text lines. Widths are visual
// columns: escape sequences count as zero and wide glyphs as two.
//
//	total width = margin + border + padding + content + padding + border + margin
type Box struct {
	ContentWidth int

	PaddingLeft   int
	PaddingRight  int
	PaddingTop    int
	PaddingBottom int

	Border bool

	MarginLeft   int
	MarginRight  int
	MarginTop    int
	MarginBottom int

	Align Align
	Title string

	Style       Style // content and interior fill
	BorderStyle Style
	TitleStyle  Style
}

func (b Box) borderWidth() int {
	if b.Border {
		return 1
	}
	return 0
}

// Frame returns the horizontal and vertical space the box adds around its
// content.
func (b Box) Frame() (h, v int) {
	bw := b.borderWidth()
	h = b.MarginLeft + bw + b.PaddingLeft + b.PaddingRight + bw + b.MarginRight
	v = b.MarginTop + bw + b.PaddingTop + b.PaddingBottom + bw + b.MarginBottom
	return h, v
}

// InteriorWidth is the width between the borders.
func (b Box) InteriorWidth() int {
	return b.PaddingLeft + b.ContentWidth + b.PaddingRight
}

// Size returns the total width and height of the box holding n lines.
func (b Box) Size(n int) (width, height int) {
	h, v := b.Frame()
	return b.ContentWidth + h, n + v
}

// Fit returns a copy of b whose content width matches the widest line, capped
// so the total width does not exceed maxWidth.
func (b Box) Fit(lines []string, maxWidth int) Box {
	widest := VisualWidth(b.Title)
	if b.Border {
		// Title sits inside "┌─ title ─┐"
		widest += 4 - b.PaddingLeft - b.PaddingRight
	}
	for _, l := range lines {
		widest = max(widest, VisualWidth(l))
	}
	h, _ := b.Frame()
	b.ContentWidth = max(0, min(widest, maxWidth-h))
	return b
}

// Draw renders the box with its top-left margin corner at (x, y) and returns
// its total size. Lines wider than the content width are truncated; anything
// outside the screen is clipped.
func (b Box) Draw(s *Screen, x, y int, lines []string) (width, height int) {
	width, height = b.Size(len(lines))
	bw := b.borderWidth()

	left := x + b.MarginLeft
	top := y + b.MarginTop
	interiorW := b.InteriorWidth()
	interiorH := b.PaddingTop + len(lines) + b.PaddingBottom

	s.Fill(left+bw, top+bw, interiorW, interiorH, b.Style.Cell(' '))

	if b.Border {
		s.RenderBox(left, top, interiorW+2, interiorH+2, b.BorderStyle)
		if b.Title != "" && interiorW > 4 {
			title := Truncate(b.Title, interiorW-4)
			s.RenderText(left+2, top, " "+title+" ", b.TitleStyle)
		}
	}

	contentX := left + bw + b.PaddingLeft
	contentY := top + bw + b.PaddingTop
	for i, line := range lines {
		line = Truncate(line, b.ContentWidth)
		pad := b.ContentWidth - VisualWidth(line)

		offset := 0
		switch b.Align {
		case AlignCenter:
			offset = pad / 2
		case AlignRight:
			offset = pad
		}
		s.RenderText(contentX+offset, contentY+i, line, b.Style)
	}

	return width, height
}
