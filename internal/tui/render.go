package tui

import (
	"fmt"

	"github.com/kevinzwang/shellcfg/internal/keymap"
	"github.com/kevinzwang/shellcfg/internal/screen"
	"github.com/kevinzwang/shellcfg/internal/view"
)

const (
	markerUp   = "▲"
	markerDown = "▼"
	cursor     = "› "
)

// render paints the active view into the current grid. Rows:
//
//	0          top border with title and count
//	1..h-3     list
//	h-2        bottom border
//	h-1        footer
func (a *App) render() {
	current := a.state.Current()

	switch current {
	case ViewMain:
		a.renderMenu()
	case ViewHelp:
		a.renderHelp()
	default:
		a.renderList(current)
	}

	a.renderFooter()

	if a.confirm != nil {
		a.renderConfirm()
	}
}

// renderFrame draws the border box and its title, and returns the columns
// available to content rows.
func (a *App) renderFrame(title, count string) (left, right int) {
	w, h := a.screen.Size()
	a.screen.RenderBox(0, 0, w, h-1, a.styles.Border)
	a.screen.RenderText(2, 0, " "+title+" ", a.styles.Title)
	if count != "" {
		a.screen.RenderTextRight(w-2, 0, " "+count+" ", a.styles.Count)
	}
	return 1, w - 1
}

func (a *App) title(id view.ID) string {
	switch id {
	case ViewMain:
		return "shellcfg"
	case ViewHelp:
		return "Keys"
	}
	if info := a.viewInfo(id); info != nil {
		return info.Title
	}
	return string(id)
}

func (a *App) renderMenu() {
	left, right := a.renderFrame(a.title(ViewMain), "")
	counts := a.menuCounts()

	a.renderRows(len(a.views), left, right, func(i, y int, selected bool) {
		info := a.views[i]
		style := a.styles.Item
		if selected {
			style = a.styles.Selected
		}
		a.screen.RenderText(left+3, y, info.Title, style)

		if counts == nil {
			return
		}
		n := counts[info.ID]
		countStyle := a.styles.Count
		if n == 0 {
			countStyle = a.styles.Disabled
		}
		if selected {
			countStyle.Bg = style.Bg
		}
		a.screen.RenderTextRight(right-2, y, fmt.Sprint(n), countStyle)
	})
}

func (a *App) renderList(id view.ID) {
	items := a.items(id)
	left, right := a.renderFrame(a.title(id), itemCount(len(items)))

	if len(items) == 0 {
		a.screen.RenderText(left+3, 1, "Nothing here yet", a.styles.Placeholder)
		return
	}

	a.renderRows(len(items), left, right, func(i, y int, selected bool) {
		style := a.styles.Item
		if selected {
			style = a.styles.Selected
		}
		text := screen.Truncate(items[i], right-left-5)
		a.screen.RenderText(left+3, y, text, style)
	})
}

func itemCount(n int) string {
	if n == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", n)
}

// renderRows draws the visible window of a selectable list. Scroll markers
// show when rows are hidden above or below.
func (a *App) renderRows(count, left, right int, row func(i, y int, selected bool)) {
	visible := a.state.VisibleHeight()
	scroll := a.state.Scroll()
	top := 1

	for i := 0; i < visible && scroll+i < count; i++ {
		index := scroll + i
		y := top + i
		selected := index == a.state.Selected()
		if selected {
			a.screen.Fill(left, y, right-left, 1, a.styles.Selected.Cell(' '))
			a.screen.RenderText(left+1, y, cursor, a.styles.Marker)
		}
		row(index, y, selected)
	}

	if scroll > 0 {
		a.screen.RenderText(right-1, top, markerUp, a.styles.Marker)
	}
	if scroll+visible < count {
		a.screen.RenderText(right-1, top+visible-1, markerDown, a.styles.Marker)
	}
}

func (a *App) renderHelp() {
	left, _ := a.renderFrame(a.title(ViewHelp), "")

	y := 1
	for gi, group := range a.keys.FullHelp() {
		if gi > 0 {
			y++
		}
		for _, b := range group {
			if !b.Enabled() {
				continue
			}
			h := b.Help()
			a.screen.RenderText(left+2, y, h.Key, a.styles.HelpKey)
			a.screen.RenderText(left+12, y, h.Desc, a.styles.Help)
			y++
		}
	}
}

func (a *App) renderFooter() {
	w, h := a.screen.Size()
	y := h - 1

	if a.status.text != "" {
		a.screen.RenderText(1, y, screen.Truncate(a.status.text, w-2), a.status.style)
		return
	}

	hints := keymap.HelpLine(a.keys.ShortHelp(), " • ")
	a.screen.RenderText(1, y, screen.Truncate(hints, w-2), a.styles.Help)
}

// renderConfirm fades everything drawn so far and puts the delete prompt in
// the middle of the screen.
func (a *App) renderConfirm() {
	a.screen.Update(a.theme.Faded)

	w, h := a.screen.Size()
	lines := []string{
		"Delete this entry?",
		"",
		a.confirm.label,
		"",
		"[y] delete   [any key] cancel",
	}
	box := screen.Box{
		PaddingLeft:   2,
		PaddingRight:  2,
		PaddingTop:    1,
		PaddingBottom: 1,
		Border:        true,
		Align:         screen.AlignCenter,
		Title:         "Delete",
		Style:         a.styles.DialogText,
		BorderStyle:   a.styles.DialogBorder,
		TitleStyle:    a.styles.DialogTitle,
	}.Fit(lines, w-4)

	bw, bh := box.Size(len(lines))
	box.Draw(a.screen, (w-bw)/2, (h-bh)/2, lines)
}
