// Package theme turns the color palette into the opaque escape tokens the
// screen renderer passes through verbatim.
package theme

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/kevinzwang/shellcfg/internal/screen"
)

// Palette is the set of colors the UI is drawn with.
type Palette struct {
	Primary lipgloss.Color // borders, titles
	Accent  lipgloss.Color // selection
	Success lipgloss.Color
	Danger  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Dim     lipgloss.Color
}

// DefaultPalette is cyan and amber on the terminal background.
func DefaultPalette() Palette {
	return Palette{
		Primary: lipgloss.Color("#00d4ff"), // cyan
		Accent:  lipgloss.Color("#ffb627"), // amber
		Success: lipgloss.Color("#00ff87"), // green
		Danger:  lipgloss.Color("#ff5f5f"), // red
		Text:    lipgloss.Color("#e4e4e4"), // light gray
		Muted:   lipgloss.Color("#6c757d"), // gray
		Dim:     lipgloss.Color("#495057"), // dark gray
	}
}

func (p *Palette) fields() map[string]*lipgloss.Color {
	return map[string]*lipgloss.Color{
		"primary": &p.Primary,
		"accent":  &p.Accent,
		"success": &p.Success,
		"danger":  &p.Danger,
		"text":    &p.Text,
		"muted":   &p.Muted,
		"dim":     &p.Dim,
	}
}

// WithOverrides returns a copy of p with the named colors replaced. Values
// must be "#rrggbb" hex colors.
func (p Palette) WithOverrides(overrides map[string]string) (Palette, error) {
	fields := p.fields()

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		field, ok := fields[name]
		if !ok {
			return p, fmt.Errorf("unknown theme color %q", name)
		}
		value := overrides[name]
		if !validHex(value) {
			return p, fmt.Errorf("invalid color %q for %s: want #rrggbb", value, name)
		}
		*field = lipgloss.Color(strings.ToLower(value))
	}
	return p, nil
}

func validHex(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	_, err := strconv.ParseUint(s[1:], 16, 32)
	return err == nil
}

// ParseProfile maps a profile name to a termenv profile. "auto" asks the
// environment about w.
func ParseProfile(name string, w io.Writer) (termenv.Profile, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return termenv.NewOutput(w).EnvColorProfile(), nil
	case "truecolor":
		return termenv.TrueColor, nil
	case "ansi256":
		return termenv.ANSI256, nil
	case "ansi":
		return termenv.ANSI, nil
	case "none", "ascii":
		return termenv.Ascii, nil
	}
	return termenv.Ascii, fmt.Errorf("unknown color profile %q", name)
}

// Theme renders palette colors for one terminal color profile.
type Theme struct {
	palette Palette
	profile termenv.Profile
	dimmed  map[string]string
}

// New creates a theme. With termenv.Ascii every token is empty.
func New(p Palette, profile termenv.Profile) *Theme {
	return &Theme{
		palette: p,
		profile: profile,
		dimmed:  make(map[string]string),
	}
}

// Palette returns the colors the theme was built from.
func (t *Theme) Palette() Palette { return t.palette }

// Fg returns the token that sets c as the foreground.
func (t *Theme) Fg(c lipgloss.Color) string { return t.token(string(c), false) }

// Bg returns the token that sets c as the background.
func (t *Theme) Bg(c lipgloss.Color) string { return t.token(string(c), true) }

func (t *Theme) token(color string, bg bool) string {
	c := t.profile.Color(color)
	if c == nil {
		return ""
	}
	seq := c.Sequence(bg)
	if seq == "" {
		return ""
	}
	return termenv.CSI + seq + "m"
}

// Dim returns token with its color darkened by factor (0.0-1.0), rendered
// for the theme's profile. Empty or colorless tokens are returned as is.
func (t *Theme) Dim(token string, factor float64) string {
	return t.transform(token, func(r, g, b int) (int, int, int) {
		return dimRGB(r, g, b, factor)
	})
}

// Lighten returns token with its color blended toward white by factor.
func (t *Theme) Lighten(token string, factor float64) string {
	return t.transform(token, func(r, g, b int) (int, int, int) {
		return lightenRGB(r, g, b, factor)
	})
}

func (t *Theme) transform(token string, fn func(r, g, b int) (int, int, int)) string {
	state := parseToken(token)
	switch {
	case state.fgSet:
		return t.token(hexColor(fn(state.fgR, state.fgG, state.fgB)), false)
	case state.bgSet:
		return t.token(hexColor(fn(state.bgR, state.bgG, state.bgB)), true)
	}
	return token
}

// Faded returns the cell as it looks behind a modal: its foreground darkened
// and the dim attribute set. Results are cached per token.
func (t *Theme) Faded(c screen.Cell) screen.Cell {
	if c.Fg != "" {
		d, ok := t.dimmed[c.Fg]
		if !ok {
			d = t.Dim(c.Fg, fadeFactor)
			t.dimmed[c.Fg] = d
		}
		c.Fg = d
	}
	c.Bg = ""
	c.Dim = true
	return c
}

const fadeFactor = 0.5

// Styles are the cell styles of every UI element.
type Styles struct {
	Border      screen.Style
	Title       screen.Style
	Count       screen.Style
	Item        screen.Style
	Disabled    screen.Style
	Selected    screen.Style
	Marker      screen.Style
	Placeholder screen.Style
	Status      screen.Style
	Error       screen.Style
	Success     screen.Style
	HelpKey     screen.Style
	Help        screen.Style

	DialogBorder screen.Style
	DialogTitle  screen.Style
	DialogText   screen.Style
}

// Styles derives the element styles from the palette.
func (t *Theme) Styles() Styles {
	p := t.palette
	return Styles{
		Border:      screen.Style{Fg: t.Fg(p.Primary)},
		Title:       screen.Style{Fg: t.Fg(p.Primary), Bold: true},
		Count:       screen.Style{Fg: t.Fg(p.Muted)},
		Item:        screen.Style{Fg: t.Fg(p.Text)},
		Disabled:    screen.Style{Fg: t.Fg(p.Dim)},
		Selected:    screen.Style{Fg: t.Fg(p.Accent), Bg: t.Dim(t.Bg(p.Primary), 0.25), Bold: true},
		Marker:      screen.Style{Fg: t.Fg(p.Primary)},
		Placeholder: screen.Style{Fg: t.Fg(p.Muted), Dim: true},
		Status:      screen.Style{Fg: t.Fg(p.Muted)},
		Error:       screen.Style{Fg: t.Fg(p.Danger), Bold: true},
		Success:     screen.Style{Fg: t.Fg(p.Success)},
		HelpKey:     screen.Style{Fg: t.Lighten(t.Fg(p.Muted), 0.35)},
		Help:        screen.Style{Fg: t.Fg(p.Muted)},

		DialogBorder: screen.Style{Fg: t.Fg(p.Primary)},
		DialogTitle:  screen.Style{Fg: t.Fg(p.Danger), Bold: true},
		DialogText:   screen.Style{Fg: t.Fg(p.Text)},
	}
}
