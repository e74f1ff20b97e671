package theme

import (
	"fmt"
	"strconv"
	"strings"
)

// colorState is the foreground and background carried by an SGR token.
type colorState struct {
	fgSet         bool
	fgR, fgG, fgB int
	bgSet         bool
	bgR, bgG, bgB int
}

// parseToken reads the colors out of a token such as "\x1b[38;2;1;2;3m".
// Tokens that are not SGR sequences leave the state empty.
func parseToken(token string) colorState {
	var state colorState
	for len(token) > 0 {
		start := strings.Index(token, "\x1b[")
		if start < 0 {
			break
		}
		end := strings.IndexByte(token[start:], 'm')
		if end < 0 {
			break
		}
		updateColorState(&state, token[start+2:start+end])
		token = token[start+end+1:]
	}
	return state
}

// updateColorState applies the parameters of one SGR sequence (the part
// between ESC[ and m) to state.
func updateColorState(state *colorState, paramStr string) {
	if paramStr == "" {
		// ESC[m is ESC[0m
		*state = colorState{}
		return
	}

	parts := strings.Split(paramStr, ";")
	i := 0
	for i < len(parts) {
		code, err := strconv.Atoi(parts[i])
		if err != nil {
			i++
			continue
		}

		switch {
		case code == 0:
			*state = colorState{}
			i++

		case code == 39:
			state.fgSet = false
			state.fgR, state.fgG, state.fgB = 0, 0, 0
			i++

		case code == 49:
			state.bgSet = false
			state.bgR, state.bgG, state.bgB = 0, 0, 0
			i++

		case (code == 38 || code == 48) && i+1 < len(parts):
			next, _ := strconv.Atoi(parts[i+1])
			var r, g, b int
			switch {
			case next == 2 && i+4 < len(parts):
				r, _ = strconv.Atoi(parts[i+2])
				g, _ = strconv.Atoi(parts[i+3])
				b, _ = strconv.Atoi(parts[i+4])
				i += 5
			case next == 5 && i+2 < len(parts):
				n, _ := strconv.Atoi(parts[i+2])
				r, g, b = color256ToRGB(n)
				i += 3
			default:
				i++
				continue
			}
			state.set(code == 48, r, g, b)

		case code >= 30 && code <= 37:
			c := ansi16Colors[code-30]
			state.set(false, c[0], c[1], c[2])
			i++

		case code >= 40 && code <= 47:
			c := ansi16Colors[code-40]
			state.set(true, c[0], c[1], c[2])
			i++

		case code >= 90 && code <= 97:
			c := ansi16Colors[code-90+8]
			state.set(false, c[0], c[1], c[2])
			i++

		case code >= 100 && code <= 107:
			c := ansi16Colors[code-100+8]
			state.set(true, c[0], c[1], c[2])
			i++

		default:
			// Bold, italic and friends carry no color
			i++
		}
	}
}

func (s *colorState) set(bg bool, r, g, b int) {
	if bg {
		s.bgSet = true
		s.bgR, s.bgG, s.bgB = r, g, b
		return
	}
	s.fgSet = true
	s.fgR, s.fgG, s.fgB = r, g, b
}

func dimRGB(r, g, b int, factor float64) (int, int, int) {
	return int(float64(r) * factor),
		int(float64(g) * factor),
		int(float64(b) * factor)
}

// lightenRGB blends a color toward white by factor (0.0-1.0).
func lightenRGB(r, g, b int, factor float64) (int, int, int) {
	return r + int(float64(255-r)*factor),
		g + int(float64(255-g)*factor),
		b + int(float64(255-b)*factor)
}

func hexColor(r, g, b int) string {
	return fmt.Sprintf("#%02x%02x%02x", clamp8(r), clamp8(g), clamp8(b))
}

func clamp8(v int) int {
	return min(max(v, 0), 255)
}

// color256ToRGB converts a 256-color index to RGB.
func color256ToRGB(n int) (int, int, int) {
	if n < 0 || n > 255 {
		return 0, 0, 0
	}
	if n < 16 {
		return ansi16Colors[n][0], ansi16Colors[n][1], ansi16Colors[n][2]
	}
	if n < 232 {
		// 6x6x6 cube: indices 16-231
		n -= 16
		b := n % 6
		g := (n / 6) % 6
		r := n / 36
		return cubeValue(r), cubeValue(g), cubeValue(b)
	}
	// Grayscale ramp: indices 232-255
	v := 8 + (n-232)*10
	return v, v, v
}

func cubeValue(i int) int {
	if i == 0 {
		return 0
	}
	return 55 + i*40
}

// ansi16Colors maps the standard 16 ANSI colors to xterm's default RGB.
var ansi16Colors = [16][3]int{
	{0, 0, 0},       // black
	{205, 0, 0},     // red
	{0, 205, 0},     // green
	{205, 205, 0},   // yellow
	{0, 0, 238},     // blue
	{205, 0, 205},   // magenta
	{0, 205, 205},   // cyan
	{229, 229, 229}, // white
	{127, 127, 127}, // bright black
	{255, 0, 0},     // bright red
	{0, 255, 0},     // bright green
	{255, 255, 0},   // bright yellow
	{92, 92, 255},   // bright blue
	{255, 0, 255},   // bright magenta
	{0, 255, 255},   // bright cyan
	{255, 255, 255}, // bright white
}
