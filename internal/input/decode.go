package input

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

const esc = 0x1b

// Extended keys of the form ESC [ code ~
var tildeKeys = map[int]Key{
	1:  KeyHome,
	2:  KeyInsert,
	3:  KeyDelete,
	4:  KeyEnd,
	5:  KeyPageUp,
	6:  KeyPageDown,
	7:  KeyHome,
	8:  KeyEnd,
	15: KeyF5,
	17: KeyF6,
	18: KeyF7,
	19: KeyF8,
	20: KeyF9,
	21: KeyF10,
	23: KeyF11,
	24: KeyF12,
}

// Final bytes of ESC [ x and ESC O x
var csiFinalKeys = map[byte]Key{
	'A': KeyUp,
	'B': KeyDown,
	'C': KeyRight,
	'D': KeyLeft,
	'H': KeyHome,
	'F': KeyEnd,
}

var ss3Keys = map[byte]Key{
	'P': KeyF1,
	'Q': KeyF2,
	'R': KeyF3,
	'S': KeyF4,
	'A': KeyUp,
	'B': KeyDown,
	'C': KeyRight,
	'D': KeyLeft,
	'H': KeyHome,
	'F': KeyEnd,
}

// Decode reads one event from the front of b and returns it with the number
// of bytes consumed. It consumes at least one byte whenever b is not empty.
// Unknown bytes and incomplete sequences consume their bytes and yield None.
func Decode(b []byte) (Event, int) {
	if len(b) == 0 {
		return None, 0
	}

	c := b[0]
	switch {
	case c == esc:
		return decodeEscape(b)
	case c == '\t':
		return KeyEvent(KeyTab, ModNone), 1
	case c == '\n' || c == '\r':
		return KeyEvent(KeyEnter, ModNone), 1
	case c == 0x08 || c == 0x7f:
		return KeyEvent(KeyBackspace, ModNone), 1
	case c >= 1 && c <= 26:
		return RuneEvent(rune('a'+c-1), ModCtrl), 1
	case c >= 32 && c <= 126:
		return RuneEvent(rune(c), ModNone), 1
	case c >= utf8.RuneSelf:
		// Non-ASCII text is not part of the key set; swallow the whole rune
		// so its continuation bytes never turn into events.
		if !utf8.FullRune(b) {
			return None, len(b)
		}
		_, size := utf8.DecodeRune(b)
		return None, size
	}
	return None, 1
}

// DecodeAll decodes every event in b, dropping None results.
func DecodeAll(b []byte) []Event {
	return appendEvents(nil, b)
}

func appendEvents(events []Event, b []byte) []Event {
	for len(b) > 0 {
		ev, n := Decode(b)
		b = b[n:]
		if !ev.IsNone() {
			events = append(events, ev)
		}
	}
	return events
}

func decodeEscape(b []byte) (Event, int) {
	if len(b) == 1 {
		return KeyEvent(KeyEscape, ModNone), 1
	}

	switch next := b[1]; {
	case next == '[':
		return decodeCSI(b)
	case next == 'O':
		if len(b) < 3 {
			return None, len(b)
		}
		if k, ok := ss3Keys[b[2]]; ok {
			return KeyEvent(k, ModNone), 3
		}
		return None, 3
	case next == 0x7f:
		return KeyEvent(KeyBackspace, ModAlt), 2
	case next >= 32 && next <= 126:
		return RuneEvent(rune(next), ModAlt), 2
	}

	// ESC followed by something that starts its own event
	return KeyEvent(KeyEscape, ModNone), 1
}

// decodeCSI handles ESC [ params final. Params are digits and semicolons; a
// second param, when present, is the xterm modifier code.
func decodeCSI(b []byte) (Event, int) {
	i := 2
	for i < len(b) && b[i] >= 0x30 && b[i] <= 0x3f {
		i++
	}
	if i >= len(b) {
		return None, len(b)
	}
	final := b[i]
	n := i + 1
	if final < 0x40 || final > 0x7e {
		return None, n
	}

	params := strings.Split(string(b[2:i]), ";")
	mod := ModNone
	if len(params) > 1 {
		mod = xtermMod(params[1])
	}

	switch final {
	case '~':
		code, err := strconv.Atoi(params[0])
		if err != nil {
			return None, n
		}
		if k, ok := tildeKeys[code]; ok {
			return KeyEvent(k, mod), n
		}
		return None, n
	case 'Z':
		return KeyEvent(KeyTab, ModShift), n
	}

	if k, ok := csiFinalKeys[final]; ok {
		return KeyEvent(k, mod), n
	}
	return None, n
}

// xtermMod converts the 1-based modifier parameter (1 + shift|alt<<1|ctrl<<2)
func xtermMod(param string) Mod {
	v, err := strconv.Atoi(param)
	if err != nil || v < 1 {
		return ModNone
	}
	v--
	var m Mod
	if v&1 != 0 {
		m |= ModShift
	}
	if v&2 != 0 {
		m |= ModAlt
	}
	if v&4 != 0 {
		m |= ModCtrl
	}
	return m
}
