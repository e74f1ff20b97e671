package input

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// keySequences are the bytes an xterm-compatible terminal sends for keys
// that need more than one byte.
var keySequences = map[Key]string{
	KeyUp:       "\x1b[A",
	KeyDown:     "\x1b[B",
	KeyRight:    "\x1b[C",
	KeyLeft:     "\x1b[D",
	KeyHome:     "\x1b[H",
	KeyEnd:      "\x1b[F",
	KeyInsert:   "\x1b[2~",
	KeyDelete:   "\x1b[3~",
	KeyPageUp:   "\x1b[5~",
	KeyPageDown: "\x1b[6~",
	KeyF1:       "\x1bOP",
	KeyF2:       "\x1bOQ",
	KeyF3:       "\x1bOR",
	KeyF4:       "\x1bOS",
	KeyF5:       "\x1b[15~",
	KeyF6:       "\x1b[17~",
	KeyF7:       "\x1b[18~",
	KeyF8:       "\x1b[19~",
	KeyF9:       "\x1b[20~",
	KeyF10:      "\x1b[21~",
	KeyF11:      "\x1b[23~",
	KeyF12:      "\x1b[24~",
}

// keyByte returns the single byte for keys that have one, or 0.
func keyByte(k Key) byte {
	switch k {
	case KeyEnter:
		return '\r'
	case KeyTab:
		return '\t'
	case KeyBackspace:
		return 0x7f
	case KeyEscape:
		return esc
	}
	return 0
}

// Encode returns the bytes a terminal sends for ev, the inverse of Decode.
// None and keys the terminal cannot express encode to nil.
func Encode(ev Event) []byte {
	if ev.IsNone() {
		return nil
	}

	if ev.Key == KeyRune {
		var b []byte
		if ev.Has(ModAlt) {
			b = append(b, esc)
		}
		if ev.Has(ModCtrl) && ev.Rune >= 'a' && ev.Rune <= 'z' {
			return append(b, byte(ev.Rune-'a'+1))
		}
		return utf8.AppendRune(b, ev.Rune)
	}

	if ev.Key == KeyTab && ev.Has(ModShift) {
		return []byte("\x1b[Z")
	}

	if c := keyByte(ev.Key); c != 0 {
		if ev.Has(ModAlt) {
			return []byte{esc, c}
		}
		return []byte{c}
	}

	seq, ok := keySequences[ev.Key]
	if !ok {
		return nil
	}
	return []byte(addModifier(seq, ev.Mod))
}

// addModifier rewrites a CSI or SS3 key sequence to carry mod, merging with
// any modifier already present.
func addModifier(seq string, mod Mod) string {
	if mod == ModNone || len(seq) < 3 || seq[0] != esc {
		return seq
	}

	// SS3 keys switch to CSI form when modified
	if seq[1] == 'O' {
		return "\x1b[1;" + strconv.Itoa(xtermParam(mod)) + seq[2:]
	}
	if seq[1] != '[' {
		return seq
	}

	body := seq[2 : len(seq)-1]
	final := seq[len(seq)-1:]
	code, existing, found := strings.Cut(body, ";")
	if code == "" {
		code = "1"
	}
	if found {
		mod |= xtermMod(existing)
	}
	return "\x1b[" + code + ";" + strconv.Itoa(xtermParam(mod)) + final
}

// xtermParam is the inverse of xtermMod
func xtermParam(m Mod) int {
	p := 1
	if m&ModShift != 0 {
		p++
	}
	if m&ModAlt != 0 {
		p += 2
	}
	if m&ModCtrl != 0 {
		p += 4
	}
	return p
}
