// Package input turns raw terminal bytes into key events.
package input

// Kind separates a real key press from the "nothing happened" result.
type Kind uint8

const (
	KindNone Kind = iota // no event; the zero value
	KindKey
)

// Key identifies the key of an event. Printable characters use KeyRune with
// Event.Rune set.
type Key uint8

const (
	KeyNone Key = iota
	KeyRune

	KeyEnter
	KeyTab
	KeyBackspace
	KeyEscape

	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyInsert
	KeyDelete
	KeyPageUp
	KeyPageDown

	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

var keyNames = [...]string{
	KeyNone:      "none",
	KeyRune:      "rune",
	KeyEnter:     "enter",
	KeyTab:       "tab",
	KeyBackspace: "backspace",
	KeyEscape:    "esc",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeyHome:      "home",
	KeyEnd:       "end",
	KeyInsert:    "insert",
	KeyDelete:    "delete",
	KeyPageUp:    "pgup",
	KeyPageDown:  "pgdown",
	KeyF1:        "f1",
	KeyF2:        "f2",
	KeyF3:        "f3",
	KeyF4:        "f4",
	KeyF5:        "f5",
	KeyF6:        "f6",
	KeyF7:        "f7",
	KeyF8:        "f8",
	KeyF9:        "f9",
	KeyF10:       "f10",
	KeyF11:       "f11",
	KeyF12:       "f12",
}

func (k Key) String() string {
	if int(k) < len(keyNames) {
		return keyNames[k]
	}
	return "unknown"
}

// Mod is a set of modifier keys held with a key.
type Mod uint8

const (
	ModCtrl Mod = 1 << iota
	ModShift
	ModAlt
)

// ModNone is the empty modifier set.
const ModNone Mod = 0

// Event is one decoded key press. The zero Event is "no event".
type Event struct {
	Kind Kind
	Key  Key
	Rune rune // set when Key is KeyRune
	Mod  Mod
}

// None is the "nothing happened" event.
var None = Event{}

// KeyEvent builds an event for a non-printable key.
func KeyEvent(k Key, mod Mod) Event {
	return Event{Kind: KindKey, Key: k, Mod: mod}
}

// RuneEvent builds an event for a printable character.
func RuneEvent(r rune, mod Mod) Event {
	return Event{Kind: KindKey, Key: KeyRune, Rune: r, Mod: mod}
}

// IsNone reports whether e carries no key press.
func (e Event) IsNone() bool { return e.Kind == KindNone }

// Has reports whether every modifier in m is held.
func (e Event) Has(m Mod) bool { return e.Mod&m == m }
