// Package keymap binds decoded key events to UI actions. Events are named
// the way Bubble Tea names keys ("ctrl+c", "up", "f1", "alt+x") so bindings
// read the same as in any bubbles-based program.
package keymap

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kevinzwang/shellcfg/internal/input"
)

var functionKeys = [...]tea.KeyType{
	tea.KeyF1, tea.KeyF2, tea.KeyF3, tea.KeyF4,
	tea.KeyF5, tea.KeyF6, tea.KeyF7, tea.KeyF8,
	tea.KeyF9, tea.KeyF10, tea.KeyF11, tea.KeyF12,
}

type navKeys struct {
	plain, shift, ctrl, ctrlShift tea.KeyType
}

var navigation = map[input.Key]navKeys{
	input.KeyUp:    {tea.KeyUp, tea.KeyShiftUp, tea.KeyCtrlUp, tea.KeyCtrlShiftUp},
	input.KeyDown:  {tea.KeyDown, tea.KeyShiftDown, tea.KeyCtrlDown, tea.KeyCtrlShiftDown},
	input.KeyLeft:  {tea.KeyLeft, tea.KeyShiftLeft, tea.KeyCtrlLeft, tea.KeyCtrlShiftLeft},
	input.KeyRight: {tea.KeyRight, tea.KeyShiftRight, tea.KeyCtrlRight, tea.KeyCtrlShiftRight},
	input.KeyHome:  {tea.KeyHome, tea.KeyShiftHome, tea.KeyCtrlHome, tea.KeyCtrlShiftHome},
	input.KeyEnd:   {tea.KeyEnd, tea.KeyShiftEnd, tea.KeyCtrlEnd, tea.KeyCtrlShiftEnd},
}

func (n navKeys) pick(mod input.Mod) tea.KeyType {
	ctrl := mod&input.ModCtrl != 0
	shift := mod&input.ModShift != 0
	switch {
	case ctrl && shift:
		return n.ctrlShift
	case ctrl:
		return n.ctrl
	case shift:
		return n.shift
	}
	return n.plain
}

// TeaKey converts ev to the equivalent Bubble Tea key. The second result is
// false for None.
func TeaKey(ev input.Event) (tea.Key, bool) {
	if ev.IsNone() {
		return tea.Key{}, false
	}
	alt := ev.Has(input.ModAlt)

	switch ev.Key {
	case input.KeyRune:
		if ev.Has(input.ModCtrl) && ev.Rune >= 'a' && ev.Rune <= 'z' {
			return tea.Key{Type: tea.KeyType(ev.Rune - 'a' + 1), Alt: alt}, true
		}
		if ev.Rune == ' ' {
			return tea.Key{Type: tea.KeySpace, Runes: []rune{' '}, Alt: alt}, true
		}
		return tea.Key{Type: tea.KeyRunes, Runes: []rune{ev.Rune}, Alt: alt}, true
	case input.KeyEnter:
		return tea.Key{Type: tea.KeyEnter, Alt: alt}, true
	case input.KeyTab:
		if ev.Has(input.ModShift) {
			return tea.Key{Type: tea.KeyShiftTab, Alt: alt}, true
		}
		return tea.Key{Type: tea.KeyTab, Alt: alt}, true
	case input.KeyBackspace:
		return tea.Key{Type: tea.KeyBackspace, Alt: alt}, true
	case input.KeyEscape:
		return tea.Key{Type: tea.KeyEscape, Alt: alt}, true
	case input.KeyInsert:
		return tea.Key{Type: tea.KeyInsert, Alt: alt}, true
	case input.KeyDelete:
		return tea.Key{Type: tea.KeyDelete, Alt: alt}, true
	case input.KeyPageUp:
		if ev.Has(input.ModCtrl) {
			return tea.Key{Type: tea.KeyCtrlPgUp, Alt: alt}, true
		}
		return tea.Key{Type: tea.KeyPgUp, Alt: alt}, true
	case input.KeyPageDown:
		if ev.Has(input.ModCtrl) {
			return tea.Key{Type: tea.KeyCtrlPgDown, Alt: alt}, true
		}
		return tea.Key{Type: tea.KeyPgDown, Alt: alt}, true
	}

	if nav, ok := navigation[ev.Key]; ok {
		return tea.Key{Type: nav.pick(ev.Mod), Alt: alt}, true
	}
	if ev.Key >= input.KeyF1 && ev.Key <= input.KeyF12 {
		return tea.Key{Type: functionKeys[ev.Key-input.KeyF1], Alt: alt}, true
	}
	return tea.Key{}, false
}

// Name returns the binding name of ev, or "" for None.
func Name(ev input.Event) string {
	k, ok := TeaKey(ev)
	if !ok {
		return ""
	}
	return k.String()
}
