package keymap

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/kevinzwang/shellcfg/internal/input"
)

// Action is what a key press asks the UI to do.
type Action int

const (
	ActionNone Action = iota
	ActionUp
	ActionDown
	ActionPageUp
	ActionPageDown
	ActionHome
	ActionEnd
	ActionSelect
	ActionBack
	ActionDelete
	ActionToggle
	ActionCopy
	ActionReload
	ActionRedraw
	ActionHelp
	ActionQuit
)

// KeyMap holds one binding per action. Confirm is only consulted while a
// confirmation prompt is open.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Select   key.Binding
	Back     key.Binding
	Delete   key.Binding
	Toggle   key.Binding
	Copy     key.Binding
	Reload   key.Binding
	Redraw   key.Binding
	Help     key.Binding
	Quit     key.Binding
	Confirm  key.Binding
}

// Default returns the built-in bindings.
func Default() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdn", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "first"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "last"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", "l", "right"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "h", "left", "backspace"),
			key.WithHelp("esc", "back"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "t"),
			key.WithHelp("space", "toggle"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r", "f5"),
			key.WithHelp("r", "reload"),
		),
		Redraw: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "redraw"),
		),
		Help: key.NewBinding(
			key.WithKeys("?", "f1"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "confirm"),
		),
	}
}

type entry struct {
	name    string
	action  Action
	binding *key.Binding
}

// entries lists the bindings in resolution order. Earlier entries win when
// two bindings share a key.
func (k *KeyMap) entries() []entry {
	return []entry{
		{"quit", ActionQuit, &k.Quit},
		{"up", ActionUp, &k.Up},
		{"down", ActionDown, &k.Down},
		{"page_up", ActionPageUp, &k.PageUp},
		{"page_down", ActionPageDown, &k.PageDown},
		{"home", ActionHome, &k.Home},
		{"end", ActionEnd, &k.End},
		{"select", ActionSelect, &k.Select},
		{"back", ActionBack, &k.Back},
		{"delete", ActionDelete, &k.Delete},
		{"toggle", ActionToggle, &k.Toggle},
		{"copy", ActionCopy, &k.Copy},
		{"reload", ActionReload, &k.Reload},
		{"redraw", ActionRedraw, &k.Redraw},
		{"help", ActionHelp, &k.Help},
		{"confirm", ActionNone, &k.Confirm},
	}
}

// Override replaces the keys of the named actions. Help text keeps its
// description and shows the first new key.
func (k *KeyMap) Override(keys map[string][]string) error {
	byName := make(map[string]*key.Binding)
	for _, e := range k.entries() {
		byName[e.name] = e.binding
	}

	names := make([]string, 0, len(keys))
	for name := range keys {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		b, ok := byName[name]
		if !ok {
			return fmt.Errorf("unknown key action %q", name)
		}
		list := keys[name]
		if len(list) == 0 {
			b.SetEnabled(false)
			continue
		}
		b.SetKeys(list...)
		b.SetHelp(list[0], b.Help().Desc)
		b.SetEnabled(true)
	}
	return nil
}

// Resolve returns the action bound to ev, or ActionNone.
func (k KeyMap) Resolve(ev input.Event) Action {
	tk, ok := TeaKey(ev)
	if !ok {
		return ActionNone
	}
	for _, e := range k.entries() {
		if e.action == ActionNone {
			continue
		}
		if key.Matches(tk, *e.binding) {
			return e.action
		}
	}
	return ActionNone
}

// Matches reports whether ev triggers any of the bindings.
func Matches(ev input.Event, b ...key.Binding) bool {
	tk, ok := TeaKey(ev)
	if !ok {
		return false
	}
	return key.Matches(tk, b...)
}

// ShortHelp returns the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Back, k.Delete, k.Help, k.Quit}
}

// FullHelp returns every binding grouped for the help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End},
		{k.Select, k.Back},
		{k.Delete, k.Toggle, k.Copy},
		{k.Reload, k.Redraw, k.Help, k.Quit},
	}
}

// HelpLine joins enabled bindings as "key desc" pairs.
func HelpLine(bindings []key.Binding, sep string) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, sep)
}
