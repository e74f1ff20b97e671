package tui

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinzwang/shellcfg/internal/input"
	"github.com/kevinzwang/shellcfg/internal/screen"
	"github.com/kevinzwang/shellcfg/internal/view"
)

type size struct{ w, h int }

// fakeTerm records output and lifecycle calls. Size returns the queued sizes
// in order and then keeps returning the last one.
type fakeTerm struct {
	out      bytes.Buffer
	sizes    []size
	initErr  error
	inits    int
	cleanups int
	active   bool
}

func newFakeTerm(w, h int) *fakeTerm {
	return &fakeTerm{sizes: []size{{w, h}}}
}

func (f *fakeTerm) Write(p []byte) (int, error) { return f.out.Write(p) }

func (f *fakeTerm) Init() error {
	f.inits++
	if f.initErr != nil {
		return f.initErr
	}
	f.active = true
	return nil
}

func (f *fakeTerm) Cleanup() error {
	if !f.active {
		return nil
	}
	f.cleanups++
	f.active = false
	return nil
}

func (f *fakeTerm) Size() (int, int) {
	s := f.sizes[0]
	if len(f.sizes) > 1 {
		f.sizes = f.sizes[1:]
	}
	return s.w, s.h
}

// script feeds one chunk per read and reports EOF once it runs out, which
// ends the loop.
type script struct {
	chunks [][]byte
}

func (s *script) ReadTimeout(p []byte, _ time.Duration) (int, error) {
	if len(s.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, s.chunks[0])
	s.chunks = s.chunks[1:]
	return n, nil
}

func keys(evs ...input.Event) (*input.Poller, *script) {
	src := &script{}
	for _, ev := range evs {
		src.chunks = append(src.chunks, input.Encode(ev))
	}
	return input.NewPoller(src, 0), src
}

func r(c rune) input.Event { return input.RuneEvent(c, input.ModNone) }

func k(key input.Key) input.Event { return input.KeyEvent(key, input.ModNone) }

func ctrl(c rune) input.Event { return input.RuneEvent(c, input.ModCtrl) }

type action struct {
	view   view.ID
	action ItemAction
	index  int
}

type memBridge struct {
	items       map[view.ID][]string
	loadErr     error
	panicOnLoad bool
	actions     []action
}

func (b *memBridge) LoadItems(_ context.Context, id view.ID) ([]string, error) {
	if b.panicOnLoad {
		panic("load exploded")
	}
	if b.loadErr != nil {
		return nil, b.loadErr
	}
	return append([]string(nil), b.items[id]...), nil
}

func (b *memBridge) PerformAction(_ context.Context, id view.ID, a ItemAction, index int) error {
	b.actions = append(b.actions, action{id, a, index})
	list := b.items[id]
	if index < 0 || index >= len(list) {
		return fmt.Errorf("index %d out of range", index)
	}
	switch a {
	case ItemDelete:
		b.items[id] = append(list[:index:index], list[index+1:]...)
	case ItemToggle:
		list[index] += " (off)"
	}
	return nil
}

type countingBridge struct {
	*memBridge
}

func (b countingBridge) CountItems(context.Context) (map[view.ID]int, error) {
	counts := make(map[view.ID]int)
	for id, items := range b.items {
		counts[id] = len(items)
	}
	return counts, nil
}

var testViews = []ViewInfo{
	{ID: "path", Title: "PATH"},
	{ID: "aliases", Title: "Aliases"},
}

type noSignals struct {
	resize    int
	terminate bool
}

func (n *noSignals) signals() Signals {
	return Signals{
		ResizePending:        func() bool { return n.resize > 0 },
		ClearResize:          func() { n.resize-- },
		TerminationRequested: func() bool { return n.terminate },
	}
}

func newTestApp(t *testing.T, term *fakeTerm, events EventSource, bridge DataBridge, opts ...func(*Options)) *App {
	t.Helper()
	sig := &noSignals{}
	o := Options{
		Terminal:  term,
		Events:    events,
		Bridge:    bridge,
		Views:     testViews,
		Clipboard: func(string) error { return nil },
		Signals:   sig.signals(),
	}
	for _, fn := range opts {
		fn(&o)
	}
	app, err := New(o)
	require.NoError(t, err)
	return app
}

func rowText(s *screen.Screen, y int) string {
	var b strings.Builder
	for x := 0; x < s.Width(); x++ {
		c := s.Get(x, y)
		if c.Rune == 0 {
			continue
		}
		b.WriteRune(c.Rune)
	}
	return b.String()
}

func screenText(s *screen.Screen) string {
	rows := make([]string, s.Height())
	for y := range rows {
		rows[y] = rowText(s, y)
	}
	return strings.Join(rows, "\n")
}

func footer(app *App) string {
	return rowText(app.screen, app.screen.Height()-1)
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Options{Terminal: newFakeTerm(10, 10)})
	assert.Error(t, err)

	events, _ := keys()
	_, err = New(Options{
		Terminal:    newFakeTerm(10, 10),
		Events:      events,
		Bridge:      &memBridge{},
		Views:       testViews,
		InitialView: "colors",
	})
	assert.ErrorContains(t, err, "unknown initial view")
}

func TestRunInitFailure(t *testing.T) {
	term := newFakeTerm(40, 12)
	term.initErr = errors.New("not a tty")
	events, _ := keys(r('q'))
	app := newTestApp(t, term, events, &memBridge{})

	err := app.Run()
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to initialize terminal")
	assert.Equal(t, 0, term.out.Len())
	assert.Equal(t, 0, term.cleanups)
}

func TestRunQuitRestoresTerminal(t *testing.T) {
	term := newFakeTerm(40, 12)
	events, src := keys(r('q'), r('j'))
	app := newTestApp(t, term, events, &memBridge{})

	require.NoError(t, app.Run())
	assert.Equal(t, 1, term.inits)
	assert.Equal(t, 1, term.cleanups)
	assert.False(t, term.active)
	assert.Len(t, src.chunks, 1, "loop kept reading after quit")

	out := term.out.String()
	assert.Contains(t, out, "shellcfg")
	assert.Contains(t, out, "PATH")
	assert.NotContains(t, out, "\x1b[0m")
}

func TestMainMenuLayout(t *testing.T) {
	term := newFakeTerm(40, 12)
	events, _ := keys()
	bridge := countingBridge{&memBridge{items: map[view.ID][]string{
		"path": {"/a", "/b", "/c"},
	}}}
	app := newTestApp(t, term, events, bridge)

	require.NoError(t, app.Run())
	s := app.screen
	assert.Equal(t, "┌─ shellcfg "+strings.Repeat("─", 27)+"┐", rowText(s, 0))
	assert.Equal(t, "│ › PATH"+strings.Repeat(" ", 28)+"3  │", rowText(s, 1))
	assert.Equal(t, "│   Aliases"+strings.Repeat(" ", 25)+"0  │", rowText(s, 2))
	assert.Equal(t, "└"+strings.Repeat("─", 38)+"┘", rowText(s, 10))
	assert.Contains(t, footer(app), "↑/k up")
	assert.True(t, s.Get(3, 0).Bold, "title is bold")
	assert.False(t, s.Get(1, 0).Bold)
}

func TestNavigateIntoViewAndDelete(t *testing.T) {
	term := newFakeTerm(40, 12)
	events, _ := keys(k(input.KeyEnter), r('j'), r('d'), r('y'))
	bridge := &memBridge{items: map[view.ID][]string{
		"path": {"/a", "/b", "/c"},
	}}
	app := newTestApp(t, term, events, bridge)

	require.NoError(t, app.Run())
	assert.Equal(t, []string{"/a", "/c"}, bridge.items["path"])
	assert.Equal(t, []action{{"path", ItemDelete, 1}}, bridge.actions)
	assert.Equal(t, view.ID("path"), app.state.Current())
	assert.Equal(t, 1, app.state.Selected())

	s := app.screen
	assert.Contains(t, rowText(s, 0), "PATH")
	assert.Contains(t, rowText(s, 0), "2 items")
	assert.Contains(t, rowText(s, 1), "/a")
	assert.Contains(t, rowText(s, 2), "› /c")
	assert.Contains(t, footer(app), "Deleted /b")
}

func TestDeleteLastItemMovesSelectionUp(t *testing.T) {
	term := newFakeTerm(40, 12)
	events, _ := keys(r('G'), r('d'), r('y'))
	bridge := &memBridge{items: map[view.ID][]string{
		"aliases": {"g=git", "k=kubectl"},
	}}
	app := newTestApp(t, term, events, bridge, func(o *Options) { o.InitialView = "aliases" })

	require.NoError(t, app.Run())
	assert.Equal(t, []string{"g=git"}, bridge.items["aliases"])
	assert.Equal(t, 0, app.state.Selected())
}

func TestDeleteCancelledByOtherKey(t *testing.T) {
	term := newFakeTerm(40, 12)
	events, _ := keys(k(input.KeyEnter), r('d'), r('n'))
	bridge := &memBridge{items: map[view.ID][]string{
		"path": {"/a"},
	}}
	app := newTestApp(t, term, events, bridge)

	require.NoError(t, app.Run())
	assert.Empty(t, bridge.actions)
	assert.Equal(t, []string{"/a"}, bridge.items["path"])
	assert.Contains(t, footer(app), "Cancelled")
	assert.False(t, app.state.Running())
}

func TestQuitKeyWhileConfirmingEndsLoop(t *testing.T) {
	term := newFakeTerm(40, 12)
	events, _ := keys(k(input.KeyEnter), r('d'), ctrl('c'), r('j'))
	bridge := &memBridge{items: map[view.ID][]string{
		"path": {"/a", "/b"},
	}}
	app := newTestApp(t, term, events, bridge)

	require.NoError(t, app.Run())
	assert.False(t, app.state.Running())
	assert.Empty(t, bridge.actions)
	assert.Equal(t, []string{"/a", "/b"}, bridge.items["path"])
	assert.Equal(t, 0, app.state.Selected(), "keys after quit are not dispatched")
	assert.Equal(t, 1, term.cleanups)
}

func TestConfirmOverlayFadesBackground(t *testing.T) {
	term := newFakeTerm(40, 12)
	events, _ := keys(k(input.KeyEnter), r('d'))
	bridge := &memBridge{items: map[view.ID][]string{
		"path": {"/usr/local/bin"},
	}}
	app := newTestApp(t, term, events, bridge)

	require.NoError(t, app.Run())
	require.NotNil(t, app.confirm)

	text := screenText(app.screen)
	assert.Contains(t, text, "Delete this entry?")
	assert.Contains(t, text, "[y] delete")
	assert.Contains(t, text, "─ Delete ─")

	corner := app.screen.Get(0, 0)
	assert.Equal(t, '┌', corner.Rune)
	assert.True(t, corner.Dim, "background is faded")
}

func TestDeleteOnEmptyListDoesNothing(t *testing.T) {
	term := newFakeTerm(40, 12)
	events, _ := keys(r('d'), r('y'), r(' '))
	bridge := &memBridge{items: map[view.ID][]string{}}
	app := newTestApp(t, term, events, bridge, func(o *Options) { o.InitialView = "path" })

	require.NoError(t, app.Run())
	assert.Nil(t, app.confirm)
	assert.Empty(t, bridge.actions)
	assert.Contains(t, rowText(app.screen, 1), "Nothing here yet")
	assert.Contains(t, rowText(app.screen, 0), "0 items")
}

func TestToggle(t *testing.T) {
	term := newFakeTerm(40, 12)
	events, _ := keys(k(input.KeyEnter), r(' '))
	bridge := &memBridge{items: map[view.ID][]string{
		"path": {"/a", "/b"},
	}}
	app := newTestApp(t, term, events, bridge)

	require.NoError(t, app.Run())
	assert.Equal(t, []action{{"path", ItemToggle, 0}}, bridge.actions)
	assert.Contains(t, rowText(app.screen, 1), "/a (off)")
}

func TestBridgeErrorIsShownNotFatal(t *testing.T) {
	term := newFakeTerm(40, 12)
	events, _ := keys()
	bridge := &memBridge{loadErr: errors.New("database is locked")}
	app := newTestApp(t, term, events, bridge, func(o *Options) { o.InitialView = "path" })

	require.NoError(t, app.Run())
	assert.Contains(t, footer(app), "Error: database is locked")
	assert.Contains(t, rowText(app.screen, 1), "Nothing here yet")
}

func TestBackNavigation(t *testing.T) {
	tests := []struct {
		name     string
		initial  view.ID
		keys     []input.Event
		current  view.ID
		previous view.ID
	}{
		{
			name:     "back from initial sub view goes to main",
			initial:  "aliases",
			keys:     []input.Event{k(input.KeyEscape)},
			current:  ViewMain,
			previous: "aliases",
		},
		{
			name:     "enter then back",
			initial:  ViewMain,
			keys:     []input.Event{r('j'), k(input.KeyEnter), r('h')},
			current:  ViewMain,
			previous: "aliases",
		},
		{
			name:     "back on main is a no-op",
			initial:  ViewMain,
			keys:     []input.Event{k(input.KeyBackspace)},
			current:  ViewMain,
			previous: ViewMain,
		},
		{
			name:     "help toggles back to the list",
			initial:  "path",
			keys:     []input.Event{r('?'), k(input.KeyF1)},
			current:  "path",
			previous: ViewHelp,
		},
		{
			name:     "quit from a sub view",
			initial:  ViewMain,
			keys:     []input.Event{k(input.KeyEnter), ctrl('c'), r('j')},
			current:  "path",
			previous: ViewMain,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, _ := keys(tt.keys...)
			app := newTestApp(t, newFakeTerm(40, 12), events, &memBridge{}, func(o *Options) {
				o.InitialView = tt.initial
			})

			require.NoError(t, app.Run())
			assert.Equal(t, tt.current, app.state.Current())
			assert.Equal(t, tt.previous, app.state.Previous())
		})
	}
}

func TestHelpViewListsBindings(t *testing.T) {
	term := newFakeTerm(40, 30)
	events, _ := keys(r('?'))
	app := newTestApp(t, term, events, &memBridge{})

	require.NoError(t, app.Run())
	text := screenText(app.screen)
	assert.Contains(t, rowText(app.screen, 0), "Keys")
	assert.Contains(t, text, "space")
	assert.Contains(t, text, "toggle")
	assert.Contains(t, text, "ctrl+l")
}

func TestScrollMarkers(t *testing.T) {
	items := make([]string, 10)
	for i := range items {
		items[i] = fmt.Sprintf("/opt/%d", i)
	}

	t.Run("more below", func(t *testing.T) {
		events, _ := keys()
		bridge := &memBridge{items: map[view.ID][]string{"path": items}}
		app := newTestApp(t, newFakeTerm(30, 8), events, bridge, func(o *Options) { o.InitialView = "path" })

		require.NoError(t, app.Run())
		assert.NotContains(t, rowText(app.screen, 1), "▲")
		assert.Contains(t, rowText(app.screen, 5), "▼")
		assert.Contains(t, rowText(app.screen, 5), "/opt/4")
	})

	t.Run("more above", func(t *testing.T) {
		events, _ := keys(r('G'))
		bridge := &memBridge{items: map[view.ID][]string{"path": items}}
		app := newTestApp(t, newFakeTerm(30, 8), events, bridge, func(o *Options) { o.InitialView = "path" })

		require.NoError(t, app.Run())
		assert.Equal(t, 9, app.state.Selected())
		assert.Equal(t, 5, app.state.Scroll())
		assert.Contains(t, rowText(app.screen, 1), "▲")
		assert.Contains(t, rowText(app.screen, 1), "/opt/5")
		assert.NotContains(t, screenText(app.screen), "▼")
	})

	t.Run("wraps to top", func(t *testing.T) {
		events, _ := keys(r('G'), r('j'))
		bridge := &memBridge{items: map[view.ID][]string{"path": items}}
		app := newTestApp(t, newFakeTerm(30, 8), events, bridge, func(o *Options) { o.InitialView = "path" })

		require.NoError(t, app.Run())
		assert.Equal(t, 0, app.state.Selected())
		assert.Equal(t, 0, app.state.Scroll())
	})
}

func TestCopy(t *testing.T) {
	t.Run("system clipboard", func(t *testing.T) {
		var copied string
		term := newFakeTerm(40, 12)
		events, _ := keys(k(input.KeyEnter), r('j'), r('c'))
		bridge := &memBridge{items: map[view.ID][]string{"path": {"/a", "/b"}}}
		app := newTestApp(t, term, events, bridge, func(o *Options) {
			o.Clipboard = func(s string) error {
				copied = s
				return nil
			}
		})

		require.NoError(t, app.Run())
		assert.Equal(t, "/b", copied)
		assert.Contains(t, footer(app), "Copied to clipboard")
		assert.NotContains(t, term.out.String(), "\x1b]52;")
	})

	t.Run("falls back to OSC 52", func(t *testing.T) {
		term := newFakeTerm(40, 12)
		events, _ := keys(k(input.KeyEnter), r('c'))
		bridge := &memBridge{items: map[view.ID][]string{"path": {"/a"}}}
		app := newTestApp(t, term, events, bridge, func(o *Options) {
			o.Clipboard = func(string) error { return errors.New("no xclip") }
		})

		require.NoError(t, app.Run())
		want := "\x1b]52;c;" + base64.StdEncoding.EncodeToString([]byte("/a")) + "\x07"
		assert.Contains(t, term.out.String(), want)
		assert.Contains(t, footer(app), "Copied to clipboard")
	})
}

func TestRedrawRepaintsEverything(t *testing.T) {
	term := newFakeTerm(20, 6)
	events, _ := keys(ctrl('l'))
	app := newTestApp(t, term, events, &memBridge{})

	require.NoError(t, app.Run())
	out := term.out.String()
	i := strings.Index(out, "\x1b[0m")
	require.NotEqual(t, -1, i, "redraw resets attributes")
	assert.Contains(t, out[i:], "shellcfg", "second frame repaints unchanged cells")
}

// hookSource runs a callback before the read with the same index.
type hookSource struct {
	script
	before map[int]func()
	reads  int
}

func (h *hookSource) ReadTimeout(p []byte, timeout time.Duration) (int, error) {
	if fn := h.before[h.reads]; fn != nil {
		fn()
	}
	h.reads++
	return h.script.ReadTimeout(p, timeout)
}

func TestReloadDropsCache(t *testing.T) {
	term := newFakeTerm(40, 12)
	bridge := &memBridge{items: map[view.ID][]string{"path": {"/a"}}}
	src := &hookSource{
		script: script{chunks: [][]byte{[]byte("\r"), []byte("j"), []byte("r")}},
		before: map[int]func(){
			1: func() { bridge.items["path"] = []string{"/a", "/b"} },
		},
	}
	app := newTestApp(t, term, input.NewPoller(src, 0), bridge)

	require.NoError(t, app.Run())
	// j wrapped over the cached single item before the reload
	assert.Equal(t, 0, app.state.Selected())
	assert.Contains(t, rowText(app.screen, 0), "2 items")
	assert.Contains(t, rowText(app.screen, 2), "/b")
	assert.Contains(t, footer(app), "Reloaded")
}

func TestResizeSignal(t *testing.T) {
	term := newFakeTerm(40, 12)
	term.sizes = append(term.sizes, size{60, 20})
	events, _ := keys()
	sig := &noSignals{resize: 1}
	app := newTestApp(t, term, events, &memBridge{}, func(o *Options) { o.Signals = sig.signals() })

	require.NoError(t, app.Run())
	w, h := app.screen.Size()
	assert.Equal(t, 60, w)
	assert.Equal(t, 20, h)
	sw, sh := app.state.Size()
	assert.Equal(t, 60, sw)
	assert.Equal(t, 20, sh)
	assert.Equal(t, 0, sig.resize)
	assert.Contains(t, rowText(app.screen, 18), "┘")
}

func TestTerminationSignalEndsLoop(t *testing.T) {
	term := newFakeTerm(40, 12)
	events, src := keys(r('j'))
	sig := &noSignals{terminate: true}
	app := newTestApp(t, term, events, &memBridge{}, func(o *Options) { o.Signals = sig.signals() })

	require.NoError(t, app.Run())
	assert.Len(t, src.chunks, 1)
	assert.Equal(t, 1, term.cleanups)
}

func TestPanicRestoresTerminal(t *testing.T) {
	term := newFakeTerm(40, 12)
	events, _ := keys()
	bridge := &memBridge{panicOnLoad: true}
	app := newTestApp(t, term, events, bridge, func(o *Options) { o.InitialView = "path" })

	assert.PanicsWithValue(t, "load exploded", func() { _ = app.Run() })
	assert.Equal(t, 1, term.cleanups)
	assert.False(t, term.active)
}

type failingEvents struct{}

func (failingEvents) Poll() (input.Event, error) { return input.None, errors.New("bad fd") }

func TestInputErrorEndsRun(t *testing.T) {
	term := newFakeTerm(40, 12)
	app := newTestApp(t, term, failingEvents{}, &memBridge{})

	err := app.Run()
	assert.ErrorContains(t, err, "failed to read input")
	assert.Equal(t, 1, term.cleanups)
}
