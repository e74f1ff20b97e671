// Package tui runs the interactive interface: the single-threaded loop that
// checks the signal flags, redraws the screen when something changed, polls
// one key and dispatches it.
package tui

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/atotto/clipboard"
	"github.com/muesli/termenv"

	"github.com/kevinzwang/shellcfg/internal/input"
	"github.com/kevinzwang/shellcfg/internal/keymap"
	"github.com/kevinzwang/shellcfg/internal/screen"
	"github.com/kevinzwang/shellcfg/internal/terminal"
	"github.com/kevinzwang/shellcfg/internal/theme"
	"github.com/kevinzwang/shellcfg/internal/view"
)

// Terminal is the part of the terminal controller the loop drives.
type Terminal interface {
	io.Writer
	Init() error
	Cleanup() error
	Size() (width, height int)
}

// EventSource yields one key event per call, or input.None.
type EventSource interface {
	Poll() (input.Event, error)
}

// Signals are the flags set by the signal handlers. The zero value uses the
// terminal package's flags.
type Signals struct {
	ResizePending        func() bool
	ClearResize          func()
	TerminationRequested func() bool
}

func (s Signals) withDefaults() Signals {
	if s.ResizePending == nil {
		s.ResizePending = terminal.ResizePending
	}
	if s.ClearResize == nil {
		s.ClearResize = terminal.ClearResize
	}
	if s.TerminationRequested == nil {
		s.TerminationRequested = terminal.TerminationRequested
	}
	return s
}

// ResizeEvent carries the terminal size read after a resize signal.
type ResizeEvent struct {
	Width  int
	Height int
}

// Options configure an App. Terminal, Events and Bridge are required.
type Options struct {
	Context  context.Context // passed to the bridge
	Terminal Terminal
	Events   EventSource
	Bridge   DataBridge
	Views    []ViewInfo

	InitialView view.ID
	Theme       *theme.Theme
	Keys        *keymap.KeyMap
	Logger      *slog.Logger
	Clipboard   func(text string) error
	Signals     Signals
}

// chromeRows are the rows around the list: top border, bottom border and
// footer.
const chromeRows = 3

// App is the main loop and everything it owns.
type App struct {
	ctx     context.Context
	term    Terminal
	events  EventSource
	bridge  DataBridge
	views   []ViewInfo
	initial view.ID

	theme     *theme.Theme
	styles    theme.Styles
	keys      keymap.KeyMap
	logger    *slog.Logger
	clipboard func(string) error
	signals   Signals

	screen *screen.Screen
	state  *view.State

	counts  map[view.ID]int
	confirm *pendingDelete
	status  statusLine
}

type pendingDelete struct {
	view  view.ID
	index int
	label string
}

type statusLine struct {
	text  string
	style screen.Style
}

// New creates an App. Nothing touches the terminal until Run.
func New(opts Options) (*App, error) {
	if opts.Terminal == nil || opts.Events == nil || opts.Bridge == nil {
		return nil, errors.New("terminal, event source and data bridge are required")
	}

	app := &App{
		ctx:       context.Background(),
		term:      opts.Terminal,
		events:    opts.Events,
		bridge:    opts.Bridge,
		views:     opts.Views,
		initial:   opts.InitialView,
		theme:     opts.Theme,
		logger:    opts.Logger,
		clipboard: opts.Clipboard,
		signals:   opts.Signals.withDefaults(),
	}

	if opts.Context != nil {
		app.ctx = opts.Context
	}
	if app.initial == "" {
		app.initial = ViewMain
	}
	if !app.knownView(app.initial) {
		return nil, fmt.Errorf("unknown initial view %q", app.initial)
	}
	if app.theme == nil {
		app.theme = theme.New(theme.DefaultPalette(), termenv.Ascii)
	}
	app.styles = app.theme.Styles()
	if opts.Keys != nil {
		app.keys = *opts.Keys
	} else {
		app.keys = keymap.Default()
	}
	if app.logger == nil {
		app.logger = slog.New(slog.DiscardHandler)
	}
	if app.clipboard == nil {
		app.clipboard = clipboard.WriteAll
	}

	return app, nil
}

func (a *App) knownView(id view.ID) bool {
	if id == ViewMain || id == ViewHelp {
		return true
	}
	return a.viewInfo(id) != nil
}

func (a *App) viewInfo(id view.ID) *ViewInfo {
	for i := range a.views {
		if a.views[i].ID == id {
			return &a.views[i]
		}
	}
	return nil
}

// Run takes over the terminal until the user quits or a termination signal
// arrives. The terminal is restored on every exit path, including panics,
// which are re-raised afterwards.
func (a *App) Run() (err error) {
	if err := a.term.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	defer func() {
		if cerr := a.term.Cleanup(); cerr != nil {
			a.logger.Error("terminal cleanup failed", "error", cerr)
			if err == nil {
				err = fmt.Errorf("failed to restore terminal: %w", cerr)
			}
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			_ = a.term.Cleanup()
			panic(r)
		}
	}()

	width, height := a.term.Size()
	a.screen = screen.New(width, height)
	a.state = view.New(a.initial, width, height, chromeRows)
	defer a.state.Close()

	a.logger.Info("tui started", "width", width, "height", height, "view", a.initial)

	for a.state.Running() {
		if err := a.tick(); err != nil {
			return err
		}
	}

	a.logger.Info("tui stopped")
	return nil
}

// tick runs one iteration: signals, then render and flush if dirty, then at
// most one key.
func (a *App) tick() error {
	if a.signals.TerminationRequested() {
		a.logger.Info("termination signal received")
		a.state.Quit()
		return nil
	}

	if a.signals.ResizePending() {
		a.signals.ClearResize()
		width, height := a.term.Size()
		a.handleResize(ResizeEvent{Width: width, Height: height})
	}

	if a.state.Dirty() {
		a.screen.Clear()
		a.render()
		if _, err := a.screen.Flush(a.term); err != nil {
			return fmt.Errorf("failed to draw screen: %w", err)
		}
		a.state.ClearDirty()
	}

	ev, err := a.events.Poll()
	if err != nil {
		if errors.Is(err, io.EOF) {
			a.logger.Info("input closed")
			a.state.Quit()
			return nil
		}
		return fmt.Errorf("failed to read input: %w", err)
	}
	if ev.IsNone() {
		return nil
	}
	a.handleEvent(ev)
	return nil
}

func (a *App) handleResize(ev ResizeEvent) {
	a.logger.Debug("resize", "width", ev.Width, "height", ev.Height)
	a.screen.Resize(ev.Width, ev.Height)
	a.state.SetSize(ev.Width, ev.Height)
}

func (a *App) handleEvent(ev input.Event) {
	if a.keys.Resolve(ev) == keymap.ActionQuit {
		a.state.Quit()
		return
	}
	if a.confirm != nil {
		a.handleConfirm(ev)
		return
	}

	if a.status.text != "" {
		a.status = statusLine{}
		a.state.MarkDirty()
	}

	current := a.state.Current()
	count := a.count(current)

	switch a.keys.Resolve(ev) {
	case keymap.ActionQuit:
		a.state.Quit()

	case keymap.ActionUp:
		a.state.MoveSelection(-1, count)
	case keymap.ActionDown:
		a.state.MoveSelection(1, count)
	case keymap.ActionPageUp:
		a.state.SelectIndex(a.state.Selected()-a.state.VisibleHeight(), count)
	case keymap.ActionPageDown:
		a.state.SelectIndex(a.state.Selected()+a.state.VisibleHeight(), count)
	case keymap.ActionHome:
		a.state.SelectIndex(0, count)
	case keymap.ActionEnd:
		a.state.SelectIndex(count-1, count)

	case keymap.ActionSelect:
		if current == ViewMain && count > 0 {
			a.gotoView(a.views[a.state.Selected()].ID)
		}
	case keymap.ActionBack:
		a.back()
	case keymap.ActionHelp:
		if current == ViewHelp {
			a.back()
		} else {
			a.gotoView(ViewHelp)
		}

	case keymap.ActionDelete:
		if a.isList(current) && count > 0 {
			items := a.items(current)
			a.confirm = &pendingDelete{
				view:  current,
				index: a.state.Selected(),
				label: items[a.state.Selected()],
			}
			a.state.MarkDirty()
		}
	case keymap.ActionToggle:
		if a.isList(current) && count > 0 {
			a.mutate(current, ItemToggle, a.state.Selected())
		}
	case keymap.ActionCopy:
		if a.isList(current) && count > 0 {
			a.copyItem(a.items(current)[a.state.Selected()])
		}

	case keymap.ActionReload:
		a.state.ClearAllItems()
		a.counts = nil
		a.state.ClampSelection(a.count(current))
		a.setStatus("Reloaded", a.styles.Status)
	case keymap.ActionRedraw:
		a.screen.Invalidate()
		a.state.MarkDirty()
	}
}

func (a *App) handleConfirm(ev input.Event) {
	pending := a.confirm
	a.confirm = nil
	a.state.MarkDirty()

	if !keymap.Matches(ev, a.keys.Confirm) {
		a.setStatus("Cancelled", a.styles.Status)
		return
	}
	if a.mutate(pending.view, ItemDelete, pending.index) {
		a.setStatus(fmt.Sprintf("Deleted %s", pending.label), a.styles.Success)
	}
}

func (a *App) gotoView(id view.ID) {
	a.logger.Debug("goto view", "from", a.state.Current(), "to", id)
	a.state.GotoView(id)
}

// back returns to the remembered view. A session started directly in a
// sub view has nothing remembered and falls back to the main menu.
func (a *App) back() {
	current := a.state.Current()
	if current == ViewMain {
		return
	}
	if a.state.Previous() == current {
		a.gotoView(ViewMain)
		return
	}
	a.state.GoBack()
}

func (a *App) isList(id view.ID) bool {
	return id != ViewMain && id != ViewHelp
}

// items returns the display strings of a list view, loading them through the
// bridge on first use. A failed load is reported in the footer and retried
// on the next render.
func (a *App) items(id view.ID) []string {
	if !a.isList(id) {
		return nil
	}
	if items, ok := a.state.Items(id); ok {
		return items
	}

	items, err := a.bridge.LoadItems(a.ctx, id)
	if err != nil {
		a.logger.Error("failed to load items", "view", id, "error", err)
		a.setStatus(fmt.Sprintf("Error: %v", err), a.styles.Error)
		return nil
	}
	a.state.SetItems(id, items)
	return items
}

// count is the number of selectable rows in a view.
func (a *App) count(id view.ID) int {
	switch id {
	case ViewMain:
		return len(a.views)
	case ViewHelp:
		return 0
	}
	return len(a.items(id))
}

// menuCounts returns item counts for the main menu, or nil when the bridge
// cannot report them.
func (a *App) menuCounts() map[view.ID]int {
	if a.counts != nil {
		return a.counts
	}
	counter, ok := a.bridge.(Counter)
	if !ok {
		return nil
	}
	counts, err := counter.CountItems(a.ctx)
	if err != nil {
		a.logger.Error("failed to count items", "error", err)
		return nil
	}
	a.counts = counts
	return counts
}

// mutate asks the bridge to change one item and reloads the view. It reports
// whether the bridge succeeded.
func (a *App) mutate(id view.ID, action ItemAction, index int) bool {
	if err := a.bridge.PerformAction(a.ctx, id, action, index); err != nil {
		a.logger.Error("item action failed", "view", id, "action", action, "index", index, "error", err)
		a.setStatus(fmt.Sprintf("Error: %v", err), a.styles.Error)
		return false
	}
	a.logger.Info("item changed", "view", id, "action", action, "index", index)

	a.state.ClearItems(id)
	a.counts = nil
	a.state.ClampSelection(a.count(id))
	return true
}

func (a *App) copyItem(text string) {
	if err := a.clipboard(text); err != nil {
		// No system clipboard; ask the terminal emulator instead
		a.logger.Debug("clipboard unavailable, using OSC 52", "error", err)
		if _, werr := io.WriteString(a.term, osc52(text)); werr != nil {
			a.setStatus(fmt.Sprintf("Error: %v", err), a.styles.Error)
			return
		}
	}
	a.setStatus("Copied to clipboard", a.styles.Success)
}

// osc52 is the escape sequence that sets the system clipboard through the
// terminal. It works over SSH because the local emulator interprets it.
func osc52(text string) string {
	return "\x1b]52;c;" + base64.StdEncoding.EncodeToString([]byte(text)) + "\x07"
}

func (a *App) setStatus(text string, style screen.Style) {
	a.status = statusLine{text: text, style: style}
	a.state.MarkDirty()
}
