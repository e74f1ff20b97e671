// Package view tracks which view is on screen, the selected row and the
// scroll window over it.
package view

// ID names a view.
type ID string

// State is the navigation and selection state of the UI. It is owned by the
// main loop and not safe for concurrent use.
//
// Navigation is a star: views are entered from anywhere and GoBack swaps
// with the single remembered previous view. There is no history stack.
type State struct {
	current  ID
	previous ID

	selected int
	scroll   int

	width  int
	height int
	chrome int // rows taken by borders, header and footer

	dirty   bool
	running bool

	items map[ID][]string
}

// New returns the state for a fresh session showing initial. chrome is the
// number of terminal rows not available to the item list.
func New(initial ID, width, height, chrome int) *State {
	return &State{
		current:  initial,
		previous: initial,
		width:    width,
		height:   height,
		chrome:   chrome,
		dirty:    true,
		running:  true,
		items:    make(map[ID][]string),
	}
}

func (s *State) Current() ID   { return s.current }
func (s *State) Previous() ID  { return s.previous }
func (s *State) Selected() int { return s.selected }
func (s *State) Scroll() int   { return s.scroll }
func (s *State) Dirty() bool   { return s.dirty }
func (s *State) Running() bool { return s.running }

// Size returns the terminal size the state was last told about.
func (s *State) Size() (width, height int) { return s.width, s.height }

// VisibleHeight is the number of list rows that fit on screen, at least 1.
func (s *State) VisibleHeight() int {
	return max(1, s.height-s.chrome)
}

// GotoView remembers the current view as previous and switches to target
// with the selection and scroll reset.
func (s *State) GotoView(target ID) {
	s.previous = s.current
	s.current = target
	s.reset()
}

// GoBack swaps the current and previous views. Calling it twice returns to
// where it started.
func (s *State) GoBack() {
	s.current, s.previous = s.previous, s.current
	s.reset()
}

func (s *State) reset() {
	s.selected = 0
	s.scroll = 0
	s.dirty = true
}

// MoveSelection moves the selection by delta over count items, wrapping in
// both directions, and scrolls so the selection stays visible. It does
// nothing when there are no items.
func (s *State) MoveSelection(delta, count int) {
	if count <= 0 {
		return
	}
	s.selected = ((s.selected+delta)%count + count) % count
	s.follow()
	s.dirty = true
}

// SelectIndex selects i clamped to [0, count) without wrapping. Used for
// jumps such as Home, End and paging.
func (s *State) SelectIndex(i, count int) {
	if count <= 0 {
		return
	}
	s.selected = min(max(i, 0), count-1)
	s.follow()
	s.dirty = true
}

// ClampSelection pulls the selection back into range after the list shrank.
func (s *State) ClampSelection(count int) {
	if count <= 0 {
		s.selected = 0
		s.scroll = 0
		s.dirty = true
		return
	}
	if s.selected >= count {
		s.selected = count - 1
	}
	s.follow()
	s.dirty = true
}

// SetSize records a new terminal size and keeps the selection visible.
func (s *State) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.follow()
	s.dirty = true
}

// follow adjusts the scroll offset so that
// scroll <= selected < scroll+VisibleHeight().
func (s *State) follow() {
	visible := s.VisibleHeight()
	if s.selected < s.scroll {
		s.scroll = s.selected
	}
	if s.selected >= s.scroll+visible {
		s.scroll = s.selected - visible + 1
	}
	if s.scroll < 0 {
		s.scroll = 0
	}
}

func (s *State) MarkDirty()  { s.dirty = true }
func (s *State) ClearDirty() { s.dirty = false }

// Quit stops the main loop after the current tick.
func (s *State) Quit() { s.running = false }

// Items returns the cached items of a view and whether any were stored.
func (s *State) Items(id ID) ([]string, bool) {
	items, ok := s.items[id]
	return items, ok
}

// SetItems caches the items of a view.
func (s *State) SetItems(id ID, items []string) {
	if s.items == nil {
		s.items = make(map[ID][]string)
	}
	s.items[id] = items
}

// ClearItems drops the cached items of a view so the next visit reloads.
func (s *State) ClearItems(id ID) {
	delete(s.items, id)
}

// ClearAllItems drops every cached list.
func (s *State) ClearAllItems() {
	clear(s.items)
}

// Close releases the item cache.
func (s *State) Close() {
	s.items = nil
}
