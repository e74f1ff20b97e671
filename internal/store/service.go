// Package store is the item service behind both the CLI and the TUI. It
// validates entries per view and keeps them in the sqlite database.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kevinzwang/shellcfg/internal/database"
	"github.com/kevinzwang/shellcfg/internal/tui"
	"github.com/kevinzwang/shellcfg/internal/view"
)

// View IDs. Main and help have no items.
const (
	ViewMain        = tui.ViewMain
	ViewPath        view.ID = "path"
	ViewAliases     view.ID = "aliases"
	ViewConstants   view.ID = "constants"
	ViewCompletions view.ID = "completions"
	ViewPlugins     view.ID = "plugins"
	ViewHelp        = tui.ViewHelp
)

var (
	ErrUnknownView       = errors.New("unknown view")
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrNotFound          = database.ErrNotFound
	ErrDuplicate         = database.ErrDuplicate
	ErrUnsupportedAction = errors.New("unsupported action")
)

// Views returns the list views in menu order.
func Views() []tui.ViewInfo {
	return []tui.ViewInfo{
		{ID: ViewPath, Title: "PATH"},
		{ID: ViewAliases, Title: "Aliases"},
		{ID: ViewConstants, Title: "Constants"},
		{ID: ViewCompletions, Title: "Completions"},
		{ID: ViewPlugins, Title: "Plugins"},
	}
}

// IsListView reports whether id names a view that holds items.
func IsListView(id view.ID) bool {
	for _, v := range Views() {
		if v.ID == id {
			return true
		}
	}
	return false
}

// Validate checks value against the rules of the view it is added to.
func Validate(id view.ID, value string) error {
	switch id {
	case ViewPath:
		return ValidatePath(value)
	case ViewAliases:
		return ValidateAssignment(value, true)
	case ViewConstants:
		return ValidateAssignment(value, false)
	case ViewCompletions, ViewPlugins:
		return ValidateName(value)
	}
	return fmt.Errorf("%w: %q", ErrUnknownView, id)
}

// Service manages items
type Service struct {
	db  *database.DB
	now func() time.Time
}

// NewService creates a new item service
func NewService(db *database.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// Add validates value and appends it to the view
func (s *Service) Add(ctx context.Context, id view.ID, value string) (*Item, error) {
	if err := Validate(id, value); err != nil {
		if errors.Is(err, ErrUnknownView) {
			return nil, err
		}
		return nil, fmt.Errorf("invalid %s entry: %w", id, err)
	}

	item := &Item{
		ID:        uuid.New().String(),
		View:      id,
		Value:     value,
		Enabled:   true,
		CreatedAt: s.now(),
	}

	dbi := item.toDBItem()
	if err := s.db.InsertItem(ctx, dbi); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, fmt.Errorf("%q is already in %s: %w", value, id, err)
		}
		return nil, fmt.Errorf("failed to save item: %w", err)
	}
	item.Position = dbi.Position

	return item, nil
}

// List returns the items of a view in display order
func (s *Service) List(ctx context.Context, id view.ID) ([]*Item, error) {
	if !IsListView(id) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, id)
	}

	dbItems, err := s.db.ListItems(ctx, string(id))
	if err != nil {
		return nil, err
	}

	items := make([]*Item, len(dbItems))
	for i, dbi := range dbItems {
		items[i] = fromDBItem(dbi)
	}
	return items, nil
}

// At returns the item at a zero-based display index
func (s *Service) At(ctx context.Context, id view.ID, index int) (*Item, error) {
	items, err := s.List(ctx, id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(items) {
		return nil, fmt.Errorf("%w: %d (%s has %d items)", ErrIndexOutOfRange, index, id, len(items))
	}
	return items[index], nil
}

// Remove deletes the item at a zero-based display index
func (s *Service) Remove(ctx context.Context, id view.ID, index int) (*Item, error) {
	item, err := s.At(ctx, id, index)
	if err != nil {
		return nil, err
	}

	if err := s.db.DeleteItem(ctx, item.ID); err != nil {
		return nil, fmt.Errorf("failed to delete item: %w", err)
	}
	return item, nil
}

// Toggle flips the enabled flag of the item at a zero-based display index
func (s *Service) Toggle(ctx context.Context, id view.ID, index int) (*Item, error) {
	item, err := s.At(ctx, id, index)
	if err != nil {
		return nil, err
	}

	if err := s.db.SetEnabled(ctx, item.ID, !item.Enabled); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	item.Enabled = !item.Enabled
	now := s.now()
	item.UpdatedAt = &now
	return item, nil
}

// LoadItems returns the display strings of a view for the TUI
func (s *Service) LoadItems(ctx context.Context, id view.ID) ([]string, error) {
	items, err := s.List(ctx, id)
	if err != nil {
		return nil, err
	}

	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = it.Display()
	}
	return lines, nil
}

// PerformAction applies a TUI mutation to the item at index
func (s *Service) PerformAction(ctx context.Context, id view.ID, action tui.ItemAction, index int) error {
	var err error
	switch action {
	case tui.ItemDelete:
		_, err = s.Remove(ctx, id, index)
	case tui.ItemToggle:
		_, err = s.Toggle(ctx, id, index)
	default:
		err = fmt.Errorf("%w: %v", ErrUnsupportedAction, action)
	}
	return err
}

// CountItems returns the number of items per list view, including empty
// views.
func (s *Service) CountItems(ctx context.Context) (map[view.ID]int, error) {
	raw, err := s.db.CountItems(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[view.ID]int, len(Views()))
	for _, v := range Views() {
		counts[v.ID] = raw[string(v.ID)]
	}
	return counts, nil
}
