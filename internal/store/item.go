package store

import (
	"time"

	"github.com/kevinzwang/shellcfg/internal/database"
	"github.com/kevinzwang/shellcfg/internal/view"
)

// Item is one entry of a list view: a PATH directory, an alias, an
// exported constant, a completion or a plugin.
type Item struct {
	ID        string
	View      view.ID
	Value     string
	Enabled   bool
	Position  int
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// Display is the item as shown in the TUI list.
func (it *Item) Display() string {
	if it.Enabled {
		return it.Value
	}
	return it.Value + disabledSuffix
}

const disabledSuffix = "  (disabled)"

func (it *Item) toDBItem() *database.Item {
	return &database.Item{
		ID:        it.ID,
		View:      string(it.View),
		Value:     it.Value,
		Enabled:   it.Enabled,
		Position:  it.Position,
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
	}
}

func fromDBItem(dbi *database.Item) *Item {
	return &Item{
		ID:        dbi.ID,
		View:      view.ID(dbi.View),
		Value:     dbi.Value,
		Enabled:   dbi.Enabled,
		Position:  dbi.Position,
		CreatedAt: dbi.CreatedAt,
		UpdatedAt: dbi.UpdatedAt,
	}
}
