package tui

import (
	"context"

	"github.com/kevinzwang/shellcfg/internal/view"
)

// Views every session has. All other views are list views supplied by the
// caller.
const (
	ViewMain view.ID = "main"
	ViewHelp view.ID = "help"
)

// ViewInfo is a list view shown in the main menu.
type ViewInfo struct {
	ID    view.ID
	Title string
}

// ItemAction is a mutation the UI asks the data bridge to perform.
type ItemAction int

const (
	ItemDelete ItemAction = iota + 1
	ItemToggle
)

func (a ItemAction) String() string {
	switch a {
	case ItemDelete:
		return "delete"
	case ItemToggle:
		return "toggle"
	}
	return "unknown"
}

// DataBridge is everything the UI knows about the data it shows: a list of
// display strings per view and a way to change one of them by index.
type DataBridge interface {
	LoadItems(ctx context.Context, id view.ID) ([]string, error)
	PerformAction(ctx context.Context, id view.ID, action ItemAction, index int) error
}

// Counter is implemented by bridges that can report item counts for the
// main menu without loading every list.
type Counter interface {
	CountItems(ctx context.Context) (map[view.ID]int, error)
}
