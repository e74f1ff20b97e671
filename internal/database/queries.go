package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound  = errors.New("item not found")
	ErrDuplicate = errors.New("item already exists")
)

// Item is one entry of a configuration list such as a PATH directory or an
// alias definition
type Item struct {
	ID        string
	View      string
	Value     string
	Enabled   bool
	Position  int
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// InsertItem appends an item to the end of its view. Position is assigned
// here and written back to it.
func (db *DB) InsertItem(ctx context.Context, it *Item) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var next int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), -1) + 1 FROM items WHERE view = ?`, it.View,
	).Scan(&next)
	if err != nil {
		return fmt.Errorf("failed to find next position: %w", err)
	}

	query := `
		INSERT INTO items (id, view, value, enabled, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		it.ID, it.View, it.Value, it.Enabled, next, it.CreatedAt, it.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit item: %w", err)
	}
	it.Position = next
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// GetItem retrieves an item by its ID
func (db *DB) GetItem(ctx context.Context, id string) (*Item, error) {
	query := `
		SELECT id, view, value, enabled, position, created_at, updated_at
		FROM items
		WHERE id = ?
	`

	var it Item
	err := db.conn.QueryRowContext(ctx, query, id).Scan(
		&it.ID, &it.View, &it.Value, &it.Enabled, &it.Position, &it.CreatedAt, &it.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &it, nil
}

// ListItems returns the items of a view in display order
func (db *DB) ListItems(ctx context.Context, view string) ([]*Item, error) {
	query := `
		SELECT id, view, value, enabled, position, created_at, updated_at
		FROM items
		WHERE view = ?
		ORDER BY position ASC
	`

	rows, err := db.conn.QueryContext(ctx, query, view)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := []*Item{}
	for rows.Next() {
		var it Item
		err := rows.Scan(
			&it.ID, &it.View, &it.Value, &it.Enabled, &it.Position, &it.CreatedAt, &it.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, &it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return items, nil
}

// CountItems returns the number of items per view
func (db *DB) CountItems(ctx context.Context) (map[string]int, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT view, COUNT(*) FROM items GROUP BY view`)
	if err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var view string
		var n int
		if err := rows.Scan(&view, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[view] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating counts: %w", err)
	}
	return counts, nil
}

// SetEnabled switches an item on or off
func (db *DB) SetEnabled(ctx context.Context, id string, enabled bool) error {
	query := `
		UPDATE items
		SET enabled = ?, updated_at = ?
		WHERE id = ?
	`

	res, err := db.conn.ExecContext(ctx, query, enabled, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return requireRow(res)
}

// DeleteItem removes an item from the database
func (db *DB) DeleteItem(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
