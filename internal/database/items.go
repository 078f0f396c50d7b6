package database

import (
	"context"
	"fmt"
	"strings"

	"shareit/internal/models"
)

const itemColumns = `id, name, description, available, owner_id, request_id`

func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	query := `INSERT INTO items (name, description, available, owner_id, request_id)
              VALUES (?, ?, ?, ?, ?)`

	result, err := db.ExecContext(ctx, query,
		item.Name, item.Description, item.Available, item.OwnerID, item.RequestID)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.ID = id
	return nil
}

func (db *DB) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ?`

	item, err := scanItem(db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get item %d: %w", id, translateErr(err))
	}
	return item, nil
}

func (db *DB) UpdateItem(ctx context.Context, item *models.Item) error {
	query := `UPDATE items SET name = ?, description = ?, available = ? WHERE id = ?`

	_, err := db.ExecContext(ctx, query, item.Name, item.Description, item.Available, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item %d: %w", item.ID, err)
	}
	return nil
}

func (db *DB) GetItemsByOwner(ctx context.Context, ownerID int64) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE owner_id = ? ORDER BY id`
	return db.queryItems(ctx, query, ownerID)
}

// SearchItems matches the text as a case-insensitive substring of the name or
// description, over available items only. Blank text is handled by the service.
func (db *DB) SearchItems(ctx context.Context, text string) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items
              WHERE available = 1
                AND (LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')
              ORDER BY id`

	pattern := "%" + escapeLike(text) + "%"
	return db.queryItems(ctx, query, pattern, pattern)
}

func (db *DB) GetItemsByRequest(ctx context.Context, requestID int64) ([]*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE request_id = ? ORDER BY id`
	return db.queryItems(ctx, query, requestID)
}

func (db *DB) queryItems(ctx context.Context, query string, args ...any) ([]*models.Item, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Available,
			&item.OwnerID, &item.RequestID); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// escapeLike lowercases the search text and escapes LIKE metacharacters so
// user input never acts as a wildcard.
func escapeLike(s string) string {
	s = strings.ToLower(s)
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	var item models.Item
	err := row.Scan(&item.ID, &item.Name, &item.Description, &item.Available,
		&item.OwnerID, &item.RequestID)
	if err != nil {
		return nil, err
	}
	return &item, nil
}
