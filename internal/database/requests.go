package database

import (
	"context"
	"fmt"

	"shareit/internal/models"
)

func (db *DB) CreateRequest(ctx context.Context, request *models.ItemRequest) error {
	query := `INSERT INTO requests (description, requester_id, created) VALUES (?, ?, ?)`

	result, err := db.ExecContext(ctx, query,
		request.Description, request.RequesterID, fmtTime(request.Created))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	request.ID = id
	return nil
}

func (db *DB) GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error) {
	query := `SELECT id, description, requester_id, created FROM requests WHERE id = ?`

	var request models.ItemRequest
	var createdRaw string
	err := db.QueryRowContext(ctx, query, id).Scan(
		&request.ID, &request.Description, &request.RequesterID, &createdRaw)
	if err != nil {
		return nil, fmt.Errorf("failed to get request %d: %w", id, translateErr(err))
	}
	if request.Created, err = parseTime(createdRaw); err != nil {
		return nil, err
	}
	return &request, nil
}

// GetRequestsByUser returns the user's own requests, newest first. Created
// timestamps have second precision, so id breaks ties in insertion order.
func (db *DB) GetRequestsByUser(ctx context.Context, userID int64) ([]*models.ItemRequest, error) {
	query := `SELECT id, description, requester_id, created FROM requests
              WHERE requester_id = ? ORDER BY created DESC, id DESC`
	return db.queryRequests(ctx, query, userID)
}

// GetOtherUsersRequests returns everyone else's requests, newest first,
// paginated.
func (db *DB) GetOtherUsersRequests(ctx context.Context, userID int64, limit, offset int) ([]*models.ItemRequest, error) {
	query := `SELECT id, description, requester_id, created FROM requests
              WHERE requester_id != ? ORDER BY created DESC, id DESC LIMIT ? OFFSET ?`
	return db.queryRequests(ctx, query, userID, limit, offset)
}

func (db *DB) queryRequests(ctx context.Context, query string, args ...any) ([]*models.ItemRequest, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.ItemRequest
	for rows.Next() {
		var request models.ItemRequest
		var createdRaw string
		if err := rows.Scan(&request.ID, &request.Description,
			&request.RequesterID, &createdRaw); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		if request.Created, err = parseTime(createdRaw); err != nil {
			return nil, err
		}
		requests = append(requests, &request)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}
