package database

import (
	"context"
	"fmt"

	"shareit/internal/models"
)

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (email, name) VALUES (?, ?)`

	result, err := db.ExecContext(ctx, query, user.Email, user.Name)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", translateErr(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	user.ID = id
	return nil
}

func (db *DB) GetUser(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT id, email, name FROM users WHERE id = ?`

	var user models.User
	err := db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Email, &user.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, translateErr(err))
	}
	return &user, nil
}

// GetUserByEmail does a case-sensitive exact match; the email column uses the
// default BINARY collation.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, email, name FROM users WHERE email = ?`

	var user models.User
	err := db.QueryRowContext(ctx, query, email).Scan(&user.ID, &user.Email, &user.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", translateErr(err))
	}
	return &user, nil
}

func (db *DB) UpdateUser(ctx context.Context, user *models.User) error {
	query := `UPDATE users SET email = ?, name = ? WHERE id = ?`

	_, err := db.ExecContext(ctx, query, user.Email, user.Name, user.ID)
	if err != nil {
		return fmt.Errorf("failed to update user %d: %w", user.ID, translateErr(err))
	}
	return nil
}

// DeleteUser is idempotent: deleting an absent user is not an error. A user
// still referenced by items, bookings, requests or comments cannot be removed.
func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	query := `DELETE FROM users WHERE id = ?`

	_, err := db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, translateErr(err))
	}
	return nil
}

func (db *DB) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	query := `SELECT id, email, name FROM users ORDER BY id`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Email, &user.Name); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}
