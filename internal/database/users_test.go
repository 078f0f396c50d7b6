package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shareit/internal/domain"
	"shareit/internal/models"
)

func TestCreateAndGetUser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "alice@example.com", "Alice")
	assert.NotZero(t, user.ID)

	got, err := db.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, "Alice", got.Name)
}

func TestGetUserNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetUser(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	createTestUser(t, db, "alice@example.com", "Alice")

	err := db.CreateUser(ctx, &models.User{Email: "alice@example.com", Name: "Other"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestGetUserByEmailCaseSensitive(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "Alice@Example.com", "Alice")

	got, err := db.GetUserByEmail(ctx, "Alice@Example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = db.GetUserByEmail(ctx, "alice@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateUser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "alice@example.com", "Alice")
	user.Email = "alice@new.com"
	user.Name = "Alice B."
	require.NoError(t, db.UpdateUser(ctx, user))

	got, err := db.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@new.com", got.Email)
	assert.Equal(t, "Alice B.", got.Name)
}

func TestDeleteUserIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "alice@example.com", "Alice")
	require.NoError(t, db.DeleteUser(ctx, user.ID))

	_, err := db.GetUser(ctx, user.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// second delete is a no-op, not an error
	require.NoError(t, db.DeleteUser(ctx, user.ID))
}

func TestDeleteUserReferencedConflict(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com", "Owner")
	createTestItem(t, db, owner.ID, "drill", true)

	err := db.DeleteUser(ctx, owner.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	// the user survives the rejected delete
	got, err := db.GetUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got.ID)
}

func TestGetAllUsers(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	createTestUser(t, db, "a@example.com", "A")
	createTestUser(t, db, "b@example.com", "B")

	users, err := db.GetAllUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "a@example.com", users[0].Email)
	assert.Equal(t, "b@example.com", users[1].Email)
}
