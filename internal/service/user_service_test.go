package service

import (
	"context"
	"testing"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("OK", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewUserService(repo, testLogger())

		repo.On("CreateUser", ctx, mock.Anything).Return(nil).Once()

		user, err := svc.CreateUser(ctx, &models.User{Email: "a@example.com", Name: "Alice"})
		require.NoError(t, err)
		assert.Equal(t, "a@example.com", user.Email)
		repo.AssertExpectations(t)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewUserService(repo, testLogger())

		repo.On("CreateUser", ctx, mock.Anything).Return(domain.ErrConflict).Once()

		_, err := svc.CreateUser(ctx, &models.User{Email: "a@example.com", Name: "Alice"})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("InvalidInput", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewUserService(repo, testLogger())

		_, err := svc.CreateUser(ctx, &models.User{Email: "", Name: "Alice"})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)

		_, err = svc.CreateUser(ctx, &models.User{Email: "not-an-email", Name: "Alice"})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)

		_, err = svc.CreateUser(ctx, &models.User{Email: "a@example.com", Name: " "})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)

		repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})
}

func TestUserServiceUpdate(t *testing.T) {
	ctx := context.Background()
	stored := func() *models.User {
		return &models.User{ID: 1, Email: "a@example.com", Name: "Alice"}
	}

	t.Run("PatchName", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewUserService(repo, testLogger())

		repo.On("GetUser", ctx, int64(1)).Return(stored(), nil).Once()
		repo.On("UpdateUser", ctx, mock.MatchedBy(func(u *models.User) bool {
			return u.Name == "Alicia" && u.Email == "a@example.com"
		})).Return(nil).Once()

		user, err := svc.UpdateUser(ctx, &models.UpdateUserRequest{Name: strPtr("Alicia")}, 1)
		require.NoError(t, err)
		assert.Equal(t, "Alicia", user.Name)
		repo.AssertExpectations(t)
	})

	t.Run("EmailTakenByAnother", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewUserService(repo, testLogger())

		other := &models.User{ID: 2, Email: "b@example.com", Name: "Bob"}
		repo.On("GetUser", ctx, int64(1)).Return(stored(), nil).Once()
		repo.On("GetUserByEmail", ctx, "b@example.com").Return(other, nil).Once()

		_, err := svc.UpdateUser(ctx, &models.UpdateUserRequest{Email: strPtr("b@example.com")}, 1)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("OwnEmailResubmitted", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewUserService(repo, testLogger())

		repo.On("GetUser", ctx, int64(1)).Return(stored(), nil).Once()
		repo.On("UpdateUser", ctx, mock.Anything).Return(nil).Once()

		_, err := svc.UpdateUser(ctx, &models.UpdateUserRequest{Email: strPtr("a@example.com")}, 1)
		assert.NoError(t, err)
		repo.AssertNotCalled(t, "GetUserByEmail", mock.Anything, mock.Anything)
	})

	t.Run("FreeEmail", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewUserService(repo, testLogger())

		repo.On("GetUser", ctx, int64(1)).Return(stored(), nil).Once()
		repo.On("GetUserByEmail", ctx, "new@example.com").Return(nil, domain.ErrNotFound).Once()
		repo.On("UpdateUser", ctx, mock.MatchedBy(func(u *models.User) bool {
			return u.Email == "new@example.com"
		})).Return(nil).Once()

		user, err := svc.UpdateUser(ctx, &models.UpdateUserRequest{Email: strPtr("new@example.com")}, 1)
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", user.Email)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewUserService(repo, testLogger())

		repo.On("GetUser", ctx, int64(9)).Return(nil, domain.ErrNotFound).Once()

		_, err := svc.UpdateUser(ctx, &models.UpdateUserRequest{Name: strPtr("X")}, 9)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestUserServiceDelete(t *testing.T) {
	repo := new(mockRepo)
	svc := NewUserService(repo, testLogger())
	ctx := context.Background()

	repo.On("DeleteUser", ctx, int64(1)).Return(nil).Once()
	assert.NoError(t, svc.DeleteUser(ctx, 1))
	repo.AssertExpectations(t)
}
