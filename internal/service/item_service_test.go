package service

import (
	"context"
	"testing"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }
func int64Ptr(i int64) *int64 { return &i }

func newItemService(repo *mockRepo) *ItemService {
	return NewItemService(repo, repo, repo, repo, repo, testLogger())
}

func TestItemServiceCreate(t *testing.T) {
	ctx := context.Background()
	owner := &models.User{ID: 1, Email: "owner@example.com", Name: "Owner"}

	t.Run("OK", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newItemService(repo)

		repo.On("GetUser", ctx, int64(1)).Return(owner, nil).Once()
		repo.On("CreateItem", ctx, mock.Anything).Return(nil).Once()

		item, err := svc.CreateItem(ctx, &models.CreateItemRequest{
			Name: "drill", Description: "a powerful drill", Available: boolPtr(true),
		}, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), item.OwnerID)
		repo.AssertExpectations(t)
	})

	t.Run("ValidationFailures", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newItemService(repo)
		repo.On("GetUser", ctx, int64(1)).Return(owner, nil)

		_, err := svc.CreateItem(ctx, &models.CreateItemRequest{Name: " ", Description: "d", Available: boolPtr(true)}, 1)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)

		_, err = svc.CreateItem(ctx, &models.CreateItemRequest{Name: "n", Description: "", Available: boolPtr(true)}, 1)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)

		_, err = svc.CreateItem(ctx, &models.CreateItemRequest{Name: "n", Description: "d"}, 1)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("UnknownOwner", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newItemService(repo)
		repo.On("GetUser", ctx, int64(9)).Return(nil, domain.ErrNotFound).Once()

		_, err := svc.CreateItem(ctx, &models.CreateItemRequest{Name: "n", Description: "d", Available: boolPtr(true)}, 9)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("AnswersRequest", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newItemService(repo)

		repo.On("GetUser", ctx, int64(1)).Return(owner, nil).Once()
		repo.On("GetRequest", ctx, int64(3)).Return(&models.ItemRequest{ID: 3}, nil).Once()
		repo.On("CreateItem", ctx, mock.Anything).Return(nil).Once()

		item, err := svc.CreateItem(ctx, &models.CreateItemRequest{
			Name: "drill", Description: "d", Available: boolPtr(true), RequestID: int64Ptr(3),
		}, 1)
		require.NoError(t, err)
		require.NotNil(t, item.RequestID)
		assert.Equal(t, int64(3), *item.RequestID)
	})

	t.Run("AnswersMissingRequest", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newItemService(repo)

		repo.On("GetUser", ctx, int64(1)).Return(owner, nil).Once()
		repo.On("GetRequest", ctx, int64(3)).Return(nil, domain.ErrNotFound).Once()

		_, err := svc.CreateItem(ctx, &models.CreateItemRequest{
			Name: "drill", Description: "d", Available: boolPtr(true), RequestID: int64Ptr(3),
		}, 1)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestItemServiceUpdate(t *testing.T) {
	ctx := context.Background()
	stored := func() *models.Item {
		return &models.Item{ID: 5, Name: "drill", Description: "old", Available: true, OwnerID: 1}
	}

	t.Run("PatchesPresentFields", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newItemService(repo)

		repo.On("GetItem", ctx, int64(5)).Return(stored(), nil).Once()
		repo.On("UpdateItem", ctx, mock.MatchedBy(func(i *models.Item) bool {
			return i.Name == "drill" && i.Description == "new" && !i.Available
		})).Return(nil).Once()

		item, err := svc.UpdateItem(ctx, &models.UpdateItemRequest{
			Description: strPtr("new"), Available: boolPtr(false),
		}, 5, 1)
		require.NoError(t, err)
		assert.Equal(t, "new", item.Description)
		repo.AssertExpectations(t)
	})

	t.Run("NonOwnerGetsNotFound", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newItemService(repo)

		repo.On("GetItem", ctx, int64(5)).Return(stored(), nil).Once()

		_, err := svc.UpdateItem(ctx, &models.UpdateItemRequest{Name: strPtr("x")}, 5, 2)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestItemServiceGet(t *testing.T) {
	ctx := context.Background()
	item := &models.Item{ID: 5, Name: "drill", Description: "d", Available: true, OwnerID: 1}

	t.Run("OwnerSeesBookings", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newItemService(repo)

		last := &models.Booking{ID: 10, BookerID: 2}
		next := &models.Booking{ID: 11, BookerID: 3}
		comments := []*models.Comment{{ID: 1, Text: "great", AuthorName: "Booker", Created: time.Now()}}

		repo.On("GetItem", ctx, int64(5)).Return(item, nil).Once()
		repo.On("GetLastApprovedBooking", ctx, int64(5), mock.Anything).Return(last, nil).Once()
		repo.On("GetNextApprovedBooking", ctx, int64(5), mock.Anything).Return(next, nil).Once()
		repo.On("GetCommentsByItem", ctx, int64(5)).Return(comments, nil).Once()

		dto, err := svc.GetItem(ctx, 5, 1)
		require.NoError(t, err)
		require.NotNil(t, dto.LastBooking)
		assert.Equal(t, int64(10), dto.LastBooking.ID)
		assert.Equal(t, int64(2), dto.LastBooking.BookerID)
		require.NotNil(t, dto.NextBooking)
		assert.Equal(t, int64(11), dto.NextBooking.ID)
		require.Len(t, dto.Comments, 1)
		assert.Equal(t, "Booker", dto.Comments[0].AuthorName)
	})

	t.Run("StrangerSeesNoBookings", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newItemService(repo)

		repo.On("GetItem", ctx, int64(5)).Return(item, nil).Once()
		repo.On("GetCommentsByItem", ctx, int64(5)).Return([]*models.Comment{}, nil).Once()

		dto, err := svc.GetItem(ctx, 5, 2)
		require.NoError(t, err)
		assert.Nil(t, dto.LastBooking)
		assert.Nil(t, dto.NextBooking)
		assert.NotNil(t, dto.Comments)
		// booking lookups never happened
		repo.AssertNotCalled(t, "GetLastApprovedBooking", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestItemServiceSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("BlankTextReturnsEmpty", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newItemService(repo)

		dtos, err := svc.SearchItems(ctx, "   ", 0, 10)
		require.NoError(t, err)
		assert.Empty(t, dtos)
		repo.AssertNotCalled(t, "SearchItems", mock.Anything, mock.Anything)
	})

	t.Run("PagesResults", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newItemService(repo)

		found := []*models.Item{
			{ID: 1, Name: "drill a", Available: true},
			{ID: 2, Name: "drill b", Available: true},
			{ID: 3, Name: "drill c", Available: true},
		}
		repo.On("SearchItems", ctx, "drill").Return(found, nil).Once()

		dtos, err := svc.SearchItems(ctx, "drill", 2, 2)
		require.NoError(t, err)
		require.Len(t, dtos, 1)
		assert.Equal(t, int64(3), dtos[0].ID)
	})
}

func TestItemServiceAddComment(t *testing.T) {
	ctx := context.Background()
	author := &models.User{ID: 2, Email: "booker@example.com", Name: "Booker"}
	item := &models.Item{ID: 5, Name: "drill", Available: true, OwnerID: 1}

	t.Run("OK", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newItemService(repo)

		past := []*models.Booking{{ID: 10, Status: models.StatusApproved}}
		repo.On("GetUser", ctx, int64(2)).Return(author, nil).Once()
		repo.On("GetItem", ctx, int64(5)).Return(item, nil).Once()
		repo.On("GetPastApprovedBookings", ctx, int64(5), int64(2), mock.Anything).Return(past, nil).Once()
		repo.On("CreateComment", ctx, mock.MatchedBy(func(c *models.Comment) bool {
			return c.Text == "worked well" && c.AuthorName == "Booker"
		})).Return(nil).Once()

		dto, err := svc.AddComment(ctx, &models.CreateCommentRequest{Text: "worked well"}, 5, 2)
		require.NoError(t, err)
		assert.Equal(t, "Booker", dto.AuthorName)
		assert.False(t, dto.Created.IsZero())
		repo.AssertExpectations(t)
	})

	t.Run("NoFinishedBooking", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newItemService(repo)

		repo.On("GetUser", ctx, int64(2)).Return(author, nil).Once()
		repo.On("GetItem", ctx, int64(5)).Return(item, nil).Once()
		repo.On("GetPastApprovedBookings", ctx, int64(5), int64(2), mock.Anything).Return([]*models.Booking{}, nil).Once()

		_, err := svc.AddComment(ctx, &models.CreateCommentRequest{Text: "nice"}, 5, 2)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})

	t.Run("BlankText", func(t *testing.T) {
		repo := new(mockRepo)
		svc := newItemService(repo)

		_, err := svc.AddComment(ctx, &models.CreateCommentRequest{Text: "  "}, 5, 2)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})
}
