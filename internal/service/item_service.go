package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// ItemService manages items, their enriched read views and comments.
type ItemService struct {
	items    domain.ItemRepository
	users    domain.UserRepository
	bookings domain.BookingRepository
	comments domain.CommentRepository
	requests domain.RequestRepository
	logger   *zerolog.Logger
}

func NewItemService(items domain.ItemRepository, users domain.UserRepository, bookings domain.BookingRepository, comments domain.CommentRepository, requests domain.RequestRepository, logger *zerolog.Logger) *ItemService {
	return &ItemService{
		items:    items,
		users:    users,
		bookings: bookings,
		comments: comments,
		requests: requests,
		logger:   logger,
	}
}

func (s *ItemService) CreateItem(ctx context.Context, req *models.CreateItemRequest, ownerID int64) (*models.Item, error) {
	if _, err := s.users.GetUser(ctx, ownerID); err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: item name cannot be blank", domain.ErrInvalidRequest)
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("%w: item description cannot be blank", domain.ErrInvalidRequest)
	}
	if req.Available == nil {
		return nil, fmt.Errorf("%w: item availability is required", domain.ErrInvalidRequest)
	}

	if req.RequestID != nil {
		if _, err := s.requests.GetRequest(ctx, *req.RequestID); err != nil {
			return nil, err
		}
	}

	item := &models.Item{
		Name:        req.Name,
		Description: req.Description,
		Available:   *req.Available,
		OwnerID:     ownerID,
		RequestID:   req.RequestID,
	}

	if err := s.items.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", ownerID).Msg("item created")
	return item, nil
}

// UpdateItem patches the present fields only. A non-owner gets not-found so
// other users' item ids cannot be probed.
func (s *ItemService) UpdateItem(ctx context.Context, req *models.UpdateItemRequest, itemID, userID int64) (*models.Item, error) {
	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if item.OwnerID != userID {
		return nil, fmt.Errorf("%w: item %d not found", domain.ErrNotFound, itemID)
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Available != nil {
		item.Available = *req.Available
	}

	if err := s.items.UpdateItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", item.ID).Msg("item updated")
	return item, nil
}

// GetItem returns the enriched view: comments for everyone, the last and next
// approved bookings only when the caller owns the item.
func (s *ItemService) GetItem(ctx context.Context, itemID, userID int64) (*models.ItemDTO, error) {
	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return s.toItemDTO(ctx, item, userID)
}

func (s *ItemService) GetOwnerItems(ctx context.Context, ownerID int64, from, size int) ([]*models.ItemDTO, error) {
	if _, err := s.users.GetUser(ctx, ownerID); err != nil {
		return nil, err
	}

	limit, offset, err := pageWindow(from, size)
	if err != nil {
		return nil, err
	}

	items, err := s.items.GetItemsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	dtos := make([]*models.ItemDTO, 0, len(items))
	for _, item := range pageSlice(items, limit, offset) {
		dto, err := s.toItemDTO(ctx, item, ownerID)
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, dto)
	}
	return dtos, nil
}

// SearchItems matches available items by name or description. Blank text is a
// valid query for nothing.
func (s *ItemService) SearchItems(ctx context.Context, text string, from, size int) ([]*models.ItemDTO, error) {
	limit, offset, err := pageWindow(from, size)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(text) == "" {
		return []*models.ItemDTO{}, nil
	}

	items, err := s.items.SearchItems(ctx, text)
	if err != nil {
		return nil, err
	}

	dtos := make([]*models.ItemDTO, 0, len(items))
	for _, item := range pageSlice(items, limit, offset) {
		dtos = append(dtos, item.ToDTO())
	}
	return dtos, nil
}

// AddComment accepts a comment only from a user with a finished approved
// booking of the item.
func (s *ItemService) AddComment(ctx context.Context, req *models.CreateCommentRequest, itemID, userID int64) (*models.CommentDTO, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("%w: comment text cannot be blank", domain.ErrInvalidRequest)
	}

	author, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if _, err := s.items.GetItem(ctx, itemID); err != nil {
		return nil, err
	}

	past, err := s.bookings.GetPastApprovedBookings(ctx, itemID, userID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if len(past) == 0 {
		return nil, fmt.Errorf("%w: user has not booked this item", domain.ErrInvalidRequest)
	}

	comment := &models.Comment{
		Text:       req.Text,
		ItemID:     itemID,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Created:    time.Now().UTC().Truncate(time.Second),
	}

	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", itemID).Int64("author_id", userID).Msg("comment added")
	return comment.ToDTO(), nil
}

func (s *ItemService) toItemDTO(ctx context.Context, item *models.Item, userID int64) (*models.ItemDTO, error) {
	dto := item.ToDTO()

	if item.OwnerID == userID {
		now := time.Now().UTC()

		last, err := s.bookings.GetLastApprovedBooking(ctx, item.ID, now)
		if err != nil {
			return nil, err
		}
		if last != nil {
			dto.LastBooking = &models.BookingRef{ID: last.ID, BookerID: last.BookerID}
		}

		next, err := s.bookings.GetNextApprovedBooking(ctx, item.ID, now)
		if err != nil {
			return nil, err
		}
		if next != nil {
			dto.NextBooking = &models.BookingRef{ID: next.ID, BookerID: next.BookerID}
		}
	}

	comments, err := s.comments.GetCommentsByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	for _, comment := range comments {
		dto.Comments = append(dto.Comments, *comment.ToDTO())
	}
	return dto, nil
}

func pageSlice[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
