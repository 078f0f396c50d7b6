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

// RequestService runs the item-request board: wishes for items that do not
// exist yet, answered by items created with a request reference.
type RequestService struct {
	requests domain.RequestRepository
	users    domain.UserRepository
	items    domain.ItemRepository
	logger   *zerolog.Logger
}

func NewRequestService(requests domain.RequestRepository, users domain.UserRepository, items domain.ItemRepository, logger *zerolog.Logger) *RequestService {
	return &RequestService{requests: requests, users: users, items: items, logger: logger}
}

func (s *RequestService) CreateRequest(ctx context.Context, req *models.CreateItemRequestRequest, userID int64) (*models.ItemRequestDTO, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("%w: request description cannot be blank", domain.ErrInvalidRequest)
	}

	request := &models.ItemRequest{
		Description: req.Description,
		RequesterID: userID,
		Created:     time.Now().UTC().Truncate(time.Second),
	}

	if err := s.requests.CreateRequest(ctx, request); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("request_id", request.ID).Int64("requester_id", userID).Msg("item request created")
	return request.ToDTO(), nil
}

// GetUserRequests lists the caller's own requests, newest first, each with the
// items offered in response.
func (s *RequestService) GetUserRequests(ctx context.Context, userID int64) ([]*models.ItemRequestDTO, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	requests, err := s.requests.GetRequestsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.toRequestDTOs(ctx, requests)
}

// GetOtherUsersRequests pages through everyone else's requests.
func (s *RequestService) GetOtherUsersRequests(ctx context.Context, userID int64, from, size int) ([]*models.ItemRequestDTO, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	limit, offset, err := pageWindow(from, size)
	if err != nil {
		return nil, err
	}

	requests, err := s.requests.GetOtherUsersRequests(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return s.toRequestDTOs(ctx, requests)
}

func (s *RequestService) GetRequest(ctx context.Context, requestID, userID int64) (*models.ItemRequestDTO, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	request, err := s.requests.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	dtos, err := s.toRequestDTOs(ctx, []*models.ItemRequest{request})
	if err != nil {
		return nil, err
	}
	return dtos[0], nil
}

func (s *RequestService) toRequestDTOs(ctx context.Context, requests []*models.ItemRequest) ([]*models.ItemRequestDTO, error) {
	dtos := make([]*models.ItemRequestDTO, 0, len(requests))
	for _, request := range requests {
		dto := request.ToDTO()

		items, err := s.items.GetItemsByRequest(ctx, request.ID)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			dto.Items = append(dto.Items, item.ToDTO())
		}
		dtos = append(dtos, dto)
	}
	return dtos, nil
}
