package service

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// BookingService owns the booking lifecycle: create, approve/reject, and the
// state-filtered listings.
type BookingService struct {
	bookings domain.BookingRepository
	users    domain.UserRepository
	items    domain.ItemRepository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewBookingService(bookings domain.BookingRepository, users domain.UserRepository, items domain.ItemRepository, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		bookings: bookings,
		users:    users,
		items:    items,
		eventBus: eventBus,
		logger:   logger,
	}
}

// CreateBooking checks preconditions in a fixed order: booker exists, item
// exists, item available, booker is not the owner, then the date rules.
func (s *BookingService) CreateBooking(ctx context.Context, req *models.CreateBookingRequest, userID int64) (*models.BookingDTO, error) {
	booker, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.items.GetItem(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}

	if !item.Available {
		return nil, fmt.Errorf("%w: item not available", domain.ErrInvalidRequest)
	}

	// Existence-hiding policy: the owner is told the item does not exist
	// rather than that booking it is forbidden.
	if item.OwnerID == userID {
		return nil, fmt.Errorf("%w: item %d not found", domain.ErrNotFound, item.ID)
	}

	if req.End.Before(req.Start.Time) {
		return nil, fmt.Errorf("%w: end date cannot be before start date", domain.ErrInvalidRequest)
	}

	now := time.Now().UTC().Truncate(time.Second)
	if req.Start.Before(now) {
		return nil, fmt.Errorf("%w: start date cannot be in the past", domain.ErrInvalidRequest)
	}

	if req.Start.Equal(req.End.Time) {
		return nil, fmt.Errorf("%w: start and end dates cannot be equal", domain.ErrInvalidRequest)
	}

	booking := &models.Booking{
		Start:       req.Start.Time,
		End:         req.End.Time,
		ItemID:      item.ID,
		BookerID:    booker.ID,
		Status:      models.StatusWaiting,
		ItemName:    item.Name,
		ItemOwnerID: item.OwnerID,
		BookerName:  booker.Name,
	}

	if err := s.bookings.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("item_id", item.ID).
		Int64("booker_id", booker.ID).
		Msg("booking created")

	s.publishEvent(events.EventBookingCreated, booking)
	return booking.ToDTO(), nil
}

// UpdateBookingStatus performs the single WAITING -> APPROVED/REJECTED
// transition; only the item owner may trigger it.
func (s *BookingService) UpdateBookingStatus(ctx context.Context, bookingID, userID int64, approved bool) (*models.BookingDTO, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.ItemOwnerID != userID {
		return nil, fmt.Errorf("%w: only the item owner can approve the booking", domain.ErrForbidden)
	}

	if booking.Status != models.StatusWaiting {
		return nil, fmt.Errorf("%w: booking already processed", domain.ErrInvalidRequest)
	}

	status := models.StatusRejected
	eventType := events.EventBookingRejected
	if approved {
		status = models.StatusApproved
		eventType = events.EventBookingApproved
	}

	// The repository re-checks WAITING inside a transaction, so a racing
	// second approval fails here instead of overwriting.
	if err := s.bookings.UpdateBookingStatus(ctx, bookingID, status); err != nil {
		return nil, err
	}
	booking.Status = status

	s.logger.Info().
		Int64("booking_id", bookingID).
		Str("status", string(status)).
		Msg("booking status updated")

	s.publishEvent(eventType, booking)
	return booking.ToDTO(), nil
}

// GetBooking is visible to the booker and the item owner only.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, userID int64) (*models.BookingDTO, error) {
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.BookerID != userID && booking.ItemOwnerID != userID {
		return nil, fmt.Errorf("%w: access denied", domain.ErrForbidden)
	}

	return booking.ToDTO(), nil
}

func (s *BookingService) GetUserBookings(ctx context.Context, userID int64, state models.BookingState, from, size int) ([]*models.BookingDTO, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	limit, offset, err := pageWindow(from, size)
	if err != nil {
		return nil, err
	}

	bookings, err := s.bookings.GetBookerBookings(ctx, userID, state, time.Now().UTC(), limit, offset)
	if err != nil {
		return nil, err
	}
	return toBookingDTOs(bookings), nil
}

func (s *BookingService) GetOwnerBookings(ctx context.Context, ownerID int64, state models.BookingState, from, size int) ([]*models.BookingDTO, error) {
	if _, err := s.users.GetUser(ctx, ownerID); err != nil {
		return nil, err
	}

	limit, offset, err := pageWindow(from, size)
	if err != nil {
		return nil, err
	}

	bookings, err := s.bookings.GetOwnerBookings(ctx, ownerID, state, time.Now().UTC(), limit, offset)
	if err != nil {
		return nil, err
	}
	return toBookingDTOs(bookings), nil
}

// GetOwnerBookingRows returns the raw bookings for the owner's export.
func (s *BookingService) GetOwnerBookingRows(ctx context.Context, ownerID int64, state models.BookingState) ([]*models.Booking, error) {
	if _, err := s.users.GetUser(ctx, ownerID); err != nil {
		return nil, err
	}
	return s.bookings.GetOwnerBookings(ctx, ownerID, state, time.Now().UTC(), exportRowLimit, 0)
}

// exportRowLimit caps the xlsx export; one sheet per request, not a dump API.
const exportRowLimit = 10000

// pageWindow translates the from/size pair into LIMIT/OFFSET with page
// arithmetic: page index = from/size, so offset snaps to a page boundary.
func pageWindow(from, size int) (limit, offset int, err error) {
	if from < 0 || size <= 0 {
		return 0, 0, fmt.Errorf("%w: invalid pagination parameters", domain.ErrInvalidRequest)
	}
	return size, (from / size) * size, nil
}

func toBookingDTOs(bookings []*models.Booking) []*models.BookingDTO {
	dtos := make([]*models.BookingDTO, 0, len(bookings))
	for _, booking := range bookings {
		dtos = append(dtos, booking.ToDTO())
	}
	return dtos
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:  booking.ID,
		ItemID:     booking.ItemID,
		ItemName:   booking.ItemName,
		OwnerID:    booking.ItemOwnerID,
		BookerID:   booking.BookerID,
		BookerName: booking.BookerName,
		Status:     booking.Status,
		Start:      booking.Start,
		End:        booking.End,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
