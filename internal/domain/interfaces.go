package domain

import (
	"context"
	"time"

	"shareit/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
	GetAllUsers(ctx context.Context) ([]*models.User, error)
}

type ItemRepository interface {
	CreateItem(ctx context.Context, item *models.Item) error
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	GetItemsByOwner(ctx context.Context, ownerID int64) ([]*models.Item, error)
	SearchItems(ctx context.Context, text string) ([]*models.Item, error)
	GetItemsByRequest(ctx context.Context, requestID int64) ([]*models.Item, error)
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	// UpdateBookingStatus flips a WAITING booking to the given terminal status
	// inside a transaction; a booking no longer WAITING yields ErrInvalidRequest.
	UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error
	GetBookerBookings(ctx context.Context, bookerID int64, state models.BookingState, now time.Time, limit, offset int) ([]*models.Booking, error)
	GetOwnerBookings(ctx context.Context, ownerID int64, state models.BookingState, now time.Time, limit, offset int) ([]*models.Booking, error)
	GetLastApprovedBooking(ctx context.Context, itemID int64, asOf time.Time) (*models.Booking, error)
	GetNextApprovedBooking(ctx context.Context, itemID int64, asOf time.Time) (*models.Booking, error)
	GetPastApprovedBookings(ctx context.Context, itemID, userID int64, now time.Time) ([]*models.Booking, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentsByItem(ctx context.Context, itemID int64) ([]*models.Comment, error)
}

type RequestRepository interface {
	CreateRequest(ctx context.Context, request *models.ItemRequest) error
	GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error)
	GetRequestsByUser(ctx context.Context, userID int64) ([]*models.ItemRequest, error)
	GetOtherUsersRequests(ctx context.Context, userID int64, limit, offset int) ([]*models.ItemRequest, error)
}

// Repository is the full storage contract; satisfied by database.DB and by the
// in-memory test double.
type Repository interface {
	UserRepository
	ItemRepository
	BookingRepository
	CommentRepository
	RequestRepository
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// StateRepository backs the gateway rate limiter; redis in production with an
// in-memory fallback behind the failover wrapper.
type StateRepository interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}
