package models

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
)

// BookingState is the query-time view selector over a user's bookings.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
)

func ParseBookingState(raw string) (BookingState, error) {
	if raw == "" {
		return StateAll, nil
	}
	switch state := BookingState(raw); state {
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected:
		return state, nil
	default:
		return "", fmt.Errorf("unknown state: %s", raw)
	}
}

// Booking carries the denormalized item and booker names filled by the joined
// repository queries so DTO building never goes back to storage.
type Booking struct {
	ID          int64         `json:"id"`
	Start       time.Time     `json:"start"`
	End         time.Time     `json:"end"`
	ItemID      int64         `json:"item_id"`
	BookerID    int64         `json:"booker_id"`
	Status      BookingStatus `json:"status"`
	ItemName    string        `json:"-"`
	ItemOwnerID int64         `json:"-"`
	BookerName  string        `json:"-"`
}

// CreateBookingRequest carries the fields of POST /bookings.
type CreateBookingRequest struct {
	Start  DateTime `json:"start"`
	End    DateTime `json:"end"`
	ItemID int64    `json:"itemId"`
}

// BookingDTO is the wire projection: minimal item and booker records.
type BookingDTO struct {
	ID     int64         `json:"id"`
	Start  DateTime      `json:"start"`
	End    DateTime      `json:"end"`
	Status BookingStatus `json:"status"`
	Item   struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"item"`
	Booker struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"booker"`
}

func (b *Booking) ToDTO() *BookingDTO {
	dto := &BookingDTO{
		ID:     b.ID,
		Start:  NewDateTime(b.Start),
		End:    NewDateTime(b.End),
		Status: b.Status,
	}
	dto.Item.ID = b.ItemID
	dto.Item.Name = b.ItemName
	dto.Booker.ID = b.BookerID
	dto.Booker.Name = b.BookerName
	return dto
}
