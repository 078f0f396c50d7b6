package models

type Item struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	OwnerID     int64  `json:"ownerId"`
	RequestID   *int64 `json:"requestId,omitempty"`
}

// CreateItemRequest carries the fields of POST /items. Available is a pointer
// so a missing field is distinguishable from false.
type CreateItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   *bool  `json:"available"`
	RequestID   *int64 `json:"requestId"`
}

// UpdateItemRequest is a partial update: nil fields stay untouched.
type UpdateItemRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

// BookingRef is the short last/next booking projection on an owner's item view.
type BookingRef struct {
	ID       int64 `json:"id"`
	BookerID int64 `json:"bookerId"`
}

// ItemDTO is the item projection returned by the catalog endpoints. LastBooking
// and NextBooking are filled only when the requester owns the item.
type ItemDTO struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Available   bool         `json:"available"`
	OwnerID     int64        `json:"ownerId"`
	RequestID   *int64       `json:"requestId,omitempty"`
	LastBooking *BookingRef  `json:"lastBooking,omitempty"`
	NextBooking *BookingRef  `json:"nextBooking,omitempty"`
	Comments    []CommentDTO `json:"comments"`
}

func (i *Item) ToDTO() *ItemDTO {
	return &ItemDTO{
		ID:          i.ID,
		Name:        i.Name,
		Description: i.Description,
		Available:   i.Available,
		OwnerID:     i.OwnerID,
		RequestID:   i.RequestID,
		Comments:    []CommentDTO{},
	}
}
