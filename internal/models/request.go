package models

import "time"

// ItemRequest is a user-authored ask for an item that does not exist yet.
// Items reference it back through their request_id column.
type ItemRequest struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	RequesterID int64     `json:"requester_id"`
	Created     time.Time `json:"created"`
}

type CreateItemRequestRequest struct {
	Description string `json:"description"`
}

type ItemRequestDTO struct {
	ID          int64      `json:"id"`
	Description string     `json:"description"`
	Created     DateTime   `json:"created"`
	Items       []*ItemDTO `json:"items"`
}

func (r *ItemRequest) ToDTO() *ItemRequestDTO {
	return &ItemRequestDTO{
		ID:          r.ID,
		Description: r.Description,
		Created:     NewDateTime(r.Created),
		Items:       []*ItemDTO{},
	}
}
