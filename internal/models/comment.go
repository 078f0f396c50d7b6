package models

import "time"

// Comment carries the denormalized author name from the joined query.
type Comment struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	ItemID     int64     `json:"item_id"`
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"-"`
	Created    time.Time `json:"created"`
}

type CreateCommentRequest struct {
	Text string `json:"text"`
}

type CommentDTO struct {
	ID         int64    `json:"id"`
	Text       string   `json:"text"`
	AuthorName string   `json:"authorName"`
	Created    DateTime `json:"created"`
}

func (c *Comment) ToDTO() *CommentDTO {
	return &CommentDTO{
		ID:         c.ID,
		Text:       c.Text,
		AuthorName: c.AuthorName,
		Created:    NewDateTime(c.Created),
	}
}
