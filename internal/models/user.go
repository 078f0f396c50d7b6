package models

type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UpdateUserRequest is a partial update: nil fields stay untouched.
// Clearing a field is not supported.
type UpdateUserRequest struct {
	Email *string `json:"email"`
	Name  *string `json:"name"`
}
