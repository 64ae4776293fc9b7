package models

import "github.com/google/uuid"

// User is an authenticated account or a guest identified only by a token.
type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	IsGuest  bool      `json:"isGuest"`
}
