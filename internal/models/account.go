package models

import (
	"time"

	"github.com/google/uuid"
)

// Account roles.
const (
	RoleFinder = "finder"
	RolePoster = "poster"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
