package entity

import (
	"time"
)

// User is the aggregate root for the user domain.
// Password holds a bcrypt hash; it is empty for accounts created through an
// OAuth provider.
type User struct {
	ID        string
	Email     string
	Password  string
	Name      string
	Provider  string // "", "google" or "facebook"
	CreatedAt time.Time
	UpdatedAt time.Time
}
