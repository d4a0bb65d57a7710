package customer

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a record owned by exactly one user for its entire lifetime.
// Owner carries the owning username, re-derived from the database on every
// lookup and never taken from client input.
type Customer struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	UserID    uuid.UUID `json:"user_id"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
