package entities

import (
	"time"

	"github.com/google/uuid"
)

// User is the ledger's view of an account owned by the auth service
type User struct {
	ID         uuid.UUID  `json:"id"`
	Email      string     `json:"email"`
	ReferrerID *uuid.UUID `json:"referrerId,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}
