package repositories

import (
	"context"

	"github.com/google/uuid"
	"lottery-ledger.backend/internal/domain/entities"
)

// UserRepository defines the user reads the ledger needs
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	// Lock takes a row lock on the user; it serializes per-user entitlement issuance
	Lock(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}
