package repositories

import (
	"context"

	"github.com/google/uuid"
	"lottery-ledger.backend/internal/domain/entities"
)

// OutboxRepository defines outbox data operations
type OutboxRepository interface {
	Add(ctx context.Context, topic string, payload interface{}) error
	ListUnsent(ctx context.Context, maxAttempts, limit int) ([]*entities.OutboxEvent, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}
