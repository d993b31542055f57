package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"lottery-ledger.backend/internal/domain/entities"
)

// TransactionRepository defines transaction ledger data operations
type TransactionRepository interface {
	Create(ctx context.Context, tx *entities.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error)
	// GetByReference honours the lock hint set by UnitOfWork.WithLock
	GetByReference(ctx context.Context, referenceID string) (*entities.Transaction, error)
	// UpdateSettlement persists status, processed time and the gateway snapshot
	UpdateSettlement(ctx context.Context, tx *entities.Transaction) error
	AttachGatewayPayment(ctx context.Context, id uuid.UUID, payment entities.GatewayPayment) error
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*entities.Transaction, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Transaction, int, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}
