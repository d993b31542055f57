package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"lottery-ledger.backend/internal/domain/entities"
)

// JackpotRepository defines jackpot data operations
type JackpotRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Jackpot, error)
	// AddSales increments the aggregate counters in place
	AddSales(ctx context.Context, id uuid.UUID, tickets int64, revenue decimal.Decimal) error
}

// TicketRepository defines ticket data operations
type TicketRepository interface {
	// CreateBatch fails with ErrTicketsAlreadyTaken on a number collision
	CreateBatch(ctx context.Context, tickets []*entities.Ticket) error
	// FindTakenNumbers returns which of numbers already belong to active tickets
	FindTakenNumbers(ctx context.Context, jackpotID uuid.UUID, numbers []string) ([]string, error)
	ListByUser(ctx context.Context, userID uuid.UUID, jackpotID uuid.UUID) ([]*entities.Ticket, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}
