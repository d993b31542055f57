package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"lottery-ledger.backend/internal/domain/entities"
)

// WalletRepository defines wallet data operations
type WalletRepository interface {
	// EnsureForUser creates any missing category wallets without touching existing ones
	EnsureForUser(ctx context.Context, userID uuid.UUID, categories []entities.WalletCategory) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error)
	GetByUserAndCategory(ctx context.Context, userID uuid.UUID, category entities.WalletCategory) (*entities.Wallet, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Wallet, error)
	// Credit adds amount to the persisted balance and returns the new balance
	Credit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error)
	// Debit subtracts amount only if the persisted balance covers it
	Debit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}
