package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"lottery-ledger.backend/internal/domain/entities"
	domainerrors "lottery-ledger.backend/internal/domain/errors"
	"lottery-ledger.backend/internal/domain/repositories"
	"lottery-ledger.backend/internal/infrastructure/metrics"
	"lottery-ledger.backend/pkg/logger"
)

var timeNow = time.Now

// WalletUsecase handles wallet business logic
type WalletUsecase struct {
	uow          repositories.UnitOfWork
	walletRepo   repositories.WalletRepository
	txRepo       repositories.TransactionRepository
	ticketRepo   repositories.TicketRepository
	userPlanRepo repositories.UserPlanRepository
	userRepo     repositories.UserRepository
	metrics      *metrics.Metrics
}

// NewWalletUsecase creates a new wallet usecase
func NewWalletUsecase(
	uow repositories.UnitOfWork,
	walletRepo repositories.WalletRepository,
	txRepo repositories.TransactionRepository,
	ticketRepo repositories.TicketRepository,
	userPlanRepo repositories.UserPlanRepository,
	userRepo repositories.UserRepository,
	m *metrics.Metrics,
) *WalletUsecase {
	return &WalletUsecase{
		uow:          uow,
		walletRepo:   walletRepo,
		txRepo:       txRepo,
		ticketRepo:   ticketRepo,
		userPlanRepo: userPlanRepo,
		userRepo:     userRepo,
		metrics:      metrics.OrNop(m),
	}
}

// EnsureWallets creates every category wallet the user is missing
func (u *WalletUsecase) EnsureWallets(ctx context.Context, userID uuid.UUID) ([]*entities.Wallet, error) {
	if err := u.walletRepo.EnsureForUser(ctx, userID, entities.WalletCategories); err != nil {
		return nil, fmt.Errorf("ensure wallets: %w", err)
	}
	return u.walletRepo.ListByUser(ctx, userID)
}

// GetOrCreate returns the user's wallet for category, creating it on first use
func (u *WalletUsecase) GetOrCreate(ctx context.Context, userID uuid.UUID, category entities.WalletCategory) (*entities.Wallet, error) {
	if !category.IsValid() {
		return nil, fmt.Errorf("%w: unknown wallet category %q", domainerrors.ErrInvalidInput, category)
	}
	wallet, err := u.walletRepo.GetByUserAndCategory(ctx, userID, category)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, domainerrors.ErrWalletNotFound) {
		return nil, err
	}
	if err := u.walletRepo.EnsureForUser(ctx, userID, []entities.WalletCategory{category}); err != nil {
		return nil, fmt.Errorf("create %s wallet: %w", category, err)
	}
	return u.walletRepo.GetByUserAndCategory(ctx, userID, category)
}

// Balances lists the user's wallets
func (u *WalletUsecase) Balances(ctx context.Context, userID uuid.UUID) ([]*entities.Wallet, error) {
	return u.walletRepo.ListByUser(ctx, userID)
}

// Credit adds a positive amount to a wallet
func (u *WalletUsecase) Credit(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: credit amount must be positive", domainerrors.ErrInvalidInput)
	}
	return u.walletRepo.Credit(ctx, walletID, amount)
}

// Debit removes a positive amount from a wallet. The balance check happens in
// the same statement as the update.
func (u *WalletUsecase) Debit(ctx context.Context, wallet *entities.Wallet, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: debit amount must be positive", domainerrors.ErrInvalidInput)
	}
	balance, err := u.walletRepo.Debit(ctx, wallet.ID, amount)
	if errors.Is(err, domainerrors.ErrInsufficientFunds) {
		u.metrics.DebitRejected.WithLabelValues(string(wallet.Category)).Inc()
		logger.Info(ctx, "debit rejected",
			zap.String("walletId", wallet.ID.String()),
			zap.String("amount", amount.String()),
		)
	}
	return balance, err
}

// EraseAccount removes every ledger row owned by the user in one unit of work
func (u *WalletUsecase) EraseAccount(ctx context.Context, userID uuid.UUID) error {
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.userRepo.Lock(txCtx, userID); err != nil {
			return err
		}
		if err := u.ticketRepo.DeleteByUser(txCtx, userID); err != nil {
			return fmt.Errorf("delete tickets: %w", err)
		}
		if err := u.userPlanRepo.DeleteByUser(txCtx, userID); err != nil {
			return fmt.Errorf("delete entitlements: %w", err)
		}
		if err := u.txRepo.DeleteByUser(txCtx, userID); err != nil {
			return fmt.Errorf("delete transactions: %w", err)
		}
		if err := u.walletRepo.DeleteByUser(txCtx, userID); err != nil {
			return fmt.Errorf("delete wallets: %w", err)
		}
		return u.userRepo.Delete(txCtx, userID)
	})
	if err != nil {
		return err
	}
	logger.Info(ctx, "account erased", zap.String("userId", userID.String()))
	return nil
}
