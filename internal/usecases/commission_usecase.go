package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"lottery-ledger.backend/internal/domain/entities"
	domainerrors "lottery-ledger.backend/internal/domain/errors"
	"lottery-ledger.backend/internal/domain/repositories"
	"lottery-ledger.backend/pkg/logger"
)

// CommissionRate is the share of a qualifying amount paid to the referrer
var CommissionRate = decimal.RequireFromString("0.10")

// CommissionUsecase credits referral commissions to winnings wallets
type CommissionUsecase struct {
	uow        repositories.UnitOfWork
	userRepo   repositories.UserRepository
	walletRepo repositories.WalletRepository
	txRepo     repositories.TransactionRepository
}

// NewCommissionUsecase creates a new commission usecase
func NewCommissionUsecase(
	uow repositories.UnitOfWork,
	userRepo repositories.UserRepository,
	walletRepo repositories.WalletRepository,
	txRepo repositories.TransactionRepository,
) *CommissionUsecase {
	return &CommissionUsecase{
		uow:        uow,
		userRepo:   userRepo,
		walletRepo: walletRepo,
		txRepo:     txRepo,
	}
}

// CommissionReference is the ledger reference of the commission paid for sourceReference
func CommissionReference(sourceReference string) string {
	return "commission-" + sourceReference
}

// CreditReferralCommission pays the commission for base to the user's referrer.
// A user without a referrer is a no-op.
func (u *CommissionUsecase) CreditReferralCommission(ctx context.Context, userID uuid.UUID, base decimal.Decimal, description, sourceReference string) error {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user for commission: %w", err)
	}
	if user.ReferrerID == nil {
		return nil
	}
	return u.CreditCommission(ctx, *user.ReferrerID, base, description, sourceReference)
}

// CreditCommission credits base × CommissionRate to the referrer's winnings
// wallet with a completed commission transaction. Repeating it for the same
// source reference leaves the ledger unchanged.
func (u *CommissionUsecase) CreditCommission(ctx context.Context, referrerID uuid.UUID, base decimal.Decimal, description, sourceReference string) error {
	amount := base.Mul(CommissionRate).Round(2)
	if !amount.IsPositive() {
		return nil
	}
	reference := CommissionReference(sourceReference)

	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		wallet, err := u.walletRepo.GetByUserAndCategory(txCtx, referrerID, entities.WalletCategoryWinnings)
		if err != nil {
			return err
		}
		walletID := wallet.ID
		if err := u.txRepo.Create(txCtx, &entities.Transaction{
			UserID:      referrerID,
			WalletID:    &walletID,
			Type:        entities.TransactionTypeCommission,
			Amount:      amount,
			Currency:    wallet.Currency,
			ReferenceID: reference,
			Status:      entities.TransactionStatusCompleted,
			Description: description,
			ProcessedAt: nullTime(timeNow()),
		}); err != nil {
			return err
		}
		_, err = u.walletRepo.Credit(txCtx, walletID, amount)
		return err
	})

	switch {
	case err == nil:
		logger.Info(ctx, "commission credited",
			zap.String("referrerId", referrerID.String()),
			zap.String("reference", reference),
			zap.String("amount", amount.String()),
		)
		return nil
	case errors.Is(err, domainerrors.ErrAlreadyExists):
		logger.Debug(ctx, "commission already credited", zap.String("reference", reference))
		return nil
	case errors.Is(err, domainerrors.ErrWalletNotFound), errors.Is(err, domainerrors.ErrNotFound):
		logger.Warn(ctx, "commission skipped, referrer has no winnings wallet",
			zap.String("referrerId", referrerID.String()),
			zap.String("reference", reference),
		)
		return nil
	default:
		return fmt.Errorf("credit commission %s: %w", reference, err)
	}
}

// payCommission runs after a commit; failures are logged and never returned
func (u *CommissionUsecase) payCommission(ctx context.Context, userID uuid.UUID, base decimal.Decimal, description, sourceReference string) {
	if u == nil {
		return
	}
	if err := u.CreditReferralCommission(ctx, userID, base, description, sourceReference); err != nil {
		logger.Error(ctx, "referral commission failed",
			zap.String("userId", userID.String()),
			zap.String("source", sourceReference),
			zap.Error(err),
		)
	}
}
