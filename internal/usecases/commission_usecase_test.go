package usecases_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lottery-ledger.backend/internal/domain/entities"
	"lottery-ledger.backend/internal/infrastructure/repositories/repotest"
	"lottery-ledger.backend/internal/usecases"
)

func TestCreditCommission_TenPercentToWinnings(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	referrerID := l.newUser(t, nil)

	require.NoError(t, l.commissions.CreditCommission(ctx, referrerID, decimal.RequireFromString("100"), "Referral", "PLAN-1"))
	require.NoError(t, l.commissions.CreditCommission(ctx, referrerID, decimal.RequireFromString("100"), "Referral", "PLAN-1"))

	assert.True(t, decimal.RequireFromString("10").Equal(l.balance(t, referrerID, entities.WalletCategoryWinnings)))
	assert.True(t, l.balance(t, referrerID, entities.WalletCategoryDeposit).IsZero())
	tx := l.transaction(t, "commission-PLAN-1")
	assert.Equal(t, entities.TransactionStatusCompleted, tx.Status)
	assert.Equal(t, "Referral", tx.Description)
	assert.Equal(t, int64(1), l.count(t, "SELECT COUNT(*) FROM transactions WHERE type = 'commission'"))
}

func TestCreditCommission_MissingWalletIsNoop(t *testing.T) {
	l := newLedger(t)
	referrerID := repotest.SeedUser(t, l.db, nil)

	err := l.commissions.CreditCommission(context.Background(), referrerID, decimal.RequireFromString("40"), "Referral", "TKT-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), l.count(t, "SELECT COUNT(*) FROM transactions"))
}

func TestCreditReferralCommission(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	referrerID := l.newUser(t, nil)
	referred := l.newUser(t, &referrerID)
	orphan := l.newUser(t, nil)

	require.NoError(t, l.commissions.CreditReferralCommission(ctx, orphan, decimal.RequireFromString("40"), "Referral", "TKT-2"))
	assert.Equal(t, int64(0), l.count(t, "SELECT COUNT(*) FROM transactions"))

	require.NoError(t, l.commissions.CreditReferralCommission(ctx, referred, decimal.RequireFromString("12.5"), "Referral", "TKT-3"))
	assert.True(t, decimal.RequireFromString("1.25").Equal(l.balance(t, referrerID, entities.WalletCategoryWinnings)))

	require.NoError(t, l.commissions.CreditCommission(ctx, referrerID, decimal.RequireFromString("0.01"), "Referral", "TKT-4"))
	assert.Equal(t, int64(0), l.count(t, "SELECT COUNT(*) FROM transactions WHERE reference_id = 'commission-TKT-4'"))
}

func TestCommissionReference(t *testing.T) {
	assert.Equal(t, "commission-DEP-9", usecases.CommissionReference("DEP-9"))
}
