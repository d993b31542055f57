package usecases_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lottery-ledger.backend/internal/domain/entities"
	domainerrors "lottery-ledger.backend/internal/domain/errors"
	"lottery-ledger.backend/internal/infrastructure/repositories/repotest"
)

func issueWithWallet(t *testing.T, l *ledger, userID, planID uuid.UUID) *entities.UserPlan {
	t.Helper()
	l.fund(t, userID, entities.WalletCategoryDeposit, "50")
	up, err := l.payments.PurchasePlanWithWallet(context.Background(), userID, planID)
	require.NoError(t, err)
	return up
}

func TestEntitlement_VerifyAndReject(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	userID := l.newUser(t, nil)
	planID := repotest.SeedPlan(t, l.db, "Gold", "membership", false, "50")
	up := issueWithWallet(t, l, userID, planID)
	assert.Equal(t, entities.PaymentMethodWallet, up.PaymentMethod)

	verified, err := l.entitlements.Verify(ctx, up.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.VerificationVerified, verified.VerificationStatus)

	require.NoError(t, l.entitlements.Reject(ctx, up.ID))
	assert.Equal(t, int64(0), l.count(t, "SELECT COUNT(*) FROM user_plans WHERE id = ?", up.ID))

	_, err = l.entitlements.Verify(ctx, up.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
	assert.ErrorIs(t, l.entitlements.Reject(ctx, up.ID), domainerrors.ErrNotFound)
}

func TestEntitlement_Cancel(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	userID := l.newUser(t, nil)
	planID := repotest.SeedPlan(t, l.db, "Gold", "membership", false, "50")
	up := issueWithWallet(t, l, userID, planID)

	_, err := l.entitlements.Cancel(ctx, uuid.New(), up.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	cancelled, err := l.entitlements.Cancel(ctx, userID, up.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.UserPlanStatusCancelled, cancelled.Status)
	assert.False(t, cancelled.IsActive)
	assert.True(t, l.balance(t, userID, entities.WalletCategoryDeposit).IsZero(), "cancellation does not refund")

	_, err = l.entitlements.Cancel(ctx, userID, up.ID)
	assert.ErrorIs(t, err, domainerrors.ErrConflict)

	again := issueWithWallet(t, l, userID, planID)
	assert.NotEqual(t, up.ID, again.ID, "a cancelled plan is not extended")
}

func TestEntitlement_ExpireDue(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	userID := l.newUser(t, nil)
	planID := repotest.SeedPlan(t, l.db, "Gold", "membership", false, "50")
	up := issueWithWallet(t, l, userID, planID)

	n, err := l.entitlements.ExpireDue(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = l.entitlements.ExpireDue(ctx, up.ExpiryDate.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	plans, err := l.entitlements.ListForUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, entities.UserPlanStatusExpired, plans[0].Status)
}

func TestEntitlement_CheckExclusive(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	userID := l.newUser(t, nil)
	gold := repotest.SeedPlan(t, l.db, "Gold", "vip", true, "50")
	silver := repotest.SeedPlan(t, l.db, "Silver", "vip", true, "40")
	basic := repotest.SeedPlan(t, l.db, "Basic", "vip", false, "10")
	issueWithWallet(t, l, userID, gold)

	l.fund(t, userID, entities.WalletCategoryDeposit, "40")
	_, err := l.payments.PurchasePlanWithWallet(ctx, userID, silver)
	assert.ErrorIs(t, err, domainerrors.ErrExclusivePlanHeld)
	l.assertBalance(t, userID, entities.WalletCategoryDeposit, "40")

	_, err = l.payments.InitiatePlanPurchase(ctx, userID, silver, "usdttrc20")
	assert.ErrorIs(t, err, domainerrors.ErrExclusivePlanHeld)

	_, err = l.payments.PurchasePlanWithWallet(ctx, userID, basic)
	assert.NoError(t, err, "non-exclusive plans ignore the category")

	l.fund(t, userID, entities.WalletCategoryDeposit, "20")
	extended, err := l.payments.PurchasePlanWithWallet(ctx, userID, gold)
	require.NoError(t, err, "the held plan itself can be extended")
	assert.Contains(t, extended.Notes.String, "extended")
}

func TestEntitlement_RenewExclusiveAlongsideNonExclusive(t *testing.T) {
	l := newLedger(t)
	ctx := context.Background()
	userID := l.newUser(t, nil)
	gold := repotest.SeedPlan(t, l.db, "Gold", "vip", true, "50")
	basic := repotest.SeedPlan(t, l.db, "Basic", "vip", false, "10")
	issueWithWallet(t, l, userID, gold)
	issueWithWallet(t, l, userID, basic)

	ref := l.planPurchase(t, userID, gold)
	assert.NotEmpty(t, ref)

	l.fund(t, userID, entities.WalletCategoryDeposit, "50")
	extended, err := l.payments.PurchasePlanWithWallet(ctx, userID, gold)
	require.NoError(t, err)
	assert.Contains(t, extended.Notes.String, "extended")

	silver := repotest.SeedPlan(t, l.db, "Silver", "vip", true, "40")
	l.fund(t, userID, entities.WalletCategoryDeposit, "40")
	_, err = l.payments.PurchasePlanWithWallet(ctx, userID, silver)
	assert.ErrorIs(t, err, domainerrors.ErrExclusivePlanHeld)
}
