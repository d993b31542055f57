package entities

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "lottery-ledger.backend/internal/domain/errors"
)

func TestIntentRoundTrip(t *testing.T) {
	planID := uuid.New()
	intents := []Intent{
		DepositIntent{WalletCategory: WalletCategoryDeposit},
		PlanPurchaseIntent{PlanID: planID, PlanName: "Gold", IsPlanPurchase: true, Price: decimal.RequireFromString("50.00")},
		WithdrawalIntent{Address: "0xabc", PayCurrency: "usdterc20", WalletCategory: WalletCategoryWinnings},
	}

	for _, in := range intents {
		t.Run(string(in.Kind()), func(t *testing.T) {
			raw, err := EncodeIntent(in)
			require.NoError(t, err)
			assert.Contains(t, string(raw), `"kind":"`+string(in.Kind())+`"`)

			out, err := DecodeIntent(raw)
			require.NoError(t, err)
			if plan, ok := in.(PlanPurchaseIntent); ok {
				got := out.(PlanPurchaseIntent)
				assert.Equal(t, plan.PlanID, got.PlanID)
				assert.Equal(t, plan.PlanName, got.PlanName)
				assert.True(t, plan.Price.Equal(got.Price))
				return
			}
			assert.Equal(t, in, out)
		})
	}
}

func TestDecodeIntent_EmptyAndLegacy(t *testing.T) {
	for _, raw := range []string{"", "null", "{}", "  "} {
		intent, err := DecodeIntent([]byte(raw))
		require.NoError(t, err)
		assert.Nil(t, intent)
	}

	planID := uuid.New()
	intent, err := DecodeIntent([]byte(`{"planId":"` + planID.String() + `","planName":"Gold","isPlanPurchase":true}`))
	require.NoError(t, err)
	assert.Equal(t, planID, intent.(PlanPurchaseIntent).PlanID)

	raw, err := EncodeIntent(nil)
	require.NoError(t, err)
	assert.Nil(t, raw)
}

func TestDecodeIntent_Errors(t *testing.T) {
	_, err := DecodeIntent([]byte(`{"kind":"lottery"}`))
	assert.ErrorIs(t, err, domainerrors.ErrUnsupportedIntent)

	_, err = DecodeIntent([]byte(`{"kind":"plan_purchase","planName":"x"}`))
	assert.ErrorIs(t, err, domainerrors.ErrUnsupportedIntent)

	_, err = DecodeIntent([]byte(`{"kind":`))
	assert.Error(t, err)

	_, err = DecodeIntent([]byte(`{"planId":"x","isPlanPurchase":false}`))
	assert.ErrorIs(t, err, domainerrors.ErrUnsupportedIntent)
}

func TestTransactionStateMachine(t *testing.T) {
	assert.True(t, CanTransition(TransactionStatusPending, TransactionStatusCompleted))
	assert.True(t, CanTransition(TransactionStatusPending, TransactionStatusFailed))
	assert.True(t, CanTransition(TransactionStatusPending, TransactionStatusCancelled))
	assert.False(t, CanTransition(TransactionStatusPending, TransactionStatusPending))
	assert.False(t, CanTransition(TransactionStatusCompleted, TransactionStatusFailed))
	assert.False(t, CanTransition(TransactionStatusFailed, TransactionStatusCompleted))
	assert.False(t, CanTransition(TransactionStatusCancelled, TransactionStatusCompleted))
	assert.False(t, TransactionStatusPending.IsTerminal())
}
