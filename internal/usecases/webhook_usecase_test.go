package usecases_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lottery-ledger.backend/internal/domain/entities"
	domainerrors "lottery-ledger.backend/internal/domain/errors"
	"lottery-ledger.backend/internal/infrastructure/metrics"
	"lottery-ledger.backend/internal/usecases"
	"lottery-ledger.backend/pkg/crypto"
)

func TestReceiveNotification_ValidSignature(t *testing.T) {
	uc := usecases.NewWebhookUsecase(testIPNSecret, nil, nil)
	body, sig := signedIPN(t, "DEP-1", "Finished", "100")

	event, err := uc.ReceiveNotification(context.Background(), body, sig)
	require.NoError(t, err)
	assert.Equal(t, "DEP-1", event.ReferenceID)
	assert.Equal(t, "5077125051", event.GatewayPaymentID)
	assert.Equal(t, entities.GatewayStatusFinished, event.PaymentStatus)
	assert.True(t, decimal.RequireFromString("100").Equal(event.PayAmount))
	assert.True(t, decimal.RequireFromString("100").Equal(event.PriceAmount))
	assert.Equal(t, "usdttrc20", event.PayCurrency)
	assert.Equal(t, "usd", event.PriceCurrency)
}

func TestReceiveNotification_KeyOrderDoesNotMatter(t *testing.T) {
	uc := usecases.NewWebhookUsecase(testIPNSecret, nil, nil)
	signed := []byte(`{"order_id":"DEP-2","payment_status":"confirmed","payment_id":"77"}`)
	sig, err := crypto.SignPayload(signed, testIPNSecret)
	require.NoError(t, err)

	reordered := []byte(`{"payment_id":"77", "payment_status":"confirmed", "order_id":"DEP-2"}`)
	event, err := uc.ReceiveNotification(context.Background(), reordered, sig)
	require.NoError(t, err)
	assert.Equal(t, entities.GatewayStatusConfirmed, event.PaymentStatus)
}

func TestReceiveNotification_RejectsBadSignatures(t *testing.T) {
	reg := prometheus.NewRegistry()
	uc := usecases.NewWebhookUsecase(testIPNSecret, nil, metrics.New(reg))
	body, sig := signedIPN(t, "DEP-3", "finished", "100")
	foreign, err := crypto.SignPayload(body, "someone-elses-secret")
	require.NoError(t, err)

	cases := map[string]string{
		"missing":  "",
		"mismatch": foreign,
		"not hex":  "zz-not-a-signature",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.ReceiveNotification(context.Background(), body, header)
			assert.ErrorIs(t, err, domainerrors.ErrInvalidSignature)
		})
	}

	tampered := []byte(`{"payment_id":5077125051,"payment_status":"finished","price_amount":1000,"order_id":"DEP-3"}`)
	_, err = uc.ReceiveNotification(context.Background(), tampered, sig)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidSignature)

	families, err := reg.Gather()
	require.NoError(t, err)
	var failures float64
	for _, f := range families {
		if f.GetName() == "webhook_signature_failures_total" {
			failures = f.GetMetric()[0].GetCounter().GetValue()
		}
	}
	assert.Equal(t, 4.0, failures)
}

func TestReceiveNotification_EmptySecretRejects(t *testing.T) {
	uc := usecases.NewWebhookUsecase("", nil, nil)
	body, sig := signedIPN(t, "DEP-4", "finished", "1")
	_, err := uc.ReceiveNotification(context.Background(), body, sig)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidSignature)
}

func TestReceiveNotification_MalformedPayload(t *testing.T) {
	uc := usecases.NewWebhookUsecase(testIPNSecret, nil, nil)
	_, err := uc.ReceiveNotification(context.Background(), []byte(`{"order_id":`), "abcd")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidSignature, "an unverifiable body is unauthenticated")
	assert.NotErrorIs(t, err, domainerrors.ErrInvalidInput)

	_, err = uc.ReceiveNotification(context.Background(), []byte(`order_id=DEP-1`), "deadbeef")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidSignature)

	body := []byte(`{"payment_id":1,"payment_status":"finished"}`)
	sig, err := crypto.SignPayload(body, testIPNSecret)
	require.NoError(t, err)
	_, err = uc.ReceiveNotification(context.Background(), body, sig)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}

func TestNormalizeNotification_PayoutFields(t *testing.T) {
	event, err := usecases.NormalizeNotification([]byte(
		`{"id":"5000000713","status":"FINISHED","amount":"12.5","currency":"USDTERC20","unique_external_id":"WDR-1"}`))
	require.NoError(t, err)
	assert.Equal(t, "WDR-1", event.ReferenceID)
	assert.Equal(t, "5000000713", event.GatewayPaymentID)
	assert.Equal(t, entities.GatewayStatusFinished, event.PaymentStatus)
	assert.True(t, decimal.RequireFromString("12.5").Equal(event.PayAmount))
	assert.Equal(t, "usdterc20", event.PayCurrency)

	_, err = usecases.NormalizeNotification([]byte(`{"order_id":"DEP-5","pay_amount":"lots"}`))
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}

func TestNormalizeStatus(t *testing.T) {
	cases := map[string]entities.GatewayStatus{
		"finished":       entities.GatewayStatusFinished,
		" Confirmed ":    entities.GatewayStatusConfirmed,
		"failed":         entities.GatewayStatusFailed,
		"refunded":       entities.GatewayStatusFailed,
		"rejected":       entities.GatewayStatusFailed,
		"expired":        entities.GatewayStatusExpired,
		"waiting":        entities.GatewayStatusPending,
		"confirming":     entities.GatewayStatusPending,
		"sending":        entities.GatewayStatusPending,
		"partially_paid": entities.GatewayStatusPending,
		"creating":       entities.GatewayStatusPending,
		"processing":     entities.GatewayStatusPending,
		"Something_New":  entities.GatewayStatus("something_new"),
	}
	for in, want := range cases {
		assert.Equal(t, want, usecases.NormalizeStatus(in), in)
	}
}
