package usecases

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"lottery-ledger.backend/internal/domain/entities"
	domainerrors "lottery-ledger.backend/internal/domain/errors"
	"lottery-ledger.backend/internal/infrastructure/metrics"
	"lottery-ledger.backend/pkg/crypto"
	"lottery-ledger.backend/pkg/logger"
)

// WebhookUsecase verifies gateway IPN notifications and hands them to settlement
type WebhookUsecase struct {
	secret     string
	settlement *SettlementUsecase
	metrics    *metrics.Metrics
}

// NewWebhookUsecase creates a new webhook usecase. secret is the IPN secret
// shared with the gateway.
func NewWebhookUsecase(secret string, settlement *SettlementUsecase, m *metrics.Metrics) *WebhookUsecase {
	return &WebhookUsecase{
		secret:     secret,
		settlement: settlement,
		metrics:    metrics.OrNop(m),
	}
}

// ipnPayload is the subset of the gateway notification the ledger reads.
// Payout notifications carry id and unique_external_id instead.
type ipnPayload struct {
	PaymentID        flexValue `json:"payment_id"`
	ID               flexValue `json:"id"`
	PaymentStatus    string    `json:"payment_status"`
	Status           string    `json:"status"`
	PayAddress       string    `json:"pay_address"`
	PayAmount        flexValue `json:"pay_amount"`
	Amount           flexValue `json:"amount"`
	PayCurrency      string    `json:"pay_currency"`
	Currency         string    `json:"currency"`
	PriceAmount      flexValue `json:"price_amount"`
	PriceCurrency    string    `json:"price_currency"`
	OrderID          string    `json:"order_id"`
	UniqueExternalID string    `json:"unique_external_id"`
	OrderDescription string    `json:"order_description"`
}

// flexValue accepts a JSON string or number and keeps its text
type flexValue string

func (f *flexValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexValue(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexValue(n.String())
	return nil
}

func (f flexValue) decimal() (decimal.Decimal, error) {
	if f == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(string(f))
}

// ReceiveNotification authenticates a raw IPN body against its signature
// header and translates it into a normalized event. Nothing is read from or
// written to the ledger here.
func (u *WebhookUsecase) ReceiveNotification(ctx context.Context, raw []byte, signature string) (*entities.NormalizedEvent, error) {
	if err := u.verify(ctx, raw, signature); err != nil {
		return nil, err
	}
	event, err := NormalizeNotification(raw)
	if err != nil {
		return nil, err
	}
	return event, nil
}

// Process authenticates, normalizes and applies a notification
func (u *WebhookUsecase) Process(ctx context.Context, raw []byte, signature string) (*SettlementResult, error) {
	event, err := u.ReceiveNotification(ctx, raw, signature)
	if err != nil {
		return nil, err
	}
	return u.settlement.Apply(ctx, event)
}

func (u *WebhookUsecase) verify(ctx context.Context, raw []byte, signature string) error {
	hasHeader := strings.TrimSpace(signature) != ""
	reject := func(reason string) error {
		u.metrics.WebhookAuthFailure.Inc()
		logger.Warn(ctx, "webhook signature rejected",
			zap.String("reason", reason),
			zap.String("reference", peekReference(raw)),
			zap.Bool("signatureHeaderPresent", hasHeader),
		)
		return domainerrors.ErrInvalidSignature
	}

	if !hasHeader {
		return reject("missing signature header")
	}
	ok, err := crypto.VerifyPayload(raw, signature, u.secret)
	if errors.Is(err, crypto.ErrEmptySecret) {
		logger.Error(ctx, "webhook secret is not configured")
		return reject("secret not configured")
	}
	if err != nil {
		return reject("unverifiable payload")
	}
	if !ok {
		return reject("signature mismatch")
	}
	return nil
}

// NormalizeNotification maps gateway field names and statuses into ledger terms
func NormalizeNotification(raw []byte) (*entities.NormalizedEvent, error) {
	var p ipnPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: malformed notification: %v", domainerrors.ErrInvalidInput, err)
	}

	event := &entities.NormalizedEvent{
		ReferenceID:      firstNonEmpty(p.OrderID, p.UniqueExternalID),
		GatewayPaymentID: firstNonEmpty(string(p.PaymentID), string(p.ID)),
		PaymentStatus:    NormalizeStatus(firstNonEmpty(p.PaymentStatus, p.Status)),
		PayCurrency:      strings.ToLower(firstNonEmpty(p.PayCurrency, p.Currency)),
		PriceCurrency:    strings.ToLower(p.PriceCurrency),
		Raw:              json.RawMessage(raw),
	}
	if event.ReferenceID == "" {
		return nil, fmt.Errorf("%w: notification without order_id", domainerrors.ErrInvalidInput)
	}

	payAmount := p.PayAmount
	if payAmount == "" {
		payAmount = p.Amount
	}
	var err error
	if event.PayAmount, err = payAmount.decimal(); err != nil {
		return nil, fmt.Errorf("%w: pay_amount %q", domainerrors.ErrInvalidInput, payAmount)
	}
	if event.PriceAmount, err = p.PriceAmount.decimal(); err != nil {
		return nil, fmt.Errorf("%w: price_amount %q", domainerrors.ErrInvalidInput, p.PriceAmount)
	}
	return event, nil
}

// NormalizeStatus folds provider statuses into the five the ledger settles on.
// Values it does not know pass through unchanged and are ignored by settlement.
func NormalizeStatus(status string) entities.GatewayStatus {
	s := strings.ToLower(strings.TrimSpace(status))
	switch s {
	case "finished":
		return entities.GatewayStatusFinished
	case "confirmed":
		return entities.GatewayStatusConfirmed
	case "failed", "refunded", "rejected":
		return entities.GatewayStatusFailed
	case "expired":
		return entities.GatewayStatusExpired
	case "pending", "waiting", "confirming", "sending", "partially_paid", "processing", "creating":
		return entities.GatewayStatusPending
	default:
		return entities.GatewayStatus(s)
	}
}

// peekReference reads the order id for audit logs without trusting the body
func peekReference(raw []byte) string {
	var p struct {
		OrderID          string `json:"order_id"`
		UniqueExternalID string `json:"unique_external_id"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return ""
	}
	return firstNonEmpty(p.OrderID, p.UniqueExternalID)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
