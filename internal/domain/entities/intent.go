package entities

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainerrors "lottery-ledger.backend/internal/domain/errors"
)

// IntentKind tags the purchase intent stored on a transaction
type IntentKind string

const (
	IntentKindDeposit      IntentKind = "deposit"
	IntentKindPlanPurchase IntentKind = "plan_purchase"
	IntentKindWithdrawal   IntentKind = "withdrawal"
)

// Intent is what a pending transaction was created to do. It is decoded at
// settlement time to pick the side effect.
type Intent interface {
	Kind() IntentKind
}

// DepositIntent credits the target wallet once the payment is confirmed
type DepositIntent struct {
	WalletCategory WalletCategory `json:"walletCategory"`
}

// PlanPurchaseIntent issues or extends a plan once the payment is confirmed
type PlanPurchaseIntent struct {
	PlanID         uuid.UUID       `json:"planId"`
	PlanName       string          `json:"planName"`
	IsPlanPurchase bool            `json:"isPlanPurchase"`
	Price          decimal.Decimal `json:"price"`
}

// WithdrawalIntent records where held funds are paid out to
type WithdrawalIntent struct {
	Address        string         `json:"address"`
	PayCurrency    string         `json:"payCurrency"`
	WalletCategory WalletCategory `json:"walletCategory"`
}

func (DepositIntent) Kind() IntentKind      { return IntentKindDeposit }
func (PlanPurchaseIntent) Kind() IntentKind { return IntentKindPlanPurchase }
func (WithdrawalIntent) Kind() IntentKind   { return IntentKindWithdrawal }

// EncodeIntent serializes an intent as a flat JSON object with a "kind"
// discriminator. A nil intent encodes to nil.
func EncodeIntent(intent Intent) ([]byte, error) {
	if intent == nil {
		return nil, nil
	}
	body, err := json.Marshal(intent)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	kind, _ := json.Marshal(intent.Kind())
	fields["kind"] = kind
	return json.Marshal(fields)
}

// DecodeIntent is the inverse of EncodeIntent. Empty input decodes to a nil
// intent. Blobs written without a discriminator but flagged isPlanPurchase are
// read as plan purchases.
func DecodeIntent(raw []byte) (Intent, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte("{}")) {
		return nil, nil
	}

	var envelope struct {
		Kind           IntentKind `json:"kind"`
		IsPlanPurchase bool       `json:"isPlanPurchase"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode intent: %w", err)
	}
	if envelope.Kind == "" && envelope.IsPlanPurchase {
		envelope.Kind = IntentKindPlanPurchase
	}

	switch envelope.Kind {
	case IntentKindDeposit:
		var intent DepositIntent
		if err := json.Unmarshal(raw, &intent); err != nil {
			return nil, fmt.Errorf("decode deposit intent: %w", err)
		}
		return intent, nil
	case IntentKindPlanPurchase:
		var intent PlanPurchaseIntent
		if err := json.Unmarshal(raw, &intent); err != nil {
			return nil, fmt.Errorf("decode plan intent: %w", err)
		}
		if intent.PlanID == uuid.Nil {
			return nil, fmt.Errorf("%w: plan intent without planId", domainerrors.ErrUnsupportedIntent)
		}
		return intent, nil
	case IntentKindWithdrawal:
		var intent WithdrawalIntent
		if err := json.Unmarshal(raw, &intent); err != nil {
			return nil, fmt.Errorf("decode withdrawal intent: %w", err)
		}
		return intent, nil
	default:
		return nil, fmt.Errorf("%w: %q", domainerrors.ErrUnsupportedIntent, envelope.Kind)
	}
}
