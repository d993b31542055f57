package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// TransactionType describes why money moved
type TransactionType string

const (
	TransactionTypeDeposit        TransactionType = "deposit"
	TransactionTypeWithdrawal     TransactionType = "withdrawal"
	TransactionTypeTicketPurchase TransactionType = "ticket_purchase"
	TransactionTypePlanPurchase   TransactionType = "plan_purchase"
	TransactionTypeCommission     TransactionType = "commission"
	TransactionTypeBonus          TransactionType = "bonus"
	TransactionTypeRefund         TransactionType = "refund"
)

// TransactionStatus is the settlement state of a transaction
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// IsTerminal reports whether no further transition is allowed
func (s TransactionStatus) IsTerminal() bool {
	switch s {
	case TransactionStatusCompleted, TransactionStatusFailed, TransactionStatusCancelled:
		return true
	}
	return false
}

// CanTransition encodes the state machine: pending may move to any terminal
// state, terminal states never move.
func CanTransition(from, to TransactionStatus) bool {
	return from == TransactionStatusPending && to.IsTerminal()
}

// Transaction is a money-moving intent. ReferenceID is the gateway order id
// and the idempotency key for webhook application.
type Transaction struct {
	ID               uuid.UUID           `json:"id"`
	UserID           uuid.UUID           `json:"userId"`
	WalletID         *uuid.UUID          `json:"walletId,omitempty"`
	Type             TransactionType     `json:"type"`
	Amount           decimal.Decimal     `json:"amount"`
	Currency         string              `json:"currency"`
	ReferenceID      string              `json:"referenceId"`
	GatewayPaymentID null.String         `json:"gatewayPaymentId"`
	PayAddress       null.String         `json:"payAddress"`
	PayAmount        decimal.NullDecimal `json:"payAmount"`
	PayCurrency      null.String         `json:"payCurrency"`
	Status           TransactionStatus   `json:"status"`
	Intent           Intent              `json:"intent,omitempty"`
	Description      string              `json:"description,omitempty"`
	GatewayResponse  json.RawMessage     `json:"-"`
	ProcessedAt      null.Time           `json:"processedAt"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}
