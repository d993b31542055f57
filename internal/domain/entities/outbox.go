package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// Outbox topics
const (
	TopicPaymentConfirmed    = "payment.confirmed"
	TopicPaymentFailed       = "payment.failed"
	TopicWithdrawalCompleted = "withdrawal.completed"
	TopicPlanIssued          = "plan.issued"
	TopicPlanConflictRefund  = "plan.conflict_refund"
	TopicTicketsPurchased    = "tickets.purchased"
)

// OutboxEvent is a notification recorded in the same database transaction as
// the state change it describes, delivered later by the dispatcher.
type OutboxEvent struct {
	ID        uuid.UUID       `json:"id"`
	Topic     string          `json:"topic"`
	Payload   json.RawMessage `json:"payload"`
	Attempts  int             `json:"attempts"`
	LastError null.String     `json:"lastError"`
	SentAt    null.Time       `json:"sentAt"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NotificationPayload is the body of payment related outbox events
type NotificationPayload struct {
	UserID      uuid.UUID         `json:"userId"`
	ReferenceID string            `json:"referenceId"`
	Type        TransactionType   `json:"type"`
	Status      TransactionStatus `json:"status"`
	Amount      string            `json:"amount"`
	Currency    string            `json:"currency"`
	Message     string            `json:"message,omitempty"`
}
