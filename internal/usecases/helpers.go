package usecases

import (
	"time"

	"github.com/volatiletech/null/v8"
	"lottery-ledger.backend/internal/domain/entities"
)

func nullTime(t time.Time) null.Time {
	return null.TimeFrom(t)
}

func notification(tx *entities.Transaction, message string) entities.NotificationPayload {
	return entities.NotificationPayload{
		UserID:      tx.UserID,
		ReferenceID: tx.ReferenceID,
		Type:        tx.Type,
		Status:      tx.Status,
		Amount:      tx.Amount.String(),
		Currency:    tx.Currency,
		Message:     message,
	}
}

func nullString(s string) null.String {
	if s == "" {
		return null.String{}
	}
	return null.StringFrom(s)
}
