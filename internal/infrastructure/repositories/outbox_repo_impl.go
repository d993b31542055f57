package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"lottery-ledger.backend/internal/domain/entities"
	"lottery-ledger.backend/internal/infrastructure/models"
)

// OutboxRepository implements the notification outbox
type OutboxRepository struct {
	db *gorm.DB
}

// NewOutboxRepository creates a new outbox repository
func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// Add records an event in the current transaction, if any
func (r *OutboxRepository) Add(ctx context.Context, topic string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode outbox payload: %w", err)
	}
	m := &models.OutboxEvent{
		ID:        uuid.New(),
		Topic:     topic,
		Payload:   datatypes.JSON(body),
		CreatedAt: time.Now(),
	}
	return GetDB(ctx, r.db).Create(m).Error
}

// ListUnsent lists undelivered events that still have attempts left, oldest first
func (r *OutboxRepository) ListUnsent(ctx context.Context, maxAttempts, limit int) ([]*entities.OutboxEvent, error) {
	var ms []models.OutboxEvent
	if err := GetDB(ctx, r.db).
		Where("sent_at IS NULL AND attempts < ?", maxAttempts).
		Order("created_at ASC").
		Limit(limit).
		Find(&ms).Error; err != nil {
		return nil, err
	}

	events := make([]*entities.OutboxEvent, 0, len(ms))
	for _, m := range ms {
		events = append(events, &entities.OutboxEvent{
			ID:        m.ID,
			Topic:     m.Topic,
			Payload:   json.RawMessage(m.Payload),
			Attempts:  m.Attempts,
			LastError: null.StringFromPtr(m.LastError),
			SentAt:    null.TimeFromPtr(m.SentAt),
			CreatedAt: m.CreatedAt,
		})
	}
	return events, nil
}

// MarkSent records a successful delivery
func (r *OutboxRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"sent_at":  time.Now(),
			"attempts": gorm.Expr("attempts + 1"),
		}).Error
}

// MarkFailed records a failed delivery attempt
func (r *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return GetDB(ctx, r.db).Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_error": reason,
			"attempts":   gorm.Expr("attempts + 1"),
		}).Error
}
