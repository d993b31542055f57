package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type OutboxEvent struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Topic     string         `gorm:"type:varchar(50);not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	Attempts  int            `gorm:"not null;default:0"`
	LastError *string        `gorm:"type:text"`
	SentAt    *time.Time     `gorm:"index"`
	CreatedAt time.Time
}

func (OutboxEvent) TableName() string {
	return "outbox_events"
}
