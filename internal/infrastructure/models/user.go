package models

import (
	"time"

	"github.com/google/uuid"
)

// User is owned by the auth service; the ledger only reads it and locks rows.
type User struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Email      string     `gorm:"type:varchar(255);uniqueIndex;not null"`
	ReferrerID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (User) TableName() string {
	return "users"
}
