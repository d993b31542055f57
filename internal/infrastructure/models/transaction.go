package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Transaction struct {
	ID               uuid.UUID           `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID           uuid.UUID           `gorm:"type:uuid;not null;index"`
	WalletID         *uuid.UUID          `gorm:"type:uuid;index"`
	Type             string              `gorm:"type:varchar(30);not null"`
	Amount           decimal.Decimal     `gorm:"type:decimal(20,8);not null"`
	Currency         string              `gorm:"type:varchar(10);not null"`
	ReferenceID      string              `gorm:"type:varchar(100);uniqueIndex;not null"`
	GatewayPaymentID *string             `gorm:"type:varchar(100);index"`
	PayAddress       *string             `gorm:"type:varchar(255)"`
	PayAmount        decimal.NullDecimal `gorm:"type:decimal(30,12)"`
	PayCurrency      *string             `gorm:"type:varchar(20)"`
	Status           string              `gorm:"type:varchar(20);not null;index"`
	Metadata         datatypes.JSON      `gorm:"type:jsonb;not null;default:'{}'"` // encoded entities.Intent
	Description      string              `gorm:"type:text"`
	GatewayResponse  datatypes.JSON      `gorm:"type:jsonb;not null;default:'{}'"`
	ProcessedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Transaction) TableName() string {
	return "transactions"
}
