package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Wallet struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_wallets_user_category"`
	Category  string          `gorm:"type:varchar(30);not null;uniqueIndex:idx_wallets_user_category"`
	Balance   decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0"`
	Currency  string          `gorm:"type:varchar(10);not null;default:'USD'"`
	IsActive  bool            `gorm:"default:true;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Wallet) TableName() string {
	return "wallets"
}
