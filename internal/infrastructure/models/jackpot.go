package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Jackpot struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Name             string          `gorm:"type:varchar(100);not null"`
	TicketPrice      decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	Status           string          `gorm:"type:varchar(20);not null;default:'active'"`
	DrawAt           time.Time       `gorm:"not null"`
	TotalTicketsSold int64           `gorm:"not null;default:0"`
	TotalRevenue     decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Jackpot) TableName() string {
	return "jackpots"
}

// Ticket numbers are unique per jackpot among active tickets
// (partial index idx_tickets_active_number).
type Ticket struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	JackpotID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	TransactionID  uuid.UUID       `gorm:"type:uuid;not null"`
	TicketNumber   string          `gorm:"type:varchar(20);not null"`
	PurchaseAmount decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	Status         string          `gorm:"type:varchar(20);not null;default:'active'"`
	IsWinner       bool            `gorm:"default:false;not null"`
	WinningAmount  decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0"`
	CreatedAt      time.Time
}

func (Ticket) TableName() string {
	return "tickets"
}
