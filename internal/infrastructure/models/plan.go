package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Plan struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Name        string          `gorm:"type:varchar(100);not null"`
	Category    string          `gorm:"type:varchar(50);not null;index"`
	IsExclusive bool            `gorm:"default:false;not null"`
	Price       decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	Currency    string          `gorm:"type:varchar(10);not null;default:'USD'"`
	IsActive    bool            `gorm:"default:true;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Plan) TableName() string {
	return "plans"
}

// UserPlan has a partial unique index on (user_id, plan_id) WHERE status = 'active'
// created by the schema migration; gorm tags cannot express it.
type UserPlan struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	PlanID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	PurchasePrice      decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	PurchaseDate       time.Time       `gorm:"not null"`
	ExpiryDate         time.Time       `gorm:"not null;index"`
	PaymentMethod      string          `gorm:"type:varchar(20);not null"`
	TransactionRef     string          `gorm:"type:varchar(100)"`
	Status             string          `gorm:"type:varchar(20);not null;default:'active'"`
	VerificationStatus string          `gorm:"type:varchar(20);not null;default:'pending'"`
	IsActive           bool            `gorm:"default:true;not null"`
	Notes              *string         `gorm:"type:text"`
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// Relations
	Plan *Plan `gorm:"foreignKey:PlanID"`
}

func (UserPlan) TableName() string {
	return "user_plans"
}
