package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// PlanTerm is how long one purchase of a plan lasts
const PlanTerm = 1

// PlanExpiryFrom returns the expiry one plan term after t
func PlanExpiryFrom(t time.Time) time.Time {
	return t.AddDate(PlanTerm, 0, 0)
}

// Plan is a subscription product. Plans whose category is exclusive allow a
// user at most one active entitlement in that category.
type Plan struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	IsExclusive bool            `json:"isExclusive"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// UserPlanStatus is the lifecycle state of an entitlement
type UserPlanStatus string

const (
	UserPlanStatusActive    UserPlanStatus = "active"
	UserPlanStatusCancelled UserPlanStatus = "cancelled"
	UserPlanStatusExpired   UserPlanStatus = "expired"
)

// VerificationStatus is the manual back-office review state
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// PaymentMethod records how an entitlement was paid for
type PaymentMethod string

const (
	PaymentMethodCrypto PaymentMethod = "crypto"
	PaymentMethodWallet PaymentMethod = "wallet"
)

// UserPlan is a user's entitlement to a plan
type UserPlan struct {
	ID                 uuid.UUID          `json:"id"`
	UserID             uuid.UUID          `json:"userId"`
	PlanID             uuid.UUID          `json:"planId"`
	PurchasePrice      decimal.Decimal    `json:"purchasePrice"`
	PurchaseDate       time.Time          `json:"purchaseDate"`
	ExpiryDate         time.Time          `json:"expiryDate"`
	PaymentMethod      PaymentMethod      `json:"paymentMethod"`
	TransactionRef     string             `json:"transactionRef"`
	Status             UserPlanStatus     `json:"status"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
	IsActive           bool               `json:"isActive"`
	Notes              null.String        `json:"notes"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`

	Plan *Plan `json:"plan,omitempty"`
}

// IsCurrent reports whether the entitlement currently grants its benefits
func (p *UserPlan) IsCurrent() bool {
	return p.Status == UserPlanStatusActive && p.IsActive
}
