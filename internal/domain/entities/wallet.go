package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletCategory separates the balances a user holds
type WalletCategory string

const (
	WalletCategoryDeposit     WalletCategory = "deposit"
	WalletCategoryWinnings    WalletCategory = "winnings"
	WalletCategoryTicketBonus WalletCategory = "ticket_bonus"
)

// WalletCategories lists every category created for a new user
var WalletCategories = []WalletCategory{
	WalletCategoryDeposit,
	WalletCategoryWinnings,
	WalletCategoryTicketBonus,
}

// IsValid reports whether the category is one the ledger knows about
func (c WalletCategory) IsValid() bool {
	switch c {
	case WalletCategoryDeposit, WalletCategoryWinnings, WalletCategoryTicketBonus:
		return true
	}
	return false
}

// DefaultCurrency is the currency every wallet balance is kept in
const DefaultCurrency = "USD"

// Wallet represents one balance of a user. There is exactly one wallet per
// (user, category).
type Wallet struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"userId"`
	Category  WalletCategory  `json:"category"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	IsActive  bool            `json:"isActive"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
