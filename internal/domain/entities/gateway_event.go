package entities

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// GatewayStatus is the normalized payment status reported by the gateway
type GatewayStatus string

const (
	GatewayStatusConfirmed GatewayStatus = "confirmed"
	GatewayStatusFinished  GatewayStatus = "finished"
	GatewayStatusFailed    GatewayStatus = "failed"
	GatewayStatusExpired   GatewayStatus = "expired"
	GatewayStatusPending   GatewayStatus = "pending"
)

// NormalizedEvent is a gateway notification translated into ledger terms
type NormalizedEvent struct {
	ReferenceID      string          `json:"referenceId"`
	GatewayPaymentID string          `json:"gatewayPaymentId"`
	PaymentStatus    GatewayStatus   `json:"paymentStatus"`
	PayAmount        decimal.Decimal `json:"payAmount"`
	PayCurrency      string          `json:"payCurrency"`
	PriceAmount      decimal.Decimal `json:"priceAmount"`
	PriceCurrency    string          `json:"priceCurrency"`
	Raw              json.RawMessage `json:"-"`
}

// PaymentRequest asks the gateway to open a crypto payment for an order
type PaymentRequest struct {
	PriceAmount      decimal.Decimal
	PriceCurrency    string
	PayCurrency      string
	OrderID          string
	OrderDescription string
	CallbackURL      string
}

// GatewayPayment is the gateway's view of a payment or payout
type GatewayPayment struct {
	PaymentID     string
	PaymentStatus string
	OrderID       string
	PayAddress    string
	PayAmount     decimal.NullDecimal
	PayCurrency   string
	Raw           json.RawMessage
}

// PayoutRequest asks the gateway to send funds to an external address
type PayoutRequest struct {
	Address     string
	Currency    string
	Amount      decimal.Decimal
	Reference   string
	CallbackURL string
}

// PriceEstimate is the gateway's conversion estimate between two currencies
type PriceEstimate struct {
	CurrencyFrom    string          `json:"currencyFrom"`
	AmountFrom      decimal.Decimal `json:"amountFrom"`
	CurrencyTo      string          `json:"currencyTo"`
	EstimatedAmount decimal.Decimal `json:"estimatedAmount"`
}

// MinimumAmount is the smallest payment the gateway accepts for a pair
type MinimumAmount struct {
	CurrencyFrom   string
	CurrencyTo     string
	MinAmount      decimal.Decimal
	FiatEquivalent decimal.Decimal
}
