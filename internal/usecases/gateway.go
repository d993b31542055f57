package usecases

import (
	"context"

	"github.com/shopspring/decimal"
	"lottery-ledger.backend/internal/domain/entities"
)

// PaymentGateway is the outbound payment provider the ledger depends on
type PaymentGateway interface {
	CreatePayment(ctx context.Context, req entities.PaymentRequest) (*entities.GatewayPayment, error)
	GetPaymentStatus(ctx context.Context, paymentID string) (*entities.GatewayPayment, error)
	GetEstimatedPrice(ctx context.Context, amount decimal.Decimal, from, to string) (*entities.PriceEstimate, error)
	GetMinimumAmount(ctx context.Context, from, to string) (*entities.MinimumAmount, error)
	CreatePayout(ctx context.Context, req entities.PayoutRequest) (*entities.GatewayPayment, error)
}
