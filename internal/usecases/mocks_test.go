package usecases_test

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"lottery-ledger.backend/internal/domain/entities"
)

// MockPaymentGateway mocks the payment provider
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreatePayment(ctx context.Context, req entities.PaymentRequest) (*entities.GatewayPayment, error) {
	args := m.Called(ctx, req)
	if fn, ok := args.Get(0).(func(entities.PaymentRequest) *entities.GatewayPayment); ok {
		return fn(req), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GatewayPayment), args.Error(1)
}

func (m *MockPaymentGateway) GetPaymentStatus(ctx context.Context, paymentID string) (*entities.GatewayPayment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GatewayPayment), args.Error(1)
}

func (m *MockPaymentGateway) GetEstimatedPrice(ctx context.Context, amount decimal.Decimal, from, to string) (*entities.PriceEstimate, error) {
	args := m.Called(ctx, amount, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PriceEstimate), args.Error(1)
}

func (m *MockPaymentGateway) GetMinimumAmount(ctx context.Context, from, to string) (*entities.MinimumAmount, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.MinimumAmount), args.Error(1)
}

func (m *MockPaymentGateway) CreatePayout(ctx context.Context, req entities.PayoutRequest) (*entities.GatewayPayment, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GatewayPayment), args.Error(1)
}
