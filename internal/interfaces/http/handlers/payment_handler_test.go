package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lottery-ledger.backend/internal/domain/entities"
	domainerrors "lottery-ledger.backend/internal/domain/errors"
	"lottery-ledger.backend/internal/usecases"
)

type paymentServiceStub struct {
	err error

	userID   uuid.UUID
	amount   decimal.Decimal
	currency string
	address  string
	category entities.WalletCategory
	ref      string
	limit    int
	offset   int
}

func (s *paymentServiceStub) initiation(ref string) (*usecases.PaymentInitiation, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &usecases.PaymentInitiation{ReferenceID: ref, GatewayPaymentID: "np-1", Status: "waiting"}, nil
}

func (s *paymentServiceStub) InitiateDeposit(_ context.Context, userID uuid.UUID, amount decimal.Decimal, _, payCurrency string) (*usecases.PaymentInitiation, error) {
	s.userID, s.amount, s.currency = userID, amount, payCurrency
	return s.initiation("DEP-1")
}

func (s *paymentServiceStub) InitiateWithdrawal(_ context.Context, userID uuid.UUID, amount decimal.Decimal, currency, address string, category entities.WalletCategory) (*usecases.PaymentInitiation, error) {
	s.userID, s.amount, s.currency, s.address, s.category = userID, amount, currency, address, category
	return s.initiation("WDR-1")
}

func (s *paymentServiceStub) RetryGatewayPayment(_ context.Context, userID uuid.UUID, referenceID string) (*usecases.PaymentInitiation, error) {
	s.userID, s.ref = userID, referenceID
	return s.initiation(referenceID)
}

func (s *paymentServiceStub) QuoteDeposit(_ context.Context, amount decimal.Decimal, from, to string) (*entities.PriceEstimate, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &entities.PriceEstimate{CurrencyFrom: from, AmountFrom: amount, CurrencyTo: to, EstimatedAmount: amount}, nil
}

func (s *paymentServiceStub) ListTransactions(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Transaction, int, error) {
	s.userID, s.limit, s.offset = userID, limit, offset
	return []*entities.Transaction{{ReferenceID: "DEP-1", UserID: userID}}, 7, s.err
}

func newPaymentRouter(svc *paymentServiceStub, anonymous bool) http.Handler {
	h := &PaymentHandler{paymentUsecase: svc}
	r := newRouter(anonymous)
	r.POST("/deposits", h.CreateDeposit)
	r.GET("/deposits/quote", h.QuoteDeposit)
	r.POST("/deposits/:reference/retry", h.RetryDeposit)
	r.POST("/withdrawals", h.CreateWithdrawal)
	r.GET("/transactions", h.ListTransactions)
	return r
}

func TestCreateDeposit(t *testing.T) {
	svc := &paymentServiceStub{}
	r := newPaymentRouter(svc, false)

	w := doJSON(r, http.MethodPost, "/deposits", `{"amount":"40.5","priceCurrency":"USD","payCurrency":"usdttrc20"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "DEP-1", decodeBody(t, w)["referenceId"])
	assert.Equal(t, testUserID, svc.userID)
	assert.True(t, svc.amount.Equal(decimal.RequireFromString("40.5")))

	w = doJSON(r, http.MethodPost, "/deposits", `{"amount":40}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "payCurrency is required")

	svc.err = domainerrors.ErrAmountBelowMinimum
	w = doJSON(r, http.MethodPost, "/deposits", `{"amount":1,"payCurrency":"btc"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domainerrors.CodeValidation, decodeBody(t, w)["code"])

	svc.err = &domainerrors.GatewayError{ReferenceID: "DEP-2", Err: domainerrors.ErrGateway}
	w = doJSON(r, http.MethodPost, "/deposits", `{"amount":40,"payCurrency":"btc"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "DEP-2", decodeBody(t, w)["referenceId"])
}

func TestCreateDeposit_Anonymous(t *testing.T) {
	r := newPaymentRouter(&paymentServiceStub{}, true)

	w := doJSON(r, http.MethodPost, "/deposits", `{"amount":40,"payCurrency":"btc"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestQuoteDeposit(t *testing.T) {
	r := newPaymentRouter(&paymentServiceStub{}, false)

	w := doJSON(r, http.MethodGet, "/deposits/quote?amount=40&to=usdttrc20", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "usd", body["currencyFrom"])
	assert.Equal(t, "usdttrc20", body["currencyTo"])

	w = doJSON(r, http.MethodGet, "/deposits/quote?amount=lots&to=btc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRetryDeposit(t *testing.T) {
	svc := &paymentServiceStub{}
	r := newPaymentRouter(svc, false)

	w := doJSON(r, http.MethodPost, "/deposits/DEP-7/retry", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DEP-7", svc.ref)

	svc.err = domainerrors.Conflict("gateway payment already exists", nil)
	w = doJSON(r, http.MethodPost, "/deposits/DEP-7/retry", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateWithdrawal(t *testing.T) {
	svc := &paymentServiceStub{}
	r := newPaymentRouter(svc, false)

	w := doJSON(r, http.MethodPost, "/withdrawals", map[string]interface{}{
		"amount":         "12.5",
		"currency":       "eth",
		"address":        "0x52908400098527886e0f7030069857d2e4169ee7",
		"walletCategory": "winnings",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, entities.WalletCategoryWinnings, svc.category)
	assert.Equal(t, "eth", svc.currency)

	w = doJSON(r, http.MethodPost, "/withdrawals", `{"amount":"12.5","currency":"eth"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "address is required")

	svc.err = domainerrors.ErrInsufficientFunds
	w = doJSON(r, http.MethodPost, "/withdrawals", `{"amount":"99","currency":"eth","address":"0x1"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestListTransactions(t *testing.T) {
	svc := &paymentServiceStub{}
	r := newPaymentRouter(svc, false)

	w := doJSON(r, http.MethodGet, "/transactions?limit=5&offset=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, svc.limit)
	assert.Equal(t, 10, svc.offset)
	assert.Equal(t, float64(7), decodeBody(t, w)["total"])
}
