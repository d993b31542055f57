package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"lottery-ledger.backend/internal/domain/entities"
	domainerrors "lottery-ledger.backend/internal/domain/errors"
	"lottery-ledger.backend/internal/interfaces/http/middleware"
	"lottery-ledger.backend/internal/interfaces/http/response"
	"lottery-ledger.backend/internal/usecases"
)

type paymentService interface {
	InitiateDeposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, priceCurrency, payCurrency string) (*usecases.PaymentInitiation, error)
	InitiateWithdrawal(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, currency, address string, category entities.WalletCategory) (*usecases.PaymentInitiation, error)
	RetryGatewayPayment(ctx context.Context, userID uuid.UUID, referenceID string) (*usecases.PaymentInitiation, error)
	QuoteDeposit(ctx context.Context, amount decimal.Decimal, from, to string) (*entities.PriceEstimate, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Transaction, int, error)
}

// PaymentHandler handles deposit and withdrawal endpoints
type PaymentHandler struct {
	paymentUsecase paymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentUsecase *usecases.PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{paymentUsecase: paymentUsecase}
}

// currentUser writes a 401 and reports false when the request is anonymous
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
	}
	return userID, ok
}

// CreateDeposit opens a crypto deposit into the deposit wallet
// POST /api/v1/deposits
func (h *PaymentHandler) CreateDeposit(c *gin.Context) {
	var input struct {
		Amount        decimal.Decimal `json:"amount"`
		PriceCurrency string          `json:"priceCurrency"`
		PayCurrency   string          `json:"payCurrency" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	out, err := h.paymentUsecase.InitiateDeposit(c.Request.Context(), userID, input.Amount, input.PriceCurrency, input.PayCurrency)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, out)
}

// RetryDeposit repeats the gateway call for a pending transaction
// POST /api/v1/deposits/:reference/retry
func (h *PaymentHandler) RetryDeposit(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	out, err := h.paymentUsecase.RetryGatewayPayment(c.Request.Context(), userID, c.Param("reference"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

// QuoteDeposit estimates the crypto amount for a fiat deposit
// GET /api/v1/deposits/quote?amount=40&from=usd&to=usdttrc20
func (h *PaymentHandler) QuoteDeposit(c *gin.Context) {
	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("amount must be a decimal number"))
		return
	}

	estimate, err := h.paymentUsecase.QuoteDeposit(c.Request.Context(), amount, c.DefaultQuery("from", "usd"), c.Query("to"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, estimate)
}

// CreateWithdrawal holds funds and requests a gateway payout
// POST /api/v1/withdrawals
func (h *PaymentHandler) CreateWithdrawal(c *gin.Context) {
	var input struct {
		Amount         decimal.Decimal         `json:"amount"`
		Currency       string                  `json:"currency" binding:"required"`
		Address        string                  `json:"address" binding:"required"`
		WalletCategory entities.WalletCategory `json:"walletCategory"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	out, err := h.paymentUsecase.InitiateWithdrawal(c.Request.Context(), userID, input.Amount, input.Currency, input.Address, input.WalletCategory)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, out)
}

// ListTransactions pages through the caller's ledger
// GET /api/v1/transactions?limit=20&offset=0
func (h *PaymentHandler) ListTransactions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, total, err := h.paymentUsecase.ListTransactions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"items": items,
		"total": total,
	})
}
