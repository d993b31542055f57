package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	domainerrors "lottery-ledger.backend/internal/domain/errors"
	"lottery-ledger.backend/internal/interfaces/http/response"
	"lottery-ledger.backend/internal/usecases"
	"lottery-ledger.backend/pkg/crypto"
	"lottery-ledger.backend/pkg/logger"
)

// maxWebhookBody bounds what we read from the gateway
const maxWebhookBody = 1 << 20

type webhookService interface {
	Process(ctx context.Context, raw []byte, signature string) (*usecases.SettlementResult, error)
}

type settlementTrigger interface {
	TestTrigger(ctx context.Context, referenceID, status string) (*usecases.SettlementResult, error)
}

// WebhookHandler handles gateway IPN notifications
type WebhookHandler struct {
	webhookUsecase webhookService
	settlement     settlementTrigger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(webhookUsecase *usecases.WebhookUsecase, settlement *usecases.SettlementUsecase) *WebhookHandler {
	return &WebhookHandler{webhookUsecase: webhookUsecase, settlement: settlement}
}

// HandlePaymentNotification verifies and applies a gateway notification. The
// gateway only looks at the status code: anything but 200 makes it retry.
// POST /api/v1/webhooks/payments
func (h *WebhookHandler) HandlePaymentNotification(c *gin.Context) {
	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	ctx := c.Request.Context()
	result, err := h.webhookUsecase.Process(ctx, raw, c.GetHeader(crypto.SignatureHeader))
	if err != nil {
		status := webhookStatus(err)
		if status == http.StatusInternalServerError {
			logger.Error(ctx, "webhook processing failed", zap.Error(err))
		}
		c.AbortWithStatus(status)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true, "outcome": result.Outcome})
}

func webhookStatus(err error) int {
	switch {
	case errors.Is(err, domainerrors.ErrInvalidSignature):
		return http.StatusUnauthorized
	case errors.Is(err, domainerrors.ErrTransactionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainerrors.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// TriggerSettlement applies a synthetic status to a transaction without a
// signature. Only routed outside production.
// POST /api/v1/webhooks/payments/test
func (h *WebhookHandler) TriggerSettlement(c *gin.Context) {
	var input struct {
		ReferenceID string `json:"referenceId" binding:"required"`
		Status      string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	result, err := h.settlement.TestTrigger(c.Request.Context(), input.ReferenceID, input.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}
