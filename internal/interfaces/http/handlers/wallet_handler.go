package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"lottery-ledger.backend/internal/domain/entities"
	"lottery-ledger.backend/internal/interfaces/http/response"
	"lottery-ledger.backend/internal/usecases"
)

type walletService interface {
	EnsureWallets(ctx context.Context, userID uuid.UUID) ([]*entities.Wallet, error)
	EraseAccount(ctx context.Context, userID uuid.UUID) error
}

// WalletHandler handles wallet endpoints
type WalletHandler struct {
	walletUsecase walletService
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(walletUsecase *usecases.WalletUsecase) *WalletHandler {
	return &WalletHandler{walletUsecase: walletUsecase}
}

// ListWallets lists the caller's wallets, creating missing categories
// GET /api/v1/wallets
func (h *WalletHandler) ListWallets(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	wallets, err := h.walletUsecase.EnsureWallets(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": wallets})
}

// EraseAccount deletes a user with every wallet, transaction, entitlement
// and ticket they own
// DELETE /api/v1/admin/users/:id
func (h *WalletHandler) EraseAccount(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.walletUsecase.EraseAccount(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
