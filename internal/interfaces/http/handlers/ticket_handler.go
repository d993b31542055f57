package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"lottery-ledger.backend/internal/domain/entities"
	domainerrors "lottery-ledger.backend/internal/domain/errors"
	"lottery-ledger.backend/internal/interfaces/http/response"
	"lottery-ledger.backend/internal/usecases"
)

type ticketService interface {
	PurchaseTickets(ctx context.Context, userID, jackpotID uuid.UUID, numbers []string, category entities.WalletCategory) (*usecases.TicketPurchase, error)
	ListTickets(ctx context.Context, userID, jackpotID uuid.UUID) ([]*entities.Ticket, error)
}

// TicketHandler handles jackpot ticket endpoints
type TicketHandler struct {
	ticketUsecase ticketService
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(ticketUsecase *usecases.TicketUsecase) *TicketHandler {
	return &TicketHandler{ticketUsecase: ticketUsecase}
}

// PurchaseTickets buys numbers in a jackpot from a wallet
// POST /api/v1/jackpots/:id/tickets
func (h *TicketHandler) PurchaseTickets(c *gin.Context) {
	var input struct {
		Numbers        []string                `json:"numbers" binding:"required,min=1"`
		WalletCategory entities.WalletCategory `json:"walletCategory"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	jackpotID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	purchase, err := h.ticketUsecase.PurchaseTickets(c.Request.Context(), userID, jackpotID, input.Numbers, input.WalletCategory)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, purchase)
}

// ListTickets lists the caller's tickets in a jackpot
// GET /api/v1/jackpots/:id/tickets
func (h *TicketHandler) ListTickets(c *gin.Context) {
	jackpotID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	tickets, err := h.ticketUsecase.ListTickets(c.Request.Context(), userID, jackpotID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": tickets})
}
