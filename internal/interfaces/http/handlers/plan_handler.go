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

type planPurchaseService interface {
	InitiatePlanPurchase(ctx context.Context, userID, planID uuid.UUID, payCurrency string) (*usecases.PaymentInitiation, error)
	PurchasePlanWithWallet(ctx context.Context, userID, planID uuid.UUID) (*entities.UserPlan, error)
}

type entitlementService interface {
	Verify(ctx context.Context, userPlanID uuid.UUID) (*entities.UserPlan, error)
	Reject(ctx context.Context, userPlanID uuid.UUID) error
	Cancel(ctx context.Context, userID, userPlanID uuid.UUID) (*entities.UserPlan, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*entities.UserPlan, error)
}

// PlanHandler handles plan purchases and entitlement management
type PlanHandler struct {
	payments     planPurchaseService
	entitlements entitlementService
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(payments *usecases.PaymentUsecase, entitlements *usecases.EntitlementUsecase) *PlanHandler {
	return &PlanHandler{payments: payments, entitlements: entitlements}
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// PurchasePlan opens a crypto payment for a plan
// POST /api/v1/plans/:id/purchase
func (h *PlanHandler) PurchasePlan(c *gin.Context) {
	var input struct {
		PayCurrency string `json:"payCurrency" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	planID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	out, err := h.payments.InitiatePlanPurchase(c.Request.Context(), userID, planID, input.PayCurrency)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, out)
}

// PurchasePlanWithWallet pays for a plan from the deposit wallet
// POST /api/v1/plans/:id/purchase-with-wallet
func (h *PlanHandler) PurchasePlanWithWallet(c *gin.Context) {
	planID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	userPlan, err := h.payments.PurchasePlanWithWallet(c.Request.Context(), userID, planID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, userPlan)
}

// ListUserPlans lists the caller's entitlements
// GET /api/v1/user-plans
func (h *PlanHandler) ListUserPlans(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	plans, err := h.entitlements.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": plans})
}

// CancelUserPlan ends one of the caller's entitlements
// POST /api/v1/user-plans/:id/cancel
func (h *PlanHandler) CancelUserPlan(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	userPlan, err := h.entitlements.Cancel(c.Request.Context(), userID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, userPlan)
}

// VerifyUserPlan marks an entitlement as verified
// POST /api/v1/admin/user-plans/:id/verify
func (h *PlanHandler) VerifyUserPlan(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	userPlan, err := h.entitlements.Verify(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, userPlan)
}

// RejectUserPlan deletes an entitlement that failed review
// POST /api/v1/admin/user-plans/:id/reject
func (h *PlanHandler) RejectUserPlan(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.entitlements.Reject(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
