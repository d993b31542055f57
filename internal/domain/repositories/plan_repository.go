package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"lottery-ledger.backend/internal/domain/entities"
)

// PlanRepository defines plan catalogue reads
type PlanRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Plan, error)
}

// UserPlanRepository defines entitlement data operations
type UserPlanRepository interface {
	Create(ctx context.Context, plan *entities.UserPlan) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.UserPlan, error)
	// FindCurrent returns the active entitlement for (user, plan) or ErrNotFound
	FindCurrent(ctx context.Context, userID, planID uuid.UUID) (*entities.UserPlan, error)
	// FindCurrentInCategory returns active entitlements of the user in a plan category
	FindCurrentInCategory(ctx context.Context, userID uuid.UUID, category string) ([]*entities.UserPlan, error)
	Update(ctx context.Context, plan *entities.UserPlan) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.UserPlan, error)
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}
