package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"lottery-ledger.backend/internal/domain/entities"
	domainerrors "lottery-ledger.backend/internal/domain/errors"
	"lottery-ledger.backend/internal/domain/repositories"
	"lottery-ledger.backend/pkg/logger"
)

// EntitlementUsecase issues and manages plan entitlements
type EntitlementUsecase struct {
	uow          repositories.UnitOfWork
	planRepo     repositories.PlanRepository
	userPlanRepo repositories.UserPlanRepository
	userRepo     repositories.UserRepository
	outbox       repositories.OutboxRepository
}

// NewEntitlementUsecase creates a new entitlement usecase
func NewEntitlementUsecase(
	uow repositories.UnitOfWork,
	planRepo repositories.PlanRepository,
	userPlanRepo repositories.UserPlanRepository,
	userRepo repositories.UserRepository,
	outbox repositories.OutboxRepository,
) *EntitlementUsecase {
	return &EntitlementUsecase{
		uow:          uow,
		planRepo:     planRepo,
		userPlanRepo: userPlanRepo,
		userRepo:     userRepo,
		outbox:       outbox,
	}
}

// CheckExclusive fails with ErrExclusivePlanHeld when plan is exclusive and
// the user already holds a different exclusive plan of the same category.
// Non-exclusive plans in the category never block, and renewing a held plan
// is always allowed.
func (u *EntitlementUsecase) CheckExclusive(ctx context.Context, userID uuid.UUID, plan *entities.Plan) error {
	if !plan.IsExclusive {
		return nil
	}
	held, err := u.userPlanRepo.FindCurrentInCategory(ctx, userID, plan.Category)
	if err != nil {
		return err
	}
	// holding plan itself means this purchase extends it
	for _, p := range held {
		if p.PlanID == plan.ID {
			return nil
		}
	}
	for _, p := range held {
		if p.Plan == nil || p.Plan.IsExclusive {
			return fmt.Errorf("%w: category %s", domainerrors.ErrExclusivePlanHeld, plan.Category)
		}
	}
	return nil
}

// IssuePlan creates or extends the user's entitlement for planID as the
// effect of tx. It must run inside the caller's unit of work: the user row
// lock taken here serializes concurrent issuance for the same user.
func (u *EntitlementUsecase) IssuePlan(ctx context.Context, userID, planID uuid.UUID, tx *entities.Transaction) (*entities.UserPlan, error) {
	if err := u.userRepo.Lock(ctx, userID); err != nil {
		return nil, fmt.Errorf("lock user %s: %w", userID, err)
	}
	plan, err := u.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("load plan %s: %w", planID, err)
	}

	now := timeNow()
	existing, err := u.userPlanRepo.FindCurrent(u.uow.WithLock(ctx), userID, planID)
	switch {
	case err == nil && existing.IsCurrent():
		return u.extend(ctx, existing, plan, tx, now)
	case err != nil && !errors.Is(err, domainerrors.ErrNotFound):
		return nil, err
	}

	if err := u.CheckExclusive(ctx, userID, plan); err != nil {
		return nil, err
	}

	userPlan := &entities.UserPlan{
		UserID:             userID,
		PlanID:             planID,
		PurchasePrice:      tx.Amount,
		PurchaseDate:       now,
		ExpiryDate:         entities.PlanExpiryFrom(now),
		PaymentMethod:      paymentMethodOf(tx),
		TransactionRef:     tx.ReferenceID,
		Status:             entities.UserPlanStatusActive,
		VerificationStatus: entities.VerificationPending,
		IsActive:           true,
		Plan:               plan,
	}
	if err := u.userPlanRepo.Create(ctx, userPlan); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("plan already active", err)
		}
		return nil, err
	}

	if err := u.outbox.Add(ctx, entities.TopicPlanIssued, notification(tx,
		fmt.Sprintf("plan %s issued, awaiting verification", plan.Name))); err != nil {
		return nil, err
	}
	logger.Info(ctx, "plan issued",
		zap.String("userPlanId", userPlan.ID.String()),
		zap.String("plan", plan.Name),
		zap.Time("expiry", userPlan.ExpiryDate),
	)
	return userPlan, nil
}

// extend moves expiry one term past the current expiry, not past now
func (u *EntitlementUsecase) extend(ctx context.Context, userPlan *entities.UserPlan, plan *entities.Plan, tx *entities.Transaction, now time.Time) (*entities.UserPlan, error) {
	userPlan.ExpiryDate = entities.PlanExpiryFrom(userPlan.ExpiryDate)
	note := fmt.Sprintf("extended %s via %s", now.UTC().Format(time.RFC3339), tx.ReferenceID)
	if userPlan.Notes.Valid && userPlan.Notes.String != "" {
		note = userPlan.Notes.String + "\n" + note
	}
	userPlan.Notes = null.StringFrom(note)
	userPlan.Plan = plan

	if err := u.userPlanRepo.Update(ctx, userPlan); err != nil {
		return nil, err
	}
	if err := u.outbox.Add(ctx, entities.TopicPlanIssued, notification(tx,
		fmt.Sprintf("plan %s extended to %s", plan.Name, userPlan.ExpiryDate.Format("2006-01-02")))); err != nil {
		return nil, err
	}
	logger.Info(ctx, "plan extended",
		zap.String("userPlanId", userPlan.ID.String()),
		zap.Time("expiry", userPlan.ExpiryDate),
	)
	return userPlan, nil
}

// Verify marks an entitlement as verified by the back office
func (u *EntitlementUsecase) Verify(ctx context.Context, userPlanID uuid.UUID) (*entities.UserPlan, error) {
	userPlan, err := u.userPlanRepo.GetByID(ctx, userPlanID)
	if err != nil {
		return nil, err
	}
	if userPlan.VerificationStatus == entities.VerificationVerified {
		return userPlan, nil
	}
	userPlan.VerificationStatus = entities.VerificationVerified
	if err := u.userPlanRepo.Update(ctx, userPlan); err != nil {
		return nil, err
	}
	return userPlan, nil
}

// Reject deletes the entitlement outright
func (u *EntitlementUsecase) Reject(ctx context.Context, userPlanID uuid.UUID) error {
	if err := u.userPlanRepo.Delete(ctx, userPlanID); err != nil {
		return err
	}
	logger.Info(ctx, "plan rejected", zap.String("userPlanId", userPlanID.String()))
	return nil
}

// Cancel ends an active entitlement at the owner's request. No refund is made.
func (u *EntitlementUsecase) Cancel(ctx context.Context, userID, userPlanID uuid.UUID) (*entities.UserPlan, error) {
	userPlan, err := u.userPlanRepo.GetByID(ctx, userPlanID)
	if err != nil {
		return nil, err
	}
	if userPlan.UserID != userID {
		return nil, domainerrors.ErrNotFound
	}
	if !userPlan.IsCurrent() {
		return nil, domainerrors.Conflict("plan is not active", nil)
	}
	userPlan.Status = entities.UserPlanStatusCancelled
	userPlan.IsActive = false
	if err := u.userPlanRepo.Update(ctx, userPlan); err != nil {
		return nil, err
	}
	return userPlan, nil
}

// ExpireDue marks active entitlements past their expiry as expired
func (u *EntitlementUsecase) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	return u.userPlanRepo.ExpireDue(ctx, now)
}

// ListForUser lists a user's entitlements
func (u *EntitlementUsecase) ListForUser(ctx context.Context, userID uuid.UUID) ([]*entities.UserPlan, error) {
	return u.userPlanRepo.ListByUser(ctx, userID)
}

func paymentMethodOf(tx *entities.Transaction) entities.PaymentMethod {
	if tx.WalletID != nil {
		return entities.PaymentMethodWallet
	}
	return entities.PaymentMethodCrypto
}
