package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"lottery-ledger.backend/internal/domain/entities"
	domainerrors "lottery-ledger.backend/internal/domain/errors"
	"lottery-ledger.backend/internal/infrastructure/models"
)

// PlanRepository implements plan catalogue reads
type PlanRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository
func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// GetByID gets a plan by ID
func (r *PlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Plan, error) {
	var m models.Plan
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if isNotFound(err) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return planToEntity(&m), nil
}

func planToEntity(m *models.Plan) *entities.Plan {
	if m == nil {
		return nil
	}
	return &entities.Plan{
		ID:          m.ID,
		Name:        m.Name,
		Category:    m.Category,
		IsExclusive: m.IsExclusive,
		Price:       m.Price,
		Currency:    m.Currency,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// UserPlanRepository implements entitlement data operations
type UserPlanRepository struct {
	db *gorm.DB
}

// NewUserPlanRepository creates a new user plan repository
func NewUserPlanRepository(db *gorm.DB) *UserPlanRepository {
	return &UserPlanRepository{db: db}
}

// Create inserts an entitlement. A second active row for the same plan
// violates idx_user_plans_active and returns ErrAlreadyExists.
func (r *UserPlanRepository) Create(ctx context.Context, plan *entities.UserPlan) error {
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	m := r.toModel(plan)
	if err := GetDB(ctx, r.db).Omit("Plan").Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	plan.CreatedAt = m.CreatedAt
	plan.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID gets an entitlement by ID with its plan
func (r *UserPlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.UserPlan, error) {
	var m models.UserPlan
	if err := GetDB(ctx, r.db).Preload("Plan").Where("id = ?", id).First(&m).Error; err != nil {
		if isNotFound(err) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// FindCurrent returns the active entitlement of a user for a plan
func (r *UserPlanRepository) FindCurrent(ctx context.Context, userID, planID uuid.UUID) (*entities.UserPlan, error) {
	var m models.UserPlan
	if err := lockedDB(ctx, r.db).
		Where("user_id = ? AND plan_id = ? AND status = ?", userID, planID, string(entities.UserPlanStatusActive)).
		Order("expiry_date DESC").
		First(&m).Error; err != nil {
		if isNotFound(err) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// FindCurrentInCategory lists the active entitlements of a user whose plan is in category
func (r *UserPlanRepository) FindCurrentInCategory(ctx context.Context, userID uuid.UUID, category string) ([]*entities.UserPlan, error) {
	var ms []models.UserPlan
	if err := GetDB(ctx, r.db).
		Preload("Plan").
		Where("user_id = ? AND status = ?", userID, string(entities.UserPlanStatusActive)).
		Where("plan_id IN (?)", GetDB(ctx, r.db).Model(&models.Plan{}).Select("id").Where("category = ?", category)).
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toEntities(ms), nil
}

// Update writes the mutable fields of an entitlement
func (r *UserPlanRepository) Update(ctx context.Context, plan *entities.UserPlan) error {
	updates := map[string]interface{}{
		"expiry_date":         plan.ExpiryDate,
		"status":              string(plan.Status),
		"verification_status": string(plan.VerificationStatus),
		"is_active":           plan.IsActive,
		"notes":               plan.Notes.Ptr(),
		"updated_at":          time.Now(),
	}
	result := GetDB(ctx, r.db).Model(&models.UserPlan{}).Where("id = ?", plan.ID).Updates(updates)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domainerrors.ErrAlreadyExists
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// Delete removes an entitlement
func (r *UserPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).Delete(&models.UserPlan{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// ListByUser lists a user's entitlements, newest first
func (r *UserPlanRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.UserPlan, error) {
	var ms []models.UserPlan
	if err := GetDB(ctx, r.db).
		Preload("Plan").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toEntities(ms), nil
}

// ExpireDue marks active entitlements whose expiry has passed as expired
func (r *UserPlanRepository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	result := GetDB(ctx, r.db).Model(&models.UserPlan{}).
		Where("status = ? AND expiry_date < ?", string(entities.UserPlanStatusActive), now).
		Updates(map[string]interface{}{
			"status":     string(entities.UserPlanStatusExpired),
			"is_active":  false,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}

// DeleteByUser removes every entitlement of a user
func (r *UserPlanRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("user_id = ?", userID).Delete(&models.UserPlan{}).Error
}

func (r *UserPlanRepository) toEntities(ms []models.UserPlan) []*entities.UserPlan {
	plans := make([]*entities.UserPlan, 0, len(ms))
	for _, m := range ms {
		model := m
		plans = append(plans, r.toEntity(&model))
	}
	return plans
}

func (r *UserPlanRepository) toModel(p *entities.UserPlan) *models.UserPlan {
	return &models.UserPlan{
		ID:                 p.ID,
		UserID:             p.UserID,
		PlanID:             p.PlanID,
		PurchasePrice:      p.PurchasePrice,
		PurchaseDate:       p.PurchaseDate,
		ExpiryDate:         p.ExpiryDate,
		PaymentMethod:      string(p.PaymentMethod),
		TransactionRef:     p.TransactionRef,
		Status:             string(p.Status),
		VerificationStatus: string(p.VerificationStatus),
		IsActive:           p.IsActive,
		Notes:              p.Notes.Ptr(),
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func (r *UserPlanRepository) toEntity(m *models.UserPlan) *entities.UserPlan {
	return &entities.UserPlan{
		ID:                 m.ID,
		UserID:             m.UserID,
		PlanID:             m.PlanID,
		PurchasePrice:      m.PurchasePrice,
		PurchaseDate:       m.PurchaseDate,
		ExpiryDate:         m.ExpiryDate,
		PaymentMethod:      entities.PaymentMethod(m.PaymentMethod),
		TransactionRef:     m.TransactionRef,
		Status:             entities.UserPlanStatus(m.Status),
		VerificationStatus: entities.VerificationStatus(m.VerificationStatus),
		IsActive:           m.IsActive,
		Notes:              null.StringFromPtr(m.Notes),
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
		Plan:               planToEntity(m.Plan),
	}
}
