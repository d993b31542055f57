package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"lottery-ledger.backend/internal/domain/entities"
	domainerrors "lottery-ledger.backend/internal/domain/errors"
	"lottery-ledger.backend/internal/infrastructure/models"
)

// WalletRepository implements wallet data operations
type WalletRepository struct {
	db *gorm.DB
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// EnsureForUser inserts the missing category wallets; existing rows are left alone
func (r *WalletRepository) EnsureForUser(ctx context.Context, userID uuid.UUID, categories []entities.WalletCategory) error {
	if len(categories) == 0 {
		return nil
	}
	now := time.Now()
	rows := make([]models.Wallet, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, models.Wallet{
			ID:        uuid.New(),
			UserID:    userID,
			Category:  string(c),
			Balance:   decimal.Zero,
			Currency:  entities.DefaultCurrency,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return GetDB(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

// GetByID gets a wallet by ID
func (r *WalletRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
	var m models.Wallet
	if err := lockedDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if isNotFound(err) {
			return nil, domainerrors.ErrWalletNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetByUserAndCategory gets the wallet of a user for one category
func (r *WalletRepository) GetByUserAndCategory(ctx context.Context, userID uuid.UUID, category entities.WalletCategory) (*entities.Wallet, error) {
	var m models.Wallet
	if err := lockedDB(ctx, r.db).
		Where("user_id = ? AND category = ?", userID, string(category)).
		First(&m).Error; err != nil {
		if isNotFound(err) {
			return nil, domainerrors.ErrWalletNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// ListByUser lists all wallets of a user
func (r *WalletRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entities.Wallet, error) {
	var ms []models.Wallet
	if err := GetDB(ctx, r.db).
		Where("user_id = ?", userID).
		Order("category ASC").
		Find(&ms).Error; err != nil {
		return nil, err
	}

	wallets := make([]*entities.Wallet, 0, len(ms))
	for _, m := range ms {
		model := m
		wallets = append(wallets, r.toEntity(&model))
	}
	return wallets, nil
}

// Credit adds amount to the stored balance in one statement
func (r *WalletRepository) Credit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	result := GetDB(ctx, r.db).Model(&models.Wallet{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance + ?", amount),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return decimal.Zero, result.Error
	}
	if result.RowsAffected == 0 {
		return decimal.Zero, domainerrors.ErrWalletNotFound
	}
	return r.balance(ctx, id)
}

// Debit subtracts amount in one statement guarded by balance >= amount, so
// two concurrent debits can never both pass a stale check.
func (r *WalletRepository) Debit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (decimal.Decimal, error) {
	result := GetDB(ctx, r.db).Model(&models.Wallet{}).
		Where("id = ? AND balance >= ?", id, amount).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance - ?", amount),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return decimal.Zero, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.balance(ctx, id); err != nil {
			return decimal.Zero, err
		}
		return decimal.Zero, domainerrors.ErrInsufficientFunds
	}
	return r.balance(ctx, id)
}

// DeleteByUser removes every wallet of a user
func (r *WalletRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("user_id = ?", userID).Delete(&models.Wallet{}).Error
}

func (r *WalletRepository) balance(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	var m models.Wallet
	if err := GetDB(ctx, r.db).Select("id", "balance").Where("id = ?", id).First(&m).Error; err != nil {
		if isNotFound(err) {
			return decimal.Zero, domainerrors.ErrWalletNotFound
		}
		return decimal.Zero, err
	}
	return m.Balance, nil
}

func (r *WalletRepository) toEntity(m *models.Wallet) *entities.Wallet {
	return &entities.Wallet{
		ID:        m.ID,
		UserID:    m.UserID,
		Category:  entities.WalletCategory(m.Category),
		Balance:   m.Balance,
		Currency:  m.Currency,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
