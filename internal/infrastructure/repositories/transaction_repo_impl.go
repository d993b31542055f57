package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"lottery-ledger.backend/internal/domain/entities"
	domainerrors "lottery-ledger.backend/internal/domain/errors"
	"lottery-ledger.backend/internal/infrastructure/models"
)

// TransactionRepository implements transaction ledger operations
type TransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create inserts a transaction. A reused reference id returns ErrAlreadyExists.
func (r *TransactionRepository) Create(ctx context.Context, tx *entities.Transaction) error {
	m, err := r.toModel(tx)
	if err != nil {
		return err
	}
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: reference %s", domainerrors.ErrAlreadyExists, tx.ReferenceID)
		}
		return err
	}
	tx.CreatedAt = m.CreatedAt
	tx.UpdatedAt = m.UpdatedAt
	return nil
}

// GetByID gets a transaction by ID
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	var m models.Transaction
	if err := lockedDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if isNotFound(err) {
			return nil, domainerrors.ErrTransactionNotFound
		}
		return nil, err
	}
	return r.toEntity(&m)
}

// GetByReference gets a transaction by its reference id, row-locked when the
// context carries the lock hint
func (r *TransactionRepository) GetByReference(ctx context.Context, referenceID string) (*entities.Transaction, error) {
	var m models.Transaction
	if err := lockedDB(ctx, r.db).Where("reference_id = ?", referenceID).First(&m).Error; err != nil {
		if isNotFound(err) {
			return nil, domainerrors.ErrTransactionNotFound
		}
		return nil, err
	}
	return r.toEntity(&m)
}

// UpdateSettlement writes the settlement outcome of a transaction
func (r *TransactionRepository) UpdateSettlement(ctx context.Context, tx *entities.Transaction) error {
	updates := map[string]interface{}{
		"status":     string(tx.Status),
		"updated_at": time.Now(),
	}
	if tx.ProcessedAt.Valid {
		updates["processed_at"] = tx.ProcessedAt.Time
	}
	if len(tx.GatewayResponse) > 0 {
		updates["gateway_response"] = datatypes.JSON(tx.GatewayResponse)
	}
	if tx.GatewayPaymentID.Valid {
		updates["gateway_payment_id"] = tx.GatewayPaymentID.String
	}

	result := GetDB(ctx, r.db).Model(&models.Transaction{}).Where("id = ?", tx.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrTransactionNotFound
	}
	return nil
}

// AttachGatewayPayment stores the gateway payment details on a pending transaction
func (r *TransactionRepository) AttachGatewayPayment(ctx context.Context, id uuid.UUID, payment entities.GatewayPayment) error {
	updates := map[string]interface{}{
		"gateway_payment_id": payment.PaymentID,
		"updated_at":         time.Now(),
	}
	if payment.PayAddress != "" {
		updates["pay_address"] = payment.PayAddress
	}
	if payment.PayAmount.Valid {
		updates["pay_amount"] = payment.PayAmount
	}
	if payment.PayCurrency != "" {
		updates["pay_currency"] = payment.PayCurrency
	}
	if len(payment.Raw) > 0 {
		updates["gateway_response"] = datatypes.JSON(payment.Raw)
	}

	result := GetDB(ctx, r.db).Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, string(entities.TransactionStatusPending)).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrTransactionNotFound
	}
	return nil
}

// ListStalePending lists pending gateway payments created before olderThan.
// Withdrawals are excluded: their gateway id is a payout id.
func (r *TransactionRepository) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*entities.Transaction, error) {
	var ms []models.Transaction
	if err := GetDB(ctx, r.db).
		Where("status = ? AND gateway_payment_id IS NOT NULL AND created_at < ? AND type <> ?",
			string(entities.TransactionStatusPending), olderThan, string(entities.TransactionTypeWithdrawal)).
		Order("created_at ASC").
		Limit(limit).
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toEntities(ms)
}

// ListByUser lists a user's transactions, newest first, with the total count
func (r *TransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Transaction, int, error) {
	var total int64
	if err := GetDB(ctx, r.db).Model(&models.Transaction{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.Transaction
	if err := GetDB(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	txs, err := r.toEntities(ms)
	if err != nil {
		return nil, 0, err
	}
	return txs, int(total), nil
}

// DeleteByUser removes every transaction of a user
func (r *TransactionRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("user_id = ?", userID).Delete(&models.Transaction{}).Error
}

func (r *TransactionRepository) toEntities(ms []models.Transaction) ([]*entities.Transaction, error) {
	txs := make([]*entities.Transaction, 0, len(ms))
	for _, m := range ms {
		model := m
		tx, err := r.toEntity(&model)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func (r *TransactionRepository) toModel(tx *entities.Transaction) (*models.Transaction, error) {
	metadata, err := entities.EncodeIntent(tx.Intent)
	if err != nil {
		return nil, fmt.Errorf("encode intent: %w", err)
	}
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}

	m := &models.Transaction{
		ID:               tx.ID,
		UserID:           tx.UserID,
		WalletID:         tx.WalletID,
		Type:             string(tx.Type),
		Amount:           tx.Amount,
		Currency:         tx.Currency,
		ReferenceID:      tx.ReferenceID,
		GatewayPaymentID: tx.GatewayPaymentID.Ptr(),
		PayAddress:       tx.PayAddress.Ptr(),
		PayAmount:        tx.PayAmount,
		PayCurrency:      tx.PayCurrency.Ptr(),
		Status:           string(tx.Status),
		Description:      tx.Description,
		ProcessedAt:      tx.ProcessedAt.Ptr(),
		CreatedAt:        tx.CreatedAt,
		UpdatedAt:        tx.UpdatedAt,
	}
	m.Metadata = jsonOrEmpty(metadata)
	m.GatewayResponse = jsonOrEmpty(tx.GatewayResponse)
	return m, nil
}

func (r *TransactionRepository) toEntity(m *models.Transaction) (*entities.Transaction, error) {
	intent, err := entities.DecodeIntent(m.Metadata)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", m.ReferenceID, err)
	}

	return &entities.Transaction{
		ID:               m.ID,
		UserID:           m.UserID,
		WalletID:         m.WalletID,
		Type:             entities.TransactionType(m.Type),
		Amount:           m.Amount,
		Currency:         m.Currency,
		ReferenceID:      m.ReferenceID,
		GatewayPaymentID: null.StringFromPtr(m.GatewayPaymentID),
		PayAddress:       null.StringFromPtr(m.PayAddress),
		PayAmount:        m.PayAmount,
		PayCurrency:      null.StringFromPtr(m.PayCurrency),
		Status:           entities.TransactionStatus(m.Status),
		Intent:           intent,
		Description:      m.Description,
		GatewayResponse:  rawOrNil(m.GatewayResponse),
		ProcessedAt:      null.TimeFromPtr(m.ProcessedAt),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}, nil
}

// JSON columns are NOT NULL; an absent document is stored as {}.
func jsonOrEmpty(raw []byte) datatypes.JSON {
	if len(raw) == 0 {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(raw)
}

func rawOrNil(j datatypes.JSON) []byte {
	if len(j) == 0 || string(j) == "{}" {
		return nil
	}
	return []byte(j)
}
