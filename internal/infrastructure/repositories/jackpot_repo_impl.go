package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"lottery-ledger.backend/internal/domain/entities"
	domainerrors "lottery-ledger.backend/internal/domain/errors"
	"lottery-ledger.backend/internal/infrastructure/models"
)

// JackpotRepository implements jackpot data operations
type JackpotRepository struct {
	db *gorm.DB
}

// NewJackpotRepository creates a new jackpot repository
func NewJackpotRepository(db *gorm.DB) *JackpotRepository {
	return &JackpotRepository{db: db}
}

// GetByID gets a jackpot by ID
func (r *JackpotRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Jackpot, error) {
	var m models.Jackpot
	if err := lockedDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if isNotFound(err) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &entities.Jackpot{
		ID:               m.ID,
		Name:             m.Name,
		TicketPrice:      m.TicketPrice,
		Status:           entities.JackpotStatus(m.Status),
		DrawAt:           m.DrawAt,
		TotalTicketsSold: m.TotalTicketsSold,
		TotalRevenue:     m.TotalRevenue,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}, nil
}

// AddSales increments the sold counter and revenue in place
func (r *JackpotRepository) AddSales(ctx context.Context, id uuid.UUID, tickets int64, revenue decimal.Decimal) error {
	result := GetDB(ctx, r.db).Model(&models.Jackpot{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_tickets_sold": gorm.Expr("total_tickets_sold + ?", tickets),
			"total_revenue":      gorm.Expr("total_revenue + ?", revenue),
			"updated_at":         time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// TicketRepository implements ticket data operations
type TicketRepository struct {
	db *gorm.DB
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *gorm.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// CreateBatch inserts all tickets in one statement
func (r *TicketRepository) CreateBatch(ctx context.Context, tickets []*entities.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	ms := make([]models.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = time.Now()
		}
		ms = append(ms, models.Ticket{
			ID:             t.ID,
			UserID:         t.UserID,
			JackpotID:      t.JackpotID,
			TransactionID:  t.TransactionID,
			TicketNumber:   t.TicketNumber,
			PurchaseAmount: t.PurchaseAmount,
			Status:         string(t.Status),
			IsWinner:       t.IsWinner,
			WinningAmount:  t.WinningAmount,
			CreatedAt:      t.CreatedAt,
		})
	}
	if err := GetDB(ctx, r.db).Create(&ms).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrTicketsAlreadyTaken
		}
		return err
	}
	return nil
}

// FindTakenNumbers returns the subset of numbers held by active tickets
func (r *TicketRepository) FindTakenNumbers(ctx context.Context, jackpotID uuid.UUID, numbers []string) ([]string, error) {
	if len(numbers) == 0 {
		return nil, nil
	}
	var taken []string
	if err := GetDB(ctx, r.db).Model(&models.Ticket{}).
		Where("jackpot_id = ? AND status = ? AND ticket_number IN ?", jackpotID, string(entities.TicketStatusActive), numbers).
		Order("ticket_number ASC").
		Pluck("ticket_number", &taken).Error; err != nil {
		return nil, err
	}
	return taken, nil
}

// ListByUser lists a user's tickets, optionally limited to one jackpot
func (r *TicketRepository) ListByUser(ctx context.Context, userID uuid.UUID, jackpotID uuid.UUID) ([]*entities.Ticket, error) {
	q := GetDB(ctx, r.db).Where("user_id = ?", userID)
	if jackpotID != uuid.Nil {
		q = q.Where("jackpot_id = ?", jackpotID)
	}
	var ms []models.Ticket
	if err := q.Order("created_at DESC").Find(&ms).Error; err != nil {
		return nil, err
	}

	tickets := make([]*entities.Ticket, 0, len(ms))
	for _, m := range ms {
		tickets = append(tickets, &entities.Ticket{
			ID:             m.ID,
			UserID:         m.UserID,
			JackpotID:      m.JackpotID,
			TransactionID:  m.TransactionID,
			TicketNumber:   m.TicketNumber,
			PurchaseAmount: m.PurchaseAmount,
			Status:         entities.TicketStatus(m.Status),
			IsWinner:       m.IsWinner,
			WinningAmount:  m.WinningAmount,
			CreatedAt:      m.CreatedAt,
		})
	}
	return tickets, nil
}

// DeleteByUser removes every ticket of a user
func (r *TicketRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("user_id = ?", userID).Delete(&models.Ticket{}).Error
}
