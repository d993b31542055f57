package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"lottery-ledger.backend/internal/domain/entities"
	domainerrors "lottery-ledger.backend/internal/domain/errors"
	"lottery-ledger.backend/internal/domain/repositories"
	"lottery-ledger.backend/internal/infrastructure/metrics"
	"lottery-ledger.backend/pkg/logger"
	"lottery-ledger.backend/pkg/utils"
)

// TicketPurchase is the result of a successful purchase
type TicketPurchase struct {
	Transaction *entities.Transaction `json:"transaction"`
	Tickets     []*entities.Ticket    `json:"tickets"`
}

// TicketUsecase sells jackpot tickets against wallet balances
type TicketUsecase struct {
	uow         repositories.UnitOfWork
	jackpotRepo repositories.JackpotRepository
	ticketRepo  repositories.TicketRepository
	walletRepo  repositories.WalletRepository
	txRepo      repositories.TransactionRepository
	outbox      repositories.OutboxRepository
	wallets     *WalletUsecase
	commissions *CommissionUsecase
	metrics     *metrics.Metrics
}

// NewTicketUsecase creates a new ticket usecase
func NewTicketUsecase(
	uow repositories.UnitOfWork,
	jackpotRepo repositories.JackpotRepository,
	ticketRepo repositories.TicketRepository,
	walletRepo repositories.WalletRepository,
	txRepo repositories.TransactionRepository,
	outbox repositories.OutboxRepository,
	wallets *WalletUsecase,
	commissions *CommissionUsecase,
	m *metrics.Metrics,
) *TicketUsecase {
	return &TicketUsecase{
		uow:         uow,
		jackpotRepo: jackpotRepo,
		ticketRepo:  ticketRepo,
		walletRepo:  walletRepo,
		txRepo:      txRepo,
		outbox:      outbox,
		wallets:     wallets,
		commissions: commissions,
		metrics:     metrics.OrNop(m),
	}
}

// PurchaseTickets buys one ticket per number from the wallet of the given
// category. The debit, the ledger entry, the tickets and the jackpot counters
// commit together or not at all.
func (u *TicketUsecase) PurchaseTickets(ctx context.Context, userID, jackpotID uuid.UUID, numbers []string, category entities.WalletCategory) (*TicketPurchase, error) {
	purchase, err := u.purchase(ctx, userID, jackpotID, numbers, category)
	u.metrics.TicketPurchases.WithLabelValues(purchaseResult(err)).Inc()
	if err != nil {
		return nil, err
	}

	tx := purchase.Transaction
	logger.Info(ctx, "tickets purchased",
		zap.String("reference", tx.ReferenceID),
		zap.String("jackpotId", jackpotID.String()),
		zap.Int("count", len(purchase.Tickets)),
		zap.String("total", tx.Amount.String()),
	)
	u.commissions.payCommission(ctx, userID, tx.Amount, "Referral commission for ticket purchase", tx.ReferenceID)
	return purchase, nil
}

func (u *TicketUsecase) purchase(ctx context.Context, userID, jackpotID uuid.UUID, numbers []string, category entities.WalletCategory) (*TicketPurchase, error) {
	numbers, err := normalizeTicketNumbers(numbers)
	if err != nil {
		return nil, err
	}
	if category == "" {
		category = entities.WalletCategoryDeposit
	}
	if !category.IsValid() {
		return nil, fmt.Errorf("%w: unknown wallet category %q", domainerrors.ErrInvalidInput, category)
	}

	jackpot, err := u.jackpotRepo.GetByID(ctx, jackpotID)
	if err != nil {
		return nil, err
	}
	if !jackpot.AcceptsTickets(timeNow()) {
		return nil, domainerrors.ErrJackpotClosed
	}
	wallet, err := u.walletRepo.GetByUserAndCategory(ctx, userID, category)
	if err != nil {
		return nil, err
	}
	taken, err := u.ticketRepo.FindTakenNumbers(ctx, jackpotID, numbers)
	if err != nil {
		return nil, err
	}
	if len(taken) > 0 {
		return nil, fmt.Errorf("%w: %s", domainerrors.ErrTicketsAlreadyTaken, strings.Join(taken, ", "))
	}
	count := int64(len(numbers))
	total := jackpot.TicketPrice.Mul(decimal.NewFromInt(count))
	if wallet.Balance.LessThan(total) {
		return nil, domainerrors.ErrInsufficientFunds
	}

	purchase := &TicketPurchase{}
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		// a close or draw cutoff may have landed since the first read
		locked, err := u.jackpotRepo.GetByID(u.uow.WithLock(txCtx), jackpotID)
		if err != nil {
			return err
		}
		if !locked.AcceptsTickets(timeNow()) {
			return domainerrors.ErrJackpotClosed
		}
		if !locked.TicketPrice.Equal(jackpot.TicketPrice) {
			return fmt.Errorf("%w: ticket price changed", domainerrors.ErrConflict)
		}

		if _, err := u.wallets.Debit(txCtx, wallet, total); err != nil {
			return err
		}

		walletID := wallet.ID
		tx := &entities.Transaction{
			UserID:      userID,
			WalletID:    &walletID,
			Type:        entities.TransactionTypeTicketPurchase,
			Amount:      total,
			Currency:    wallet.Currency,
			ReferenceID: utils.NewReferenceID("TKT"),
			Status:      entities.TransactionStatusCompleted,
			Description: fmt.Sprintf("%d ticket(s) for %s", count, jackpot.Name),
			ProcessedAt: nullTime(timeNow()),
		}
		if err := u.txRepo.Create(txCtx, tx); err != nil {
			return err
		}

		tickets := make([]*entities.Ticket, 0, len(numbers))
		for _, n := range numbers {
			tickets = append(tickets, &entities.Ticket{
				UserID:         userID,
				JackpotID:      jackpotID,
				TransactionID:  tx.ID,
				TicketNumber:   n,
				PurchaseAmount: jackpot.TicketPrice,
				Status:         entities.TicketStatusActive,
				WinningAmount:  decimal.Zero,
			})
		}
		if err := u.ticketRepo.CreateBatch(txCtx, tickets); err != nil {
			return err
		}
		if err := u.jackpotRepo.AddSales(txCtx, jackpotID, count, total); err != nil {
			return err
		}
		if err := u.outbox.Add(txCtx, entities.TopicTicketsPurchased, notification(tx,
			fmt.Sprintf("%d ticket(s): %s", count, strings.Join(numbers, ", ")))); err != nil {
			return err
		}

		purchase.Transaction = tx
		purchase.Tickets = tickets
		return nil
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

// ListTickets lists the user's tickets, optionally within one jackpot
func (u *TicketUsecase) ListTickets(ctx context.Context, userID, jackpotID uuid.UUID) ([]*entities.Ticket, error) {
	return u.ticketRepo.ListByUser(ctx, userID, jackpotID)
}

func normalizeTicketNumbers(numbers []string) ([]string, error) {
	if len(numbers) == 0 {
		return nil, fmt.Errorf("%w: no ticket numbers", domainerrors.ErrInvalidInput)
	}
	seen := make(map[string]struct{}, len(numbers))
	out := make([]string, 0, len(numbers))
	for _, n := range numbers {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, fmt.Errorf("%w: empty ticket number", domainerrors.ErrInvalidInput)
		}
		if _, dup := seen[n]; dup {
			return nil, fmt.Errorf("%w: duplicate ticket number %s", domainerrors.ErrInvalidInput, n)
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out, nil
}

func purchaseResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domainerrors.ErrTicketsAlreadyTaken):
		return "conflict"
	case errors.Is(err, domainerrors.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domainerrors.ErrInvalidInput), errors.Is(err, domainerrors.ErrJackpotClosed):
		return "rejected"
	default:
		return "error"
	}
}
