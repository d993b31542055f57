package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"lottery-ledger.backend/internal/domain/entities"
	domainerrors "lottery-ledger.backend/internal/domain/errors"
	"lottery-ledger.backend/internal/domain/repositories"
	"lottery-ledger.backend/internal/infrastructure/metrics"
	"lottery-ledger.backend/pkg/logger"
)

// SettlementOutcome says what applying one gateway event did
type SettlementOutcome string

const (
	OutcomeAppliedCompleted SettlementOutcome = "applied_completed"
	OutcomeAppliedFailed    SettlementOutcome = "applied_failed"
	OutcomeStillPending     SettlementOutcome = "still_pending"
	OutcomeNoopTerminal     SettlementOutcome = "noop_terminal"
	OutcomeIgnoredUnknown   SettlementOutcome = "ignored_unknown_status"
)

// SettlementResult is the transaction after an event was applied
type SettlementResult struct {
	Transaction *entities.Transaction `json:"transaction"`
	Outcome     SettlementOutcome     `json:"outcome"`
	// Refunded is set when a plan payment was credited back to the deposit
	// wallet because an exclusive plan of the same category is already held.
	Refunded bool `json:"refunded"`
}

// SettlementUsecase applies normalized gateway events to pending transactions
type SettlementUsecase struct {
	uow          repositories.UnitOfWork
	txRepo       repositories.TransactionRepository
	wallets      *WalletUsecase
	outbox       repositories.OutboxRepository
	entitlements *EntitlementUsecase
	commissions  *CommissionUsecase
	metrics      *metrics.Metrics
	production   bool
}

// NewSettlementUsecase creates a new settlement usecase. production disables
// the unsigned test trigger.
func NewSettlementUsecase(
	uow repositories.UnitOfWork,
	txRepo repositories.TransactionRepository,
	wallets *WalletUsecase,
	outbox repositories.OutboxRepository,
	entitlements *EntitlementUsecase,
	commissions *CommissionUsecase,
	m *metrics.Metrics,
	production bool,
) *SettlementUsecase {
	return &SettlementUsecase{
		uow:          uow,
		txRepo:       txRepo,
		wallets:      wallets,
		outbox:       outbox,
		entitlements: entitlements,
		commissions:  commissions,
		metrics:      metrics.OrNop(m),
		production:   production,
	}
}

// Apply settles the transaction referenced by event. Every write for one
// event happens in a single unit of work, so a replayed event either finds a
// terminal transaction or sees none of the first attempt's effects.
func (u *SettlementUsecase) Apply(ctx context.Context, event *entities.NormalizedEvent) (*SettlementResult, error) {
	if event == nil || event.ReferenceID == "" {
		return nil, fmt.Errorf("%w: event without reference id", domainerrors.ErrInvalidInput)
	}
	ctx = logger.WithReference(ctx, event.ReferenceID)

	result := &SettlementResult{}
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		tx, err := u.txRepo.GetByReference(u.uow.WithLock(txCtx), event.ReferenceID)
		if err != nil {
			return err
		}
		result.Transaction = tx

		if tx.Status.IsTerminal() {
			result.Outcome = OutcomeNoopTerminal
			return nil
		}

		switch event.PaymentStatus {
		case entities.GatewayStatusConfirmed, entities.GatewayStatusFinished:
			result.Outcome = OutcomeAppliedCompleted
			refunded, err := u.complete(txCtx, tx, event)
			result.Refunded = refunded
			return err
		case entities.GatewayStatusFailed, entities.GatewayStatusExpired:
			result.Outcome = OutcomeAppliedFailed
			return u.fail(txCtx, tx, event)
		case entities.GatewayStatusPending:
			result.Outcome = OutcomeStillPending
			snapshot(tx, event)
			return u.txRepo.UpdateSettlement(txCtx, tx)
		default:
			result.Outcome = OutcomeIgnoredUnknown
			logger.Warn(txCtx, "ignoring unknown gateway status", zap.String("status", string(event.PaymentStatus)))
			return nil
		}
	})
	if err != nil {
		u.metrics.SettlementEvents.WithLabelValues(string(event.PaymentStatus), "error").Inc()
		return nil, err
	}
	u.metrics.SettlementEvents.WithLabelValues(string(event.PaymentStatus), string(result.Outcome)).Inc()

	tx := result.Transaction
	logger.Info(ctx, "gateway event applied",
		zap.String("status", string(event.PaymentStatus)),
		zap.String("outcome", string(result.Outcome)),
		zap.String("transactionStatus", string(tx.Status)),
	)

	if result.Outcome == OutcomeAppliedCompleted && !result.Refunded {
		if _, ok := tx.Intent.(entities.PlanPurchaseIntent); ok {
			u.commissions.payCommission(ctx, tx.UserID, tx.Amount, "Referral commission for plan purchase", tx.ReferenceID)
		}
	}
	return result, nil
}

func (u *SettlementUsecase) complete(ctx context.Context, tx *entities.Transaction, event *entities.NormalizedEvent) (bool, error) {
	if err := transition(tx, entities.TransactionStatusCompleted); err != nil {
		return false, err
	}
	tx.ProcessedAt = nullTime(timeNow())
	snapshot(tx, event)

	refunded := false
	topic := entities.TopicPaymentConfirmed
	message := "payment confirmed"

	switch intent := tx.Intent.(type) {
	case entities.PlanPurchaseIntent:
		_, err := u.entitlements.IssuePlan(ctx, tx.UserID, intent.PlanID, tx)
		if errors.Is(err, domainerrors.ErrExclusivePlanHeld) {
			if err := u.refundConflict(ctx, tx); err != nil {
				return false, err
			}
			refunded = true
			break
		}
		if err != nil {
			return false, fmt.Errorf("issue plan: %w", err)
		}
		message = "plan payment confirmed"
	case entities.WithdrawalIntent:
		// funds were held when the withdrawal was initiated
		topic = entities.TopicWithdrawalCompleted
		message = "withdrawal sent to " + intent.Address
	case entities.DepositIntent:
		if err := u.creditDeposit(ctx, tx, intent.WalletCategory); err != nil {
			return false, err
		}
	case nil:
		if err := u.creditDeposit(ctx, tx, entities.WalletCategoryDeposit); err != nil {
			return false, err
		}
	default:
		return false, fmt.Errorf("%w: %s", domainerrors.ErrUnsupportedIntent, intent.Kind())
	}

	if err := u.txRepo.UpdateSettlement(ctx, tx); err != nil {
		return false, err
	}
	if err := u.outbox.Add(ctx, topic, notification(tx, message)); err != nil {
		return false, err
	}
	return refunded, nil
}

func (u *SettlementUsecase) creditDeposit(ctx context.Context, tx *entities.Transaction, category entities.WalletCategory) error {
	walletID := tx.WalletID
	if walletID == nil {
		if category == "" {
			category = entities.WalletCategoryDeposit
		}
		wallet, err := u.wallets.GetOrCreate(ctx, tx.UserID, category)
		if err != nil {
			return err
		}
		walletID = &wallet.ID
		tx.WalletID = walletID
	}
	balance, err := u.wallets.Credit(ctx, *walletID, tx.Amount)
	if err != nil {
		return fmt.Errorf("credit wallet %s: %w", *walletID, err)
	}
	logger.Info(ctx, "deposit credited",
		zap.String("walletId", walletID.String()),
		zap.String("amount", tx.Amount.String()),
		zap.String("balance", balance.String()),
	)
	return nil
}

// refundConflict credits a plan payment to the deposit wallet when the plan
// cannot be issued because another exclusive plan is held
func (u *SettlementUsecase) refundConflict(ctx context.Context, tx *entities.Transaction) error {
	wallet, err := u.wallets.GetOrCreate(ctx, tx.UserID, entities.WalletCategoryDeposit)
	if err != nil {
		return err
	}
	if _, err := u.wallets.Credit(ctx, wallet.ID, tx.Amount); err != nil {
		return fmt.Errorf("refund plan payment: %w", err)
	}
	walletID := wallet.ID
	refund := &entities.Transaction{
		UserID:      tx.UserID,
		WalletID:    &walletID,
		Type:        entities.TransactionTypeRefund,
		Amount:      tx.Amount,
		Currency:    tx.Currency,
		ReferenceID: "refund-" + tx.ReferenceID,
		Status:      entities.TransactionStatusCompleted,
		Description: "Exclusive plan already held, payment credited to deposit wallet",
		ProcessedAt: nullTime(timeNow()),
	}
	if err := u.txRepo.Create(ctx, refund); err != nil {
		return err
	}
	logger.Warn(ctx, "exclusive plan conflict, payment refunded to wallet",
		zap.String("refundReference", refund.ReferenceID),
	)
	return u.outbox.Add(ctx, entities.TopicPlanConflictRefund, notification(refund,
		"payment for "+tx.ReferenceID+" credited to deposit wallet"))
}

func (u *SettlementUsecase) fail(ctx context.Context, tx *entities.Transaction, event *entities.NormalizedEvent) error {
	if err := transition(tx, entities.TransactionStatusFailed); err != nil {
		return err
	}
	tx.ProcessedAt = nullTime(timeNow())
	snapshot(tx, event)

	message := "payment " + string(event.PaymentStatus)
	if _, ok := tx.Intent.(entities.WithdrawalIntent); ok && tx.WalletID != nil {
		if _, err := u.wallets.Credit(ctx, *tx.WalletID, tx.Amount); err != nil {
			return fmt.Errorf("release withdrawal hold: %w", err)
		}
		message = "withdrawal failed, funds returned to wallet"
	}

	if err := u.txRepo.UpdateSettlement(ctx, tx); err != nil {
		return err
	}
	return u.outbox.Add(ctx, entities.TopicPaymentFailed, notification(tx, message))
}

func transition(tx *entities.Transaction, to entities.TransactionStatus) error {
	if !entities.CanTransition(tx.Status, to) {
		return fmt.Errorf("%w: %s to %s", domainerrors.ErrInvalidTransition, tx.Status, to)
	}
	tx.Status = to
	return nil
}

// TestTrigger applies an unsigned synthetic event. It is refused in production.
func (u *SettlementUsecase) TestTrigger(ctx context.Context, referenceID, status string) (*SettlementResult, error) {
	if u.production {
		return nil, domainerrors.ErrForbidden
	}
	normalized := NormalizeStatus(status)
	raw, _ := json.Marshal(map[string]interface{}{
		"order_id":       referenceID,
		"payment_status": status,
		"test_trigger":   true,
	})
	logger.Warn(ctx, "applying test trigger", zap.String("reference", referenceID), zap.String("status", status))
	return u.Apply(ctx, &entities.NormalizedEvent{
		ReferenceID:   referenceID,
		PaymentStatus: normalized,
		Raw:           raw,
	})
}

// snapshot copies the gateway view of the payment onto tx
func snapshot(tx *entities.Transaction, event *entities.NormalizedEvent) {
	if len(event.Raw) > 0 {
		tx.GatewayResponse = event.Raw
	}
	if !tx.GatewayPaymentID.Valid && event.GatewayPaymentID != "" {
		tx.GatewayPaymentID = null.StringFrom(event.GatewayPaymentID)
	}
}
