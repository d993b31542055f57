package jobs

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"lottery-ledger.backend/internal/domain/entities"
	"lottery-ledger.backend/internal/usecases"
	"lottery-ledger.backend/pkg/logger"
)

const reconcileBatchSize = 50

type stalePendingLister interface {
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*entities.Transaction, error)
}

type paymentStatusSource interface {
	GetPaymentStatus(ctx context.Context, paymentID string) (*entities.GatewayPayment, error)
}

type settlementApplier interface {
	Apply(ctx context.Context, event *entities.NormalizedEvent) (*usecases.SettlementResult, error)
}

// PendingReconcileJob asks the gateway about pending payments whose webhook
// never arrived and settles them through the webhook path
type PendingReconcileJob struct {
	transactions stalePendingLister
	gateway      paymentStatusSource
	settlement   settlementApplier
	interval     time.Duration
	after        time.Duration
	now          func() time.Time
	stop         chan struct{}
}

func NewPendingReconcileJob(transactions stalePendingLister, gateway paymentStatusSource, settlement settlementApplier, interval, after time.Duration) *PendingReconcileJob {
	return &PendingReconcileJob{
		transactions: transactions,
		gateway:      gateway,
		settlement:   settlement,
		interval:     interval,
		after:        after,
		now:          time.Now,
		stop:         make(chan struct{}),
	}
}

func (j *PendingReconcileJob) Start(ctx context.Context) {
	runEvery(ctx, "pending-reconcile", j.interval, j.stop, j.reconcile)
}

func (j *PendingReconcileJob) Stop() {
	close(j.stop)
}

func (j *PendingReconcileJob) reconcile(ctx context.Context) {
	stale, err := j.transactions.ListStalePending(ctx, j.now().Add(-j.after), reconcileBatchSize)
	if err != nil {
		logger.Error(ctx, "failed to list stale pending transactions", zap.Error(err))
		return
	}
	if len(stale) == 0 {
		return
	}

	logger.Info(ctx, "reconciling stale pending transactions", zap.Int("count", len(stale)))
	for _, tx := range stale {
		txCtx := logger.WithReference(ctx, tx.ReferenceID)
		// payout ids do not resolve on the payment status endpoint
		if tx.Type == entities.TransactionTypeWithdrawal {
			continue
		}
		payment, err := j.gateway.GetPaymentStatus(txCtx, tx.GatewayPaymentID.String)
		if err != nil {
			logger.Warn(txCtx, "gateway status lookup failed", zap.Error(err))
			continue
		}

		event := eventFromPayment(tx, payment)
		result, err := j.settlement.Apply(txCtx, event)
		if err != nil {
			logger.Error(txCtx, "reconcile settlement failed", zap.Error(err))
			continue
		}
		logger.Info(txCtx, "reconciled pending transaction",
			zap.String("status", string(event.PaymentStatus)),
			zap.String("outcome", string(result.Outcome)),
		)
	}
}

// eventFromPayment builds the event a webhook for tx would have carried
func eventFromPayment(tx *entities.Transaction, payment *entities.GatewayPayment) *entities.NormalizedEvent {
	paymentID := payment.PaymentID
	if paymentID == "" {
		paymentID = tx.GatewayPaymentID.String
	}
	payCurrency := payment.PayCurrency
	if payCurrency == "" {
		payCurrency = tx.PayCurrency.String
	}
	return &entities.NormalizedEvent{
		ReferenceID:      tx.ReferenceID,
		GatewayPaymentID: paymentID,
		PaymentStatus:    usecases.NormalizeStatus(payment.PaymentStatus),
		PayAmount:        payment.PayAmount.Decimal,
		PayCurrency:      strings.ToLower(payCurrency),
		PriceAmount:      tx.Amount,
		PriceCurrency:    strings.ToLower(tx.Currency),
		Raw:              payment.Raw,
	}
}
