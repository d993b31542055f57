package usecases_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"lottery-ledger.backend/internal/domain/entities"
	domainrepos "lottery-ledger.backend/internal/domain/repositories"
	"lottery-ledger.backend/internal/infrastructure/metrics"
	"lottery-ledger.backend/internal/infrastructure/repositories"
	"lottery-ledger.backend/internal/infrastructure/repositories/repotest"
	"lottery-ledger.backend/internal/usecases"
	"lottery-ledger.backend/pkg/crypto"
)

const testIPNSecret = "ipn-test-secret"

// ledger wires every usecase against one in-memory database
type ledger struct {
	db       *gorm.DB
	registry *prometheus.Registry
	gateway  *MockPaymentGateway

	walletRepo   *repositories.WalletRepository
	txRepo       *repositories.TransactionRepository
	userPlanRepo *repositories.UserPlanRepository
	ticketRepo   *repositories.TicketRepository
	outboxRepo   *repositories.OutboxRepository

	wallets      *usecases.WalletUsecase
	commissions  *usecases.CommissionUsecase
	entitlements *usecases.EntitlementUsecase
	settlement   *usecases.SettlementUsecase
	webhook      *usecases.WebhookUsecase
	tickets      *usecases.TicketUsecase
	payments     *usecases.PaymentUsecase
}

type ledgerOption func(*ledgerConfig)

type ledgerConfig struct {
	production bool
	ticketRepo func(db *gorm.DB) domainrepos.TicketRepository
}

func inProduction() ledgerOption {
	return func(c *ledgerConfig) { c.production = true }
}

func withTicketRepo(build func(db *gorm.DB) domainrepos.TicketRepository) ledgerOption {
	return func(c *ledgerConfig) { c.ticketRepo = build }
}

func newLedger(t *testing.T, opts ...ledgerOption) *ledger {
	t.Helper()
	db := repotest.NewLedgerDB(t)

	l := &ledger{
		db:           db,
		registry:     prometheus.NewRegistry(),
		gateway:      new(MockPaymentGateway),
		walletRepo:   repositories.NewWalletRepository(db),
		txRepo:       repositories.NewTransactionRepository(db),
		userPlanRepo: repositories.NewUserPlanRepository(db),
		ticketRepo:   repositories.NewTicketRepository(db),
		outboxRepo:   repositories.NewOutboxRepository(db),
	}
	cfg := &ledgerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	var ticketRepo domainrepos.TicketRepository = l.ticketRepo
	if cfg.ticketRepo != nil {
		ticketRepo = cfg.ticketRepo(db)
	}

	m := metrics.New(l.registry)
	uow := repositories.NewUnitOfWork(db)
	userRepo := repositories.NewUserRepository(db)
	planRepo := repositories.NewPlanRepository(db)

	l.wallets = usecases.NewWalletUsecase(uow, l.walletRepo, l.txRepo, ticketRepo, l.userPlanRepo, userRepo, m)
	l.commissions = usecases.NewCommissionUsecase(uow, userRepo, l.walletRepo, l.txRepo)
	l.entitlements = usecases.NewEntitlementUsecase(uow, planRepo, l.userPlanRepo, userRepo, l.outboxRepo)
	l.settlement = usecases.NewSettlementUsecase(uow, l.txRepo, l.wallets, l.outboxRepo, l.entitlements, l.commissions, m, cfg.production)
	l.webhook = usecases.NewWebhookUsecase(testIPNSecret, l.settlement, m)
	l.tickets = usecases.NewTicketUsecase(uow, repositories.NewJackpotRepository(db), ticketRepo, l.walletRepo, l.txRepo, l.outboxRepo, l.wallets, l.commissions, m)
	l.payments = usecases.NewPaymentUsecase(uow, l.gateway, l.txRepo, planRepo, l.wallets, l.entitlements, l.commissions, "https://ledger.test/ipn")
	return l
}

// newUser seeds a user with all three wallets
func (l *ledger) newUser(t *testing.T, referrerID *uuid.UUID) uuid.UUID {
	t.Helper()
	id := repotest.SeedUser(t, l.db, referrerID)
	_, err := l.wallets.EnsureWallets(context.Background(), id)
	require.NoError(t, err)
	return id
}

func (l *ledger) wallet(t *testing.T, userID uuid.UUID, category entities.WalletCategory) *entities.Wallet {
	t.Helper()
	w, err := l.walletRepo.GetByUserAndCategory(context.Background(), userID, category)
	require.NoError(t, err)
	return w
}

func (l *ledger) fund(t *testing.T, userID uuid.UUID, category entities.WalletCategory, amount string) {
	t.Helper()
	_, err := l.walletRepo.Credit(context.Background(), l.wallet(t, userID, category).ID, decimal.RequireFromString(amount))
	require.NoError(t, err)
}

func (l *ledger) balance(t *testing.T, userID uuid.UUID, category entities.WalletCategory) decimal.Decimal {
	t.Helper()
	return l.wallet(t, userID, category).Balance
}

func (l *ledger) transaction(t *testing.T, reference string) *entities.Transaction {
	t.Helper()
	tx, err := l.txRepo.GetByReference(context.Background(), reference)
	require.NoError(t, err)
	return tx
}

func (l *ledger) count(t *testing.T, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, l.db.Raw(query, args...).Scan(&n).Error)
	return n
}

// expectGatewayPayment makes CreatePayment succeed with a fresh payment id
func (l *ledger) expectGatewayPayment() {
	l.gateway.On("GetMinimumAmount", mock.Anything, mock.Anything, mock.Anything).
		Return(&entities.MinimumAmount{FiatEquivalent: decimal.RequireFromString("5")}, nil).Maybe()
	l.gateway.On("CreatePayment", mock.Anything, mock.Anything).
		Return(func(req entities.PaymentRequest) *entities.GatewayPayment {
			return &entities.GatewayPayment{
				PaymentID:     "np-" + req.OrderID,
				PaymentStatus: "waiting",
				OrderID:       req.OrderID,
				PayAddress:    "0x52908400098527886E0F7030069857D2E4169EE7",
				PayCurrency:   req.PayCurrency,
			}
		}, nil).Maybe()
}

func (l *ledger) deposit(t *testing.T, userID uuid.UUID, amount string) string {
	t.Helper()
	l.expectGatewayPayment()
	out, err := l.payments.InitiateDeposit(context.Background(), userID, decimal.RequireFromString(amount), "USD", "usdttrc20")
	require.NoError(t, err)
	return out.ReferenceID
}

func (l *ledger) planPurchase(t *testing.T, userID, planID uuid.UUID) string {
	t.Helper()
	l.expectGatewayPayment()
	out, err := l.payments.InitiatePlanPurchase(context.Background(), userID, planID, "usdttrc20")
	require.NoError(t, err)
	return out.ReferenceID
}

// signedIPN builds a gateway notification body and its signature
func signedIPN(t *testing.T, reference, status, amount string) ([]byte, string) {
	t.Helper()
	body := []byte(`{"payment_id":5077125051,"payment_status":"` + status + `","pay_address":"TXa1","price_amount":` +
		amount + `,"price_currency":"usd","pay_amount":"` + amount + `","pay_currency":"usdttrc20","order_id":"` +
		reference + `","order_description":"test","updated_at":"2026-10-14T10:00:00Z"}`)
	sig, err := crypto.SignPayload(body, testIPNSecret)
	require.NoError(t, err)
	return body, sig
}

func (l *ledger) counter(t *testing.T, name string) float64 {
	t.Helper()
	families, err := l.registry.Gather()
	require.NoError(t, err)
	total := 0.0
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func yearFrom(t time.Time) time.Time {
	return entities.PlanExpiryFrom(t)
}

func (l *ledger) assertBalance(t *testing.T, userID uuid.UUID, category entities.WalletCategory, want string) {
	t.Helper()
	got := l.balance(t, userID, category)
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "balance %s, want %s", got, want)
}
