package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"lottery-ledger.backend/internal/domain/entities"
	domainerrors "lottery-ledger.backend/internal/domain/errors"
	"lottery-ledger.backend/internal/domain/repositories"
	"lottery-ledger.backend/internal/infrastructure/blockchain"
	"lottery-ledger.backend/pkg/logger"
	"lottery-ledger.backend/pkg/utils"
)

// PaymentInitiation is what the caller relays to the user after a pending
// transaction was opened with the gateway
type PaymentInitiation struct {
	ReferenceID      string                `json:"referenceId"`
	Transaction      *entities.Transaction `json:"transaction"`
	GatewayPaymentID string                `json:"gatewayPaymentId,omitempty"`
	PayAddress       string                `json:"payAddress,omitempty"`
	PayAmount        decimal.NullDecimal   `json:"payAmount"`
	PayCurrency      string                `json:"payCurrency,omitempty"`
	Status           string                `json:"status,omitempty"`
}

// PaymentUsecase opens deposits, plan purchases and withdrawals
type PaymentUsecase struct {
	uow          repositories.UnitOfWork
	gateway      PaymentGateway
	txRepo       repositories.TransactionRepository
	planRepo     repositories.PlanRepository
	wallets      *WalletUsecase
	entitlements *EntitlementUsecase
	commissions  *CommissionUsecase
	callbackURL  string
}

// NewPaymentUsecase creates a new payment usecase. callbackURL is where the
// gateway posts IPN notifications.
func NewPaymentUsecase(
	uow repositories.UnitOfWork,
	gateway PaymentGateway,
	txRepo repositories.TransactionRepository,
	planRepo repositories.PlanRepository,
	wallets *WalletUsecase,
	entitlements *EntitlementUsecase,
	commissions *CommissionUsecase,
	callbackURL string,
) *PaymentUsecase {
	return &PaymentUsecase{
		uow:          uow,
		gateway:      gateway,
		txRepo:       txRepo,
		planRepo:     planRepo,
		wallets:      wallets,
		entitlements: entitlements,
		commissions:  commissions,
		callbackURL:  callbackURL,
	}
}

// InitiateDeposit opens a crypto payment that credits the deposit wallet once confirmed
func (u *PaymentUsecase) InitiateDeposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, priceCurrency, payCurrency string) (*PaymentInitiation, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", domainerrors.ErrInvalidInput)
	}
	payCurrency = strings.ToLower(strings.TrimSpace(payCurrency))
	if payCurrency == "" {
		return nil, fmt.Errorf("%w: pay currency is required", domainerrors.ErrInvalidInput)
	}
	if priceCurrency == "" {
		priceCurrency = entities.DefaultCurrency
	}
	if err := u.checkMinimum(ctx, amount, priceCurrency, payCurrency); err != nil {
		return nil, err
	}

	wallet, err := u.wallets.GetOrCreate(ctx, userID, entities.WalletCategoryDeposit)
	if err != nil {
		return nil, err
	}
	walletID := wallet.ID
	tx := &entities.Transaction{
		UserID:      userID,
		WalletID:    &walletID,
		Type:        entities.TransactionTypeDeposit,
		Amount:      amount,
		Currency:    strings.ToUpper(priceCurrency),
		ReferenceID: utils.NewReferenceID("DEP"),
		PayCurrency: nullString(payCurrency),
		Status:      entities.TransactionStatusPending,
		Intent:      entities.DepositIntent{WalletCategory: entities.WalletCategoryDeposit},
		Description: "Wallet deposit",
	}
	if err := u.createPending(ctx, tx); err != nil {
		return nil, err
	}
	return u.requestPayment(ctx, tx, "Deposit "+tx.ReferenceID)
}

// InitiatePlanPurchase opens a crypto payment for a plan. The entitlement is
// issued when the payment settles.
func (u *PaymentUsecase) InitiatePlanPurchase(ctx context.Context, userID, planID uuid.UUID, payCurrency string) (*PaymentInitiation, error) {
	payCurrency = strings.ToLower(strings.TrimSpace(payCurrency))
	if payCurrency == "" {
		return nil, fmt.Errorf("%w: pay currency is required", domainerrors.ErrInvalidInput)
	}
	plan, err := u.activePlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := u.entitlements.CheckExclusive(ctx, userID, plan); err != nil {
		return nil, err
	}

	tx := &entities.Transaction{
		UserID:      userID,
		Type:        entities.TransactionTypePlanPurchase,
		Amount:      plan.Price,
		Currency:    plan.Currency,
		ReferenceID: utils.NewReferenceID("PLAN"),
		PayCurrency: nullString(payCurrency),
		Status:      entities.TransactionStatusPending,
		Intent: entities.PlanPurchaseIntent{
			PlanID:         plan.ID,
			PlanName:       plan.Name,
			IsPlanPurchase: true,
			Price:          plan.Price,
		},
		Description: "Plan purchase: " + plan.Name,
	}
	if err := u.createPending(ctx, tx); err != nil {
		return nil, err
	}
	return u.requestPayment(ctx, tx, "Plan "+plan.Name)
}

// PurchasePlanWithWallet pays for a plan from the deposit wallet and issues
// the entitlement in the same unit of work
func (u *PaymentUsecase) PurchasePlanWithWallet(ctx context.Context, userID, planID uuid.UUID) (*entities.UserPlan, error) {
	plan, err := u.activePlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := u.entitlements.CheckExclusive(ctx, userID, plan); err != nil {
		return nil, err
	}
	wallet, err := u.wallets.GetOrCreate(ctx, userID, entities.WalletCategoryDeposit)
	if err != nil {
		return nil, err
	}
	if wallet.Balance.LessThan(plan.Price) {
		return nil, domainerrors.ErrInsufficientFunds
	}

	var userPlan *entities.UserPlan
	walletID := wallet.ID
	tx := &entities.Transaction{
		UserID:      userID,
		WalletID:    &walletID,
		Type:        entities.TransactionTypePlanPurchase,
		Amount:      plan.Price,
		Currency:    plan.Currency,
		ReferenceID: utils.NewReferenceID("PLAN"),
		Status:      entities.TransactionStatusCompleted,
		Intent: entities.PlanPurchaseIntent{
			PlanID:         plan.ID,
			PlanName:       plan.Name,
			IsPlanPurchase: true,
			Price:          plan.Price,
		},
		Description: "Plan purchase from wallet: " + plan.Name,
		ProcessedAt: nullTime(timeNow()),
	}
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if _, err := u.wallets.Debit(txCtx, wallet, plan.Price); err != nil {
			return err
		}
		if err := u.txRepo.Create(txCtx, tx); err != nil {
			return err
		}
		issued, err := u.entitlements.IssuePlan(txCtx, userID, plan.ID, tx)
		if err != nil {
			return err
		}
		userPlan = issued
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.commissions.payCommission(ctx, userID, plan.Price, "Referral commission for plan purchase", tx.ReferenceID)
	return userPlan, nil
}

// InitiateWithdrawal holds the amount on the source wallet and asks the
// gateway for a payout. Settlement either keeps the hold or releases it.
func (u *PaymentUsecase) InitiateWithdrawal(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, currency, address string, category entities.WalletCategory) (*PaymentInitiation, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", domainerrors.ErrInvalidInput)
	}
	currency = strings.ToLower(strings.TrimSpace(currency))
	address = strings.TrimSpace(address)
	if currency == "" || address == "" {
		return nil, fmt.Errorf("%w: currency and address are required", domainerrors.ErrInvalidInput)
	}
	if err := blockchain.ValidatePayoutAddress(currency, address); err != nil {
		return nil, err
	}
	if category == "" {
		category = entities.WalletCategoryWinnings
	}

	wallet, err := u.wallets.GetOrCreate(ctx, userID, category)
	if err != nil {
		return nil, err
	}
	walletID := wallet.ID
	tx := &entities.Transaction{
		UserID:      userID,
		WalletID:    &walletID,
		Type:        entities.TransactionTypeWithdrawal,
		Amount:      amount,
		Currency:    wallet.Currency,
		ReferenceID: utils.NewReferenceID("WDR"),
		PayAddress:  nullString(address),
		PayCurrency: nullString(currency),
		Status:      entities.TransactionStatusPending,
		Intent: entities.WithdrawalIntent{
			Address:        address,
			PayCurrency:    currency,
			WalletCategory: category,
		},
		Description: "Withdrawal to " + address,
	}
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if _, err := u.wallets.Debit(txCtx, wallet, amount); err != nil {
			return err
		}
		return u.txRepo.Create(txCtx, tx)
	})
	if err != nil {
		return nil, err
	}
	return u.requestPayout(ctx, tx)
}

// RetryGatewayPayment repeats the gateway call for a pending transaction that
// never received a gateway payment id
func (u *PaymentUsecase) RetryGatewayPayment(ctx context.Context, userID uuid.UUID, referenceID string) (*PaymentInitiation, error) {
	tx, err := u.txRepo.GetByReference(ctx, referenceID)
	if err != nil {
		return nil, err
	}
	if tx.UserID != userID {
		return nil, domainerrors.ErrTransactionNotFound
	}
	if tx.Status != entities.TransactionStatusPending {
		return nil, domainerrors.Conflict("transaction is already settled", domainerrors.ErrInvalidTransition)
	}
	if tx.GatewayPaymentID.Valid {
		return nil, domainerrors.Conflict("gateway payment already exists", nil)
	}

	switch intent := tx.Intent.(type) {
	case entities.WithdrawalIntent:
		return u.requestPayout(ctx, tx)
	case entities.PlanPurchaseIntent:
		return u.requestPayment(ctx, tx, "Plan "+intent.PlanName)
	default:
		return u.requestPayment(ctx, tx, "Deposit "+tx.ReferenceID)
	}
}

// QuoteDeposit returns the gateway's estimate of amount in the pay currency
func (u *PaymentUsecase) QuoteDeposit(ctx context.Context, amount decimal.Decimal, from, to string) (*entities.PriceEstimate, error) {
	if !amount.IsPositive() || from == "" || to == "" {
		return nil, fmt.Errorf("%w: amount, from and to are required", domainerrors.ErrInvalidInput)
	}
	return u.gateway.GetEstimatedPrice(ctx, amount, from, to)
}

// ListTransactions pages through a user's ledger
func (u *PaymentUsecase) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Transaction, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return u.txRepo.ListByUser(ctx, userID, limit, offset)
}

func (u *PaymentUsecase) activePlan(ctx context.Context, planID uuid.UUID) (*entities.Plan, error) {
	plan, err := u.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, fmt.Errorf("%w: plan %s is not available", domainerrors.ErrInvalidInput, plan.Name)
	}
	return plan, nil
}

// checkMinimum compares a fiat amount with the gateway's fiat minimum for payCurrency
func (u *PaymentUsecase) checkMinimum(ctx context.Context, amount decimal.Decimal, priceCurrency, payCurrency string) error {
	minimum, err := u.gateway.GetMinimumAmount(ctx, payCurrency, payCurrency)
	if err != nil {
		return err
	}
	if !strings.EqualFold(priceCurrency, entities.DefaultCurrency) {
		return nil
	}
	if minimum.FiatEquivalent.IsPositive() && amount.LessThan(minimum.FiatEquivalent) {
		return fmt.Errorf("%w: minimum is %s %s", domainerrors.ErrAmountBelowMinimum,
			minimum.FiatEquivalent.Round(2).String(), entities.DefaultCurrency)
	}
	return nil
}

// createPending records the transaction in its own short unit of work so no
// database transaction is open during the gateway call
func (u *PaymentUsecase) createPending(ctx context.Context, tx *entities.Transaction) error {
	return u.uow.Do(ctx, func(txCtx context.Context) error {
		return u.txRepo.Create(txCtx, tx)
	})
}

func (u *PaymentUsecase) requestPayment(ctx context.Context, tx *entities.Transaction, description string) (*PaymentInitiation, error) {
	ctx = logger.WithReference(ctx, tx.ReferenceID)
	payment, err := u.gateway.CreatePayment(ctx, entities.PaymentRequest{
		PriceAmount:      tx.Amount,
		PriceCurrency:    tx.Currency,
		PayCurrency:      tx.PayCurrency.String,
		OrderID:          tx.ReferenceID,
		OrderDescription: description,
		CallbackURL:      u.callbackURL,
	})
	if err != nil {
		logger.Warn(ctx, "gateway payment creation failed, transaction left pending", zap.Error(err))
		return nil, &domainerrors.GatewayError{ReferenceID: tx.ReferenceID, Err: err}
	}
	return u.attach(ctx, tx, payment)
}

func (u *PaymentUsecase) requestPayout(ctx context.Context, tx *entities.Transaction) (*PaymentInitiation, error) {
	ctx = logger.WithReference(ctx, tx.ReferenceID)
	payout, err := u.gateway.CreatePayout(ctx, entities.PayoutRequest{
		Address:     tx.PayAddress.String,
		Currency:    tx.PayCurrency.String,
		Amount:      tx.Amount,
		Reference:   tx.ReferenceID,
		CallbackURL: u.callbackURL,
	})
	if err != nil {
		logger.Warn(ctx, "gateway payout creation failed, funds stay held", zap.Error(err))
		return nil, &domainerrors.GatewayError{ReferenceID: tx.ReferenceID, Err: err}
	}
	return u.attach(ctx, tx, payout)
}

func (u *PaymentUsecase) attach(ctx context.Context, tx *entities.Transaction, payment *entities.GatewayPayment) (*PaymentInitiation, error) {
	if err := u.txRepo.AttachGatewayPayment(ctx, tx.ID, *payment); err != nil {
		logger.Error(ctx, "failed to attach gateway payment",
			zap.String("gatewayPaymentId", payment.PaymentID),
			zap.Error(err),
		)
		return nil, err
	}
	tx.GatewayPaymentID = nullString(payment.PaymentID)
	if payment.PayAddress != "" {
		tx.PayAddress = nullString(payment.PayAddress)
	}
	if payment.PayAmount.Valid {
		tx.PayAmount = payment.PayAmount
	}
	if payment.PayCurrency != "" {
		tx.PayCurrency = nullString(payment.PayCurrency)
	}

	logger.Info(ctx, "gateway payment opened", zap.String("gatewayPaymentId", payment.PaymentID))
	return &PaymentInitiation{
		ReferenceID:      tx.ReferenceID,
		Transaction:      tx,
		GatewayPaymentID: payment.PaymentID,
		PayAddress:       tx.PayAddress.String,
		PayAmount:        tx.PayAmount,
		PayCurrency:      tx.PayCurrency.String,
		Status:           payment.PaymentStatus,
	}, nil
}
