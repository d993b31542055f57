package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"lottery-ledger.backend/internal/config"
	pgsource "lottery-ledger.backend/internal/infrastructure/datasources/postgres"
	"lottery-ledger.backend/internal/infrastructure/gateway"
	"lottery-ledger.backend/internal/infrastructure/jobs"
	"lottery-ledger.backend/internal/infrastructure/metrics"
	"lottery-ledger.backend/internal/infrastructure/notification"
	"lottery-ledger.backend/internal/infrastructure/repositories"
	"lottery-ledger.backend/internal/interfaces/http/handlers"
	"lottery-ledger.backend/internal/interfaces/http/middleware"
	"lottery-ledger.backend/internal/usecases"
	"lottery-ledger.backend/pkg/jwt"
	"lottery-ledger.backend/pkg/logger"
	"lottery-ledger.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(cfg config.DatabaseConfig) (*gorm.DB, error) {
		sqlDB, err := pgsource.NewConnection(cfg)
		if err != nil {
			return nil, err
		}
		return gorm.Open(postgres.New(postgres.Config{
			Conn:                 sqlDB,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt:    false,
			TranslateError: true,
		})
	}
	migrateDB       = pgsource.Migrate
	getStdDB        = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
	newTelegram     = func(token string, chatID int64) (notification.Notifier, error) { return notification.NewTelegramNotifier(token, chatID) }
	metricsRegistry = func() prometheus.Registerer { return prometheus.DefaultRegisterer }
	runServer       = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := migrateDB(context.Background(), sqlDB); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Info(context.Background(), "Database schema up to date")

	if cfg.Gateway.IPNSecret == "" {
		logger.Warn(context.Background(), "NOWPAYMENTS_IPN_SECRET is empty, every webhook will be rejected")
	}

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry)
	m := metrics.New(metricsRegistry())

	// Repositories
	userRepo := repositories.NewUserRepository(db)
	walletRepo := repositories.NewWalletRepository(db)
	txRepo := repositories.NewTransactionRepository(db)
	planRepo := repositories.NewPlanRepository(db)
	userPlanRepo := repositories.NewUserPlanRepository(db)
	jackpotRepo := repositories.NewJackpotRepository(db)
	ticketRepo := repositories.NewTicketRepository(db)
	outboxRepo := repositories.NewOutboxRepository(db)
	uow := repositories.NewUnitOfWork(db)

	gatewayClient := gateway.NewClient(gateway.Config{
		BaseURL:        cfg.Gateway.BaseURL,
		APIKey:         cfg.Gateway.APIKey,
		PayoutEmail:    cfg.Gateway.PayoutEmail,
		PayoutPassword: cfg.Gateway.PayoutPassword,
		Timeout:        cfg.Gateway.Timeout,
	}, &http.Client{Timeout: cfg.Gateway.Timeout})

	// Usecases
	walletUsecase := usecases.NewWalletUsecase(uow, walletRepo, txRepo, ticketRepo, userPlanRepo, userRepo, m)
	commissionUsecase := usecases.NewCommissionUsecase(uow, userRepo, walletRepo, txRepo)
	entitlementUsecase := usecases.NewEntitlementUsecase(uow, planRepo, userPlanRepo, userRepo, outboxRepo)
	settlementUsecase := usecases.NewSettlementUsecase(uow, txRepo, walletUsecase, outboxRepo, entitlementUsecase, commissionUsecase, m, cfg.IsProduction())
	webhookUsecase := usecases.NewWebhookUsecase(cfg.Gateway.IPNSecret, settlementUsecase, m)
	paymentUsecase := usecases.NewPaymentUsecase(uow, gatewayClient, txRepo, planRepo, walletUsecase, entitlementUsecase, commissionUsecase, cfg.Gateway.CallbackURL)
	ticketUsecase := usecases.NewTicketUsecase(uow, jackpotRepo, ticketRepo, walletRepo, txRepo, outboxRepo, walletUsecase, commissionUsecase, m)

	// Handlers
	webhookHandler := handlers.NewWebhookHandler(webhookUsecase, settlementUsecase)
	paymentHandler := handlers.NewPaymentHandler(paymentUsecase)
	planHandler := handlers.NewPlanHandler(paymentUsecase, entitlementUsecase)
	ticketHandler := handlers.NewTicketHandler(ticketUsecase)
	walletHandler := handlers.NewWalletHandler(walletUsecase)

	// Outbox notifiers
	notifiers := []notification.Notifier{notification.NewRedisNotifier()}
	if cfg.Telegram.BotToken != "" {
		tg, err := newTelegram(cfg.Telegram.BotToken, cfg.Telegram.AdminChatID)
		if err != nil {
			logger.Warn(context.Background(), "Telegram alerts disabled", zap.Error(err))
		} else {
			notifiers = append(notifiers, tg)
		}
	}

	// Start background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	outboxJob := jobs.NewOutboxDispatchJob(outboxRepo, notification.NewMultiNotifier(notifiers...), m, cfg.Jobs.OutboxInterval)
	reconcileJob := jobs.NewPendingReconcileJob(txRepo, gatewayClient, settlementUsecase, cfg.Jobs.ReconcileInterval, cfg.Jobs.ReconcileAfter)
	expiryJob := jobs.NewPlanExpiryJob(entitlementUsecase, cfg.Jobs.PlanExpiryInterval)
	go outboxJob.Start(ctx)
	go reconcileJob.Start(ctx)
	go expiryJob.Start(ctx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware(m))

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		webhookHandler:     webhookHandler,
		paymentHandler:     paymentHandler,
		planHandler:        planHandler,
		ticketHandler:      ticketHandler,
		walletHandler:      walletHandler,
		authMiddleware:     middleware.AuthMiddleware(jwtService),
		adminMiddleware:    middleware.RequireAdmin(),
		idempotency:        middleware.IdempotencyMiddleware(),
		enableTestTriggers: !cfg.IsProduction(),
	})

	for _, route := range r.Routes() {
		logger.Debug(context.Background(), "route registered", zap.String("method", route.Method), zap.String("path", route.Path))
	}

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info(context.Background(), "Shutting down server")
		outboxJob.Stop()
		reconcileJob.Stop()
		expiryJob.Stop()
		cancel()
	}()

	logger.Info(context.Background(), "Lottery ledger starting", zap.String("port", cfg.Server.Port))
	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
