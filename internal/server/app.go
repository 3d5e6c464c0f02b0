package server

import (
	"fmt"

	"storefront/internal/config"
	"storefront/internal/domain/pricing"
	"storefront/internal/infra/db"
	"storefront/internal/infra/gateway"
	"storefront/internal/infra/kafka"
	"storefront/internal/infra/mail"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/metrics"
	"storefront/internal/repository"
	"storefront/internal/usecase"
	"storefront/internal/worker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds everything built from one Config. Both the API process and the
// ops CLI start from here.
type App struct {
	Cfg     config.Config
	DB      *gorm.DB
	Log     *zap.Logger
	Metrics *metrics.Metrics

	Users repository.UserRepository

	Cart        *usecase.CartUsecase
	Checkout    *usecase.CheckoutUsecase
	Discount    *usecase.DiscountUsecase
	Fulfillment *usecase.FulfillmentUsecase
	Ledger      *usecase.LedgerUsecase
	Reconcile   *usecase.ReconcileUsecase

	// nil when KAFKA_BROKERS is empty
	Relay     *worker.OutboxRelay
	publisher *kafka.Publisher
}

func NewApp(cfg config.Config, logger *zap.Logger) (*App, error) {
	gdb, err := db.Connect(cfg.DSN(), cfg.IsProd(), logger)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	return newApp(cfg, gdb, logger, m), nil
}

func newApp(cfg config.Config, gdb *gorm.DB, logger *zap.Logger, m *metrics.Metrics) *App {
	policy := pricing.NewPolicy(cfg.ShippingRatePerUnit, cfg.TaxRatePercent, cfg.TaxIncludesShipping)
	clock := usecase.SystemClock{}
	ids := usecase.UUIDGenerator{}

	txm := infraRepo.NewTxManagerGorm(gdb)
	users := infraRepo.NewUserGormRepository(gdb)
	carts := infraRepo.NewCartGormRepository(gdb)
	purchases := infraRepo.NewPurchaseLineGormRepository(gdb)
	products := infraRepo.NewProductGormRepository(gdb)
	discounts := infraRepo.NewDiscountGormRepository(gdb)
	sessions := infraRepo.NewCheckoutSessionGormRepository(gdb)
	verified := infraRepo.NewVerifiedTransactionGormRepository(gdb)
	receipts := infraRepo.NewReceiptGormRepository(gdb)
	outbox := infraRepo.NewOutboxGormRepository(gdb)
	audits := infraRepo.NewAuditLogGormRepository(gdb)

	var notifier usecase.Notifier
	if cfg.SMTPHost != "" {
		notifier = mail.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	} else {
		logger.Warn("SMTP_HOST not set, notifications are only logged")
		notifier = mail.NewLogNotifier(logger)
	}

	checkout := usecase.NewCheckoutUsecase(usecase.CheckoutDeps{
		Tx:        txm,
		Users:     users,
		Carts:     carts,
		Discounts: discounts,
		Sessions:  sessions,
		Verified:  verified,
		Receipts:  receipts,
		Gateway:   gateway.NewPaystack(cfg.PaystackBaseURL, cfg.PaystackSecretKey, cfg.GatewayTimeout),
		Notifier:  notifier,
		IDs:       ids,
		Clock:     clock,
		Logger:    logger,
		Metrics:   m,
	}, usecase.CheckoutConfig{
		Policy:           policy,
		ConversionFactor: cfg.ConversionFactor,
		SessionTTL:       cfg.CheckoutSessionTTL,
		CallbackURL:      cfg.PaystackCallbackURL,
		Currency:         cfg.PaystackCurrency,
		AppEmail:         cfg.AppEmail,
		CompanyEmail:     cfg.CompanyEmail,
	})

	app := &App{
		Cfg:         cfg,
		DB:          gdb,
		Log:         logger,
		Metrics:     m,
		Users:       users,
		Cart:        usecase.NewCartUsecase(carts, purchases, products, policy),
		Checkout:    checkout,
		Discount:    usecase.NewDiscountUsecase(txm, users, discounts, clock),
		Fulfillment: usecase.NewFulfillmentUsecase(txm, ids, clock, logger, m),
		Ledger:      usecase.NewLedgerUsecase(txm, receipts, audits, clock),
		Reconcile:   usecase.NewReconcileUsecase(sessions, checkout, clock, cfg.VerifyStuckAfter, logger),
	}

	if len(cfg.KafkaBrokers) > 0 {
		app.publisher = kafka.NewPublisher(cfg.KafkaBrokers)
		app.Relay = worker.NewOutboxRelay(outbox, app.publisher, cfg.OutboxBatch, m, logger)
	}
	return app
}

func (a *App) Close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.Log.Warn("close kafka writer", zap.Error(err))
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.Log.Sync()
}
