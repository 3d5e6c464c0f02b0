package db

import (
	"time"

	"storefront/internal/domain/model"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the database and returns *gorm.DB.
func Connect(dsn string, prod bool, logger *zap.Logger) (*gorm.DB, error) {
	level := gormlogger.Warn
	if prod {
		level = gormlogger.Error
	}

	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	logger.Info("database connected", zap.Bool("prod", prod))
	return gdb, nil
}

// Migrate creates or updates every table the pipeline owns.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.CartItem{},
		&model.PurchaseLine{},
		&model.Discount{},
		&model.DiscountRedemption{},
		&model.CheckoutSession{},
		&model.Transaction{},
		&model.Receipt{},
		&model.Order{},
		&model.Fulfilled{},
		&model.VerifiedTransaction{},
		&model.InventoryCredit{},
		&model.OutboxEvent{},
		&model.AuditLog{},
	)
}
