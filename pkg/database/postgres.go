package database

import (
	"log"
	"os"
	"strings"
	"time"

	"go-storefront/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewLogger builds the SQL logger shared by the production and test connections.
func NewLogger(level string) logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  parseLogLevel(level),
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// ConnectDB opens the connection pool. Each repository call checks a
// connection out of the pool and returns it when the statement completes.
func ConnectDB(dsn, logLevel string) *gorm.DB {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:         NewLogger(logLevel),
		TranslateError: true,
	})
	if err != nil {
		log.Fatal("Failed to connect to database. \n", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	log.Println("Database connection established")
	return db
}

// Migrate creates or updates the five storefront tables. Pickup points from
// the legacy schema get their address key backfilled before the unique index
// is built.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.PickupPoint{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
	); err != nil {
		return err
	}

	if err := db.Model(&model.PickupPoint{}).
		Where("address_key = ''").
		UpdateColumn("address_key", gorm.Expr("LOWER(TRIM(address))")).Error; err != nil {
		return err
	}
	return db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_pickup_points_address_key ON pickup_points (address_key)").Error
}
