package database

import (
	"fmt"
	"time"

	"livetokens/internal/logger"
	"livetokens/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect establishes a connection to the PostgreSQL database
func Connect(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Error),
		DisableForeignKeyConstraintWhenMigrating: true,
	})

	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := configurePool(DB); err != nil {
		return err
	}

	logger.Info("Database connection established")
	return nil
}

// configurePool tunes the underlying sql.DB connection pool
func configurePool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	return nil
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate() error {
	return Migrate(DB)
}

// Migrate runs automatic migrations for all models against the given database.
// Ledger models first: everything else references accounts and streams.
func Migrate(db *gorm.DB) error {
	ledgerModels := []interface{}{
		&models.Account{},
		&models.Stream{},
		&models.Tip{},
		&models.KingOfRoom{},
	}

	for _, model := range ledgerModels {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migration failed for %T: %w", model, err)
		}
	}

	featureModels := []interface{}{
		&models.Redemption{},
		&models.TipMenuItem{},
		&models.TokenGoal{},
		&models.OutboxEvent{},
	}

	for _, model := range featureModels {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migration failed for %T: %w", model, err)
		}
	}

	logger.Info("Database migrations completed")
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
