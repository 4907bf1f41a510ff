package db

import (
	"errors" // Error inspection
	"fmt"    // DSN formatting

	"virtual_wallet/internal/config" // Application configuration
	"virtual_wallet/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logrus for structured logging
	"gorm.io/driver/mysql"       // MySQL driver for GORM
	"gorm.io/gorm"               // GORM ORM library
	"gorm.io/gorm/clause"        // Upsert clauses
)

// DSN builds the MySQL Data Source Name from configuration
func DSN(cfg *config.Config) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
}

// Open connects to MySQL. Driver errors are translated so duplicate keys surface as gorm.ErrDuplicatedKey.
func Open(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DBHost == "" || cfg.DBName == "" {
		return nil, errors.New("DB_HOST and DB_NAME are required for the mysql store") // Refuse to guess a database
	}
	return gorm.Open(mysql.Open(DSN(cfg)), &gorm.Config{TranslateError: true}) // Open a connection to the database
}

// Migrate creates or updates the schema and seeds the item catalog
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := db.AutoMigrate(&domain.User{}, &domain.Item{}, &domain.Transaction{}); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if err := SeedCatalog(db, domain.DefaultCatalog()); err != nil {
		return err
	}
	logrus.Info("Migration completed.") // Log successful migration
	return nil
}

// SeedCatalog inserts the given items, leaving existing rows untouched
func SeedCatalog(db *gorm.DB, items []domain.Item) error {
	if len(items) == 0 {
		return nil // Nothing to seed
	}
	// ON DUPLICATE KEY do nothing, so re-running the migration is safe
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&items).Error; err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	logrus.WithField("items", len(items)).Info("Catalog seeded") // Log seeding
	return nil
}
