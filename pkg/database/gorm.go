package database

import (
	"fmt"
	"strings"

	"bookheaven/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenGORM opens a relational store for driver ("postgres" or "sqlite") and
// migrates the catalog tables.
func OpenGORM(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(SQLiteDSN(dsn))
	default:
		return nil, fmt.Errorf("unsupported SQL driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// SQLiteDSN turns on foreign key enforcement for every connection opened
// with dsn, unless dsn already sets it.
func SQLiteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=1"
	}
	return dsn + "?_foreign_keys=1"
}

// Migrate creates or updates the brand, category and product tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Brand{}, &models.Category{}, &models.Product{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
