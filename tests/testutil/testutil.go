package testutil

import (
	"testing"

	"github.com/kendall-kelly/formalwear-orders-api/config"
	"github.com/kendall-kelly/formalwear-orders-api/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenTestDB opens an in-memory SQLite database with every table migrated
// and the refusal reasons seeded, and installs it as config.GetDB.
func OpenTestDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// every pooled connection would get its own empty :memory: database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := models.AutoMigrate(db); err != nil {
		return nil, err
	}
	if err := models.SeedRefusalReasons(db); err != nil {
		return nil, err
	}
	config.SetDB(db)
	return db, nil
}

// NewTestDB is OpenTestDB for a single test. The database is closed when the
// test ends.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := OpenTestDB()
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { CloseDB(db) })
	return db
}

// CloseDB closes the connection behind db
func CloseDB(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
