package database

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenTestDb returns a migrated in-memory SQLite database and installs it as the global handle.
func OpenTestDb(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("OpenTestDb() failed: %v", err)
	}

	// a private in-memory database lives only as long as its single connection
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("OpenTestDb() failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(db); err != nil {
		t.Fatalf("OpenTestDb() migrate failed: %v", err)
	}

	prev := Database
	Database = DbInstance{Db: db}
	t.Cleanup(func() {
		Database = prev
		sqlDB.Close()
	})
	return db
}
