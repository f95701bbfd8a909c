// Package testutil opens migrated databases for repository tests.
package testutil

import (
	"os"
	"strings"
	"testing"

	"anoa.com/softdesk/internal/bootstrap"
	"anoa.com/softdesk/pkg/database"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// TestDatabaseEnv names a PostgreSQL DSN to run repository tests against. The
// tables are truncated before and after each test, so packages sharing one database
// must run with go test -p 1.
const TestDatabaseEnv = "TEST_DATABASE_URL"

var truncateSQL = "TRUNCATE TABLE " +
	strings.Join([]string{"comments", "issues", "contributors", "projects", "issued_tokens", "users"}, ", ") +
	" RESTART IDENTITY CASCADE"

// OpenDB returns a freshly migrated database. Without TEST_DATABASE_URL it is a
// private in-memory SQLite database with foreign keys enforced.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	if dsn := os.Getenv(TestDatabaseEnv); dsn != "" {
		return openPostgres(t, dsn)
	}

	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Every pooled connection to :memory: would see its own empty database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := bootstrap.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func openPostgres(t testing.TB, dsn string) *gorm.DB {
	t.Helper()

	db, err := database.Connect(dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := bootstrap.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	truncate := func() error {
		return db.Exec(truncateSQL).Error
	}
	if err := truncate(); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	t.Cleanup(func() {
		if err := truncate(); err != nil {
			t.Errorf("truncate: %v", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
