// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/yigit/learnhub/internal/app/migrations"
	"github.com/yigit/learnhub/internal/db"
)

// NewDatabase returns a private, fully migrated in-memory SQLite database
// that is closed when the test ends.
func NewDatabase(t testing.TB) *db.Database {
	t.Helper()

	database, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := migrations.NewMigrator(database, zerolog.Nop()).Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}
