package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/khrees2412/jobtracker/internal/database"
)

// NewTestDatabase opens a migrated SQLite database in a temp directory.
// The database is closed when the test completes.
func NewTestDatabase(t *testing.T) (*sql.DB, database.Adapter) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, adapter, err := database.Open(database.Config{Driver: "sqlite"}, path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	if err := database.MigrateUp(db, adapter); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}

	return db, adapter
}

// SeedUser inserts a bare user row so applications can reference it.
func SeedUser(t *testing.T, db *sql.DB, id, email string) {
	t.Helper()

	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO users (id, email, password_hash, display_name, created_at, updated_at)
		VALUES (?, ?, 'x', '', ?, ?)`, id, email, now, now)
	if err != nil {
		t.Fatalf("failed to seed user %s: %v", id, err)
	}
}
