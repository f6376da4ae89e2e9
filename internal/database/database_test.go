package database

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/lib/pq"
)

// testAdapter points the SQLite adapter at a temp directory
func testAdapter(t *testing.T) *SQLiteAdapter {
	t.Helper()
	return &SQLiteAdapter{DefaultPath: filepath.Join(t.TempDir(), "test.db")}
}

func TestMigrateUp(t *testing.T) {
	adapter := testAdapter(t)
	db, _, err := Open(Config{Driver: "sqlite"}, adapter.DefaultPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	if err := MigrateUp(db, adapter); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}
	// Running again is a no-op
	if err := MigrateUp(db, adapter); err != nil {
		t.Fatalf("second MigrateUp() error = %v", err)
	}

	version, dirty, err := SchemaVersion(db, adapter)
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	if version != 2 || dirty {
		t.Errorf("SchemaVersion() = %d, dirty=%v, want 2, false", version, dirty)
	}
}

func TestForeignKeyConstraint(t *testing.T) {
	adapter := testAdapter(t)
	db, _, err := Open(Config{}, adapter.DefaultPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()
	if err := MigrateUp(db, adapter); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	now := time.Now().UTC()
	_, err = db.Exec(`INSERT INTO applications (id, user_id, company_name, role, location_type, date_applied, status, created_at, updated_at)
		VALUES ('a1', 'nobody', 'Acme', 'Engineer', 'remote', '2024-01-01', 'applied', ?, ?)`, now, now)
	if err == nil {
		t.Error("should have failed due to foreign key constraint")
	}
}

func TestCheckConstraints(t *testing.T) {
	adapter := testAdapter(t)
	db, _, err := Open(Config{}, adapter.DefaultPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()
	if err := MigrateUp(db, adapter); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	now := time.Now().UTC()
	if _, err := db.Exec(`INSERT INTO users (id, email, password_hash, created_at, updated_at) VALUES ('u1', 'a@example.com', 'x', ?, ?)`, now, now); err != nil {
		t.Fatalf("insert user: %v", err)
	}

	_, err = db.Exec(`INSERT INTO applications (id, user_id, company_name, role, location_type, date_applied, status, created_at, updated_at)
		VALUES ('a1', 'u1', 'Acme', 'Engineer', 'remote', '2024-01-01', 'pending', ?, ?)`, now, now)
	if err == nil {
		t.Error("should have rejected unknown status")
	}
}

func TestResolveAdapter(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		want    string
		wantErr bool
	}{
		{name: "default", driver: "", want: "sqlite"},
		{name: "sqlite3 alias", driver: "sqlite3", want: "sqlite"},
		{name: "postgres", driver: "postgres", want: "postgres"},
		{name: "postgresql alias", driver: "PostgreSQL", want: "postgres"},
		{name: "unknown", driver: "mysql", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter, err := ResolveAdapter(tt.driver, "x.db")
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveAdapter(%q) error = %v, wantErr %v", tt.driver, err, tt.wantErr)
			}
			if err == nil && adapter.Name() != tt.want {
				t.Errorf("ResolveAdapter(%q) = %s, want %s", tt.driver, adapter.Name(), tt.want)
			}
		})
	}
}

func TestPostgresRebind(t *testing.T) {
	got := PostgresAdapter{}.Rebind("UPDATE t SET a = ?, b = ? WHERE id = ?")
	want := "UPDATE t SET a = $1, b = $2 WHERE id = $3"
	if got != want {
		t.Errorf("Rebind() = %q, want %q", got, want)
	}
	if got := (SQLiteAdapter{}).Rebind("a = ?"); got != "a = ?" {
		t.Errorf("SQLite Rebind() = %q, want unchanged", got)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	adapter := testAdapter(t)
	db, _, err := Open(Config{}, adapter.DefaultPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()
	if err := MigrateUp(db, adapter); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	now := time.Now().UTC()
	insert := `INSERT INTO users (id, email, password_hash, created_at, updated_at) VALUES (?, 'a@example.com', 'x', ?, ?)`
	if _, err := db.Exec(insert, "u1", now, now); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	_, err = db.Exec(insert, "u2", now, now)
	if err == nil {
		t.Fatal("second insert with the same email succeeded")
	}
	if !IsUniqueViolation(fmt.Errorf("create user: %w", err)) {
		t.Errorf("IsUniqueViolation(%v) = false, want true", err)
	}

	if !IsUniqueViolation(&pq.Error{Code: "23505"}) {
		t.Error("IsUniqueViolation(pq 23505) = false, want true")
	}
	if IsUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Error("IsUniqueViolation(pq 23503) = true, want false")
	}
	if IsUniqueViolation(errors.New("boom")) {
		t.Error("IsUniqueViolation(plain error) = true, want false")
	}
}
