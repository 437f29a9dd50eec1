package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}

func TestNewAndMigrate(t *testing.T) {
	db := setupDB(t)

	// Migrate must be idempotent.
	if err := Migrate(db); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}

	for _, table := range []string{"conversations", "messages"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not created: %v", table, err)
		}
	}
}

func TestForeignKeysEnabled(t *testing.T) {
	db := setupDB(t)

	var enabled int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
		t.Fatalf("query pragma: %v", err)
	}
	if enabled != 1 {
		t.Error("foreign keys should be enabled on pooled connections")
	}
}

func TestMessagesRejectInvalidRole(t *testing.T) {
	db := setupDB(t)

	if _, err := db.Exec(
		"INSERT INTO conversations (conversation_id) VALUES ('c1')",
	); err != nil {
		t.Fatalf("insert conversation: %v", err)
	}

	_, err := db.Exec(
		"INSERT INTO messages (conversation_id, role, content) VALUES ('c1', 'system', 'x')",
	)
	if err == nil {
		t.Fatal("expected CHECK constraint to reject role 'system'")
	}
}
