package history

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates a new SQLite database file and a Store for testing.
// It uses t.Cleanup to ensure resources are released.
func setupTestDB(t *testing.T) (*sql.DB, *Store) {
	t.Helper()
	dbFile := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", dbFile+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := SetupSchema(db); err != nil {
		t.Fatalf("failed to set up schema: %v", err)
	}

	s, err := NewStore(db)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(s.Close)

	return db, s
}

// setupTestStoreWithMessages adds the given texts alternating user and bot,
// starting with the user.
func setupTestStoreWithMessages(t *testing.T, texts ...string) (context.Context, *Store, []Message) {
	t.Helper()
	_, s := setupTestDB(t)
	ctx := context.Background()

	var added []Message
	for i, text := range texts {
		sender := SenderUser
		if i%2 == 1 {
			sender = SenderBot
		}
		msg, err := s.Add(ctx, sender, text)
		if err != nil {
			t.Fatalf("setup: Add() failed: %v", err)
		}
		added = append(added, msg)
	}
	return ctx, s, added
}
