package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// exportVersion is bumped whenever the export format changes shape.
const exportVersion = 1

// ExportedHistory is the serializable form of the whole history, used for
// JSON-based backups.
type ExportedHistory struct {
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Messages   []Message `json:"messages"`
}

// Export writes every stored message, oldest first, to w as indented JSON.
func (s *Store) Export(ctx context.Context, w io.Writer) error {
	messages, err := s.List(ctx, 0, 0)
	if err != nil {
		return fmt.Errorf("could not load messages for export: %w", err)
	}

	exported := ExportedHistory{
		Version:    exportVersion,
		ExportedAt: time.Now().UTC(),
		Messages:   messages,
	}

	s.logger.InfoContext(ctx, "History exported", slog.Int("messages_exported", len(messages)))

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exported)
}

// Import reads an exported history from r and appends its messages after the
// ones already stored, in file order. Messages whose ID is already present are
// skipped, so importing the same file twice is harmless. The whole import runs
// in one transaction and returns the number of messages added.
func (s *Store) Import(ctx context.Context, r io.Reader) (int, error) {
	var imported ExportedHistory
	if err := json.NewDecoder(r).Decode(&imported); err != nil {
		return 0, fmt.Errorf("failed to decode json history: %w", err)
	}
	if imported.Version > exportVersion {
		return 0, fmt.Errorf("unsupported history export version %d", imported.Version)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("could not begin transaction for import: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	stmtInsert, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO chat_messages (message_id, sender, body, created_at) VALUES (?, ?, ?, ?);`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare message insert statement: %w", err)
	}
	defer func(stmt *sql.Stmt) {
		_ = stmt.Close()
	}(stmtInsert)

	added := 0
	for i, msg := range imported.Messages {
		if !msg.Sender.Valid() {
			return 0, fmt.Errorf("message %d: %w: %q", i, ErrInvalidSender, msg.Sender)
		}
		if msg.ID == uuid.Nil {
			msg.ID = uuid.New()
		}
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = time.Now().UTC()
		}
		res, err := stmtInsert.ExecContext(ctx, msg.ID.String(), string(msg.Sender), msg.Text, msg.CreatedAt.UnixNano())
		if err != nil {
			return 0, fmt.Errorf("failed to insert message %s: %w", msg.ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("could not commit import: %w", err)
	}

	s.logger.InfoContext(ctx, "History imported",
		slog.Int("messages_in_file", len(imported.Messages)),
		slog.Int("messages_added", added),
	)
	return added, nil
}
