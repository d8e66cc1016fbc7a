package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sender identifies who wrote a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Valid reports whether s is one of the known senders.
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderBot
}

var (
	// ErrNotFound is returned when a message ID does not exist in the store.
	ErrNotFound = errors.New("history: message not found")
	// ErrInvalidSender is returned when a message carries an unknown sender.
	ErrInvalidSender = errors.New("history: invalid sender")
)

// Message is a single stored utterance.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// SetupSchema creates the message table. It is idempotent and safe to call on
// an already-initialized database.
func SetupSchema(db *sql.DB) error {
	const (
		schemaMessages = `
CREATE TABLE IF NOT EXISTS chat_messages (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    message_id TEXT NOT NULL UNIQUE,
    sender TEXT NOT NULL,
    body TEXT NOT NULL,
    created_at INTEGER NOT NULL
);
`
		indexSender = `CREATE INDEX IF NOT EXISTS idx_chat_messages_sender ON chat_messages (sender);`
	)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaMessages); err != nil {
		return fmt.Errorf("could not create messages schema: %w", err)
	}
	if _, err = tx.Exec(indexSender); err != nil {
		return fmt.Errorf("could not create sender index: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// Store is the conversation history kept in SQLite. Messages are ordered by
// insertion; the corpus the model trains on is every stored text in that order.
type Store struct {
	db             *sql.DB
	stmtInsert     *sql.Stmt
	stmtGet        *sql.Stmt
	stmtList       *sql.Stmt
	stmtCount      *sql.Stmt
	stmtDelete     *sql.Stmt
	stmtClear      *sql.Stmt
	stmtCorpusAll  *sql.Stmt
	stmtCorpusUser *sql.Stmt
	stmtTrim       *sql.Stmt
	stmtStats      *sql.Stmt
	logger         *slog.Logger
}

// NewStore prepares every statement the store needs. SetupSchema must have
// been called on db first.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{
		db:     db,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	statements := []struct {
		dst   **sql.Stmt
		query string
	}{
		{&s.stmtInsert, `INSERT INTO chat_messages (message_id, sender, body, created_at) VALUES (?, ?, ?, ?);`},
		{&s.stmtGet, `SELECT message_id, sender, body, created_at FROM chat_messages WHERE message_id = ?;`},
		{&s.stmtList, `SELECT message_id, sender, body, created_at FROM chat_messages ORDER BY seq ASC LIMIT ? OFFSET ?;`},
		{&s.stmtCount, `SELECT COUNT(*) FROM chat_messages;`},
		{&s.stmtDelete, `DELETE FROM chat_messages WHERE message_id = ?;`},
		{&s.stmtClear, `DELETE FROM chat_messages;`},
		{&s.stmtCorpusAll, `SELECT body FROM chat_messages ORDER BY seq ASC;`},
		{&s.stmtCorpusUser, `SELECT body FROM chat_messages WHERE sender = 'user' ORDER BY seq ASC;`},
		{&s.stmtTrim, `DELETE FROM chat_messages WHERE seq NOT IN (SELECT seq FROM chat_messages ORDER BY seq DESC LIMIT ?);`},
		{&s.stmtStats, `SELECT COUNT(*),
       COALESCE(SUM(CASE WHEN sender = 'user' THEN 1 ELSE 0 END), 0),
       COALESCE(SUM(CASE WHEN sender = 'bot' THEN 1 ELSE 0 END), 0),
       COALESCE(MIN(created_at), 0),
       COALESCE(MAX(created_at), 0)
FROM chat_messages;`},
	}

	for _, st := range statements {
		stmt, err := db.Prepare(st.query)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("could not prepare statement %q: %w", firstLine(st.query), err)
		}
		*st.dst = stmt
	}
	return s, nil
}

// Close releases the prepared statements. The underlying *sql.DB is left open.
func (s *Store) Close() {
	for _, stmt := range []*sql.Stmt{
		s.stmtInsert, s.stmtGet, s.stmtList, s.stmtCount, s.stmtDelete,
		s.stmtClear, s.stmtCorpusAll, s.stmtCorpusUser, s.stmtTrim, s.stmtStats,
	} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
}

// SetLogger sets the logger for the Store. By default, all logs are discarded.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Add stores a new message and returns it with its generated ID and timestamp.
func (s *Store) Add(ctx context.Context, sender Sender, text string) (Message, error) {
	if !sender.Valid() {
		return Message{}, fmt.Errorf("%w: %q", ErrInvalidSender, sender)
	}
	msg := Message{
		ID:        uuid.New(),
		Sender:    sender,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.stmtInsert.ExecContext(ctx, msg.ID.String(), string(msg.Sender), msg.Text, msg.CreatedAt.UnixNano()); err != nil {
		return Message{}, fmt.Errorf("failed to insert message: %w", err)
	}
	return msg, nil
}

// Get returns the message with the given ID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Message, error) {
	msg, err := scanMessage(s.stmtGet.QueryRowContext(ctx, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return Message{}, ErrNotFound
	}
	return msg, err
}

// List returns up to limit messages in insertion order, skipping the first
// offset. A limit of zero or less returns everything after offset.
func (s *Store) List(ctx context.Context, limit, offset int) ([]Message, error) {
	if limit <= 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.stmtList.QueryContext(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	messages := make([]Message, 0)
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

// Count returns the number of stored messages.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.stmtCount.QueryRowContext(ctx).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return n, nil
}

// Delete removes a single message, returning ErrNotFound when it does not exist.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.stmtDelete.ExecContext(ctx, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete message %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear removes every message and returns how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.stmtClear.ExecContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	n, _ := res.RowsAffected()
	s.logger.InfoContext(ctx, "History cleared", slog.Int64("messages_removed", n))
	return n, nil
}

// Corpus joins every stored text with '\n' in insertion order. Bot replies
// are left out unless includeBot is set.
func (s *Store) Corpus(ctx context.Context, includeBot bool) (string, error) {
	stmt := s.stmtCorpusUser
	if includeBot {
		stmt = s.stmtCorpusAll
	}
	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to query corpus: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var sb strings.Builder
	first := true
	for rows.Next() {
		var body string
		if err = rows.Scan(&body); err != nil {
			return "", err
		}
		if !first {
			sb.WriteByte('\n')
		}
		sb.WriteString(body)
		first = false
	}
	if err = rows.Err(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// TrimToLimit deletes the oldest messages so that at most keep remain. A keep
// of zero or less means unlimited and deletes nothing.
func (s *Store) TrimToLimit(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	res, err := s.stmtTrim.ExecContext(ctx, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to trim history to %d messages: %w", keep, err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		s.logger.InfoContext(ctx, "History trimmed",
			slog.Int("limit", keep),
			slog.Int64("messages_removed", n),
		)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (Message, error) {
	var (
		id, sender, body string
		created          int64
	)
	if err := row.Scan(&id, &sender, &body, &created); err != nil {
		return Message{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Message{}, fmt.Errorf("corrupt message id %q: %w", id, err)
	}
	return Message{
		ID:        parsed,
		Sender:    Sender(sender),
		Text:      body,
		CreatedAt: time.Unix(0, created).UTC(),
	}, nil
}

func firstLine(query string) string {
	if i := strings.IndexByte(query, '\n'); i >= 0 {
		return query[:i]
	}
	return query
}
