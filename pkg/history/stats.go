package history

import (
	"context"
	"fmt"
	"time"
)

// Stats summarizes the stored conversation.
type Stats struct {
	Total          int64     `json:"total"`
	UserMessages   int64     `json:"user_messages"`
	BotMessages    int64     `json:"bot_messages"`
	FirstMessageAt time.Time `json:"first_message_at"` // Zero when the history is empty.
	LastMessageAt  time.Time `json:"last_message_at"`
}

// Stats returns message totals per sender and the time span they cover.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var (
		stats         Stats
		first, latest int64
	)
	err := s.stmtStats.QueryRowContext(ctx).Scan(&stats.Total, &stats.UserMessages, &stats.BotMessages, &first, &latest)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to query history stats: %w", err)
	}
	if stats.Total > 0 {
		stats.FirstMessageAt = time.Unix(0, first).UTC()
		stats.LastMessageAt = time.Unix(0, latest).UTC()
	}
	return stats, nil
}
