package history

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestSetupSchemaIsIdempotent(t *testing.T) {
	db, _ := setupTestDB(t)
	if err := SetupSchema(db); err != nil {
		t.Errorf("second SetupSchema() call failed: %v", err)
	}
}

func TestAddAndGet(t *testing.T) {
	ctx, s, added := setupTestStoreWithMessages(t, "hello there")
	msg := added[0]

	if msg.ID == uuid.Nil {
		t.Error("expected Add to assign an ID")
	}
	if msg.CreatedAt.IsZero() {
		t.Error("expected Add to assign a timestamp")
	}

	got, err := s.Get(ctx, msg.ID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.ID != msg.ID || got.Sender != SenderUser || got.Text != "hello there" || !got.CreatedAt.Equal(msg.CreatedAt) {
		t.Errorf("Get() = %+v, want %+v", got, msg)
	}

	if _, err = s.Get(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for an unknown id, got %v", err)
	}
}

func TestAddRejectsUnknownSender(t *testing.T) {
	ctx, s, _ := setupTestStoreWithMessages(t)
	if _, err := s.Add(ctx, Sender("system"), "hi"); !errors.Is(err, ErrInvalidSender) {
		t.Errorf("expected ErrInvalidSender, got %v", err)
	}
}

func TestList(t *testing.T) {
	ctx, s, _ := setupTestStoreWithMessages(t, "one", "two", "three", "four", "five")

	all, err := s.List(ctx, 0, 0)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(all))
	}
	for i, want := range []string{"one", "two", "three", "four", "five"} {
		if all[i].Text != want {
			t.Errorf("message %d: got %q, want %q", i, all[i].Text, want)
		}
	}

	page, err := s.List(ctx, 2, 1)
	if err != nil {
		t.Fatalf("List(2, 1) failed: %v", err)
	}
	if len(page) != 2 || page[0].Text != "two" || page[1].Text != "three" {
		t.Errorf("unexpected page: %+v", page)
	}

	empty, err := s.List(ctx, 10, 100)
	if err != nil {
		t.Fatalf("List past the end failed: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected an empty, non-nil slice past the end, got %#v", empty)
	}
}

func TestCountDeleteClear(t *testing.T) {
	ctx, s, added := setupTestStoreWithMessages(t, "a", "b", "c")

	n, err := s.Count(ctx)
	if err != nil || n != 3 {
		t.Fatalf("Count() = %d, %v; want 3, nil", n, err)
	}

	if err = s.Delete(ctx, added[1].ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if err = s.Delete(ctx, added[1].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
	if n, _ = s.Count(ctx); n != 2 {
		t.Errorf("expected 2 messages after delete, got %d", n)
	}

	removed, err := s.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected Clear to remove 2 messages, got %d", removed)
	}
	if n, _ = s.Count(ctx); n != 0 {
		t.Errorf("expected an empty history after Clear, got %d", n)
	}
}

func TestCorpus(t *testing.T) {
	ctx, s, _ := setupTestStoreWithMessages(t, "the cat sat.", "The cat sat.", "the dog ran.")

	userOnly, err := s.Corpus(ctx, false)
	if err != nil {
		t.Fatalf("Corpus(false) failed: %v", err)
	}
	if want := "the cat sat.\nthe dog ran."; userOnly != want {
		t.Errorf("Corpus(false) = %q, want %q", userOnly, want)
	}

	all, err := s.Corpus(ctx, true)
	if err != nil {
		t.Fatalf("Corpus(true) failed: %v", err)
	}
	if want := "the cat sat.\nThe cat sat.\nthe dog ran."; all != want {
		t.Errorf("Corpus(true) = %q, want %q", all, want)
	}
}

func TestCorpusEmpty(t *testing.T) {
	ctx, s, _ := setupTestStoreWithMessages(t)
	corpus, err := s.Corpus(ctx, true)
	if err != nil {
		t.Fatalf("Corpus() failed: %v", err)
	}
	if corpus != "" {
		t.Errorf("expected an empty corpus, got %q", corpus)
	}
}

func TestTrimToLimit(t *testing.T) {
	ctx, s, _ := setupTestStoreWithMessages(t, "1", "2", "3", "4", "5")

	removed, err := s.TrimToLimit(ctx, 0)
	if err != nil || removed != 0 {
		t.Errorf("TrimToLimit(0) = %d, %v; want 0, nil", removed, err)
	}

	removed, err = s.TrimToLimit(ctx, 2)
	if err != nil {
		t.Fatalf("TrimToLimit(2) failed: %v", err)
	}
	if removed != 3 {
		t.Errorf("expected 3 messages removed, got %d", removed)
	}

	remaining, _ := s.List(ctx, 0, 0)
	if len(remaining) != 2 || remaining[0].Text != "4" || remaining[1].Text != "5" {
		t.Errorf("expected the two newest messages to remain, got %+v", remaining)
	}

	removed, _ = s.TrimToLimit(ctx, 10)
	if removed != 0 {
		t.Errorf("expected nothing removed under the limit, got %d", removed)
	}
}

func TestStats(t *testing.T) {
	ctx, s, _ := setupTestStoreWithMessages(t)

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() on empty store failed: %v", err)
	}
	if stats.Total != 0 || !stats.FirstMessageAt.IsZero() {
		t.Errorf("unexpected stats for an empty store: %+v", stats)
	}

	first, _ := s.Add(ctx, SenderUser, "hi")
	_, _ = s.Add(ctx, SenderBot, "hello")
	last, _ := s.Add(ctx, SenderUser, "bye")

	stats, err = s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if stats.Total != 3 || stats.UserMessages != 2 || stats.BotMessages != 1 {
		t.Errorf("unexpected totals: %+v", stats)
	}
	if !stats.FirstMessageAt.Equal(first.CreatedAt) || !stats.LastMessageAt.Equal(last.CreatedAt) {
		t.Errorf("unexpected time span: %+v (first %v, last %v)", stats, first.CreatedAt, last.CreatedAt)
	}
}
