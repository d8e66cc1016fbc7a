// Package chat runs the conversation loop: it records what the user says,
// keeps the reply model trained on the stored history and answers.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/CTAG07/Parrot/pkg/history"
	"github.com/CTAG07/Parrot/pkg/markov"
)

// ErrEmptyInput is returned by Respond when the input holds no text.
var ErrEmptyInput = errors.New("chat: empty input")

// Generator is the reply model the bot drives. *markov.Model implements it.
type Generator interface {
	Train(corpus string)
	GenerateResponse(input string) string
	Trained() bool
	Stats() markov.ModelStats
	Followers(first, second string) []string
}

// Store is the history the bot records to and trains from. *history.Store
// implements it.
type Store interface {
	Add(ctx context.Context, sender history.Sender, text string) (history.Message, error)
	Corpus(ctx context.Context, includeBot bool) (string, error)
	TrimToLimit(ctx context.Context, keep int) (int64, error)
	Stats(ctx context.Context) (history.Stats, error)
}

// Settings controls when the bot retrains and how much history it keeps.
type Settings struct {
	// RetrainEvery is the number of user messages between automatic retrains.
	// Values below 1 retrain on every message.
	RetrainEvery int `json:"retrain_every"`
	// LearnFromReplies adds the bot's own stored replies to the training corpus.
	LearnFromReplies bool `json:"learn_from_replies"`
	// HistoryLimit caps the number of stored messages; the oldest are removed
	// first. Zero means unlimited.
	HistoryLimit int `json:"history_limit"`
}

// DefaultSettings returns settings that retrain on every message, learn only
// from the user and keep the whole history.
func DefaultSettings() Settings {
	return Settings{RetrainEvery: 1}
}

func (s Settings) normalized() Settings {
	if s.RetrainEvery < 1 {
		s.RetrainEvery = 1
	}
	if s.HistoryLimit < 0 {
		s.HistoryLimit = 0
	}
	return s
}

// Reply is the outcome of a single Respond call.
type Reply struct {
	Text string `json:"reply"`
	// Trained reports whether the model knew any transitions when it answered.
	Trained bool `json:"trained"`
	// Retrained reports whether this call triggered a training pass.
	Retrained bool      `json:"retrained"`
	MessageID uuid.UUID `json:"message_id"`
	// ReplyID is nil when the reply was a fallback message and was not stored.
	ReplyID *uuid.UUID `json:"reply_id,omitempty"`
	// Pruned counts the messages removed to stay within the history limit.
	Pruned int64 `json:"pruned,omitempty"`
}

// Bot ties a reply model to the stored conversation. Every Respond records
// the input, retrains when due, then answers, all under one lock, so replies
// always come from a model that has seen the messages before them.
type Bot struct {
	mu          sync.Mutex
	model       Generator
	store       Store
	settings    Settings
	pending     int // user messages since the last training pass
	trainedOnce bool
	logger      *slog.Logger
}

// NewBot creates a bot around model and store. The model is trained lazily on
// the first Respond call, or explicitly with Train.
func NewBot(model Generator, store Store, settings Settings) *Bot {
	return &Bot{
		model:    model,
		store:    store,
		settings: settings.normalized(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetLogger sets the logger for the Bot. By default, all logs are discarded.
func (b *Bot) SetLogger(logger *slog.Logger) {
	if logger != nil {
		b.logger = logger
	}
}

// Settings returns the settings currently in effect.
func (b *Bot) Settings() Settings {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.settings
}

// ApplySettings replaces the bot's settings. A lowered RetrainEvery takes
// effect on the next message.
func (b *Bot) ApplySettings(s Settings) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.settings = s.normalized()
	b.logger.Info("Chat settings applied",
		slog.Int("retrain_every", b.settings.RetrainEvery),
		slog.Bool("learn_from_replies", b.settings.LearnFromReplies),
		slog.Int("history_limit", b.settings.HistoryLimit),
	)
}

// Respond stores input, retrains the model if enough messages have arrived
// since the last pass, and generates a reply. Replies are stored too, unless
// they are one of the model's fixed fallback messages.
func (b *Bot) Respond(ctx context.Context, input string) (Reply, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Reply{}, ErrEmptyInput
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	userMsg, err := b.store.Add(ctx, history.SenderUser, input)
	if err != nil {
		return Reply{}, fmt.Errorf("failed to record message: %w", err)
	}
	b.pending++

	reply := Reply{MessageID: userMsg.ID}
	if !b.trainedOnce || b.pending >= b.settings.RetrainEvery {
		if _, err = b.trainLocked(ctx); err != nil {
			return Reply{}, err
		}
		reply.Retrained = true
	}

	reply.Text = b.model.GenerateResponse(input)
	reply.Trained = b.model.Trained()

	if !isFallback(reply.Text) {
		botMsg, err := b.store.Add(ctx, history.SenderBot, reply.Text)
		if err != nil {
			return Reply{}, fmt.Errorf("failed to record reply: %w", err)
		}
		reply.ReplyID = &botMsg.ID
	}

	if b.settings.HistoryLimit > 0 {
		if reply.Pruned, err = b.store.TrimToLimit(ctx, b.settings.HistoryLimit); err != nil {
			return Reply{}, fmt.Errorf("failed to enforce history limit: %w", err)
		}
	}

	b.logger.DebugContext(ctx, "Reply generated",
		slog.String("message_id", userMsg.ID.String()),
		slog.Bool("retrained", reply.Retrained),
		slog.Bool("stored", reply.ReplyID != nil),
		slog.Int("pending", b.pending),
	)
	return reply, nil
}

// Train rebuilds the model from the full stored history right away.
func (b *Bot) Train(ctx context.Context) (markov.ModelStats, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.trainLocked(ctx)
}

func (b *Bot) trainLocked(ctx context.Context) (markov.ModelStats, error) {
	corpus, err := b.store.Corpus(ctx, b.settings.LearnFromReplies)
	if err != nil {
		return markov.ModelStats{}, fmt.Errorf("failed to load training corpus: %w", err)
	}
	b.model.Train(corpus)
	b.pending = 0
	b.trainedOnce = true
	return b.model.Stats(), nil
}

// Stats combines the model and history statistics.
type Stats struct {
	Model   markov.ModelStats `json:"model"`
	History history.Stats     `json:"history"`
	// PendingMessages counts user messages the model has not been trained on.
	PendingMessages int      `json:"pending_messages"`
	Settings        Settings `json:"settings"`
}

// Stats returns a snapshot of the model, the history and the retrain state.
func (b *Bot) Stats(ctx context.Context) (Stats, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	hs, err := b.store.Stats(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Model:           b.model.Stats(),
		History:         hs,
		PendingMessages: b.pending,
		Settings:        b.settings,
	}, nil
}

// Followers returns the words the model has seen after the pair (first,
// second). Both words are normalized the way training normalizes them.
func (b *Bot) Followers(first, second string) []string {
	return b.model.Followers(normalizeWord(first), normalizeWord(second))
}

func normalizeWord(w string) string {
	words := markov.Tokenize(markov.Clean(w))
	if len(words) == 0 {
		return ""
	}
	return words[0]
}

func isFallback(text string) bool {
	return text == markov.NotTrainedMessage || text == markov.NoResponseMessage
}
