package main

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/CTAG07/Parrot/pkg/chat"
	"github.com/CTAG07/Parrot/pkg/history"
	"github.com/CTAG07/Parrot/pkg/markov"
	"github.com/CTAG07/Parrot/pkg/pos"
)

// App bundles everything a command needs: the database, the history store,
// the reply model and the bot that drives them.
type App struct {
	cm     *ConfigManager
	db     *sql.DB
	store  *history.Store
	model  *markov.Model
	bot    *chat.Bot
	logger *slog.Logger
}

// newLogger builds the process logger; its level follows the config manager.
func newLogger(w io.Writer, cm *ConfigManager) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cm.Level()}))
}

// openApp opens the database, prepares every schema and wires the bot. The
// bot follows chat setting changes made through cm.
func openApp(cm *ConfigManager, logger *slog.Logger) (*App, error) {
	cfg := cm.Get()

	if cfg.Server.DataDir != "" {
		if err := os.MkdirAll(cfg.Server.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := initDB(cfg.Server.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err = history.SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to setup history schema: %w", err)
	}
	if err = setupAuthSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to setup auth schema: %w", err)
	}

	store, err := history.NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error creating history store: %w", err)
	}
	store.SetLogger(logger)

	model := markov.NewModel(pos.NewTagger(),
		markov.WithReplyLength(cfg.Chat.MinReplyWords, cfg.Chat.MaxReplyWords),
	)
	model.SetLogger(logger)

	bot := chat.NewBot(model, store, cfg.Chat.Settings())
	bot.SetLogger(logger)

	cm.OnChange(func(c Config) {
		bot.ApplySettings(c.Chat.Settings())
	})

	return &App{
		cm:     cm,
		db:     db,
		store:  store,
		model:  model,
		bot:    bot,
		logger: logger,
	}, nil
}

// Close releases the store's statements and the database connection.
func (a *App) Close() error {
	a.store.Close()
	return a.db.Close()
}
