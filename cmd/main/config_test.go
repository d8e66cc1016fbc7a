package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_WritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, data, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, onDisk)

	var reread Config
	require.NoError(t, json.Unmarshal(onDisk, &reread))
	assert.Equal(t, ":7300", reread.Server.ApiAddr)
	assert.Equal(t, 1, reread.Chat.RetrainEvery)
}

func TestLoadConfig_MissingSectionKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"chat_config":{"retrain_every":3,"min_reply_words":2,"max_reply_words":5}}`), 0o644))

	cfg, _, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultServerConfig(), cfg.Server)
	assert.Equal(t, 3, cfg.Chat.RetrainEvery)
	assert.Equal(t, 5, cfg.Chat.MaxReplyWords)
}

func TestLoadConfig_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{"server_config":`},
		{"bad level", `{"server_config":{"api_addr":":1","database_path":"x.db","log_level":"loud"}}`},
		{"bad retrain", `{"chat_config":{"retrain_every":0,"max_reply_words":5}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))
			_, _, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"missing section", func(c *Config) { c.Chat = nil }, "required"},
		{"empty addr", func(c *Config) { c.Server.ApiAddr = " " }, "api_addr"},
		{"empty db", func(c *Config) { c.Server.DatabasePath = "" }, "database_path"},
		{"bad level", func(c *Config) { c.Server.LogLevel = "verbose" }, "log_level"},
		{"negative timeout", func(c *Config) { c.Server.ShutdownTimeoutSec = -1 }, "shutdown_timeout_sec"},
		{"retrain zero", func(c *Config) { c.Chat.RetrainEvery = 0 }, "retrain_every"},
		{"negative limit", func(c *Config) { c.Chat.HistoryLimit = -5 }, "history_limit"},
		{"inverted range", func(c *Config) { c.Chat.MinReplyWords, c.Chat.MaxReplyWords = 9, 3 }, "reply length"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"":      slog.LevelInfo,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, ok := parseLogLevel(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := parseLogLevel("trace")
	assert.False(t, ok)
}

func TestConfigManager_GetReturnsCopy(t *testing.T) {
	cm, err := NewConfigManager(writeTestConfig(t, func(c *Config) {
		c.Server.AllowedOrigins = []string{"http://localhost:3000"}
	}))
	require.NoError(t, err)

	cfg := cm.Get()
	cfg.Server.AllowedOrigins[0] = "http://evil.example"
	cfg.Chat.RetrainEvery = 99

	again := cm.Get()
	assert.Equal(t, "http://localhost:3000", again.Server.AllowedOrigins[0])
	assert.Equal(t, 1, again.Chat.RetrainEvery)
}

func TestConfigManager_Update(t *testing.T) {
	path := writeTestConfig(t, nil)
	cm, err := NewConfigManager(path)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelError, cm.Level().Level())

	var notified []Config
	cm.OnChange(func(c Config) { notified = append(notified, c) })

	cfg := cm.Get()
	cfg.Server.LogLevel = "debug"
	cfg.Chat.RetrainEvery = 4
	require.NoError(t, cm.Update(cfg))

	assert.Equal(t, slog.LevelDebug, cm.Level().Level())
	assert.Equal(t, 4, cm.Get().Chat.RetrainEvery)
	require.Len(t, notified, 1)
	assert.Equal(t, 4, notified[0].Chat.RetrainEvery)

	reloaded, _, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4, reloaded.Chat.RetrainEvery)
	assert.Equal(t, "debug", reloaded.Server.LogLevel)

	cfg.Chat.RetrainEvery = 0
	assert.Error(t, cm.Update(cfg))
	assert.Equal(t, 4, cm.Get().Chat.RetrainEvery)
	assert.Len(t, notified, 1)
}

func TestConfigManager_Reload(t *testing.T) {
	path := writeTestConfig(t, nil)
	cm, err := NewConfigManager(path)
	require.NoError(t, err)

	calls := 0
	cm.OnChange(func(Config) { calls++ })

	// Unchanged contents are not re-applied.
	require.NoError(t, cm.Reload())
	assert.Equal(t, 0, calls)

	cfg := cm.Get()
	cfg.Chat.HistoryLimit = 10
	cfg.Server.LogLevel = "warn"
	data, err := json.Marshal(&cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	require.NoError(t, cm.Reload())
	assert.Equal(t, 1, calls)
	assert.Equal(t, 10, cm.Get().Chat.HistoryLimit)
	assert.Equal(t, slog.LevelWarn, cm.Level().Level())

	// An invalid file keeps the running configuration.
	require.NoError(t, os.WriteFile(path, []byte(`{"chat_config":{"retrain_every":-1}}`), 0o644))
	assert.Error(t, cm.Reload())
	assert.Equal(t, 10, cm.Get().Chat.HistoryLimit)
	assert.Equal(t, 1, calls)
}

func TestConfigManager_Watch(t *testing.T) {
	path := writeTestConfig(t, nil)
	cm, err := NewConfigManager(path)
	require.NoError(t, err)

	var mu sync.Mutex
	var limit int
	cm.OnChange(func(c Config) {
		mu.Lock()
		limit = c.Chat.HistoryLimit
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cm.Watch(ctx) }()

	cfg := cm.Get()
	cfg.Chat.HistoryLimit = 25
	data, err := json.MarshalIndent(&cfg, "", "  ")
	require.NoError(t, err)

	// Keep rewriting until the watcher, which starts asynchronously, sees it.
	assert.Eventually(t, func() bool {
		_ = os.WriteFile(path, data, 0o644)
		mu.Lock()
		defer mu.Unlock()
		return limit == 25
	}, 5*time.Second, 200*time.Millisecond)

	cancel()
	select {
	case err = <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
