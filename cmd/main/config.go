package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/natefinch/atomic"

	"github.com/CTAG07/Parrot/pkg/chat"
	"github.com/CTAG07/Parrot/pkg/markov"
)

// ServerConfig holds the configuration for the API server and storage.
type ServerConfig struct {
	ApiAddr            string   `json:"api_addr"`
	LogLevel           string   `json:"log_level"`
	DataDir            string   `json:"data_dir"`
	DatabasePath       string   `json:"database_path"`
	AllowedOrigins     []string `json:"allowed_origins"`
	ShutdownTimeoutSec int      `json:"shutdown_timeout_sec"`
}

// ChatConfig holds the settings for the conversation loop and reply model.
type ChatConfig struct {
	RetrainEvery     int  `json:"retrain_every"`
	LearnFromReplies bool `json:"learn_from_replies"`
	HistoryLimit     int  `json:"history_limit"`
	// Reply length changes only apply after a restart.
	MinReplyWords int `json:"min_reply_words"`
	MaxReplyWords int `json:"max_reply_words"`
}

// Config is the top-level configuration struct that aggregates all other configs.
type Config struct {
	Server *ServerConfig `json:"server_config"`
	Chat   *ChatConfig   `json:"chat_config"`
}

// DefaultServerConfig creates a server configuration with default values.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		ApiAddr:            ":7300",
		LogLevel:           "info",
		DataDir:            "./data",
		DatabasePath:       "./data/parrot.db",
		AllowedOrigins:     []string{},
		ShutdownTimeoutSec: 10,
	}
}

// DefaultChatConfig creates a chat configuration with default values.
func DefaultChatConfig() *ChatConfig {
	return &ChatConfig{
		RetrainEvery:     1,
		LearnFromReplies: false,
		HistoryLimit:     0,
		MinReplyWords:    markov.DefaultMinReplyWords,
		MaxReplyWords:    markov.DefaultMaxReplyWords,
	}
}

// DefaultConfig returns a complete configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: DefaultServerConfig(),
		Chat:   DefaultChatConfig(),
	}
}

// Settings converts the chat config into the bot's settings.
func (c *ChatConfig) Settings() chat.Settings {
	return chat.Settings{
		RetrainEvery:     c.RetrainEvery,
		LearnFromReplies: c.LearnFromReplies,
		HistoryLimit:     c.HistoryLimit,
	}
}

// Validate reports the first invalid setting, if any.
func (c *Config) Validate() error {
	if c.Server == nil || c.Chat == nil {
		return errors.New("server_config and chat_config are required")
	}
	if strings.TrimSpace(c.Server.ApiAddr) == "" {
		return errors.New("server_config.api_addr must not be empty")
	}
	if strings.TrimSpace(c.Server.DatabasePath) == "" {
		return errors.New("server_config.database_path must not be empty")
	}
	if _, ok := parseLogLevel(c.Server.LogLevel); !ok {
		return fmt.Errorf("server_config.log_level %q is not one of debug, info, warn, error", c.Server.LogLevel)
	}
	if c.Server.ShutdownTimeoutSec < 0 {
		return errors.New("server_config.shutdown_timeout_sec must not be negative")
	}
	if c.Chat.RetrainEvery < 1 {
		return errors.New("chat_config.retrain_every must be at least 1")
	}
	if c.Chat.HistoryLimit < 0 {
		return errors.New("chat_config.history_limit must not be negative")
	}
	if c.Chat.MinReplyWords < 0 || c.Chat.MaxReplyWords < c.Chat.MinReplyWords {
		return fmt.Errorf("chat_config reply length %d..%d is not a valid range", c.Chat.MinReplyWords, c.Chat.MaxReplyWords)
	}
	return nil
}

// clone returns a deep copy so callers can never alias the manager's state.
func (c *Config) clone() Config {
	server := *c.Server
	server.AllowedOrigins = append([]string(nil), c.Server.AllowedOrigins...)
	chatCfg := *c.Chat
	return Config{Server: &server, Chat: &chatCfg}
}

func (c *Config) shutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSec) * time.Second
}

// parseLogLevel maps a config log level onto slog. Empty means info.
func parseLogLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values. Sections
// missing from the file keep their defaults.
func LoadConfig(path string) (*Config, []byte, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("failed to read config file: %w", err)
		}
		data, err := json.MarshalIndent(config, "", "  ")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal default config: %w", err)
		}
		if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
			// The server can still run with defaults.
			fmt.Fprintf(os.Stderr, "warning: failed to write default config file: %v\n", err)
		}
		return config, data, nil
	}

	if err = json.Unmarshal(file, config); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if config.Server == nil {
		config.Server = DefaultServerConfig()
	}
	if config.Chat == nil {
		config.Chat = DefaultChatConfig()
	}
	if err = config.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config file: %w", err)
	}
	return config, file, nil
}

// ConfigManager handles thread-safe access to the configuration, keeps the
// log level in sync with it and notifies subscribers when it changes.
type ConfigManager struct {
	config     *Config
	mu         sync.RWMutex
	configPath string
	lastData   []byte // file contents last loaded or written
	level      *slog.LevelVar
	listeners  []func(Config)
	logger     *slog.Logger
}

// NewConfigManager loads the config and initializes the manager.
func NewConfigManager(path string) (*ConfigManager, error) {
	cfg, data, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	cm := &ConfigManager{
		config:     cfg,
		configPath: path,
		lastData:   data,
		level:      new(slog.LevelVar),
	}
	lvl, _ := parseLogLevel(cfg.Server.LogLevel)
	cm.level.Set(lvl)
	// Log to stderr before the application-specific logger is set.
	cm.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cm.level}))
	return cm, nil
}

// Level is the log level variable that follows server_config.log_level.
func (cm *ConfigManager) Level() *slog.LevelVar {
	return cm.level
}

// Path returns the file the manager reads and writes.
func (cm *ConfigManager) Path() string {
	return cm.configPath
}

// SetLogger sets the logger used for config change events.
func (cm *ConfigManager) SetLogger(logger *slog.Logger) {
	if logger != nil {
		cm.logger = logger
	}
}

// OnChange registers fn to be called with the new configuration after every
// successful Update or Reload.
func (cm *ConfigManager) OnChange(fn func(Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.listeners = append(cm.listeners, fn)
}

// Get returns a thread-safe copy of the current configuration.
func (cm *ConfigManager) Get() Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config.clone()
}

// Update validates the configuration, saves it to disk and applies it.
func (cm *ConfigManager) Update(newConfig Config) error {
	if err := newConfig.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(&newConfig, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	cm.mu.Lock()
	if err = atomic.WriteFile(cm.configPath, bytes.NewReader(data)); err != nil {
		cm.mu.Unlock()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	cm.lastData = data
	listeners := cm.applyLocked(newConfig.clone())
	cm.mu.Unlock()

	cm.notify(listeners)
	cm.logger.Info("Configuration updated and saved. Address, database and reply length changes require a restart.")
	return nil
}

// Reload re-reads the config file and applies it when its contents changed.
// An invalid file is rejected and the running configuration is kept.
func (cm *ConfigManager) Reload() error {
	data, err := os.ReadFile(cm.configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	cm.mu.Lock()
	if bytes.Equal(data, cm.lastData) {
		cm.mu.Unlock()
		return nil
	}
	cm.mu.Unlock()

	cfg := DefaultConfig()
	if err = json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	if err = cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config file: %w", err)
	}

	cm.mu.Lock()
	cm.lastData = data
	listeners := cm.applyLocked(cfg.clone())
	cm.mu.Unlock()

	cm.notify(listeners)
	cm.logger.Info("Configuration reloaded from disk", slog.String("path", cm.configPath))
	return nil
}

func (cm *ConfigManager) applyLocked(cfg Config) []func(Config) {
	cm.config = &cfg
	lvl, _ := parseLogLevel(cfg.Server.LogLevel)
	cm.level.Set(lvl)
	return append([]func(Config){}, cm.listeners...)
}

func (cm *ConfigManager) notify(listeners []func(Config)) {
	cfg := cm.Get()
	for _, fn := range listeners {
		fn(cfg)
	}
}

// configDebounce collapses the burst of events editors produce on save.
const configDebounce = 100 * time.Millisecond

// Watch reloads the configuration whenever the file changes on disk. It
// watches the parent directory so that editors which replace the file by
// rename are picked up too. Watch blocks until ctx is done.
func (cm *ConfigManager) Watch(ctx context.Context) error {
	absPath, err := filepath.Abs(cm.configPath)
	if err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer func(fw *fsnotify.Watcher) {
		_ = fw.Close()
	}(fw)

	if err = fw.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("failed to watch config directory: %w", err)
	}
	cm.logger.Debug("Watching configuration file", slog.String("path", absPath))

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending = time.After(configDebounce)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			cm.logger.Warn("Config watcher error", slog.Any("error", err))

		case <-pending:
			pending = nil
			if err := cm.Reload(); err != nil {
				cm.logger.Error("Failed to reload configuration, keeping the current one", slog.Any("error", err))
			}
		}
	}
}
