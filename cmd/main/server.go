package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/cors"
)

// Server wires the API handlers onto a single mux behind API-key auth and CORS.
type Server struct {
	app        *App
	logger     *slog.Logger
	authAPI    *AuthAPI
	chatAPI    *ChatAPI
	historyAPI *HistoryAPI
	serverAPI  *ServerAPI
	handler    http.Handler
}

// NewServer builds the API for app. Shutdown and restart requests are sent on
// actionChan.
func NewServer(app *App, actionChan chan<- string) *Server {
	s := &Server{
		app:        app,
		logger:     app.logger,
		authAPI:    NewAuthAPI(app.db, app.logger),
		chatAPI:    NewChatAPI(app.bot, app.logger),
		historyAPI: NewHistoryAPI(app.store, app.bot, app.logger),
		serverAPI:  NewServerAPI(app.cm, actionChan, app.logger),
	}

	apiMux := http.NewServeMux()
	s.authAPI.RegisterRoutes(apiMux)
	s.chatAPI.RegisterRoutes(apiMux)
	s.historyAPI.RegisterRoutes(apiMux)
	s.serverAPI.RegisterRoutes(apiMux)

	root := http.NewServeMux()
	root.HandleFunc("GET /api/health", s.handleHealth)
	// Everything else under /api/ must pass through authentication first.
	root.Handle("/api/", s.authAPI.Authenticate(apiMux))

	cfg := app.cm.Get()
	s.handler = cors.New(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", authHeader},
		ExposedHeaders: []string{"Content-Disposition"},
	}).Handler(root)

	return s
}

// Handler returns the fully wrapped API handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"trained": s.app.model.Trained(),
		"version": Version,
	})
}

// runCycle hosts the API until an action arrives on actionChan, then shuts
// everything down and reports which action ended the cycle. Every cycle reloads
// the configuration, so a restart picks up address and database changes.
func runCycle(configPath string, out io.Writer, actionChan chan string, ready func(addr net.Addr)) (string, error) {
	cm, err := NewConfigManager(configPath)
	if err != nil {
		return "", fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := newLogger(out, cm)
	cm.SetLogger(logger)
	logger.Info("Starting server cycle...")

	app, err := openApp(cm, logger)
	if err != nil {
		return "", err
	}
	defer func(app *App) {
		logger.Info("Closing database connection.")
		if err := app.Close(); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}(app)

	cfg := cm.Get()
	if _, err = app.bot.Train(context.Background()); err != nil {
		return "", fmt.Errorf("initial training failed: %w", err)
	}

	listener, err := net.Listen("tcp", cfg.Server.ApiAddr)
	if err != nil {
		return "", fmt.Errorf("failed to listen on %s: %w", cfg.Server.ApiAddr, err)
	}
	apiHttpServer := &http.Server{
		Handler:           NewServer(app, actionChan).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	watchCtx, stopWatching := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := cm.Watch(watchCtx); err != nil {
			logger.Warn("Config hot reload disabled", "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		logger.Info("Starting api server", "address", listener.Addr().String())
		if err := apiHttpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Api server failed", "error", err)
		}
	}()
	if ready != nil {
		ready(listener.Addr())
	}

	action := <-actionChan // Block here until the API or an OS signal sends an action.

	logger.Info("Stopping server for " + action + "...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout())
	defer cancel()
	if err = apiHttpServer.Shutdown(ctx); err != nil {
		logger.Error("Api server shutdown failed", "error", err)
	}
	stopWatching()
	wg.Wait()
	logger.Info("HTTP server stopped.")

	return action, nil
}
