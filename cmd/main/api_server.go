package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

const (
	actionShutdown = "shutdown"
	actionRestart  = "restart"
)

// ServerAPI holds the dependencies for the main application API handlers.
type ServerAPI struct {
	cm         *ConfigManager
	actionChan chan<- string
	logger     *slog.Logger
}

// VersionInfo defines the structure for build/version information.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

func currentVersion() VersionInfo {
	return VersionInfo{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
	}
}

// NewServerAPI creates a new instance of the ServerAPI.
func NewServerAPI(cm *ConfigManager, actionChan chan<- string, logger *slog.Logger) *ServerAPI {
	return &ServerAPI{
		cm:         cm,
		actionChan: actionChan,
		logger:     logger,
	}
}

// RegisterRoutes sets up the routing for all /api/server endpoints.
func (a *ServerAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/server/config", a.handleGetConfig)
	mux.HandleFunc("PUT /api/server/config", a.handlePutConfig)
	mux.HandleFunc("GET /api/server/version", a.handleVersion)
	mux.HandleFunc("POST /api/server/shutdown", a.handleAction(actionShutdown))
	mux.HandleFunc("POST /api/server/restart", a.handleAction(actionRestart))
}

func (a *ServerAPI) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, "server:config") {
		return
	}
	respondWithJSON(w, http.StatusOK, a.cm.Get())
}

// handlePutConfig replaces the configuration, persists it and applies what
// can change at runtime.
func (a *ServerAPI) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, "server:config") {
		return
	}

	var newConfig Config
	if err := json.NewDecoder(r.Body).Decode(&newConfig); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}
	if err := newConfig.Validate(); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.cm.Update(newConfig); err != nil {
		a.logger.Error("Failed to save configuration", "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to save configuration: %v", err))
		return
	}

	respondWithJSON(w, http.StatusOK, a.cm.Get())
}

// handleVersion returns the application's build information to any
// authenticated caller.
func (a *ServerAPI) handleVersion(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, currentVersion())
}

// handleAction queues a shutdown or restart for the serve loop.
func (a *ServerAPI) handleAction(action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireScope(w, r, "server:control") {
			return
		}

		a.logger.Warn("Server action requested via API", "action", action)
		respondWithJSON(w, http.StatusAccepted, map[string]string{"message": "Server is going to " + action})

		select {
		case a.actionChan <- action:
		default:
			a.logger.Warn("A server action is already pending, ignoring request", "action", action)
		}
	}
}
