package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/CTAG07/Parrot/pkg/chat"
	"github.com/CTAG07/Parrot/pkg/history"
)

const (
	defaultHistoryPage = 50
	maxHistoryPage     = 500
	maxImportBody      = 32 << 20
)

// HistoryAPI holds the dependencies for the /api/history handlers. Changes to
// the history retrain the bot so it forgets or learns the affected messages.
type HistoryAPI struct {
	store  *history.Store
	bot    *chat.Bot
	logger *slog.Logger
}

// NewHistoryAPI creates a new instance of the HistoryAPI.
func NewHistoryAPI(store *history.Store, bot *chat.Bot, logger *slog.Logger) *HistoryAPI {
	return &HistoryAPI{
		store:  store,
		bot:    bot,
		logger: logger,
	}
}

// RegisterRoutes sets up the routing for all /api/history endpoints.
func (h *HistoryAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/history", h.handleList)
	mux.HandleFunc("DELETE /api/history", h.handleClear)
	mux.HandleFunc("DELETE /api/history/{id}", h.handleDelete)
	mux.HandleFunc("GET /api/history/export", h.handleExport)
	mux.HandleFunc("POST /api/history/import", h.handleImport)
}

// HistoryPage is a window of stored messages plus the overall total.
type HistoryPage struct {
	Total    int64             `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
	Messages []history.Message `json:"messages"`
}

func (h *HistoryAPI) handleList(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, "history:read") {
		return
	}

	limit, err := queryInt(r, "limit", defaultHistoryPage)
	if err != nil || limit < 1 {
		respondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	if limit > maxHistoryPage {
		limit = maxHistoryPage
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		respondWithError(w, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}

	total, err := h.store.Count(r.Context())
	if err != nil {
		h.logger.Error("Failed to count messages", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Database query failed")
		return
	}
	messages, err := h.store.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("Failed to list messages", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Database query failed")
		return
	}

	respondWithJSON(w, http.StatusOK, HistoryPage{
		Total:    total,
		Limit:    limit,
		Offset:   offset,
		Messages: messages,
	})
}

func (h *HistoryAPI) handleClear(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, "history:write") {
		return
	}

	removed, err := h.store.Clear(r.Context())
	if err != nil {
		h.logger.Error("Failed to clear history", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to clear history")
		return
	}
	if !h.retrain(w, r) {
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int64{"removed": removed})
}

func (h *HistoryAPI) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, "history:write") {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid message ID format in URL")
		return
	}

	if err = h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, history.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Message not found")
			return
		}
		h.logger.Error("Failed to delete message", "id", id, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to delete message")
		return
	}
	if !h.retrain(w, r) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HistoryAPI) handleExport(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, "history:read") {
		return
	}

	filename := fmt.Sprintf("parrot-history-%s.json", time.Now().UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := h.store.Export(r.Context(), w); err != nil {
		h.logger.Error("Failed to export history", "error", err)
	}
}

func (h *HistoryAPI) handleImport(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, "history:write") {
		return
	}

	added, err := h.store.Import(r.Context(), http.MaxBytesReader(w, r.Body, maxImportBody))
	if err != nil {
		h.logger.Error("Failed to import history", "error", err)
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Import failed: %v", err))
		return
	}
	if !h.retrain(w, r) {
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int{"imported": added})
}

// retrain rebuilds the model after a history change, writing a 500 on failure.
func (h *HistoryAPI) retrain(w http.ResponseWriter, r *http.Request) bool {
	if _, err := h.bot.Train(r.Context()); err != nil {
		h.logger.Error("Failed to retrain after history change", "error", err)
		respondWithError(w, http.StatusInternalServerError, "History changed but retraining failed")
		return false
	}
	return true
}

// queryInt parses an integer query parameter, returning def when it is absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
