package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/CTAG07/Parrot/pkg/chat"
)

// maxChatBody bounds the size of a single chat request.
const maxChatBody = 64 << 10

// ChatAPI holds the dependencies for the chat and model API handlers.
type ChatAPI struct {
	bot    *chat.Bot
	logger *slog.Logger
}

// NewChatAPI creates a new instance of the ChatAPI.
func NewChatAPI(bot *chat.Bot, logger *slog.Logger) *ChatAPI {
	return &ChatAPI{
		bot:    bot,
		logger: logger,
	}
}

// RegisterRoutes sets up the routing for the /api/chat and /api/model endpoints.
func (c *ChatAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat", c.handleChat)
	mux.HandleFunc("POST /api/model/train", c.handleTrain)
	mux.HandleFunc("GET /api/model/stats", c.handleStats)
	mux.HandleFunc("GET /api/model/followers", c.handleFollowers)
}

// ChatRequest is the expected JSON body for a chat message.
type ChatRequest struct {
	Text string `json:"text"`
}

// FollowersResponse lists the words seen after a word pair.
type FollowersResponse struct {
	First     string   `json:"w1"`
	Second    string   `json:"w2"`
	Followers []string `json:"followers"`
}

func (c *ChatAPI) handleChat(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, "chat:write") {
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody)).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}

	reply, err := c.bot.Respond(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyInput) {
			respondWithError(w, http.StatusBadRequest, "Message text must not be empty")
			return
		}
		c.logger.Error("Failed to respond to chat message", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to generate a reply")
		return
	}
	respondWithJSON(w, http.StatusOK, reply)
}

func (c *ChatAPI) handleTrain(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, "model:write") {
		return
	}

	stats, err := c.bot.Train(r.Context())
	if err != nil {
		c.logger.Error("Failed to train model", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Training failed")
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

func (c *ChatAPI) handleStats(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, "model:read") {
		return
	}

	stats, err := c.bot.Stats(r.Context())
	if err != nil {
		c.logger.Error("Failed to collect stats", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to collect stats")
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

func (c *ChatAPI) handleFollowers(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, "model:read") {
		return
	}

	first := strings.TrimSpace(r.URL.Query().Get("w1"))
	second := strings.TrimSpace(r.URL.Query().Get("w2"))
	if first == "" || second == "" {
		respondWithError(w, http.StatusBadRequest, "Both w1 and w2 query parameters are required")
		return
	}

	followers := c.bot.Followers(first, second)
	if followers == nil {
		followers = []string{}
	}
	respondWithJSON(w, http.StatusOK, FollowersResponse{
		First:     first,
		Second:    second,
		Followers: followers,
	})
}
