package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// writeTestConfig writes a config into a temp dir whose data lives in the
// same dir, and returns its path.
func writeTestConfig(t *testing.T, mutate func(*Config)) string {
	t.Helper()
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Server.ApiAddr = "127.0.0.1:0"
	cfg.Server.LogLevel = "error"
	cfg.Server.DataDir = filepath.Join(dir, "data")
	cfg.Server.DatabasePath = filepath.Join(dir, "data", "parrot.db")
	cfg.Server.ShutdownTimeoutSec = 2
	if mutate != nil {
		mutate(cfg)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	require.NoError(t, err)
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// setupTestApp opens a fully wired App backed by a temp database.
func setupTestApp(t *testing.T) *App {
	t.Helper()
	cm, err := NewConfigManager(writeTestConfig(t, nil))
	require.NoError(t, err)
	logger := newLogger(io.Discard, cm)
	cm.SetLogger(logger)

	app, err := openApp(cm, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = app.Close()
	})
	return app
}

// setupTestServer returns the API handler for a fresh App and the channel
// that receives server actions.
func setupTestServer(t *testing.T) (*App, http.Handler, chan string) {
	t.Helper()
	app := setupTestApp(t)
	actions := make(chan string, 1)
	return app, NewServer(app, actions).Handler(), actions
}

// doRequest sends a request through h and returns the recorder.
func doRequest(t *testing.T, h http.Handler, method, target, key, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if key != "" {
		req.Header.Set(authHeader, key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// decodeBody unmarshals the recorder's JSON body into v.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), "body: %s", rec.Body.String())
}
