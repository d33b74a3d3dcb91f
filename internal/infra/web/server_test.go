//go:build !integration

package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"telegram-polyai-bot/internal/domain/model"
	"telegram-polyai-bot/internal/usecase"
)

type fakeStats struct{ snap usecase.Stats }

func (f *fakeStats) RecordDispatch(p model.Provider) {}
func (f *fakeStats) Snapshot() usecase.Stats         { return f.snap }

func newTestServer() *Server {
	logger := zerolog.Nop()
	stats := &fakeStats{snap: usecase.Stats{
		ActiveSessions:    3,
		MessagesProcessed: 12,
		DispatchByBackend: map[string]uint64{"openai": 12},
	}}
	return NewServer(0, "test-secret", stats, nil, &logger)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer()
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("unexpected status: %q", body["status"])
	}
}

func TestStatsRequiresToken(t *testing.T) {
	srv := newTestServer()
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestTokenExchangeAndStats(t *testing.T) {
	srv := newTestServer()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/token", nil)
	req.Header.Set("Authorization", "Bearer test-secret")
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("token exchange failed: %d", rec.Code)
	}
	var tokenBody map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &tokenBody); err != nil {
		t.Fatalf("invalid token json: %v", err)
	}
	if tokenBody["token"] == "" {
		t.Fatal("empty token")
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	req.Header.Set("Authorization", "Bearer "+tokenBody["token"])
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats with token: expected 200, got %d", rec.Code)
	}
	var stats usecase.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("invalid stats json: %v", err)
	}
	if stats.ActiveSessions != 3 || stats.MessagesProcessed != 12 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestTokenExchangeRejectsWrongSecret(t *testing.T) {
	srv := newTestServer()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/token", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
