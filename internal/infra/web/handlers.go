package web

import (
	"encoding/json"
	"net/http"
	"strings"
)

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	code := http.StatusOK
	if s.redis != nil {
		if err := s.redis.Ping(r.Context()); err != nil {
			status["status"] = "degraded"
			status["redis"] = err.Error()
			code = http.StatusServiceUnavailable
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(status)
}

// tokenHandler exchanges the shared secret for a short-lived session token.
func (s *Server) tokenHandler(w http.ResponseWriter, r *http.Request) {
	hdr := r.Header.Get("Authorization")
	if len(s.secret) == 0 || !strings.HasPrefix(strings.ToLower(hdr), "bearer ") ||
		strings.TrimSpace(hdr[7:]) != s.secret {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	tok, err := s.auth.Mint(w)
	if err != nil {
		http.Error(w, "Failed to mint token", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"token": tok})
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.stats.Snapshot())
}
