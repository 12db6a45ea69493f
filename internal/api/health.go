package api

import (
	"net/http"
	"time"
)

// HealthHandler responds with a simple status check. It reports 503 until
// the first dataset load succeeds.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "health"
	const method = "GET"

	status, code := "ok", http.StatusOK
	if _, err := s.Store.Current(); err != nil {
		status, code = "loading", http.StatusServiceUnavailable
	}
	s.writeJSON(w, r, code, map[string]string{"status": status})

	s.finish(endpoint, method, code, start)
}
