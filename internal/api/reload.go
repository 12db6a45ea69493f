package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/patrickwarner/adinsights/internal/middleware"
)

// ReloadHandler reloads the dataset from its source. The previous snapshot
// keeps serving when the reload fails.
func (s *Server) ReloadHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "reload"
	const method = "POST"

	snap, err := s.Store.Reload(r.Context())
	if err != nil {
		middleware.LoggerFromRequest(r, s.Logger).Error("reload failed", zap.Error(err))
		http.Error(w, "reload failed", http.StatusInternalServerError)
		s.finish(endpoint, method, http.StatusInternalServerError, start)
		return
	}

	middleware.LoggerFromRequest(r, s.Logger).Info("dataset reloaded on request", zap.Uint64("version", snap.Version))
	w.WriteHeader(http.StatusNoContent)
	s.finish(endpoint, method, http.StatusNoContent, start)
}
