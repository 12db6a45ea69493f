package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/patrickwarner/adinsights/internal/cache"
	"github.com/patrickwarner/adinsights/internal/dataset"
	"github.com/patrickwarner/adinsights/internal/middleware"
	"github.com/patrickwarner/adinsights/internal/models"
	"github.com/patrickwarner/adinsights/internal/observability"
	"github.com/patrickwarner/adinsights/internal/reporting"
)

// Server groups dependencies for HTTP handlers.
type Server struct {
	Logger  *zap.Logger
	Store   *dataset.Store
	Cache   *cache.ViewCache
	Reports *reporting.Service
	Metrics observability.MetricsRegistry
	// Thresholds are the defaults applied when a request does not override
	// a target.
	Thresholds models.TargetThresholds
}

// NewServer constructs a Server. viewCache may be nil to disable caching.
func NewServer(logger *zap.Logger, store *dataset.Store, viewCache *cache.ViewCache, metrics observability.MetricsRegistry, th models.TargetThresholds) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	return &Server{
		Logger:     logger,
		Store:      store,
		Cache:      viewCache,
		Reports:    reporting.NewService(logger, metrics),
		Metrics:    metrics,
		Thresholds: th,
	}
}

// Routes registers every handler on r.
func (s *Server) Routes(r *mux.Router) {
	r.Use(middleware.WithTraceLogger(s.Logger))

	r.HandleFunc("/health", s.HealthHandler).Methods("GET")
	r.HandleFunc("/reload", s.ReloadHandler).Methods("POST")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/views/{view}", s.ViewHandler).Methods("GET")
	api.HandleFunc("/dashboard", s.DashboardHandler).Methods("GET")
	api.HandleFunc("/flags", s.FlagsHandler).Methods("GET")
	api.HandleFunc("/options", s.OptionsHandler).Methods("GET")
	api.HandleFunc("/dataset", s.DatasetHandler).Methods("GET")
}

// errorResponse is the body of every non-2xx JSON reply.
type errorResponse struct {
	Error  string                  `json:"error"`
	Fields []validationFieldOutput `json:"fields,omitempty"`
}

type validationFieldOutput struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// finish records request metrics once the status is known.
func (s *Server) finish(endpoint, method string, status int, start time.Time) {
	s.Metrics.IncrementRequests(endpoint, method, strconv.Itoa(status))
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		middleware.LoggerFromRequest(r, s.Logger).Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string, fields ...validationFieldOutput) {
	s.writeJSON(w, r, status, errorResponse{Error: msg, Fields: fields})
}
