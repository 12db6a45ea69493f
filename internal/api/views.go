package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/patrickwarner/adinsights/internal/cache"
	"github.com/patrickwarner/adinsights/internal/dataset"
	"github.com/patrickwarner/adinsights/internal/filters"
	"github.com/patrickwarner/adinsights/internal/middleware"
	"github.com/patrickwarner/adinsights/internal/models"
	"github.com/patrickwarner/adinsights/internal/reporting"
)

// viewDashboard is the cache and metrics name of the combined view.
const viewDashboard = "dashboard"

// ViewResponse wraps a view with the selection it was built for.
type ViewResponse struct {
	View       string                  `json:"view"`
	Dataset    *dataset.Snapshot       `json:"dataset"`
	Filters    filters.Criteria        `json:"filters"`
	Thresholds models.TargetThresholds `json:"thresholds"`
	Rows       int                     `json:"rows"` // records left after filtering
	Data       json.RawMessage         `json:"data"`
}

// builtView is what the cache stores for one view request.
type builtView struct {
	Rows int             `json:"rows"`
	Data json.RawMessage `json:"data"`
}

// ViewHandler handles GET /api/views/{view}.
//
// Query Parameters:
//   - from, to: inclusive YYYY-MM-DD bounds
//   - channel, campaign_type, product: repeated or comma-separated selections
//   - target_roas, target_acos, target_cpa, min_spend, flag_min_spend,
//     min_orders_promote: per-request target overrides
func (s *Server) ViewHandler(w http.ResponseWriter, r *http.Request) {
	view := mux.Vars(r)["view"]
	if !slices.Contains(reporting.Views, view) {
		start := time.Now()
		s.writeError(w, r, http.StatusNotFound, "unknown view: "+view)
		s.finish("/api/views/{view}", r.Method, http.StatusNotFound, start)
		return
	}
	s.serveView(w, r, "/api/views/{view}", view)
}

// FlagsHandler handles GET /api/flags and labels every filtered record.
func (s *Server) FlagsHandler(w http.ResponseWriter, r *http.Request) {
	s.serveView(w, r, "/api/flags", reporting.ViewFlags)
}

// DashboardHandler handles GET /api/dashboard and returns all four views.
func (s *Server) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	s.serveView(w, r, "/api/dashboard", viewDashboard)
}

func (s *Server) serveView(w http.ResponseWriter, r *http.Request, endpoint, view string) {
	start := time.Now()
	method := r.Method
	logger := middleware.LoggerFromRequest(r, s.Logger)

	snap, err := s.Store.Current()
	if err != nil {
		s.writeError(w, r, http.StatusServiceUnavailable, "dataset not loaded")
		s.finish(endpoint, method, http.StatusServiceUnavailable, start)
		return
	}

	crit, th, err := s.parseSelection(r)
	if err != nil {
		var qe *queryError
		if errors.As(err, &qe) {
			s.writeError(w, r, http.StatusBadRequest, "invalid query", qe.fields...)
		} else {
			s.writeError(w, r, http.StatusBadRequest, err.Error())
		}
		s.finish(endpoint, method, http.StatusBadRequest, start)
		return
	}

	key := cache.Key(view, snap.Version, crit, th)
	built, err := cache.Fetch(r.Context(), s.Cache, key, func() (builtView, error) {
		return s.buildView(r.Context(), view, filters.Apply(snap.Dataset, crit), th)
	})
	if err != nil {
		logger.Error("view build failed", zap.String("view", view), zap.Error(err))
		status := http.StatusInternalServerError
		if errors.Is(err, models.ErrInvalidThresholds) {
			status = http.StatusBadRequest
		}
		s.writeError(w, r, status, "failed to build view")
		s.finish(endpoint, method, status, start)
		return
	}

	s.writeJSON(w, r, http.StatusOK, ViewResponse{
		View:       view,
		Dataset:    snap,
		Filters:    crit,
		Thresholds: th,
		Rows:       built.Rows,
		Data:       built.Data,
	})
	logger.Debug("view served", zap.String("view", view), zap.Int("rows", built.Rows))
	s.finish(endpoint, method, http.StatusOK, start)
}

func (s *Server) parseSelection(r *http.Request) (filters.Criteria, models.TargetThresholds, error) {
	vq, err := parseViewQuery(r.URL.Query())
	if err != nil {
		return filters.Criteria{}, models.TargetThresholds{}, err
	}
	crit, err := vq.criteria()
	if err != nil {
		return filters.Criteria{}, models.TargetThresholds{}, err
	}
	th, err := vq.thresholds(s.Thresholds)
	if err != nil {
		return filters.Criteria{}, models.TargetThresholds{}, err
	}
	return crit, th, nil
}

func (s *Server) buildView(ctx context.Context, view string, ds models.Dataset, th models.TargetThresholds) (builtView, error) {
	var (
		data any
		err  error
	)
	if view == viewDashboard {
		data, err = s.Reports.All(ctx, ds, th)
	} else {
		data, err = s.Reports.Build(ctx, view, ds, th)
	}
	if err != nil {
		return builtView{}, err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return builtView{}, err
	}
	return builtView{Rows: ds.Len(), Data: raw}, nil
}

// OptionsHandler handles GET /api/options and lists the selectable filter
// values of the loaded dataset.
func (s *Server) OptionsHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "/api/options"
	snap, err := s.Store.Current()
	if err != nil {
		s.writeError(w, r, http.StatusServiceUnavailable, "dataset not loaded")
		s.finish(endpoint, r.Method, http.StatusServiceUnavailable, start)
		return
	}
	s.writeJSON(w, r, http.StatusOK, filters.OptionsFor(snap.Dataset))
	s.finish(endpoint, r.Method, http.StatusOK, start)
}

// DatasetHandler handles GET /api/dataset and describes the active snapshot.
func (s *Server) DatasetHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "/api/dataset"
	snap, err := s.Store.Current()
	if err != nil {
		s.writeError(w, r, http.StatusServiceUnavailable, "dataset not loaded")
		s.finish(endpoint, r.Method, http.StatusServiceUnavailable, start)
		return
	}
	s.writeJSON(w, r, http.StatusOK, struct {
		*dataset.Snapshot
		Rows         int  `json:"rows"`
		HasAddToCart bool `json:"has_add_to_cart"`
	}{snap, snap.Dataset.Len(), snap.Dataset.HasAddToCart})
	s.finish(endpoint, r.Method, http.StatusOK, start)
}
