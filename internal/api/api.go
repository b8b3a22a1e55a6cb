// Package api exposes the assessment engine and the persisted feed state
// over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nholik/plumb-sentinel/internal/calibration"
	"github.com/nholik/plumb-sentinel/internal/equipment"
	"github.com/nholik/plumb-sentinel/internal/health"
	"github.com/nholik/plumb-sentinel/internal/metrics"
	"github.com/nholik/plumb-sentinel/internal/state"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// Assessor evaluates profiles and reports the calibration it uses.
type Assessor interface {
	Assess(p equipment.Profile, asOf time.Time) (health.Report, error)
	Calibration() calibration.Calibration
}

// Handler implements the HTTP handlers. A nil store disables the feed
// endpoints.
type Handler struct {
	logger   zerolog.Logger
	assessor Assessor
	store    state.Store
	metrics  *metrics.Metrics
	now      func() time.Time
}

// New creates a Handler.
func New(logger zerolog.Logger, assessor Assessor, store state.Store, m *metrics.Metrics) *Handler {
	return &Handler{
		logger:   logger,
		assessor: assessor,
		store:    store,
		metrics:  m,
		now:      time.Now,
	}
}

// RegisterRoutes registers the v1 routes on the given router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.RequestID)
		r.Use(h.requestLogger)
		r.Use(middleware.Recoverer)

		r.Post("/assessments", h.HandleAssess)
		r.Post("/assessments/batch", h.HandleAssessBatch)
		r.Get("/calibration", h.HandleGetCalibration)
		r.Get("/feeds", h.HandleListFeeds)
		r.Get("/feeds/{feed}", h.HandleGetFeed)
		r.Get("/feeds/{feed}/units/{unit}", h.HandleGetUnit)
	})
}

// Router returns a standalone router serving the API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("api request")
	})
}
