package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/nholik/plumb-sentinel/internal/calibration"
	"github.com/nholik/plumb-sentinel/internal/equipment"
	"github.com/nholik/plumb-sentinel/internal/health"
	"github.com/nholik/plumb-sentinel/internal/inventory"
)

type assessmentResponse struct {
	RequestID string        `json:"request_id,omitempty"`
	AsOf      time.Time     `json:"as_of"`
	Report    health.Report `json:"report"`
}

type batchResponse struct {
	RequestID string                   `json:"request_id,omitempty"`
	AsOf      time.Time                `json:"as_of"`
	Units     map[string]health.Report `json:"units"`
	Errors    map[string]errorResponse `json:"errors,omitempty"`
}

// HandleAssess assesses one profile.
// POST /v1/assessments?as_of=2025-06-01
func (h *Handler) HandleAssess(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.parseAsOf(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_AS_OF", err.Error())
		return
	}

	var profile equipment.Profile
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()
	if err := json.NewDecoder(body).Decode(&profile); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid profile: "+err.Error())
		return
	}

	report, err := h.assess(profile, asOf)
	if err != nil {
		h.writeAssessError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, assessmentResponse{
		RequestID: middleware.GetReqID(r.Context()),
		AsOf:      asOf,
		Report:    report,
	})
}

// HandleAssessBatch assesses every unit of an inventory document (YAML or
// JSON). Unrecognized units are reported per unit and do not fail the batch.
// POST /v1/assessments/batch
func (h *Handler) HandleAssessBatch(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.parseAsOf(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_AS_OF", err.Error())
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	inv, err := inventory.Parse(data)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	resp := batchResponse{
		RequestID: middleware.GetReqID(r.Context()),
		AsOf:      asOf,
		Units:     make(map[string]health.Report, len(inv.Units)),
	}
	for _, id := range inv.IDs() {
		report, err := h.assess(inv.Units[id], asOf)
		if err != nil {
			if resp.Errors == nil {
				resp.Errors = make(map[string]errorResponse)
			}
			_, resp.Errors[id] = h.assessError(err)
			continue
		}
		resp.Units[id] = report
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// HandleGetCalibration returns the coefficients in use as YAML.
// GET /v1/calibration
func (h *Handler) HandleGetCalibration(w http.ResponseWriter, r *http.Request) {
	data, err := calibration.Marshal(h.assessor.Calibration())
	if err != nil {
		h.logger.Error().Err(err).Msg("marshal calibration")
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) assess(p equipment.Profile, asOf time.Time) (health.Report, error) {
	start := time.Now()
	report, err := h.assessor.Assess(p, asOf)
	if err != nil {
		return health.Report{}, err
	}
	h.metrics.ObserveAssessment(string(report.Metrics.Family), string(report.Verdict.Action), time.Since(start))
	return report, nil
}
