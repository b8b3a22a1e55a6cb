package healthcheck

import (
	"encoding/json"
	"net/http"
	"time"
)

type probeResponse struct {
	Status string `json:"status"`
	Snapshot
}

// HealthHandler serves /healthz. It fails once any feed misses two polls.
func HealthHandler(tracker *Tracker, pollInterval time.Duration) http.HandlerFunc {
	return probe(tracker, func(t *Tracker) bool {
		return t.Healthy(time.Now().UTC(), pollInterval)
	})
}

// ReadyHandler serves /readyz. It passes once every feed finished a cycle.
func ReadyHandler(tracker *Tracker) http.HandlerFunc {
	return probe(tracker, (*Tracker).Ready)
}

func probe(tracker *Tracker, check func(*Tracker) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := probeResponse{Status: "unavailable", Snapshot: tracker.Snapshot()}
		code := http.StatusServiceUnavailable
		if check(tracker) {
			resp.Status = "ok"
			code = http.StatusOK
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
