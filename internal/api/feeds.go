package api

import (
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nholik/plumb-sentinel/internal/state"
	"github.com/nholik/plumb-sentinel/internal/verdict"
)

type feedSummary struct {
	Name        string                `json:"name"`
	EvaluatedAt time.Time             `json:"evaluated_at"`
	Units       int                   `json:"units"`
	Badges      map[verdict.Badge]int `json:"badges"`
	Urgent      []string              `json:"urgent,omitempty"`
}

type feedResponse struct {
	Name string `json:"name"`
	state.FeedSnapshot
}

type unitResponse struct {
	Feed string `json:"feed"`
	Unit string `json:"unit"`
	state.UnitSnapshot
}

// HandleListFeeds summarizes every persisted feed.
// GET /v1/feeds
func (h *Handler) HandleListFeeds(w http.ResponseWriter, r *http.Request) {
	st, ok := h.loadState(w, r)
	if !ok {
		return
	}

	summaries := make([]feedSummary, 0, len(st.Feeds))
	for name, feed := range st.Feeds {
		summary := feedSummary{
			Name:        name,
			EvaluatedAt: feed.EvaluatedAt,
			Units:       len(feed.Units),
			Badges:      make(map[verdict.Badge]int),
		}
		for id, unit := range feed.Units {
			summary.Badges[unit.Badge]++
			if unit.Urgent {
				summary.Urgent = append(summary.Urgent, id)
			}
		}
		sort.Strings(summary.Urgent)
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Name < summaries[j].Name
	})

	h.writeJSON(w, http.StatusOK, map[string]any{"feeds": summaries})
}

// HandleGetFeed returns the persisted snapshot of one feed.
// GET /v1/feeds/{feed}
func (h *Handler) HandleGetFeed(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "feed")
	st, ok := h.loadState(w, r)
	if !ok {
		return
	}
	feed, ok := st.Feeds[name]
	if !ok {
		h.writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown feed: "+name)
		return
	}
	h.writeJSON(w, http.StatusOK, feedResponse{Name: name, FeedSnapshot: feed})
}

// HandleGetUnit returns the persisted snapshot of one unit.
// GET /v1/feeds/{feed}/units/{unit}
func (h *Handler) HandleGetUnit(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "feed")
	id := chi.URLParam(r, "unit")
	st, ok := h.loadState(w, r)
	if !ok {
		return
	}
	unit, ok := st.Feeds[name].Units[id]
	if !ok {
		h.writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown unit: "+name+"/"+id)
		return
	}
	h.writeJSON(w, http.StatusOK, unitResponse{Feed: name, Unit: id, UnitSnapshot: unit})
}

func (h *Handler) loadState(w http.ResponseWriter, r *http.Request) (state.State, bool) {
	if h.store == nil {
		h.writeError(w, http.StatusServiceUnavailable, "STATE_UNAVAILABLE", "state store not configured")
		return state.State{}, false
	}
	st, err := h.store.Load(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("load state")
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return state.State{}, false
	}
	return st, true
}
