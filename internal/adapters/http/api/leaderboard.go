package api

import (
	"context"
	"net/http"
	"strconv"
)

// LeaderboardDependencies defines the interface for leaderboard reads.
type LeaderboardDependencies interface {
	TopN(ctx context.Context, n int) ([]Entry, error)
}

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps       LeaderboardDependencies
	defaultTop int
	maxTop     int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies, defaultTop, maxTop int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:       deps,
		defaultTop: defaultTop,
		maxTop:     maxTop,
	}
}

// HandleGetLeaderboard handles GET /api/leaderboard?top=N requests.
// A missing top parameter defaults to the configured page size; top <= 0
// yields an empty list; top beyond the configured cap is clamped.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	n := h.defaultTop
	if topStr := r.URL.Query().Get("top"); topStr != "" {
		parsed, err := strconv.Atoi(topStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		n = parsed
	}
	if n > h.maxTop {
		n = h.maxTop
	}

	entries, err := h.deps.TopN(r.Context(), n)
	if err != nil {
		writeStoreError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
