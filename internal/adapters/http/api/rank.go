package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	repository "github.com/okian/podium/internal/adapters/repository"
)

// RankDependencies defines the interface for rank lookups.
type RankDependencies interface {
	Rank(ctx context.Context, username string) (Entry, error)
}

// RankHandler handles rank requests.
type RankHandler struct {
	deps RankDependencies
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps RankDependencies) *RankHandler {
	return &RankHandler{deps: deps}
}

// rankResponse carries optional score and rank; both are omitted when the
// username has never been submitted. Unranked is not an error.
type rankResponse struct {
	Username string `json:"username"`
	Score    *int64 `json:"score,omitempty"`
	Rank     *int   `json:"rank,omitempty"`
}

// HandleGetRank handles GET /api/rank/{username} requests.
func (h *RankHandler) HandleGetRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rank"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	username := strings.TrimPrefix(r.URL.Path, "/api/rank/")
	if username == "" || strings.Contains(username, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	entry, err := h.deps.Rank(r.Context(), username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusOK, rankResponse{Username: username})
			return
		}
		writeStoreError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, rankResponse{
		Username: entry.Username,
		Score:    &entry.Score,
		Rank:     &entry.Rank,
	})
}
