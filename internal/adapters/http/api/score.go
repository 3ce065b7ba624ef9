package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// ScoreDependencies defines the interface for score submissions.
type ScoreDependencies interface {
	SubmitScore(ctx context.Context, username string, score int64) (Entry, error)
}

// ScoreHandler handles score submissions.
type ScoreHandler struct {
	deps ScoreDependencies
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps ScoreDependencies) *ScoreHandler {
	return &ScoreHandler{deps: deps}
}

// scoreRequest mirrors the POST /api/score body.
type scoreRequest struct {
	Username string `json:"username"`
	Score    *int64 `json:"score"`
}

func (r scoreRequest) validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return errors.New("missing username")
	}
	if r.Score == nil {
		return errors.New("missing score")
	}
	return nil
}

// HandlePostScore handles POST /api/score requests.
func (h *ScoreHandler) HandlePostScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_score"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	entry, err := h.deps.SubmitScore(r.Context(), req.Username, *req.Score)
	if err != nil {
		writeStoreError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
