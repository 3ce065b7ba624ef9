package api

import (
	"context"
	"net/http"

	"github.com/okian/podium/internal/domain/metadata"
)

// MetadataDependencies defines the interface for metadata reads.
type MetadataDependencies interface {
	Metadata(ctx context.Context) *metadata.Snapshot
}

// MetadataHandler serves the periodically refreshed leaderboard summary.
// It reads only the published snapshot; the main index is never touched
// on this path.
type MetadataHandler struct {
	deps MetadataDependencies
}

// NewMetadataHandler creates a new metadata handler.
func NewMetadataHandler(deps MetadataDependencies) *MetadataHandler {
	return &MetadataHandler{deps: deps}
}

// metadataResponse mirrors the GET /api/metadata body. Top fields are
// omitted while the leaderboard is empty.
type metadataResponse struct {
	TotalUsers int     `json:"total_users"`
	TopScore   *int64  `json:"top_score,omitempty"`
	TopUser    *string `json:"top_user,omitempty"`
}

// HandleGetMetadata handles GET /api/metadata requests.
func (h *MetadataHandler) HandleGetMetadata(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	snap := h.deps.Metadata(r.Context())
	writeJSON(w, http.StatusOK, metadataResponse{
		TotalUsers: snap.TotalUsers,
		TopScore:   snap.TopScore,
		TopUser:    snap.TopUser,
	})
}
