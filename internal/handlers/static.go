package handlers

import (
	"net/http"

	"github.com/lehigh-university-libraries/recommender/internal/catalog"
)

// HandleCover serves the placeholder image for books without a thumbnail
func (h *Handler) HandleCover(w http.ResponseWriter, r *http.Request) {
	data, err := staticFiles.ReadFile("static/" + catalog.PlaceholderCover)
	if err != nil {
		h.writeError(w, "Placeholder cover missing", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write(data)
}
