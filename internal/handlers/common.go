package handlers

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/recommender/internal/recommend"
)

//go:embed static
var staticFiles embed.FS

var pageTemplate = template.Must(template.ParseFS(staticFiles, "static/index.html"))

// unavailableMessage is shown when the search backend fails; details stay in the logs
const unavailableMessage = "Recommendations are unavailable right now. Please try again."

// Recommender is the single entry point the web shell calls
type Recommender interface {
	RecommendAndFormat(ctx context.Context, text, category, tone string) ([]recommend.Recommendation, error)
	Categories() []string
}

type Handler struct {
	recommender Recommender
}

func New(recommender Recommender) *Handler {
	return &Handler{
		recommender: recommender,
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// recommend runs one query and converts any failure into an empty result,
// a user-facing message and an HTTP status. It never panics the server.
func (h *Handler) recommend(ctx context.Context, text, category, tone string) ([]recommend.Recommendation, string, int) {
	results, err := h.recommender.RecommendAndFormat(ctx, text, category, tone)
	switch {
	case err == nil:
		if len(results) == 0 {
			return results, "No books matched your description.", http.StatusOK
		}
		return results, "", http.StatusOK
	case errors.Is(err, recommend.ErrInvalidQuery):
		slog.Warn("Rejected recommendation query", "err", err, "request_id", RequestID(ctx))
		return []recommend.Recommendation{}, err.Error(), http.StatusBadRequest
	default:
		slog.Error("Recommendation failed", "err", err, "request_id", RequestID(ctx))
		return []recommend.Recommendation{}, unavailableMessage, http.StatusBadGateway
	}
}
