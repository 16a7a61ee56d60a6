package handlers

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/recommender/internal/recommend"
)

type pageData struct {
	Query      string
	Category   string
	Tone       string
	Categories []string
	Tones      []string
	Results    []recommend.Recommendation
	Message    string
}

// HandleIndex renders the search form and, once submitted, the gallery
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	params := r.URL.Query()
	data := pageData{
		Query:      params.Get("query"),
		Category:   params.Get("category"),
		Tone:       params.Get("tone"),
		Categories: h.recommender.Categories(),
		Tones:      recommend.Tones(),
	}
	if data.Category == "" {
		data.Category = recommend.All
	}
	if data.Tone == "" {
		data.Tone = recommend.All
	}

	// the form posts back to itself; a bare visit shows an empty gallery
	status := http.StatusOK
	if params.Has("query") {
		data.Results, data.Message, status = h.recommend(r.Context(), data.Query, data.Category, data.Tone)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		slog.Error("Unable to render page", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Unable to write page", "err", err)
	}
}
