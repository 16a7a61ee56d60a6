package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/recommender/internal/recommend"
)

type recommendResponse struct {
	Results []recommend.Recommendation `json:"results"`
	Message string                     `json:"message,omitempty"`
	Error   string                     `json:"error,omitempty"`
}

// HandleRecommend answers JSON queries. GET reads query parameters, POST a JSON body.
func (h *Handler) HandleRecommend(w http.ResponseWriter, r *http.Request) {
	var request recommend.Query

	switch r.Method {
	case "GET":
		params := r.URL.Query()
		request.Text = params.Get("query")
		request.Category = params.Get("category")
		request.Tone = params.Get("tone")
	case "POST":
		if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
			h.writeError(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
			return
		}
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64*1024)).Decode(&request); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	results, message, status := h.recommend(r.Context(), request.Text, request.Category, request.Tone)

	resp := recommendResponse{Results: results}
	if status == http.StatusOK {
		resp.Message = message
	} else {
		resp.Error = message
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	h.writeJSON(w, resp)
}

// HandleOptions lists the dropdown choices
func (h *Handler) HandleOptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, map[string]any{
		"categories": h.recommender.Categories(),
		"tones":      recommend.Tones(),
	})
}
