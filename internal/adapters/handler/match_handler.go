package handler

import (
	"encoding/json"
	"net/http"

	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/domain"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/ports"
)

type MatchHandler struct {
	matchService ports.MatchService
}

func NewMatchHandler(matches ports.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matches}
}

type RecommendationsRequest struct {
	ClientID string `json:"clientId"`
}

type RecommendationsResponse struct {
	Recommendations []domain.MatchRecommendation `json:"recommendations"`
	Message         string                       `json:"message,omitempty"`
}

func (h *MatchHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	var req RecommendationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ClientID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "clientId is required"})
		return
	}

	recommendations, err := h.matchService.Recommend(r.Context(), req.ClientID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := RecommendationsResponse{Recommendations: recommendations}
	if len(recommendations) == 0 {
		// Empty is a valid scorer answer; the UI shows a fallback, not an error.
		resp.Message = "No recommendations available for this client."
	}
	writeJSON(w, http.StatusOK, resp)
}
