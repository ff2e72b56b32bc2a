package handler

import (
	"encoding/json"
	"net/http"

	"github.com/kindmind-health/therapy-platform/assignment-service/internal/adapters/middleware"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/domain"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/ports"
)

type AssignmentHandler struct {
	assignmentService ports.AssignmentService
}

func NewAssignmentHandler(assignments ports.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignments}
}

type AssignTherapistRequest struct {
	ClientID             string `json:"clientId"`
	TherapistID          string `json:"therapistId"`
	AIRecommendationUsed bool   `json:"aiRecommendationUsed"`
	Notes                string `json:"notes,omitempty"`
}

type RevokeAssignmentRequest struct {
	ClientID string `json:"clientId"`
}

func (h *AssignmentHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	status := domain.ClientStatus(r.URL.Query().Get("status"))

	clients, err := h.assignmentService.ListClients(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

func (h *AssignmentHandler) ListTherapists(w http.ResponseWriter, r *http.Request) {
	therapists, err := h.assignmentService.ListAvailableTherapists(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, therapists)
}

func (h *AssignmentHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req AssignTherapistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request payload"})
		return
	}

	result, err := h.assignmentService.Assign(r.Context(), req.ClientID, req.TherapistID, ports.AssignOptions{
		AIRecommendationUsed: req.AIRecommendationUsed,
		Notes:                req.Notes,
		ActorID:              middleware.UserID(r.Context()),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *AssignmentHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	var req RevokeAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ClientID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "clientId is required"})
		return
	}

	client, err := h.assignmentService.Revoke(r.Context(), req.ClientID, middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func (h *AssignmentHandler) History(w http.ResponseWriter, r *http.Request) {
	entries, err := h.assignmentService.History(r.Context(), r.PathValue("entityId"))
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.StatusHistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
