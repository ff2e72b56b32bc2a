package handler

import (
	"encoding/json"
	"net/http"

	"github.com/kindmind-health/therapy-platform/assignment-service/internal/adapters/middleware"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/domain"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/ports"
)

type EnquiryHandler struct {
	enquiryService ports.EnquiryService
}

func NewEnquiryHandler(enquiries ports.EnquiryService) *EnquiryHandler {
	return &EnquiryHandler{enquiryService: enquiries}
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type UpdateTierRequest struct {
	TherapistTier string `json:"therapist_tier"`
}

type CreateAccountRequest struct {
	EnquiryID string `json:"enquiry_id"`
}

type ResetPasswordRequest struct {
	Email string `json:"email"`
}

func (h *EnquiryHandler) List(w http.ResponseWriter, r *http.Request) {
	enquiries, err := h.enquiryService.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, enquiries)
}

func (h *EnquiryHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "status is required"})
		return
	}

	enquiry, err := h.enquiryService.UpdateStatus(
		r.Context(),
		r.PathValue("id"),
		domain.EnquiryStatus(req.Status),
		middleware.UserID(r.Context()),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, enquiry)
}

func (h *EnquiryHandler) UpdateTier(w http.ResponseWriter, r *http.Request) {
	var req UpdateTierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TherapistTier == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "therapist_tier is required"})
		return
	}

	enquiry, err := h.enquiryService.UpdateTier(
		r.Context(),
		r.PathValue("id"),
		domain.Tier(req.TherapistTier),
		middleware.UserID(r.Context()),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, enquiry)
}

func (h *EnquiryHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EnquiryID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "enquiry_id is required"})
		return
	}

	result, err := h.enquiryService.CreateAccount(r.Context(), req.EnquiryID, middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *EnquiryHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "email is required"})
		return
	}

	tempPassword, err := h.enquiryService.ResetPassword(r.Context(), req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"tempPassword": tempPassword})
}
