package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

// writeError maps the domain error taxonomy onto HTTP statuses. Validation
// and conflict errors carry their own message; rate limiting gets the
// distinct friendlier message; anything unrecognised is treated as a
// transient backend failure the admin can retry.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrEntityNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "record not found"})
	case errors.Is(err, domain.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrClientAlreadyAssigned):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "This client was just assigned by someone else. The list has been refreshed."})
	case errors.Is(err, domain.ErrTherapistUnavailable):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "That therapist is no longer available."})
	case errors.Is(err, domain.ErrMutationInFlight):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "This record is already being updated. Please wait for the current change to finish."})
	case errors.Is(err, domain.ErrRateLimited):
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "Too many updates at once. Wait a moment and try again."})
	case errors.Is(err, domain.ErrMutationTimeout):
		writeJSON(w, http.StatusGatewayTimeout, errorResponse{Error: "The update timed out and has been reverted. Please retry."})
	default:
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "The change could not be saved and has been reverted. Please retry."})
	}
}
