package ports

import (
	"context"

	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/domain"
)

type CreateAccountRequest struct {
	EnquiryID string `json:"enquiry_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type CreateAccountResult struct {
	TempPassword string `json:"tempPassword,omitempty"`
	Message      string `json:"message"`
}

type AssignRequest struct {
	ClientID             string `json:"clientId"`
	TherapistID          string `json:"therapistId"`
	AIRecommendationUsed bool   `json:"aiRecommendationUsed"`
	// IdempotencyKey is sent as an Idempotency-Key header so the backend can
	// detect a duplicate submission of the same assignment attempt.
	IdempotencyKey string `json:"-"`
}

type AssignResult struct {
	EmailSent  bool              `json:"emailSent"`
	Assignment domain.Assignment `json:"assignment"`
}

// PlatformBackend is the authoritative platform API this service consumes.
// It owns final consistency; a second assignment to an already-assigned
// client is rejected with an error matching domain.ErrClientAlreadyAssigned.
type PlatformBackend interface {
	ListEnquiries(ctx context.Context) ([]domain.Enquiry, error)
	UpdateEnquiryStatus(ctx context.Context, id string, status domain.EnquiryStatus) (*domain.Enquiry, error)
	UpdateEnquiryTier(ctx context.Context, id string, tier domain.Tier) (*domain.Enquiry, error)
	CreateTherapistAccount(ctx context.Context, req CreateAccountRequest) (*CreateAccountResult, error)
	ResetTherapistPassword(ctx context.Context, email string) (string, error)
	ListClients(ctx context.Context, status domain.ClientStatus) ([]domain.Client, error)
	ListAvailableTherapists(ctx context.Context) ([]domain.Therapist, error)
	AssignTherapist(ctx context.Context, req AssignRequest) (*AssignResult, error)
	RevokeAssignment(ctx context.Context, clientID, idempotencyKey string) (*domain.Client, error)
}
