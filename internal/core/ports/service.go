package ports

import (
	"context"

	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/domain"
)

type AssignOptions struct {
	AIRecommendationUsed bool
	Notes                string
	ActorID              string
}

type EnquiryService interface {
	List(ctx context.Context) ([]domain.Enquiry, error)
	UpdateStatus(ctx context.Context, id string, to domain.EnquiryStatus, actorID string) (*domain.Enquiry, error)
	UpdateTier(ctx context.Context, id string, tier domain.Tier, actorID string) (*domain.Enquiry, error)
	CreateAccount(ctx context.Context, enquiryID, actorID string) (*CreateAccountResult, error)
	ResetPassword(ctx context.Context, email string) (string, error)
}

type AssignmentService interface {
	Assign(ctx context.Context, clientID, therapistID string, opts AssignOptions) (*AssignResult, error)
	Revoke(ctx context.Context, clientID, actorID string) (*domain.Client, error)
	ListClients(ctx context.Context, status domain.ClientStatus) ([]domain.Client, error)
	ListAvailableTherapists(ctx context.Context) ([]domain.Therapist, error)
	History(ctx context.Context, entityID string) ([]domain.StatusHistoryEntry, error)
}

type MatchService interface {
	Recommend(ctx context.Context, clientID string) ([]domain.MatchRecommendation, error)
}
