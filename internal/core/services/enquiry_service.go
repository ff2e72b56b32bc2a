package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/domain"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/optimistic"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/ports"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/observability/metrics"
)

// EnquiryService drives the therapist application review workflow: status
// moves through the transition engine, tier updates, account provisioning.
// Every mutation goes through the optimistic controller.
type EnquiryService struct {
	store      *store
	backend    ports.PlatformBackend
	controller *optimistic.Controller
	history    ports.HistoryRepository
}

var _ ports.EnquiryService = (*EnquiryService)(nil)

func NewEnquiryService(
	cache ports.EntityCache,
	backend ports.PlatformBackend,
	controller *optimistic.Controller,
	history ports.HistoryRepository,
) *EnquiryService {
	return &EnquiryService{
		store:      newStore(cache, backend),
		backend:    backend,
		controller: controller,
		history:    history,
	}
}

func (s *EnquiryService) List(ctx context.Context) ([]domain.Enquiry, error) {
	return s.store.Enquiries(ctx)
}

func (s *EnquiryService) UpdateStatus(ctx context.Context, id string, to domain.EnquiryStatus, actorID string) (*domain.Enquiry, error) {
	enquiry, err := s.store.Enquiry(ctx, id)
	if err != nil {
		return nil, err
	}

	// Validate the edge before anything is dispatched or cached.
	if _, err := domain.ApplyTransition(domain.EntityEnquiry, string(enquiry.Status), string(to)); err != nil {
		return nil, err
	}

	from := enquiry.Status
	tentative := *enquiry
	tentative.Status = to
	tentativeRaw, err := json.Marshal(tentative)
	if err != nil {
		return nil, err
	}

	invalidates := []string{ListEnquiries}
	if to == domain.EnquiryApproved {
		// An approval feeds the available-therapist pool.
		invalidates = append(invalidates, ListTherapists)
	}

	result, err := s.controller.Do(ctx, optimistic.Mutation{
		EntityType: domain.EntityEnquiry,
		EntityID:   id,
		Kind:       optimistic.KindStatus,
		Tentative:  tentativeRaw,
		Dispatch: func(ctx context.Context) ([]byte, error) {
			updated, err := s.backend.UpdateEnquiryStatus(ctx, id, to)
			if err != nil {
				return nil, err
			}
			return json.Marshal(updated)
		},
		Invalidates: invalidates,
	})
	if err != nil {
		return nil, err
	}

	var updated domain.Enquiry
	if err := json.Unmarshal(result, &updated); err != nil {
		return nil, err
	}

	s.appendHistory(ctx, domain.StatusHistoryEntry{
		ID:         uuid.NewString(),
		EntityID:   id,
		EntityType: domain.EntityEnquiry,
		FromStatus: string(from),
		ToStatus:   string(to),
		ActorID:    actorID,
		Reason:     domain.ReasonStatusUpdate,
		Timestamp:  time.Now().UTC(),
	})

	return &updated, nil
}

func (s *EnquiryService) UpdateTier(ctx context.Context, id string, tier domain.Tier, actorID string) (*domain.Enquiry, error) {
	if !domain.ValidTier(tier) {
		return nil, fmt.Errorf("%w: unknown tier %q", domain.ErrValidation, tier)
	}

	enquiry, err := s.store.Enquiry(ctx, id)
	if err != nil {
		return nil, err
	}

	from := enquiry.TherapistTier
	tentative := *enquiry
	tentative.TherapistTier = tier
	tentativeRaw, err := json.Marshal(tentative)
	if err != nil {
		return nil, err
	}

	result, err := s.controller.Do(ctx, optimistic.Mutation{
		EntityType: domain.EntityEnquiry,
		EntityID:   id,
		Kind:       optimistic.KindTier,
		Tentative:  tentativeRaw,
		Dispatch: func(ctx context.Context) ([]byte, error) {
			updated, err := s.backend.UpdateEnquiryTier(ctx, id, tier)
			if err != nil {
				return nil, err
			}
			return json.Marshal(updated)
		},
		Invalidates: []string{ListEnquiries},
	})
	if err != nil {
		return nil, err
	}

	var updated domain.Enquiry
	if err := json.Unmarshal(result, &updated); err != nil {
		return nil, err
	}

	s.appendHistory(ctx, domain.StatusHistoryEntry{
		ID:         uuid.NewString(),
		EntityID:   id,
		EntityType: domain.EntityEnquiry,
		FromStatus: string(from),
		ToStatus:   string(tier),
		ActorID:    actorID,
		Reason:     domain.ReasonTierUpdate,
		Timestamp:  time.Now().UTC(),
	})

	return &updated, nil
}

// CreateAccount provisions a therapist account for an approved enquiry.
// Approval alone never creates an account; this is the separate action it
// enables.
func (s *EnquiryService) CreateAccount(ctx context.Context, enquiryID, actorID string) (*ports.CreateAccountResult, error) {
	enquiry, err := s.store.Enquiry(ctx, enquiryID)
	if err != nil {
		return nil, err
	}
	if enquiry.Status != domain.EnquiryApproved {
		return nil, fmt.Errorf("%w: enquiry %s is not approved", domain.ErrValidation, enquiryID)
	}
	if enquiry.AccountCreated {
		return nil, fmt.Errorf("%w: account already created for enquiry %s", domain.ErrValidation, enquiryID)
	}

	tentative := *enquiry
	tentative.AccountCreated = true
	tentativeRaw, err := json.Marshal(tentative)
	if err != nil {
		return nil, err
	}

	var created *ports.CreateAccountResult
	_, err = s.controller.Do(ctx, optimistic.Mutation{
		EntityType: domain.EntityEnquiry,
		EntityID:   enquiryID,
		Kind:       optimistic.KindAccount,
		Tentative:  tentativeRaw,
		Dispatch: func(ctx context.Context) ([]byte, error) {
			res, err := s.backend.CreateTherapistAccount(ctx, ports.CreateAccountRequest{
				EnquiryID: enquiryID,
				Email:     enquiry.Email,
				FirstName: enquiry.FirstName,
				LastName:  enquiry.LastName,
			})
			if err != nil {
				return nil, err
			}
			created = res
			return tentativeRaw, nil
		},
		Invalidates: []string{ListEnquiries, ListTherapists},
	})
	if err != nil {
		return nil, err
	}

	s.appendHistory(ctx, domain.StatusHistoryEntry{
		ID:         uuid.NewString(),
		EntityID:   enquiryID,
		EntityType: domain.EntityEnquiry,
		FromStatus: string(enquiry.Status),
		ToStatus:   string(enquiry.Status),
		ActorID:    actorID,
		Reason:     domain.ReasonAccountProvisioning,
		Timestamp:  time.Now().UTC(),
	})

	return created, nil
}

func (s *EnquiryService) ResetPassword(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	return s.backend.ResetTherapistPassword(ctx, email)
}

// appendHistory records a committed transition. A history write failure is
// logged, not surfaced: the mutation has already committed and must not be
// reported as failed.
func (s *EnquiryService) appendHistory(ctx context.Context, entry domain.StatusHistoryEntry) {
	if err := s.history.Append(ctx, entry); err != nil {
		log.Printf("enquiry service: history append failed for %s: %v", entry.EntityID, err)
		return
	}
	metrics.ObserveHistoryAppend()
}
