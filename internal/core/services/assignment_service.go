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

// AssignmentService is the assignment coordinator: it checks the transition
// engine, verifies therapist eligibility, dispatches the idempotent backend
// call through the optimistic controller, appends the audit trail, and hands
// the notification to the outbox.
type AssignmentService struct {
	store       *store
	backend     ports.PlatformBackend
	controller  *optimistic.Controller
	assignments ports.AssignmentRepository
	history     ports.HistoryRepository
}

var _ ports.AssignmentService = (*AssignmentService)(nil)

func NewAssignmentService(
	cache ports.EntityCache,
	backend ports.PlatformBackend,
	controller *optimistic.Controller,
	assignments ports.AssignmentRepository,
	history ports.HistoryRepository,
) *AssignmentService {
	return &AssignmentService{
		store:       newStore(cache, backend),
		backend:     backend,
		controller:  controller,
		assignments: assignments,
		history:     history,
	}
}

func (s *AssignmentService) Assign(ctx context.Context, clientID, therapistID string, opts ports.AssignOptions) (*ports.AssignResult, error) {
	if clientID == "" || therapistID == "" {
		return nil, fmt.Errorf("%w: clientId and therapistId are required", domain.ErrValidation)
	}

	client, err := s.store.Client(ctx, clientID)
	if err != nil {
		return nil, err
	}

	// Idempotency: the same pair against an unchanged client is a no-op, not
	// a second assignment record.
	if client.Status == domain.ClientAssigned && client.AssignedTherapistID == therapistID {
		metrics.ObserveAssignment("noop")
		if existing, err := s.assignments.LatestForClient(ctx, clientID); err == nil && existing.TherapistID == therapistID {
			return &ports.AssignResult{EmailSent: false, Assignment: *existing}, nil
		}
		return &ports.AssignResult{EmailSent: false, Assignment: domain.Assignment{
			ClientID:    clientID,
			TherapistID: therapistID,
		}}, nil
	}

	if _, err := domain.ApplyTransition(domain.EntityClient, string(client.Status), string(domain.ClientAssigned)); err != nil {
		metrics.ObserveAssignment("invalid_transition")
		return nil, err
	}

	therapist, err := s.eligibleTherapist(ctx, therapistID)
	if err != nil {
		metrics.ObserveAssignment("therapist_unavailable")
		return nil, err
	}

	from := client.Status
	reason := domain.ReasonAssigned
	if from == domain.ClientAssigned {
		reason = domain.ReasonAssignmentReplaced
	}

	tentative := *client
	tentative.Status = domain.ClientAssigned
	tentative.AssignedTherapistID = therapistID
	tentativeRaw, err := json.Marshal(tentative)
	if err != nil {
		return nil, err
	}

	var backendResult *ports.AssignResult
	_, err = s.controller.Do(ctx, optimistic.Mutation{
		EntityType: domain.EntityClient,
		EntityID:   clientID,
		Kind:       optimistic.KindAssign,
		Tentative:  tentativeRaw,
		Dispatch: func(ctx context.Context) ([]byte, error) {
			res, err := s.backend.AssignTherapist(ctx, ports.AssignRequest{
				ClientID:             clientID,
				TherapistID:          therapistID,
				AIRecommendationUsed: opts.AIRecommendationUsed,
				IdempotencyKey:       uuid.NewString(),
			})
			if err != nil {
				return nil, err
			}
			backendResult = res
			return tentativeRaw, nil
		},
		Invalidates: []string{ListClients, ListTherapists},
	})
	if err != nil {
		metrics.ObserveAssignment("failed")
		return nil, err
	}

	assignment := backendResult.Assignment
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.ClientID == "" {
		assignment.ClientID = clientID
	}
	if assignment.TherapistID == "" {
		assignment.TherapistID = therapistID
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}
	assignment.AIRecommendationUsed = opts.AIRecommendationUsed
	assignment.Notes = opts.Notes

	s.recordAssignment(ctx, assignment, client.Email, therapist.Email)

	s.appendHistory(ctx, domain.StatusHistoryEntry{
		ID:         uuid.NewString(),
		EntityID:   clientID,
		EntityType: domain.EntityClient,
		FromStatus: string(from),
		ToStatus:   string(domain.ClientAssigned),
		ActorID:    opts.ActorID,
		Reason:     reason,
		Timestamp:  time.Now().UTC(),
	})

	metrics.ObserveAssignment("committed")
	backendResult.Assignment = assignment
	return backendResult, nil
}

// Revoke releases a client's current assignment, moving them back to the
// awaiting pool. The previous assignment stays in the audit log.
func (s *AssignmentService) Revoke(ctx context.Context, clientID, actorID string) (*domain.Client, error) {
	if clientID == "" {
		return nil, fmt.Errorf("%w: clientId is required", domain.ErrValidation)
	}

	client, err := s.store.Client(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if _, err := domain.ApplyTransition(domain.EntityClient, string(client.Status), string(domain.ClientAwaitingAssignment)); err != nil {
		return nil, err
	}

	tentative := *client
	tentative.Status = domain.ClientAwaitingAssignment
	tentative.AssignedTherapistID = ""
	tentativeRaw, err := json.Marshal(tentative)
	if err != nil {
		return nil, err
	}

	result, err := s.controller.Do(ctx, optimistic.Mutation{
		EntityType: domain.EntityClient,
		EntityID:   clientID,
		// Same kind as Assign: a revoke and an assignment for one client
		// must not race each other client-side.
		Kind:      optimistic.KindAssign,
		Tentative: tentativeRaw,
		Dispatch: func(ctx context.Context) ([]byte, error) {
			updated, err := s.backend.RevokeAssignment(ctx, clientID, uuid.NewString())
			if err != nil {
				return nil, err
			}
			return json.Marshal(updated)
		},
		Invalidates: []string{ListClients, ListTherapists},
	})
	if err != nil {
		return nil, err
	}

	var updated domain.Client
	if err := json.Unmarshal(result, &updated); err != nil {
		return nil, err
	}

	s.appendHistory(ctx, domain.StatusHistoryEntry{
		ID:         uuid.NewString(),
		EntityID:   clientID,
		EntityType: domain.EntityClient,
		FromStatus: string(domain.ClientAssigned),
		ToStatus:   string(domain.ClientAwaitingAssignment),
		ActorID:    actorID,
		Reason:     domain.ReasonAssignmentRevoked,
		Timestamp:  time.Now().UTC(),
	})

	return &updated, nil
}

func (s *AssignmentService) ListClients(ctx context.Context, status domain.ClientStatus) ([]domain.Client, error) {
	clients, err := s.store.Clients(ctx)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return clients, nil
	}

	filtered := make([]domain.Client, 0, len(clients))
	for _, c := range clients {
		if c.Status == status {
			filtered = append(filtered, c)
		}
	}
	return filtered, nil
}

func (s *AssignmentService) ListAvailableTherapists(ctx context.Context) ([]domain.Therapist, error) {
	return s.store.Therapists(ctx)
}

func (s *AssignmentService) History(ctx context.Context, entityID string) ([]domain.StatusHistoryEntry, error) {
	return s.history.ListForEntity(ctx, entityID)
}

// eligibleTherapist checks the available pool straight from the backend:
// assignment eligibility must not rely on a possibly stale cached list.
func (s *AssignmentService) eligibleTherapist(ctx context.Context, therapistID string) (*domain.Therapist, error) {
	pool, err := s.backend.ListAvailableTherapists(ctx)
	if err != nil {
		return nil, err
	}
	for i := range pool {
		if pool[i].ID == therapistID {
			if pool[i].Capacity <= 0 {
				return nil, fmt.Errorf("%w: %s has no remaining capacity", domain.ErrTherapistUnavailable, therapistID)
			}
			return &pool[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s not in available pool", domain.ErrTherapistUnavailable, therapistID)
}

// recordAssignment appends the audit record with the notification event in
// the same transaction. The backend has already committed the assignment, so
// a local write failure is logged and observed, never turned into a rollback.
func (s *AssignmentService) recordAssignment(ctx context.Context, a domain.Assignment, clientEmail, therapistEmail string) {
	payload, err := json.Marshal(ports.AssignmentCreatedEvent{
		AssignmentID:         a.ID,
		ClientID:             a.ClientID,
		ClientEmail:          clientEmail,
		TherapistID:          a.TherapistID,
		TherapistEmail:       therapistEmail,
		AIRecommendationUsed: a.AIRecommendationUsed,
	})
	if err != nil {
		log.Printf("coordinator: marshal notification event for %s: %v", a.ID, err)
		payload = nil
	}

	if err := s.assignments.CreateAssignment(ctx, a, payload); err != nil {
		log.Printf("coordinator: audit write failed for assignment %s: %v", a.ID, err)
		metrics.ObserveAssignment("audit_failed")
	}
}

func (s *AssignmentService) appendHistory(ctx context.Context, entry domain.StatusHistoryEntry) {
	if err := s.history.Append(ctx, entry); err != nil {
		log.Printf("coordinator: history append failed for %s: %v", entry.EntityID, err)
		return
	}
	metrics.ObserveHistoryAppend()
}
