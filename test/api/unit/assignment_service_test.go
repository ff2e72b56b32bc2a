package unit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/domain"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/optimistic"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/ports"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/services"
	"github.com/kindmind-health/therapy-platform/assignment-service/test/mocks"
)

type assignmentFixture struct {
	svc     *services.AssignmentService
	cache   *mocks.MockEntityCache
	backend *mocks.MockPlatformBackend
	repo    *mocks.MockWorkflowRepository
}

func newAssignmentFixture(clients []domain.Client, therapists []domain.Therapist) *assignmentFixture {
	cache := mocks.NewMockEntityCache()
	backend := mocks.NewMockPlatformBackend()
	backend.Clients = clients
	backend.Therapists = therapists
	repo := mocks.NewMockWorkflowRepository()
	ctrl := optimistic.NewController(cache, nil, 2*time.Second)

	return &assignmentFixture{
		svc:     services.NewAssignmentService(cache, backend, ctrl, repo, repo),
		cache:   cache,
		backend: backend,
		repo:    repo,
	}
}

func TestAssignCommitsAndRecordsAudit(t *testing.T) {
	f := newAssignmentFixture(
		[]domain.Client{mocks.SampleClient("C1", domain.ClientAwaitingAssignment, "")},
		[]domain.Therapist{mocks.SampleTherapist("T1", 5)},
	)

	result, err := f.svc.Assign(context.Background(), "C1", "T1", ports.AssignOptions{
		AIRecommendationUsed: true,
		ActorID:              "admin-1",
	})
	if err != nil {
		t.Fatalf("expected assignment, got %v", err)
	}
	if result.Assignment.ClientID != "C1" || result.Assignment.TherapistID != "T1" {
		t.Errorf("unexpected assignment: %+v", result.Assignment)
	}
	if !result.Assignment.AIRecommendationUsed {
		t.Error("AI recommendation flag should be carried onto the record")
	}

	var cached domain.Client
	f.cache.EntityAs(t, domain.EntityClient, "C1", &cached)
	if cached.Status != domain.ClientAssigned || cached.AssignedTherapistID != "T1" {
		t.Errorf("cache should hold the assigned client, got %+v", cached)
	}
	if !cached.CheckAssignmentInvariant() {
		t.Error("cached client violates the status/therapist invariant")
	}

	if f.repo.AssignmentCount() != 1 {
		t.Fatalf("expected one audit record, got %d", f.repo.AssignmentCount())
	}
	if len(f.repo.OutboxPayloads) != 1 {
		t.Fatalf("expected one outbox payload, got %d", len(f.repo.OutboxPayloads))
	}
	var evt ports.AssignmentCreatedEvent
	if err := json.Unmarshal(f.repo.OutboxPayloads[0], &evt); err != nil {
		t.Fatalf("outbox payload is not an assignment event: %v", err)
	}
	if evt.ClientID != "C1" || evt.TherapistID != "T1" {
		t.Errorf("unexpected event: %+v", evt)
	}
	if evt.ClientEmail == "" || evt.TherapistEmail == "" {
		t.Error("notification event must carry both email addresses")
	}

	if f.repo.HistoryCount() != 1 {
		t.Fatalf("expected one history entry, got %d", f.repo.HistoryCount())
	}
	entry := f.repo.HistoryEntries[0]
	if entry.FromStatus != "awaiting_assignment" || entry.ToStatus != "assigned" || entry.Reason != domain.ReasonAssigned {
		t.Errorf("unexpected history entry: %+v", entry)
	}

	if len(f.backend.AssignCalls) != 1 || f.backend.AssignCalls[0].IdempotencyKey == "" {
		t.Error("backend call must carry a fresh idempotency key")
	}
}

func TestAssignSamePairIsNoOp(t *testing.T) {
	f := newAssignmentFixture(
		[]domain.Client{mocks.SampleClient("C1", domain.ClientAssigned, "T1")},
		[]domain.Therapist{mocks.SampleTherapist("T1", 5)},
	)
	f.repo.Assignments = []domain.Assignment{{ID: "A1", ClientID: "C1", TherapistID: "T1"}}

	result, err := f.svc.Assign(context.Background(), "C1", "T1", ports.AssignOptions{ActorID: "admin-1"})
	if err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
	if result.Assignment.ID != "A1" {
		t.Errorf("expected existing record A1, got %+v", result.Assignment)
	}
	if result.EmailSent {
		t.Error("a no-op must not claim notifications were sent")
	}
	if f.backend.AssignCallCount() != 0 {
		t.Error("repeating the same pair must not reach the backend")
	}
	if f.repo.AssignmentCount() != 1 {
		t.Errorf("no second audit record expected, got %d", f.repo.AssignmentCount())
	}
	if f.repo.HistoryCount() != 0 {
		t.Error("a no-op leaves no history entry")
	}
}

func TestAssignReplacesExistingTherapist(t *testing.T) {
	f := newAssignmentFixture(
		[]domain.Client{mocks.SampleClient("C1", domain.ClientAssigned, "T1")},
		[]domain.Therapist{mocks.SampleTherapist("T1", 5), mocks.SampleTherapist("T2", 3)},
	)

	result, err := f.svc.Assign(context.Background(), "C1", "T2", ports.AssignOptions{ActorID: "admin-1"})
	if err != nil {
		t.Fatalf("expected reassignment, got %v", err)
	}
	if result.Assignment.TherapistID != "T2" {
		t.Errorf("expected T2, got %+v", result.Assignment)
	}

	var cached domain.Client
	f.cache.EntityAs(t, domain.EntityClient, "C1", &cached)
	if cached.AssignedTherapistID != "T2" {
		t.Errorf("cache should point at the replacement therapist, got %+v", cached)
	}

	if f.repo.HistoryCount() != 1 || f.repo.HistoryEntries[0].Reason != domain.ReasonAssignmentReplaced {
		t.Errorf("replacement must be recorded as such, got %+v", f.repo.HistoryEntries)
	}
}

func TestAssignRejectsUnavailableTherapist(t *testing.T) {
	tests := []struct {
		name       string
		therapists []domain.Therapist
	}{
		{"not in pool", []domain.Therapist{mocks.SampleTherapist("T9", 5)}},
		{"no remaining capacity", []domain.Therapist{mocks.SampleTherapist("T1", 0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAssignmentFixture(
				[]domain.Client{mocks.SampleClient("C1", domain.ClientAwaitingAssignment, "")},
				tt.therapists,
			)

			_, err := f.svc.Assign(context.Background(), "C1", "T1", ports.AssignOptions{ActorID: "admin-1"})
			if !errors.Is(err, domain.ErrTherapistUnavailable) {
				t.Fatalf("expected ErrTherapistUnavailable, got %v", err)
			}
			if f.backend.AssignCallCount() != 0 {
				t.Error("ineligible therapist must never reach the assignment call")
			}
			if len(f.cache.PutEntityCalls) != 0 {
				t.Error("failed eligibility check must not write a tentative value")
			}
			if f.repo.HistoryCount() != 0 {
				t.Error("failed assignment leaves no history entry")
			}
		})
	}
}

func TestAssignConvergesAfterLostRace(t *testing.T) {
	// Another admin session already assigned C1 to T9; this session still holds
	// the stale awaiting view in cache and tries to assign T1.
	cache := mocks.NewMockEntityCache()
	backend := mocks.NewMockPlatformBackend()
	backend.Clients = []domain.Client{mocks.SampleClient("C1", domain.ClientAssigned, "T9")}
	backend.Therapists = []domain.Therapist{mocks.SampleTherapist("T1", 5), mocks.SampleTherapist("T9", 5)}
	backend.AssignError = domain.ErrClientAlreadyAssigned
	repo := mocks.NewMockWorkflowRepository()
	ctrl := optimistic.NewController(cache, services.NewListRefresher(cache, backend), 2*time.Second)
	svc := services.NewAssignmentService(cache, backend, ctrl, repo, repo)

	cache.SeedEntity(t, domain.EntityClient, "C1", mocks.SampleClient("C1", domain.ClientAwaitingAssignment, ""))

	_, err := svc.Assign(context.Background(), "C1", "T1", ports.AssignOptions{ActorID: "admin-1"})
	if !errors.Is(err, domain.ErrClientAlreadyAssigned) {
		t.Fatalf("expected ErrClientAlreadyAssigned, got %v", err)
	}
	if repo.AssignmentCount() != 0 {
		t.Error("a refused assignment must not be recorded")
	}
	if repo.HistoryCount() != 0 {
		t.Error("a refused assignment leaves no history entry")
	}

	// The loser's stale snapshot must not come back; the entity key is dropped
	// and the client list refetched so the next read shows the winner.
	if got := cache.EntityBytes(domain.EntityClient, "C1"); got != nil {
		t.Fatalf("stale client view must be dropped after a lost race, got %s", got)
	}
	deadline := time.Now().Add(2 * time.Second)
	for !cache.HasList(services.ListClients) {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for the client list refetch")
		}
		time.Sleep(10 * time.Millisecond)
	}

	clients, err := svc.ListClients(context.Background(), "")
	if err != nil {
		t.Fatalf("list after lost race: %v", err)
	}
	if len(clients) != 1 {
		t.Fatalf("expected 1 client, got %d", len(clients))
	}
	if clients[0].Status != domain.ClientAssigned || clients[0].AssignedTherapistID != "T9" {
		t.Errorf("loser must converge on the winner's assignment, got %+v", clients[0])
	}
	if !clients[0].CheckAssignmentInvariant() {
		t.Error("converged client violates the status/therapist invariant")
	}
}

func TestAssignSingleFlightPerClient(t *testing.T) {
	f := newAssignmentFixture(
		[]domain.Client{mocks.SampleClient("C1", domain.ClientAwaitingAssignment, "")},
		[]domain.Therapist{mocks.SampleTherapist("T1", 5), mocks.SampleTherapist("T2", 5)},
	)

	started := make(chan struct{})
	unblock := make(chan struct{})
	done := make(chan error, 1)

	f.backend.AssignFunc = func(ctx context.Context, req ports.AssignRequest) (*ports.AssignResult, error) {
		close(started)
		<-unblock
		return &ports.AssignResult{
			EmailSent:  true,
			Assignment: domain.Assignment{ID: "A1", ClientID: req.ClientID, TherapistID: req.TherapistID},
		}, nil
	}

	go func() {
		_, err := f.svc.Assign(context.Background(), "C1", "T1", ports.AssignOptions{ActorID: "admin-1"})
		done <- err
	}()
	<-started

	_, err := f.svc.Assign(context.Background(), "C1", "T2", ports.AssignOptions{ActorID: "admin-2"})
	if !errors.Is(err, domain.ErrMutationInFlight) {
		t.Fatalf("expected ErrMutationInFlight, got %v", err)
	}

	close(unblock)
	if err := <-done; err != nil {
		t.Fatalf("first assignment should commit, got %v", err)
	}

	if f.backend.AssignCallCount() != 1 {
		t.Errorf("exactly one assignment call expected, got %d", f.backend.AssignCallCount())
	}
	if f.repo.AssignmentCount() != 1 {
		t.Errorf("exactly one audit record expected, got %d", f.repo.AssignmentCount())
	}
}

func TestRevokeReleasesAssignment(t *testing.T) {
	f := newAssignmentFixture(
		[]domain.Client{mocks.SampleClient("C1", domain.ClientAssigned, "T1")},
		[]domain.Therapist{mocks.SampleTherapist("T1", 5)},
	)

	updated, err := f.svc.Revoke(context.Background(), "C1", "admin-1")
	if err != nil {
		t.Fatalf("expected revocation, got %v", err)
	}
	if updated.Status != domain.ClientAwaitingAssignment || updated.AssignedTherapistID != "" {
		t.Errorf("client should be back in the awaiting pool, got %+v", updated)
	}
	if !updated.CheckAssignmentInvariant() {
		t.Error("revoked client violates the status/therapist invariant")
	}

	if len(f.backend.RevokeCalls) != 1 {
		t.Errorf("expected one revoke call, got %d", len(f.backend.RevokeCalls))
	}
	if f.repo.HistoryCount() != 1 || f.repo.HistoryEntries[0].Reason != domain.ReasonAssignmentRevoked {
		t.Errorf("revocation must be recorded, got %+v", f.repo.HistoryEntries)
	}
}

func TestRevokeRequiresAssignedClient(t *testing.T) {
	f := newAssignmentFixture(
		[]domain.Client{mocks.SampleClient("C1", domain.ClientAwaitingAssignment, "")},
		nil,
	)

	_, err := f.svc.Revoke(context.Background(), "C1", "admin-1")
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if len(f.backend.RevokeCalls) != 0 {
		t.Error("illegal revoke must never reach the backend")
	}
}

func TestHistoryGrowsMonotonically(t *testing.T) {
	f := newAssignmentFixture(
		[]domain.Client{mocks.SampleClient("C1", domain.ClientAwaitingAssignment, "")},
		[]domain.Therapist{mocks.SampleTherapist("T1", 5), mocks.SampleTherapist("T2", 5)},
	)
	ctx := context.Background()

	if _, err := f.svc.Assign(ctx, "C1", "T1", ports.AssignOptions{ActorID: "admin-1"}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if f.repo.HistoryCount() != 1 {
		t.Fatalf("expected 1 entry after assign, got %d", f.repo.HistoryCount())
	}

	if _, err := f.svc.Revoke(ctx, "C1", "admin-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if f.repo.HistoryCount() != 2 {
		t.Fatalf("expected 2 entries after revoke, got %d", f.repo.HistoryCount())
	}

	if _, err := f.svc.Assign(ctx, "C1", "T2", ports.AssignOptions{ActorID: "admin-1"}); err != nil {
		t.Fatalf("second assign: %v", err)
	}
	if f.repo.HistoryCount() != 3 {
		t.Fatalf("expected 3 entries after second assign, got %d", f.repo.HistoryCount())
	}

	// A failed operation never shrinks or grows the log.
	if _, err := f.svc.Assign(ctx, "C1", "ghost", ports.AssignOptions{ActorID: "admin-1"}); err == nil {
		t.Fatal("expected failure for unknown therapist")
	}
	if f.repo.HistoryCount() != 3 {
		t.Errorf("failed operation must not touch the log, got %d entries", f.repo.HistoryCount())
	}

	entries, err := f.svc.History(ctx, "C1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries for C1, got %d", len(entries))
	}
	wantReasons := []string{domain.ReasonAssigned, domain.ReasonAssignmentRevoked, domain.ReasonAssigned}
	for i, want := range wantReasons {
		if entries[i].Reason != want {
			t.Errorf("entry %d: expected reason %s, got %s", i, want, entries[i].Reason)
		}
	}
}

func TestListClientsFiltersByStatus(t *testing.T) {
	f := newAssignmentFixture(
		[]domain.Client{
			mocks.SampleClient("C1", domain.ClientAwaitingAssignment, ""),
			mocks.SampleClient("C2", domain.ClientAssigned, "T1"),
			mocks.SampleClient("C3", domain.ClientAwaitingAssignment, ""),
		},
		nil,
	)

	awaiting, err := f.svc.ListClients(context.Background(), domain.ClientAwaitingAssignment)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(awaiting) != 2 {
		t.Errorf("expected 2 awaiting clients, got %d", len(awaiting))
	}

	all, err := f.svc.ListClients(context.Background(), "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 clients, got %d", len(all))
	}
}
