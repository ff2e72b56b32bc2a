package unit

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/domain"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/services"
	"github.com/kindmind-health/therapy-platform/assignment-service/test/mocks"
)

func newMatchFixture(clients []domain.Client, ranker *mocks.MockMatchRanker) *services.MatchService {
	cache := mocks.NewMockEntityCache()
	backend := mocks.NewMockPlatformBackend()
	backend.Clients = clients
	return services.NewMatchService(cache, backend, ranker)
}

func TestRecommendReturnsRankedSuggestions(t *testing.T) {
	ranker := mocks.NewMockMatchRanker()
	ranker.Recommendations = []domain.MatchRecommendation{
		{TherapistID: "T2", MatchScore: 72, Reasoning: "Strong specialisation overlap"},
		{TherapistID: "T1", MatchScore: 91},
		{TherapistID: "T3", MatchScore: 55},
	}
	svc := newMatchFixture([]domain.Client{mocks.SampleClient("C1", domain.ClientAwaitingAssignment, "")}, ranker)

	got, err := svc.Recommend(context.Background(), "C1")
	if err != nil {
		t.Fatalf("expected recommendations, got %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 recommendations, got %d", len(got))
	}
	if !sort.SliceIsSorted(got, func(i, j int) bool { return got[i].MatchScore > got[j].MatchScore }) {
		t.Errorf("recommendations must be in descending score order: %+v", got)
	}
	if got[0].TherapistID != "T1" {
		t.Errorf("highest score first, got %s", got[0].TherapistID)
	}

	// Reasoning is optional; its absence is not an error.
	if got[2].TherapistID == "T3" && got[2].Reasoning != "" {
		t.Errorf("expected no reasoning for T3, got %q", got[2].Reasoning)
	}

	if len(ranker.RankCalls) != 1 {
		t.Fatalf("expected one scorer call, got %d", len(ranker.RankCalls))
	}
	req := ranker.RankCalls[0]
	if req.ClientID != "C1" || !req.ProfileCompleted || len(req.Concerns) == 0 {
		t.Errorf("scorer request should carry the client profile, got %+v", req)
	}
}

func TestRecommendEmptyResultIsNotAnError(t *testing.T) {
	ranker := mocks.NewMockMatchRanker()
	svc := newMatchFixture([]domain.Client{mocks.SampleClient("C1", domain.ClientAwaitingAssignment, "")}, ranker)

	got, err := svc.Recommend(context.Background(), "C1")
	if err != nil {
		t.Fatalf("an empty ranking is a valid outcome, got %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected an empty non-nil slice, got %#v", got)
	}
}

func TestRecommendPropagatesScorerFailure(t *testing.T) {
	ranker := mocks.NewMockMatchRanker()
	ranker.RankError = domain.ErrBackendUnavailable
	svc := newMatchFixture([]domain.Client{mocks.SampleClient("C1", domain.ClientAwaitingAssignment, "")}, ranker)

	_, err := svc.Recommend(context.Background(), "C1")
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestRecommendUnknownClient(t *testing.T) {
	ranker := mocks.NewMockMatchRanker()
	svc := newMatchFixture(nil, ranker)

	_, err := svc.Recommend(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrEntityNotFound) {
		t.Fatalf("expected ErrEntityNotFound, got %v", err)
	}
	if len(ranker.RankCalls) != 0 {
		t.Error("unknown client must not reach the scorer")
	}
}

func TestRecommendRequiresClientID(t *testing.T) {
	svc := newMatchFixture(nil, mocks.NewMockMatchRanker())

	if _, err := svc.Recommend(context.Background(), ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
