package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/domain"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/ports"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "")
}

func respondStatus(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

func TestConflictOnEnquiryEndpointsIsStateConflict(t *testing.T) {
	// A 409 on the review surface means the record moved under us; it must
	// not surface as the assignment-race error and its user message.
	c := newTestClient(t, respondStatus(http.StatusConflict, `{"error":"stale status"}`))

	_, err := c.UpdateEnquiryStatus(context.Background(), "E1", domain.EnquiryApproved)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if errors.Is(err, domain.ErrClientAlreadyAssigned) {
		t.Error("an enquiry conflict must not map to the assignment-race error")
	}

	_, err = c.UpdateEnquiryTier(context.Background(), "E1", domain.TierSpecialist)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for tier conflict, got %v", err)
	}
}

func TestConflictOnAssignIsLostRace(t *testing.T) {
	var sawIdempotencyKey bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		sawIdempotencyKey = r.Header.Get("Idempotency-Key") != ""
		w.WriteHeader(http.StatusConflict)
	})

	_, err := c.AssignTherapist(context.Background(), ports.AssignRequest{
		ClientID:       "C1",
		TherapistID:    "T1",
		IdempotencyKey: "key-1",
	})
	if !errors.Is(err, domain.ErrClientAlreadyAssigned) {
		t.Fatalf("expected ErrClientAlreadyAssigned, got %v", err)
	}
	if !sawIdempotencyKey {
		t.Error("assignment call must send an Idempotency-Key header")
	}

	_, err = c.RevokeAssignment(context.Background(), "C1", "key-1")
	if !errors.Is(err, domain.ErrClientAlreadyAssigned) {
		t.Fatalf("expected ErrClientAlreadyAssigned for revoke conflict, got %v", err)
	}
}

func TestRateLimitMapping(t *testing.T) {
	c := newTestClient(t, respondStatus(http.StatusTooManyRequests, `{"error":"rate limit exceeded"}`))

	_, err := c.UpdateEnquiryTier(context.Background(), "E1", domain.TierSpecialist)
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestNotFoundMapping(t *testing.T) {
	c := newTestClient(t, respondStatus(http.StatusNotFound, `{"error":"no such enquiry"}`))

	_, err := c.UpdateEnquiryStatus(context.Background(), "ghost", domain.EnquiryApproved)
	if !errors.Is(err, domain.ErrEntityNotFound) {
		t.Fatalf("expected ErrEntityNotFound, got %v", err)
	}
}

func TestListEnquiriesDecodes(t *testing.T) {
	c := newTestClient(t, respondStatus(http.StatusOK,
		`[{"id":"E1","status":"under_review"},{"id":"E2","status":"approved"}]`))

	enquiries, err := c.ListEnquiries(context.Background())
	if err != nil {
		t.Fatalf("expected list, got %v", err)
	}
	if len(enquiries) != 2 || enquiries[0].ID != "E1" || enquiries[1].Status != domain.EnquiryApproved {
		t.Errorf("unexpected decode: %+v", enquiries)
	}
}
