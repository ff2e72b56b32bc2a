package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/domain"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/ports"
)

func newMockRepo(t *testing.T) (*SQLRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLRepository(db), mock
}

func sampleAssignment() domain.Assignment {
	return domain.Assignment{
		ID:                   "A1",
		ClientID:             "C1",
		TherapistID:          "T1",
		AIRecommendationUsed: true,
		Notes:                "first session booked",
		CreatedAt:            time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestCreateAssignmentWritesOutboxInSameTransaction(t *testing.T) {
	repo, mock := newMockRepo(t)
	a := sampleAssignment()
	payload := []byte(`{"assignment_id":"A1"}`)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO assignments").
		WithArgs(a.ID, a.ClientID, a.TherapistID, a.AIRecommendationUsed, a.Notes, a.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO outbox_events").
		WithArgs(sqlmock.AnyArg(), ports.AssignmentCreatedEventType, payload).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.CreateAssignment(context.Background(), a, payload); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateAssignmentSkipsOutboxWithoutPayload(t *testing.T) {
	repo, mock := newMockRepo(t)
	a := sampleAssignment()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO assignments").
		WithArgs(a.ID, a.ClientID, a.TherapistID, a.AIRecommendationUsed, a.Notes, a.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.CreateAssignment(context.Background(), a, nil); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateAssignmentRollsBackOnOutboxFailure(t *testing.T) {
	repo, mock := newMockRepo(t)
	a := sampleAssignment()
	boom := errors.New("disk full")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO assignments").
		WithArgs(a.ID, a.ClientID, a.TherapistID, a.AIRecommendationUsed, a.Notes, a.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO outbox_events").
		WillReturnError(boom)
	mock.ExpectRollback()

	err := repo.CreateAssignment(context.Background(), a, []byte(`{}`))
	if !errors.Is(err, boom) {
		t.Fatalf("expected outbox failure, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestLatestForClient(t *testing.T) {
	repo, mock := newMockRepo(t)
	a := sampleAssignment()

	columns := []string{"id", "client_id", "therapist_id", "ai_recommendation_used", "notes", "created_at"}
	mock.ExpectQuery("SELECT id, client_id, therapist_id").
		WithArgs("C1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(a.ID, a.ClientID, a.TherapistID, a.AIRecommendationUsed, a.Notes, a.CreatedAt))

	got, err := repo.LatestForClient(context.Background(), "C1")
	if err != nil {
		t.Fatalf("expected assignment, got %v", err)
	}
	if got.ID != "A1" || got.TherapistID != "T1" {
		t.Errorf("unexpected assignment: %+v", got)
	}
}

func TestLatestForClientNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	columns := []string{"id", "client_id", "therapist_id", "ai_recommendation_used", "notes", "created_at"}
	mock.ExpectQuery("SELECT id, client_id, therapist_id").
		WithArgs("C9").
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := repo.LatestForClient(context.Background(), "C9")
	if !errors.Is(err, domain.ErrEntityNotFound) {
		t.Fatalf("expected ErrEntityNotFound, got %v", err)
	}
}

func TestAppendHistoryEntry(t *testing.T) {
	repo, mock := newMockRepo(t)
	entry := domain.StatusHistoryEntry{
		ID:         "H1",
		EntityID:   "E1",
		EntityType: domain.EntityEnquiry,
		FromStatus: "under_review",
		ToStatus:   "approved",
		ActorID:    "admin-1",
		Reason:     domain.ReasonStatusUpdate,
		Timestamp:  time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec("INSERT INTO status_history").
		WithArgs(entry.ID, entry.EntityID, entry.EntityType, entry.FromStatus, entry.ToStatus, entry.ActorID, entry.Reason, entry.Timestamp).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Append(context.Background(), entry); err != nil {
		t.Fatalf("expected append, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestListForEntityOrdersByTime(t *testing.T) {
	repo, mock := newMockRepo(t)

	columns := []string{"id", "entity_id", "entity_type", "from_status", "to_status", "actor_id", "reason", "created_at"}
	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, entity_id, entity_type").
		WithArgs("C1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("H1", "C1", "client", "awaiting_assignment", "assigned", "admin-1", domain.ReasonAssigned, base).
			AddRow("H2", "C1", "client", "assigned", "awaiting_assignment", "admin-1", domain.ReasonAssignmentRevoked, base.Add(time.Hour)))

	entries, err := repo.ListForEntity(context.Background(), "C1")
	if err != nil {
		t.Fatalf("expected entries, got %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Reason != domain.ReasonAssigned || entries[1].Reason != domain.ReasonAssignmentRevoked {
		t.Errorf("entries out of order: %+v", entries)
	}
}
