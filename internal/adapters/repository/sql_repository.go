package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/domain"
	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/ports"
)

type SQLRepository struct {
	db *sql.DB
}

var (
	_ ports.AssignmentRepository = (*SQLRepository)(nil)
	_ ports.HistoryRepository    = (*SQLRepository)(nil)
)

func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// CreateAssignment appends the assignment audit record and, when a payload is
// given, the notification outbox row in the same transaction. Assignments are
// never updated or deleted afterwards.
func (r *SQLRepository) CreateAssignment(ctx context.Context, a domain.Assignment, outboxPayload []byte) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO assignments (id, client_id, therapist_id, ai_recommendation_used, notes, created_at)
         VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID,
		a.ClientID,
		a.TherapistID,
		a.AIRecommendationUsed,
		a.Notes,
		a.CreatedAt,
	)
	if err != nil {
		return err
	}

	if len(outboxPayload) > 0 {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO outbox_events (id, event_type, payload, created_at)
             VALUES ($1, $2, $3, NOW())`,
			uuid.NewString(),
			ports.AssignmentCreatedEventType,
			outboxPayload,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *SQLRepository) LatestForClient(ctx context.Context, clientID string) (*domain.Assignment, error) {
	var a domain.Assignment
	err := r.db.QueryRowContext(ctx,
		`SELECT id, client_id, therapist_id, ai_recommendation_used, notes, created_at
         FROM assignments
         WHERE client_id = $1
         ORDER BY created_at DESC
         LIMIT 1`,
		clientID,
	).Scan(&a.ID, &a.ClientID, &a.TherapistID, &a.AIRecommendationUsed, &a.Notes, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrEntityNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *SQLRepository) ListForClient(ctx context.Context, clientID string) ([]domain.Assignment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, client_id, therapist_id, ai_recommendation_used, notes, created_at
         FROM assignments
         WHERE client_id = $1
         ORDER BY created_at`,
		clientID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []domain.Assignment
	for rows.Next() {
		var a domain.Assignment
		if err := rows.Scan(&a.ID, &a.ClientID, &a.TherapistID, &a.AIRecommendationUsed, &a.Notes, &a.CreatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}
