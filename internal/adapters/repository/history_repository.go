package repository

import (
	"context"

	"github.com/kindmind-health/therapy-platform/assignment-service/internal/core/domain"
)

// Append writes one status history row. The table is append-only: there is no
// update or delete path anywhere in this service.
func (r *SQLRepository) Append(ctx context.Context, entry domain.StatusHistoryEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO status_history (id, entity_id, entity_type, from_status, to_status, actor_id, reason, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID,
		entry.EntityID,
		entry.EntityType,
		entry.FromStatus,
		entry.ToStatus,
		entry.ActorID,
		entry.Reason,
		entry.Timestamp,
	)
	return err
}

func (r *SQLRepository) ListForEntity(ctx context.Context, entityID string) ([]domain.StatusHistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, entity_id, entity_type, from_status, to_status, actor_id, reason, created_at
         FROM status_history
         WHERE entity_id = $1
         ORDER BY created_at`,
		entityID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.StatusHistoryEntry
	for rows.Next() {
		var e domain.StatusHistoryEntry
		if err := rows.Scan(&e.ID, &e.EntityID, &e.EntityType, &e.FromStatus, &e.ToStatus, &e.ActorID, &e.Reason, &e.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
