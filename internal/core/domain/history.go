package domain

import "time"

type EntityType string

const (
	EntityEnquiry   EntityType = "enquiry"
	EntityClient    EntityType = "client"
	EntityTherapist EntityType = "therapist"
)

// History reasons distinguish how an edge was taken when the edge alone is
// ambiguous (first assignment vs. replacement, revocation).
const (
	ReasonStatusUpdate        = "status_update"
	ReasonAssigned            = "assigned"
	ReasonAssignmentReplaced  = "assignment_replaced"
	ReasonAssignmentRevoked   = "assignment_revoked"
	ReasonTierUpdate          = "tier_update"
	ReasonAccountProvisioning = "account_created"
)

// StatusHistoryEntry is one row of the append-only status audit log.
// Entries are only ever appended for committed transitions; a rolled-back
// mutation leaves no entry.
type StatusHistoryEntry struct {
	ID         string     `json:"id"`
	EntityID   string     `json:"entity_id"`
	EntityType EntityType `json:"entity_type"`
	FromStatus string     `json:"from_status"`
	ToStatus   string     `json:"to_status"`
	ActorID    string     `json:"actor_id"`
	Reason     string     `json:"reason"`
	Timestamp  time.Time  `json:"timestamp"`
}
