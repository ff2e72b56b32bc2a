package domain

import "time"

type ClientStatus string

const (
	ClientAwaitingAssignment ClientStatus = "awaiting_assignment"
	ClientAssigned           ClientStatus = "assigned"
	ClientActive             ClientStatus = "active"
)

// Preferences are the client's stated matching preferences. Every field is
// optional; an empty value means "no preference".
type Preferences struct {
	Gender       string `json:"gender,omitempty"`
	Approach     string `json:"approach,omitempty"`
	Availability string `json:"availability,omitempty"`
}

// Client is a service recipient moving through the assignment workflow.
//
// Invariant: Status == ClientAssigned exactly when AssignedTherapistID != "",
// and Status == ClientAwaitingAssignment implies AssignedTherapistID == "".
type Client struct {
	ID                  string       `json:"id"`
	Name                string       `json:"name"`
	Email               string       `json:"email"`
	Status              ClientStatus `json:"status"`
	AssignedTherapistID string       `json:"assignedTherapistId,omitempty"`
	ProfileCompleted    bool         `json:"profileCompleted"`
	Concerns            []string     `json:"concerns,omitempty"`
	Preferences         Preferences  `json:"preferences"`
	CreatedAt           time.Time    `json:"created_at"`
}

// CheckAssignmentInvariant reports whether the status/therapist pairing is
// consistent.
func (c Client) CheckAssignmentInvariant() bool {
	switch c.Status {
	case ClientAssigned, ClientActive:
		return c.AssignedTherapistID != ""
	case ClientAwaitingAssignment:
		return c.AssignedTherapistID == ""
	default:
		return false
	}
}
