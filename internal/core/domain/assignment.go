package domain

import "time"

// Assignment links a client to a therapist. A client has at most one active
// assignment; superseded assignments stay in the audit log untouched.
type Assignment struct {
	ID                   string    `json:"id"`
	ClientID             string    `json:"clientId"`
	TherapistID          string    `json:"therapistId"`
	AIRecommendationUsed bool      `json:"aiRecommendationUsed"`
	Notes                string    `json:"notes,omitempty"`
	CreatedAt            time.Time `json:"createdAt"`
}

// MatchRecommendation is one externally scored therapist suggestion.
// Recommendations are ephemeral: produced per request and never persisted.
type MatchRecommendation struct {
	TherapistID string `json:"therapistId"`
	// MatchScore is an already-integer percentage, 0-100.
	MatchScore      int      `json:"matchScore"`
	Reasoning       string   `json:"reasoning,omitempty"`
	Specialisations []string `json:"specialisations,omitempty"`
	Availability    string   `json:"availability,omitempty"`
	Rate            int      `json:"rate,omitempty"`
}
