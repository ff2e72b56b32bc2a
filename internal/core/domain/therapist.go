package domain

// Therapist is a practising candidate in the available pool. The record is
// owned by the therapist-management service; this service reads it when
// ranking and assigning.
type Therapist struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Specialisations []string `json:"specialisations"`
	Tier            Tier     `json:"tier"`
	HourlyRate      int      `json:"hourlyRate"`
	Availability    string   `json:"availability"`
	// Capacity is the number of sessions per week the therapist will take.
	Capacity int `json:"capacity"`
}
