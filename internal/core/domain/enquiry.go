package domain

import "time"

type EnquiryStatus string

const (
	EnquiryReceived         EnquiryStatus = "enquiry_received"
	EnquiryUnderReview      EnquiryStatus = "under_review"
	EnquiryApproved         EnquiryStatus = "approved"
	EnquiryRejected         EnquiryStatus = "rejected"
	EnquiryPendingDocuments EnquiryStatus = "pending_documents"
)

// Enquiry is a prospective therapist's application. Enquiries are never
// hard-deleted; a declined application moves to EnquiryRejected instead.
type Enquiry struct {
	ID             string        `json:"id"`
	FirstName      string        `json:"first_name"`
	LastName       string        `json:"last_name"`
	Email          string        `json:"email"`
	Status         EnquiryStatus `json:"status"`
	AccountCreated bool          `json:"account_created"`
	TherapistTier  Tier          `json:"therapist_tier,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}
