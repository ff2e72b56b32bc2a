package domain

// The status transition engine. Legal edges are a static table checked
// before any mutation is dispatched; the UI is never trusted to only offer
// legal targets.

type edge struct {
	entityType EntityType
	from       string
	to         string
}

// allowedEdges is the full set of legal transitions.
//
// Enquiries follow a review DAG with approved/rejected terminal:
//
//	enquiry_received -> under_review -> {approved, rejected, pending_documents}
//	pending_documents -> under_review
//
// Clients move forward awaiting_assignment -> assigned -> active; the
// backward edge assigned -> awaiting_assignment is only taken by an explicit
// revoke, and assigned -> assigned is a reassignment to a different
// therapist.
var allowedEdges = map[edge]bool{
	{EntityEnquiry, string(EnquiryReceived), string(EnquiryUnderReview)}:         true,
	{EntityEnquiry, string(EnquiryUnderReview), string(EnquiryApproved)}:         true,
	{EntityEnquiry, string(EnquiryUnderReview), string(EnquiryRejected)}:         true,
	{EntityEnquiry, string(EnquiryUnderReview), string(EnquiryPendingDocuments)}: true,
	{EntityEnquiry, string(EnquiryPendingDocuments), string(EnquiryUnderReview)}: true,

	{EntityClient, string(ClientAwaitingAssignment), string(ClientAssigned)}: true,
	{EntityClient, string(ClientAssigned), string(ClientActive)}:             true,
	{EntityClient, string(ClientAssigned), string(ClientAwaitingAssignment)}: true,
	{EntityClient, string(ClientAssigned), string(ClientAssigned)}:           true,
}

// CanTransition reports whether the requested edge is legal for the entity
// type.
func CanTransition(entityType EntityType, from, to string) bool {
	return allowedEdges[edge{entityType, from, to}]
}

// ApplyTransition validates the requested edge and returns the new status.
// It returns a *TransitionError (matching ErrInvalidTransition) when the edge
// is not in the allowed set.
func ApplyTransition(entityType EntityType, from, to string) (string, error) {
	if !CanTransition(entityType, from, to) {
		return "", &TransitionError{EntityType: entityType, From: from, To: to}
	}
	return to, nil
}
