// Package queue defines message payloads exchanged over the message broker.
package queue

// Actions recorded on the assignment audit queue.
const (
	ActionAssigned = "assigned"
	ActionEmptied  = "emptied"
)

// AssignmentEvent is published whenever a seat slot changes hands: a
// customer is assigned (possibly replacing a prior occupant) or a seat
// is emptied.  It contains enough information for downstream consumers
// to log or notify without querying the primary database.
type AssignmentEvent struct {
	Action       string `json:"action"`
	AssignmentID uint64 `json:"assignment_id,omitempty"`
	SeatLabel    string `json:"seat"`
	Date         string `json:"date"`
	CustomerID   uint64 `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	AssignedBy   uint64 `json:"assigned_by,omitempty"`
	OccurredAt   string `json:"occurred_at"`
}
