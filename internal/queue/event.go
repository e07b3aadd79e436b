// Package queue defines message payloads exchanged over the message broker.
package queue

// RequestStatusChangedEvent is published whenever a service request's
// status commits, including the automatic advance when an invoice is
// paid.  It carries enough context for downstream consumers to log or
// notify without querying the primary database.
type RequestStatusChangedEvent struct {
	RequestID    uint64  `json:"request_id"`
	CustomerID   uint64  `json:"customer_id"`
	JobType      string  `json:"job_type"`
	LicensePlate string  `json:"license_plate"`
	FromStatus   string  `json:"from_status"`
	ToStatus     string  `json:"to_status"`
	ActorID      uint64  `json:"actor_id"`
	ActorRole    string  `json:"actor_role"`
	AssignedTo   *uint64 `json:"assigned_to,omitempty"`
	ChangedAt    string  `json:"changed_at"`
}
