// Package workflow contains the service-request state machine: which
// status transitions each role may perform, which fields each role may
// edit, and when live location sharing is active.  The package is pure
// decision logic — it never touches the database, never logs, and takes
// the acting user explicitly on every call.  Handlers translate its
// typed errors into HTTP responses and the repository layer commits its
// results atomically.
package workflow

// Status is the lifecycle state of a service request.  The string
// values are stored verbatim in the service_requests.status column and
// rendered to clients unchanged.
type Status string

const (
	StatusWaitingForPayment Status = "Waiting for Payment"
	StatusPending           Status = "Pending"
	StatusAccepted          Status = "Accepted"
	StatusInService         Status = "In service"
	StatusDelivery          Status = "Delivery"
	StatusComplete          Status = "Complete"
	StatusCancelled         Status = "Cancelled"
)

// Statuses lists every valid status in lifecycle order.  The slice is
// shared; callers must not mutate it.
var Statuses = []Status{
	StatusWaitingForPayment,
	StatusPending,
	StatusAccepted,
	StatusInService,
	StatusDelivery,
	StatusComplete,
	StatusCancelled,
}

// ParseStatus maps a raw string onto a Status.  The second return value
// reports whether the input named a known status.
func ParseStatus(s string) (Status, bool) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Valid reports whether s is one of the seven known statuses.
func (s Status) Valid() bool {
	_, ok := ParseStatus(string(s))
	return ok
}

// Terminal reports whether s is a final state.  Terminal requests hold
// no live assignment and never share location; only an owner can move a
// request out of a terminal state.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusCancelled
}
