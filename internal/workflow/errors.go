// Error values shared across the workflow package.  Handlers compare
// against these sentinels (or unwrap *InvalidTransitionError) to choose
// an HTTP status; none of them carries request state.
package workflow

import (
	"errors"
	"fmt"
)

// ErrPermissionDenied is returned when the actor has no standing to
// view or edit the request.  Handlers translate it into HTTP 403 and
// must leave the stored record untouched.
var ErrPermissionDenied = errors.New("permission denied")

// ErrInvalidAssignment is returned when assigned_to is pointed at a
// principal whose role is neither concierge nor dealer.
var ErrInvalidAssignment = errors.New("service requests can only be assigned to concierges or dealers")

// ErrLocationUpdateDenied is returned when a location write fails any
// of its gates: actor is not the assigned concierge, the request is not
// in Delivery, or sharing is switched off.
var ErrLocationUpdateDenied = errors.New("location update denied")

// ErrLocationNotAvailable is returned when a location read finds no
// active sharing session.  Handlers translate it into a 404-style
// "not available" payload rather than exposing stale coordinates.
var ErrLocationNotAvailable = errors.New("location not available")

// ErrDescriptionRequired is returned when job_type is "Other" and the
// (editable) description is empty.
var ErrDescriptionRequired = errors.New(`description is required when job type is "Other"`)

// InvalidTransitionError reports a status change that the transition
// table does not allow for the acting role, or a concierge Delivery
// attempt without self-assignment.  It names both ends of the attempted
// transition so the message can be attached to the status form field.
type InvalidTransitionError struct {
	From   Status
	To     Status
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid status transition from %q to %q: %s", e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("invalid status transition from %q to %q", e.From, e.To)
}
