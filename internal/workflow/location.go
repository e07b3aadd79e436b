package workflow

// The location channel is a polled side channel, not a persistent
// connection: concierges ping their position while delivering, and
// interested parties poll it back.  Both directions are gated here and
// the gates are re-checked inside the repository transaction so a ping
// racing a dealer hand-back is rejected rather than resurrecting a
// closed sharing session.

// trackableStatuses is the union of statuses during which a stored
// position may still be meaningful to a viewer.
var trackableStatuses = map[Status]bool{
	StatusPending:   true,
	StatusInService: true,
	StatusDelivery:  true,
}

// CanUpdateLocation decides whether the actor may write coordinates to
// the request right now.  All three gates hold independently: the actor
// must be the assigned concierge, the request must be in Delivery, and
// sharing must be active.  Any failure returns ErrLocationUpdateDenied.
func CanUpdateLocation(req *RequestState, actor Actor) error {
	if actor.Role != RoleConcierge {
		return ErrLocationUpdateDenied
	}
	if req.AssignedTo == nil || *req.AssignedTo != actor.ID {
		return ErrLocationUpdateDenied
	}
	if req.Status != StatusDelivery {
		return ErrLocationUpdateDenied
	}
	if !req.ShareLocation {
		return ErrLocationUpdateDenied
	}
	return nil
}

// CanViewLocation decides whether the actor may read the request's
// position: the owning customer, the assigned concierge, or any staff
// member.  Standing to read says nothing about availability.
func CanViewLocation(req *RequestState, actor Actor) bool {
	if req.AssignedTo != nil && *req.AssignedTo == actor.ID {
		return true
	}
	return CanView(req, actor)
}

// LocationAvailable reports whether stored coordinates may be exposed:
// sharing is on, both coordinates exist, and the status still plausibly
// tracks a vehicle.  Transition clearing guarantees coordinates never
// outlive their sharing session, so a false here means "not available",
// never "stale".
func LocationAvailable(req *RequestState) bool {
	return req.ShareLocation &&
		req.Latitude != nil && req.Longitude != nil &&
		trackableStatuses[req.Status]
}
