package workflow

// RequestState is the snapshot of a service request that the transition
// authority decides against.  The repository populates it from a row
// locked with SELECT ... FOR UPDATE so the current status can never be
// stale form state; AssignedToRole is resolved through a join on the
// assignee's user row and is empty while the request is unassigned.
type RequestState struct {
	ID             uint64
	CustomerID     uint64
	Status         Status
	AssignedTo     *uint64
	AssignedToRole Role
	AssignedDealer *uint64
	ShareLocation  bool
	Latitude       *float64
	Longitude      *float64
}

// Coordinates is a concierge position sample submitted alongside a
// Delivery transition or a location ping.
type Coordinates struct {
	Lat float64
	Lng float64
}

// Valid reports whether the pair is inside the WGS84 range.  Anything
// outside is treated the same as a missing payload.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// TransitionInput carries the proposed changes of one edit submission.
// Status equal to the current status (or empty) means "no status
// change".  AssignedTo is only honoured for roles that may edit the
// assignment; AssignedToRole must be the resolved role of that
// principal.  ClearAssignment unassigns the request explicitly.
type TransitionInput struct {
	Status          Status
	AssignedTo      *uint64
	AssignedToRole  Role
	ClearAssignment bool
	AssignedDealer  *uint64
	Location        *Coordinates
}

// TransitionResult is the committed outcome of a validated transition.
// The repository writes every field of it, plus last_updated, in a
// single row update.  LocationWarning flags a Delivery transition whose
// coordinate payload was missing or malformed: the transition itself
// still commits, with sharing disabled.
type TransitionResult struct {
	Status          Status
	AssignedTo      *uint64
	AssignedDealer  *uint64
	ShareLocation   bool
	Latitude        *float64
	Longitude       *float64
	LocationWarning bool
}

// transitionTable holds the allowed target statuses per (role, current
// status).  Customers and owners are handled in allowedTargets: a
// customer may only cancel (from any non-terminal status) and an owner
// is unrestricted.
var transitionTable = map[Role]map[Status][]Status{
	RoleConcierge: {
		StatusPending:  {StatusAccepted},
		StatusAccepted: {StatusInService, StatusDelivery},
		StatusDelivery: {StatusComplete},
	},
	RoleDealer: {
		StatusAccepted:  {StatusInService},
		StatusInService: {StatusDelivery},
	},
}

// allowedTargets returns the statuses the role may move to from the
// given current status, excluding the current status itself.
func allowedTargets(role Role, current Status) []Status {
	switch role {
	case RoleOwner:
		out := make([]Status, 0, len(Statuses)-1)
		for _, s := range Statuses {
			if s != current {
				out = append(out, s)
			}
		}
		return out
	case RoleCustomer:
		if current.Terminal() {
			return nil
		}
		return []Status{StatusCancelled}
	default:
		return transitionTable[role][current]
	}
}

// transitionAllowed reports whether role may move a request from
// current to target.
func transitionAllowed(role Role, current, target Status) bool {
	for _, s := range allowedTargets(role, current) {
		if s == target {
			return true
		}
	}
	return false
}

// ApplyTransition validates one edit submission against the current
// request state and computes the state to commit.  It never mutates
// req; on any error the caller must roll back without writing.
//
// The sequence mirrors the edit form flow: standing check, status
// validation against the per-role table, the concierge self-assignment
// rule for Delivery, assignment resolution, terminal and hand-back
// clearing, and finally the location-sharing side effect.
func ApplyTransition(req *RequestState, actor Actor, in TransitionInput) (*TransitionResult, error) {
	if !CanView(req, actor) {
		return nil, ErrPermissionDenied
	}

	target := in.Status
	if target == "" {
		target = req.Status
	}
	if !target.Valid() {
		return nil, &InvalidTransitionError{From: req.Status, To: target, Reason: "unknown status"}
	}
	if target != req.Status && !transitionAllowed(actor.Role, req.Status, target) {
		return nil, &InvalidTransitionError{From: req.Status, To: target}
	}

	res := &TransitionResult{
		Status:         target,
		AssignedTo:     req.AssignedTo,
		AssignedDealer: req.AssignedDealer,
		ShareLocation:  req.ShareLocation,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
	}

	// Assignment: only owners and concierges may change assigned_to.
	// Submissions from dealers and customers are ignored, matching the
	// disabled form field they see.
	assigneeRole := req.AssignedToRole
	if actor.Role == RoleOwner || actor.Role == RoleConcierge {
		switch {
		case in.AssignedTo != nil:
			if !in.AssignedToRole.Assignable() {
				return nil, ErrInvalidAssignment
			}
			res.AssignedTo = in.AssignedTo
			assigneeRole = in.AssignedToRole
		case in.ClearAssignment:
			res.AssignedTo = nil
			assigneeRole = ""
		}
	}

	// Only an owner reassigns the dealer organisation directly; a
	// dealer taking a request into service records their own org.
	if in.AssignedDealer != nil && (actor.Role == RoleOwner ||
		(actor.Role == RoleDealer && target == StatusInService)) {
		res.AssignedDealer = in.AssignedDealer
	}

	// A concierge may only put a request into Delivery while assigned
	// to it themselves.
	if target == StatusDelivery && actor.Role == RoleConcierge {
		if res.AssignedTo == nil || *res.AssignedTo != actor.ID {
			return nil, &InvalidTransitionError{
				From:   req.Status,
				To:     target,
				Reason: "a concierge can only set Delivery when assigned to themselves",
			}
		}
		assigneeRole = RoleConcierge
	}

	// Terminal states hold no live assignment.
	if target.Terminal() {
		res.AssignedTo = nil
		assigneeRole = ""
	}

	// Dealer hand-back: finishing repair work puts the request back on
	// the delivery board unassigned so a concierge can claim it.  The
	// dealer org stays as a history marker.
	if actor.Role == RoleDealer && req.Status == StatusInService && target == StatusDelivery {
		res.AssignedTo = nil
		assigneeRole = ""
	}

	// Sharing survives only while the request stays in Delivery with
	// the same concierge assigned.
	if res.Status != StatusDelivery {
		res.ShareLocation = false
	}
	if req.ShareLocation && !sameAssignee(req.AssignedTo, res.AssignedTo) {
		res.ShareLocation = false
	}

	// Location side effect: a concierge moving (or keeping) the request
	// in Delivery while self-assigned starts a sharing session when the
	// payload is usable, and downgrades to no-sharing with a warning
	// when it is not.
	if actor.Role == RoleConcierge && res.Status == StatusDelivery &&
		res.AssignedTo != nil && *res.AssignedTo == actor.ID && assigneeRole == RoleConcierge {
		if in.Location != nil && in.Location.Valid() {
			lat, lng := in.Location.Lat, in.Location.Lng
			res.Latitude, res.Longitude = &lat, &lng
			res.ShareLocation = true
		} else {
			res.ShareLocation = false
			res.LocationWarning = true
		}
	}

	if !res.ShareLocation {
		res.Latitude, res.Longitude = nil, nil
	}
	return res, nil
}

func sameAssignee(a, b *uint64) bool {
	return a != nil && b != nil && *a == *b
}
