package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func uptr(v uint64) *uint64   { return &v }
func fptr(v float64) *float64 { return &v }

// state returns a minimal request owned by customer 1 in the given
// status; tests mutate the copy as needed.
func state(s Status) *RequestState {
	return &RequestState{ID: 10, CustomerID: 1, Status: s}
}

func TestRoleGatingGrid(t *testing.T) {
	// Explicit allowed-transition table, mirrored independently from
	// the implementation so a table typo fails loudly.
	allowed := map[Role]map[Status][]Status{
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
	isAllowed := func(role Role, from, to Status) bool {
		if role == RoleOwner {
			return true
		}
		if role == RoleCustomer {
			return to == StatusCancelled && !from.Terminal()
		}
		for _, s := range allowed[role][from] {
			if s == to {
				return true
			}
		}
		return false
	}

	for _, role := range Roles {
		for _, from := range Statuses {
			for _, to := range Statuses {
				if to == from {
					continue
				}
				req := state(from)
				// Assign the acting concierge so the Delivery
				// self-assignment rule never masks a table result.
				if role == RoleConcierge {
					req.AssignedTo = uptr(7)
					req.AssignedToRole = RoleConcierge
				}
				actor := Actor{ID: 7, Role: role}
				if role == RoleCustomer {
					actor.ID = req.CustomerID
				}
				res, err := ApplyTransition(req, actor, TransitionInput{Status: to})
				if isAllowed(role, from, to) {
					assert.NoError(t, err, "%s %s -> %s should be allowed", role, from, to)
					assert.Equal(t, to, res.Status)
				} else {
					var ite *InvalidTransitionError
					assert.ErrorAs(t, err, &ite, "%s %s -> %s should be rejected", role, from, to)
					assert.Nil(t, res)
				}
			}
		}
	}
}

func TestSameStatusSubmissionIsIdempotent(t *testing.T) {
	req := state(StatusDelivery)
	req.AssignedTo = uptr(7)
	req.AssignedToRole = RoleConcierge
	req.ShareLocation = true
	req.Latitude, req.Longitude = fptr(41.7), fptr(44.8)

	res, err := ApplyTransition(req, Actor{ID: 99, Role: RoleOwner}, TransitionInput{Status: StatusDelivery})
	assert.NoError(t, err)
	assert.Equal(t, StatusDelivery, res.Status)
	assert.Equal(t, uptr(7), res.AssignedTo)
	assert.True(t, res.ShareLocation)
	assert.Equal(t, 41.7, *res.Latitude)
	assert.Equal(t, 44.8, *res.Longitude)
}

func TestCustomerCanOnlyTouchOwnRequest(t *testing.T) {
	req := state(StatusPending)
	res, err := ApplyTransition(req, Actor{ID: 42, Role: RoleCustomer}, TransitionInput{Status: StatusCancelled})
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Nil(t, res)
}

func TestUnknownStatusRejected(t *testing.T) {
	_, err := ApplyTransition(state(StatusPending), Actor{ID: 99, Role: RoleOwner}, TransitionInput{Status: "Lost"})
	var ite *InvalidTransitionError
	assert.ErrorAs(t, err, &ite)
}

func TestConciergeDeliveryRequiresSelfAssignment(t *testing.T) {
	// Assigned to a different concierge: rejected.
	req := state(StatusAccepted)
	req.AssignedTo = uptr(5)
	req.AssignedToRole = RoleConcierge
	_, err := ApplyTransition(req, Actor{ID: 7, Role: RoleConcierge}, TransitionInput{Status: StatusDelivery})
	var ite *InvalidTransitionError
	assert.ErrorAs(t, err, &ite)

	// Unassigned and not claiming it: rejected.
	_, err = ApplyTransition(state(StatusAccepted), Actor{ID: 7, Role: RoleConcierge}, TransitionInput{Status: StatusDelivery})
	assert.ErrorAs(t, err, &ite)

	// Claiming it in the same submission: allowed, sharing starts.
	res, err := ApplyTransition(state(StatusAccepted), Actor{ID: 7, Role: RoleConcierge}, TransitionInput{
		Status:         StatusDelivery,
		AssignedTo:     uptr(7),
		AssignedToRole: RoleConcierge,
		Location:       &Coordinates{Lat: 41.7, Lng: 44.8},
	})
	assert.NoError(t, err)
	assert.Equal(t, uptr(7), res.AssignedTo)
	assert.True(t, res.ShareLocation)
	assert.Equal(t, 41.7, *res.Latitude)
	assert.Equal(t, 44.8, *res.Longitude)
	assert.False(t, res.LocationWarning)
}

func TestDeliveryWithoutCoordinatesDowngrades(t *testing.T) {
	res, err := ApplyTransition(state(StatusAccepted), Actor{ID: 7, Role: RoleConcierge}, TransitionInput{
		Status:         StatusDelivery,
		AssignedTo:     uptr(7),
		AssignedToRole: RoleConcierge,
	})
	assert.NoError(t, err)
	assert.Equal(t, StatusDelivery, res.Status)
	assert.False(t, res.ShareLocation)
	assert.True(t, res.LocationWarning)
	assert.Nil(t, res.Latitude)
	assert.Nil(t, res.Longitude)
}

func TestDeliveryWithMalformedCoordinatesDowngrades(t *testing.T) {
	res, err := ApplyTransition(state(StatusAccepted), Actor{ID: 7, Role: RoleConcierge}, TransitionInput{
		Status:         StatusDelivery,
		AssignedTo:     uptr(7),
		AssignedToRole: RoleConcierge,
		Location:       &Coordinates{Lat: 120, Lng: 44.8},
	})
	assert.NoError(t, err)
	assert.False(t, res.ShareLocation)
	assert.True(t, res.LocationWarning)
}

func TestAssignmentTargetRoleChecked(t *testing.T) {
	req := state(StatusPending)
	for _, bad := range []Role{RoleCustomer, RoleOwner} {
		_, err := ApplyTransition(req, Actor{ID: 99, Role: RoleOwner}, TransitionInput{
			AssignedTo:     uptr(3),
			AssignedToRole: bad,
		})
		assert.ErrorIs(t, err, ErrInvalidAssignment, "role %s must not be assignable", bad)
	}
	res, err := ApplyTransition(req, Actor{ID: 99, Role: RoleOwner}, TransitionInput{
		AssignedTo:     uptr(3),
		AssignedToRole: RoleDealer,
	})
	assert.NoError(t, err)
	assert.Equal(t, uptr(3), res.AssignedTo)
}

func TestDealerAndCustomerAssignmentIgnored(t *testing.T) {
	req := state(StatusAccepted)
	req.AssignedTo = uptr(5)
	req.AssignedToRole = RoleConcierge

	res, err := ApplyTransition(req, Actor{ID: 8, Role: RoleDealer}, TransitionInput{
		Status:         StatusInService,
		AssignedTo:     uptr(8),
		AssignedToRole: RoleDealer,
	})
	assert.NoError(t, err)
	assert.Equal(t, uptr(5), res.AssignedTo, "dealer-submitted assigned_to must be ignored")

	res, err = ApplyTransition(req, Actor{ID: 1, Role: RoleCustomer}, TransitionInput{
		AssignedTo:     uptr(1),
		AssignedToRole: RoleCustomer,
	})
	assert.NoError(t, err)
	assert.Equal(t, uptr(5), res.AssignedTo, "customer-submitted assigned_to must be ignored")
}

func TestTerminalStatesClearAssignmentAndSharing(t *testing.T) {
	req := state(StatusDelivery)
	req.AssignedTo = uptr(7)
	req.AssignedToRole = RoleConcierge
	req.ShareLocation = true
	req.Latitude, req.Longitude = fptr(41.7), fptr(44.8)

	for _, target := range []Status{StatusComplete, StatusCancelled} {
		res, err := ApplyTransition(req, Actor{ID: 99, Role: RoleOwner}, TransitionInput{Status: target})
		assert.NoError(t, err)
		assert.Nil(t, res.AssignedTo)
		assert.False(t, res.ShareLocation)
		assert.Nil(t, res.Latitude)
		assert.Nil(t, res.Longitude)
	}
}

func TestOwnerEscapeHatch(t *testing.T) {
	req := state(StatusAccepted)
	req.AssignedTo = uptr(7)
	req.AssignedToRole = RoleConcierge

	res, err := ApplyTransition(req, Actor{ID: 99, Role: RoleOwner}, TransitionInput{Status: StatusComplete})
	assert.NoError(t, err)
	assert.Equal(t, StatusComplete, res.Status)
	assert.Nil(t, res.AssignedTo)
	assert.False(t, res.ShareLocation)

	// Owners can even pull a request back out of a terminal state.
	_, err = ApplyTransition(state(StatusComplete), Actor{ID: 99, Role: RoleOwner}, TransitionInput{Status: StatusPending})
	assert.NoError(t, err)
}

func TestDealerHandBack(t *testing.T) {
	dealerOrg := uptr(3)
	req := state(StatusInService)
	req.AssignedTo = uptr(8)
	req.AssignedToRole = RoleDealer
	req.AssignedDealer = dealerOrg

	res, err := ApplyTransition(req, Actor{ID: 8, Role: RoleDealer}, TransitionInput{Status: StatusDelivery})
	assert.NoError(t, err)
	assert.Equal(t, StatusDelivery, res.Status)
	assert.Nil(t, res.AssignedTo, "hand-back must unassign so a concierge can re-claim")
	assert.False(t, res.ShareLocation)
	assert.Equal(t, dealerOrg, res.AssignedDealer, "dealer org stays as history marker")
}

func TestLeavingDeliveryStopsSharing(t *testing.T) {
	req := state(StatusDelivery)
	req.AssignedTo = uptr(7)
	req.AssignedToRole = RoleConcierge
	req.ShareLocation = true
	req.Latitude, req.Longitude = fptr(41.7), fptr(44.8)

	res, err := ApplyTransition(req, Actor{ID: 7, Role: RoleConcierge}, TransitionInput{Status: StatusComplete})
	assert.NoError(t, err)
	assert.False(t, res.ShareLocation)
	assert.Nil(t, res.Latitude)
}

func TestReassignmentAwayFromSharingConciergeStopsSharing(t *testing.T) {
	req := state(StatusDelivery)
	req.AssignedTo = uptr(7)
	req.AssignedToRole = RoleConcierge
	req.ShareLocation = true
	req.Latitude, req.Longitude = fptr(41.7), fptr(44.8)

	res, err := ApplyTransition(req, Actor{ID: 99, Role: RoleOwner}, TransitionInput{
		AssignedTo:     uptr(8),
		AssignedToRole: RoleDealer,
	})
	assert.NoError(t, err)
	assert.Equal(t, StatusDelivery, res.Status)
	assert.False(t, res.ShareLocation)
	assert.Nil(t, res.Latitude)
}

func TestCommittedStateSatisfiesInvariants(t *testing.T) {
	// Sweep a handful of representative submissions and assert the two
	// data-model invariants on every successful result.
	type sub struct {
		req   *RequestState
		actor Actor
		in    TransitionInput
	}
	selfAssigned := state(StatusDelivery)
	selfAssigned.AssignedTo = uptr(7)
	selfAssigned.AssignedToRole = RoleConcierge
	selfAssigned.ShareLocation = true
	selfAssigned.Latitude, selfAssigned.Longitude = fptr(1), fptr(2)

	subs := []sub{
		{state(StatusPending), Actor{ID: 7, Role: RoleConcierge}, TransitionInput{Status: StatusAccepted, AssignedTo: uptr(7), AssignedToRole: RoleConcierge}},
		{state(StatusAccepted), Actor{ID: 7, Role: RoleConcierge}, TransitionInput{Status: StatusDelivery, AssignedTo: uptr(7), AssignedToRole: RoleConcierge, Location: &Coordinates{Lat: 41.7, Lng: 44.8}}},
		{selfAssigned, Actor{ID: 7, Role: RoleConcierge}, TransitionInput{Status: StatusComplete}},
		{state(StatusPending), Actor{ID: 1, Role: RoleCustomer}, TransitionInput{Status: StatusCancelled}},
		{selfAssigned, Actor{ID: 99, Role: RoleOwner}, TransitionInput{AssignedTo: uptr(8), AssignedToRole: RoleDealer}},
	}
	for i, s := range subs {
		res, err := ApplyTransition(s.req, s.actor, s.in)
		if !assert.NoError(t, err, "submission %d", i) {
			continue
		}
		if res.ShareLocation {
			assert.Equal(t, StatusDelivery, res.Status, "submission %d: sharing outside Delivery", i)
			assert.NotNil(t, res.AssignedTo, "submission %d: sharing while unassigned", i)
		}
		if res.Status.Terminal() {
			assert.Nil(t, res.AssignedTo, "submission %d", i)
			assert.False(t, res.ShareLocation, "submission %d", i)
		}
	}
}

func TestValidationFailureReturnsNoResult(t *testing.T) {
	req := state(StatusPending)
	req.AssignedTo = uptr(5)
	req.AssignedToRole = RoleConcierge
	before := *req

	_, err := ApplyTransition(req, Actor{ID: 8, Role: RoleDealer}, TransitionInput{Status: StatusComplete})
	assert.Error(t, err)
	assert.True(t, errors.As(err, new(*InvalidTransitionError)))
	assert.Equal(t, before, *req, "input state must never be mutated")
}
