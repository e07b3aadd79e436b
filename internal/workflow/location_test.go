package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// sharing returns a request in a healthy sharing session: Delivery,
// assigned to concierge 7, coordinates present.
func sharing() *RequestState {
	req := state(StatusDelivery)
	req.AssignedTo = uptr(7)
	req.AssignedToRole = RoleConcierge
	req.ShareLocation = true
	req.Latitude, req.Longitude = fptr(41.7), fptr(44.8)
	return req
}

func TestCanUpdateLocationAllGatesHold(t *testing.T) {
	assert.NoError(t, CanUpdateLocation(sharing(), Actor{ID: 7, Role: RoleConcierge}))
}

// Each gate must deny on its own while every other condition holds.
func TestCanUpdateLocationEachGateIndependent(t *testing.T) {
	t.Run("wrong role", func(t *testing.T) {
		err := CanUpdateLocation(sharing(), Actor{ID: 7, Role: RoleDealer})
		assert.ErrorIs(t, err, ErrLocationUpdateDenied)
	})
	t.Run("not the assigned concierge", func(t *testing.T) {
		err := CanUpdateLocation(sharing(), Actor{ID: 8, Role: RoleConcierge})
		assert.ErrorIs(t, err, ErrLocationUpdateDenied)
	})
	t.Run("unassigned", func(t *testing.T) {
		req := sharing()
		req.AssignedTo = nil
		req.AssignedToRole = ""
		err := CanUpdateLocation(req, Actor{ID: 7, Role: RoleConcierge})
		assert.ErrorIs(t, err, ErrLocationUpdateDenied)
	})
	t.Run("status not Delivery", func(t *testing.T) {
		req := sharing()
		req.Status = StatusPending
		err := CanUpdateLocation(req, Actor{ID: 7, Role: RoleConcierge})
		assert.ErrorIs(t, err, ErrLocationUpdateDenied)
	})
	t.Run("sharing off", func(t *testing.T) {
		req := sharing()
		req.ShareLocation = false
		err := CanUpdateLocation(req, Actor{ID: 7, Role: RoleConcierge})
		assert.ErrorIs(t, err, ErrLocationUpdateDenied)
	})
}

func TestLocationAvailable(t *testing.T) {
	assert.True(t, LocationAvailable(sharing()))

	req := sharing()
	req.ShareLocation = false
	assert.False(t, LocationAvailable(req), "sharing off")

	req = sharing()
	req.Latitude = nil
	assert.False(t, LocationAvailable(req), "missing coordinate")

	req = sharing()
	req.Status = StatusComplete
	assert.False(t, LocationAvailable(req), "terminal status")

	// Pending and In service remain readable while sharing state says so.
	for _, s := range []Status{StatusPending, StatusInService} {
		req = sharing()
		req.Status = s
		assert.True(t, LocationAvailable(req), "status %s", s)
	}
}

func TestCanViewLocation(t *testing.T) {
	req := sharing()
	assert.True(t, CanViewLocation(req, Actor{ID: 1, Role: RoleCustomer}), "owning customer")
	assert.True(t, CanViewLocation(req, Actor{ID: 7, Role: RoleConcierge}), "assigned concierge")
	assert.True(t, CanViewLocation(req, Actor{ID: 99, Role: RoleOwner}))
	assert.False(t, CanViewLocation(req, Actor{ID: 2, Role: RoleCustomer}), "stranger customer")
}

func TestCoordinatesValid(t *testing.T) {
	assert.True(t, Coordinates{Lat: 41.7, Lng: 44.8}.Valid())
	assert.True(t, Coordinates{Lat: -90, Lng: 180}.Valid())
	assert.False(t, Coordinates{Lat: 91, Lng: 0}.Valid())
	assert.False(t, Coordinates{Lat: 0, Lng: -181}.Valid())
}
