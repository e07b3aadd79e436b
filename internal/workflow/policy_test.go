package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanViewPermissiveRead(t *testing.T) {
	req := state(StatusPending)

	assert.True(t, CanView(req, Actor{ID: 1, Role: RoleCustomer}), "owning customer")
	assert.False(t, CanView(req, Actor{ID: 2, Role: RoleCustomer}), "other customer")
	// Any staff member may view, assigned or not.
	assert.True(t, CanView(req, Actor{ID: 7, Role: RoleConcierge}))
	assert.True(t, CanView(req, Actor{ID: 8, Role: RoleDealer}))
	assert.True(t, CanView(req, Actor{ID: 99, Role: RoleOwner}))
}

func TestCustomerFieldPolicy(t *testing.T) {
	req := state(StatusPending)
	p := EditableFields(req, Actor{ID: 1, Role: RoleCustomer})

	assert.True(t, p.Can(FieldDescription))
	assert.True(t, p.Can(FieldPickupLocation), "editable before assignment")
	assert.True(t, p.Can(FieldDropoffLocation))
	assert.False(t, p.Can(FieldJobType))
	assert.False(t, p.Can(FieldAssignedTo))
	assert.Equal(t, []Status{StatusPending, StatusCancelled}, p.StatusChoices)

	// Once staff is assigned the locations freeze for the customer.
	req.AssignedTo = uptr(7)
	req.AssignedToRole = RoleConcierge
	p = EditableFields(req, Actor{ID: 1, Role: RoleCustomer})
	assert.False(t, p.Can(FieldPickupLocation))
	assert.False(t, p.Can(FieldDropoffLocation))
}

func TestConciergeFieldPolicy(t *testing.T) {
	p := EditableFields(state(StatusAccepted), Actor{ID: 7, Role: RoleConcierge})

	assert.True(t, p.Can(FieldDescription))
	assert.True(t, p.Can(FieldStatus))
	assert.True(t, p.Can(FieldAssignedTo))
	assert.False(t, p.Can(FieldPickupLocation), "concierges never edit locations")
	assert.False(t, p.Can(FieldDropoffLocation))
	assert.Equal(t, []Status{StatusAccepted, StatusInService, StatusDelivery}, p.StatusChoices)
	assert.Equal(t, []Role{RoleConcierge, RoleDealer}, p.AssigneeRoles)
}

func TestDealerFieldPolicy(t *testing.T) {
	p := EditableFields(state(StatusInService), Actor{ID: 8, Role: RoleDealer})

	assert.True(t, p.Can(FieldDescription))
	assert.False(t, p.Can(FieldAssignedTo))
	assert.False(t, p.Can(FieldPickupLocation))
	assert.Equal(t, []Status{StatusInService, StatusDelivery}, p.StatusChoices)
	assert.Empty(t, p.AssigneeRoles)
}

func TestOwnerFieldPolicy(t *testing.T) {
	p := EditableFields(state(StatusComplete), Actor{ID: 99, Role: RoleOwner})

	for _, f := range []Field{
		FieldJobType, FieldDescription, FieldPickupLocation,
		FieldDropoffLocation, FieldStatus, FieldAssignedTo, FieldAssignedDealer,
	} {
		assert.True(t, p.Can(f), "owner edits %s", f)
	}
	// Owner sees every status as a choice, current first.
	assert.Len(t, p.StatusChoices, len(Statuses))
	assert.Equal(t, StatusComplete, p.StatusChoices[0])
}

func TestPolicyForStrangerIsEmpty(t *testing.T) {
	p := EditableFields(state(StatusPending), Actor{ID: 2, Role: RoleCustomer})
	assert.Empty(t, p.Editable)
	assert.Empty(t, p.StatusChoices)
}

func TestStatusChoicesAlwaysIncludeCurrent(t *testing.T) {
	for _, role := range Roles {
		for _, s := range Statuses {
			req := state(s)
			actor := Actor{ID: 1, Role: role}
			p := EditableFields(req, actor)
			if !p.Can(FieldStatus) {
				continue
			}
			assert.True(t, p.AllowsStatus(s), "%s at %s must offer the current status", role, s)
		}
	}
}

func TestValidateDescription(t *testing.T) {
	assert.ErrorIs(t, ValidateDescription(JobTypeOther, "", true), ErrDescriptionRequired)
	assert.NoError(t, ValidateDescription(JobTypeOther, "squeaky brakes", true))
	assert.NoError(t, ValidateDescription("Oil Change", "", true))
	// Read-only description skips the rule and keeps the stored value.
	assert.NoError(t, ValidateDescription(JobTypeOther, "", false))
}

func TestParseHelpers(t *testing.T) {
	s, ok := ParseStatus("In service")
	assert.True(t, ok)
	assert.Equal(t, StatusInService, s)
	_, ok = ParseStatus("in service")
	assert.False(t, ok, "status values are exact")

	r, ok := ParseRole(" Concierge ")
	assert.True(t, ok)
	assert.Equal(t, RoleConcierge, r)
	_, ok = ParseRole("mechanic")
	assert.False(t, ok)
}
