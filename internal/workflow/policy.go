package workflow

// Field names the editable attributes of a service request.  The
// values double as form/JSON field names in validation error payloads.
type Field string

const (
	FieldJobType         Field = "job_type"
	FieldDescription     Field = "description"
	FieldPickupLocation  Field = "pickup_location"
	FieldDropoffLocation Field = "dropoff_location"
	FieldStatus          Field = "status"
	FieldAssignedTo      Field = "assigned_to"
	FieldAssignedDealer  Field = "assigned_dealer"
)

// JobTypeOther is the job type that makes the description mandatory.
const JobTypeOther = "Other"

// FieldPolicy describes what one actor may do to one request right
// now.  It is a value computed per request; fields absent from Editable
// are read-only.  StatusChoices always contains the current status so a
// no-change submission is valid, and AssigneeRoles restricts who may be
// placed in assigned_to when that field is editable.
type FieldPolicy struct {
	Editable      map[Field]bool
	StatusChoices []Status
	AssigneeRoles []Role
}

// Can reports whether the policy allows editing the given field.
func (p FieldPolicy) Can(f Field) bool { return p.Editable[f] }

// AllowsStatus reports whether the policy offers the given status as a
// valid submission target.
func (p FieldPolicy) AllowsStatus(s Status) bool {
	for _, c := range p.StatusChoices {
		if c == s {
			return true
		}
	}
	return false
}

// CanView reports whether the actor may see the request at all.  The
// read side is deliberately permissive: the owning customer and every
// staff member (concierge, dealer, owner) may view; editing is gated
// much more tightly by EditableFields and the transition table.
func CanView(req *RequestState, actor Actor) bool {
	if actor.Role.Staff() {
		return true
	}
	return actor.Role == RoleCustomer && req.CustomerID == actor.ID
}

// EditableFields computes the field policy for one actor on one
// request.  The result is a fresh value each call; callers may inspect
// it freely but changing it has no effect on enforcement, which happens
// again inside ApplyTransition.
func EditableFields(req *RequestState, actor Actor) FieldPolicy {
	p := FieldPolicy{Editable: map[Field]bool{}}
	if !CanView(req, actor) {
		return p
	}

	switch actor.Role {
	case RoleCustomer:
		p.Editable[FieldDescription] = true
		// Pickup and dropoff stay editable only until staff is assigned.
		if req.AssignedTo == nil {
			p.Editable[FieldPickupLocation] = true
			p.Editable[FieldDropoffLocation] = true
		}
		p.Editable[FieldStatus] = true
	case RoleConcierge:
		p.Editable[FieldDescription] = true
		p.Editable[FieldStatus] = true
		p.Editable[FieldAssignedTo] = true
	case RoleDealer:
		p.Editable[FieldDescription] = true
		p.Editable[FieldStatus] = true
	case RoleOwner:
		for _, f := range []Field{
			FieldJobType, FieldDescription,
			FieldPickupLocation, FieldDropoffLocation,
			FieldStatus, FieldAssignedTo, FieldAssignedDealer,
		} {
			p.Editable[f] = true
		}
	}

	if p.Editable[FieldStatus] {
		p.StatusChoices = append([]Status{req.Status}, allowedTargets(actor.Role, req.Status)...)
	}
	if p.Editable[FieldAssignedTo] {
		p.AssigneeRoles = []Role{RoleConcierge, RoleDealer}
	}
	return p
}

// ValidateDescription enforces the "Other" rule: when the job type is
// Other and the actor can edit the description, the submitted value
// must be non-empty.  When the field is read-only for the actor the
// stored description is preserved and the rule is not re-checked.
func ValidateDescription(jobType, description string, editable bool) error {
	if !editable {
		return nil
	}
	if jobType == JobTypeOther && description == "" {
		return ErrDescriptionRequired
	}
	return nil
}
