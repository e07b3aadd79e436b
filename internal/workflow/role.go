package workflow

import "strings"

// Role is the closed set of principal roles.  Every authenticated user
// carries exactly one; the value is stored in users.role and in the JWT
// "role" claim.
type Role string

const (
	RoleCustomer  Role = "customer"
	RoleConcierge Role = "concierge"
	RoleDealer    Role = "dealer"
	RoleOwner     Role = "owner"
)

// Roles lists every valid role.  The slice is shared; callers must not
// mutate it.
var Roles = []Role{RoleCustomer, RoleConcierge, RoleDealer, RoleOwner}

// ParseRole maps a raw string onto a Role, ignoring case and
// surrounding whitespace.  The second return value reports whether the
// input named a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return known, true
		}
	}
	return "", false
}

// Staff reports whether the role belongs to the service side of the
// business (concierge, dealer or owner) as opposed to a customer.
func (r Role) Staff() bool {
	return r == RoleConcierge || r == RoleDealer || r == RoleOwner
}

// Assignable reports whether a principal with this role may appear in a
// request's assigned_to field.  Requests are only ever assigned to
// concierges or dealers, never to customers or owners.
func (r Role) Assignable() bool {
	return r == RoleConcierge || r == RoleDealer
}

// Actor identifies the authenticated principal performing an operation.
// It is passed explicitly into every workflow call; the core never
// reads identity from ambient state.
type Actor struct {
	ID   uint64
	Role Role
}
