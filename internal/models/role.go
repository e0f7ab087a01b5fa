package models

// Role is the requester's role, resolved once at the authentication boundary.
// The core only ever sees this enum.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleManager Role = "Manager"
	RoleStaff   Role = "Staff"
)

// Valid reports whether r is a recognized role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleStaff
}

// CanAutoApprove reports whether movements from this role are eligible for
// auto-approval at all. Staff submissions always queue for review.
func (r Role) CanAutoApprove() bool {
	return r == RoleAdmin || r == RoleManager
}
