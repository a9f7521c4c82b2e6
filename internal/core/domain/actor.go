package domain

// Role is the access level supplied by the identity provider.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Actor identifies the authenticated principal performing an operation.
// The core trusts the account ID and role as given by the identity provider.
type Actor struct {
	AccountID string
	Role      Role
}

// IsAdmin reports whether the actor may perform settlement operations.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
