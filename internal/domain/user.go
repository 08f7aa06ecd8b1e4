package domain

import "github.com/google/uuid"

// Role is the authorization level of the caller.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// UserContext identifies the caller of a service operation.
// It is produced by the authentication middleware and passed explicitly.
type UserContext struct {
	ID   uuid.UUID
	Role Role
}

// IsAdmin reports whether the caller has the admin role.
func (u UserContext) IsAdmin() bool {
	return u.Role == RoleAdmin
}
