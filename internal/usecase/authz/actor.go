package authz

import "github.com/google/uuid"

// Actor identifies a caller for policy decisions. UserID is nil for
// anonymous callers and for the system role.
type Actor struct {
	Role   Role
	UserID *uuid.UUID
}

func Anonymous() Actor {
	return Actor{Role: RoleAnonymous}
}

func System() Actor {
	return Actor{Role: RoleSystem}
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
