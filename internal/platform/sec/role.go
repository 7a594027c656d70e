// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Full catalog and user management
	RoleAdmin UserRole = "admin"

	// May edit or remove any review or comment
	RoleModerator UserRole = "moderator"

	// Default role for registered users
	RoleUser UserRole = "user"
)

// Roles lists every assignable role in ascending order of privilege.
var Roles = []UserRole{RoleUser, RoleModerator, RoleAdmin}

// Valid reports whether r is one of the assignable roles.
func (r UserRole) Valid() bool {
	return r.level() > 0
}

// String implements [fmt.Stringer].
func (r UserRole) String() string { return string(r) }

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {
	switch r {
	case RoleAdmin:
		return 30
	case RoleModerator:
		return 20
	case RoleUser:
		return 10
	default:
		return 0
	}
}

// # Actor

// Actor is the identity a request is evaluated against. The zero value is the
// anonymous actor.
type Actor struct {
	UserID      string
	Username    string
	Email       string
	Role        UserRole
	IsSuperuser bool
}

// Anonymous returns the unauthenticated actor.
func Anonymous() Actor { return Actor{} }

// IsAuthenticated reports whether the actor is bound to an account.
func (a Actor) IsAuthenticated() bool { return a.UserID != "" }

// IsAdmin reports whether the actor holds the admin role or the superuser flag.
func (a Actor) IsAdmin() bool {
	return a.IsAuthenticated() && (a.Role == RoleAdmin || a.IsSuperuser)
}

// IsModerator reports whether the actor holds the moderator role.
func (a Actor) IsModerator() bool {
	return a.IsAuthenticated() && a.Role == RoleModerator
}
