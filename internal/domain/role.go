package domain

// Role is a named capability level gating access to an operation.
type Role string

const (
	RoleUser      Role = "USER"
	RoleModerator Role = "MODERATOR"
	RoleAdmin     Role = "ADMIN"
)

// ValidRole reports whether the value is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// HasRole tests exact set membership. Holding ADMIN does not imply USER;
// a user satisfies a check only for roles its record actually lists.
func HasRole(roles []Role, required Role) bool {
	for _, r := range roles {
		if r == required {
			return true
		}
	}
	return false
}
