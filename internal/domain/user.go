package domain

import "time"

// User is the domain model for an account holder.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Roles        []Role
	Image        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole reports whether the user's role set contains the required role.
func (u *User) HasRole(required Role) bool {
	return HasRole(u.Roles, required)
}
