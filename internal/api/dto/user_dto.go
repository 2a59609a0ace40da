package dto

import (
	"github.com/spec-kit/auth-service/internal/domain"
)

// UserInfo is the public view of an account.
type UserInfo struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Roles []domain.Role `json:"roles"`
	Image *string       `json:"image,omitempty"`
}

// UserInfoFull additionally exposes the email; returned only to the account
// owner and to admins.
type UserInfoFull struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Email string        `json:"email"`
	Roles []domain.Role `json:"roles"`
	Image *string       `json:"image,omitempty"`
}

// NewUserInfo maps a domain user to its public view.
func NewUserInfo(user *domain.User) UserInfo {
	return UserInfo{ID: user.ID, Name: user.Name, Roles: user.Roles, Image: user.Image}
}

// NewUserInfoFull maps a domain user to its owner/admin view.
func NewUserInfoFull(user *domain.User) UserInfoFull {
	return UserInfoFull{ID: user.ID, Name: user.Name, Email: user.Email, Roles: user.Roles, Image: user.Image}
}

// UpdateUserRequest carries optional self-service profile changes.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Image    *string `json:"image,omitempty"`
}

// AdminUpdateUserRequest additionally allows replacing the role set.
type AdminUpdateUserRequest struct {
	UpdateUserRequest
	Roles []domain.Role `json:"roles,omitempty"`
}

// AdminCreateUserRequest provisions an account with explicit roles.
type AdminCreateUserRequest struct {
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Password string        `json:"password"`
	Roles    []domain.Role `json:"roles"`
	Image    *string       `json:"image,omitempty"`
}

// GetBatchRequest resolves several users at once.
type GetBatchRequest struct {
	IDs []string `json:"ids"`
}
