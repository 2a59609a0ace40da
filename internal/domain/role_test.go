package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasRoleIsExactMembership(t *testing.T) {
	roles := []Role{RoleAdmin, RoleModerator}

	assert.True(t, HasRole(roles, RoleAdmin))
	assert.True(t, HasRole(roles, RoleModerator))
	assert.False(t, HasRole(roles, RoleUser))
	assert.False(t, HasRole(nil, RoleUser))
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleUser))
	assert.True(t, ValidRole(RoleModerator))
	assert.True(t, ValidRole(RoleAdmin))
	assert.False(t, ValidRole(Role("ROOT")))
	assert.False(t, ValidRole(Role("")))
}
