package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kavyakala/kavyakala/auth"
)

func TestUserRoleIsValid(t *testing.T) {
	tests := []struct {
		role  auth.UserRole
		valid bool
	}{
		{auth.RoleUser, true},
		{auth.RoleSubadmin, true},
		{auth.RoleAdmin, true},
		{auth.UserRole("superuser"), false},
		{auth.UserRole(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.role.IsValid())
		})
	}
}

func TestUserRoleIsAssignable(t *testing.T) {
	assert.True(t, auth.RoleUser.IsAssignable())
	assert.True(t, auth.RoleSubadmin.IsAssignable())
	assert.False(t, auth.RoleAdmin.IsAssignable())
	assert.False(t, auth.UserRole("owner").IsAssignable())
}

func TestUserRoleIsElevated(t *testing.T) {
	assert.False(t, auth.RoleUser.IsElevated())
	assert.True(t, auth.RoleSubadmin.IsElevated())
	assert.True(t, auth.RoleAdmin.IsElevated())
}

func TestParseRole(t *testing.T) {
	role, ok := auth.ParseRole("subadmin")
	assert.True(t, ok)
	assert.Equal(t, auth.RoleSubadmin, role)

	_, ok = auth.ParseRole("root")
	assert.False(t, ok)
}
