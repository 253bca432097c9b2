package auth_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kavyakala/kavyakala/auth"
)

func TestSeedAdminCreatesInitialAdmin(t *testing.T) {
	repo := NewMockRepositoryManager()

	repo.MockedUsers().
		On("AdminExistsTx", mock.Anything, mock.Anything).
		Return(false, nil).Once()

	repo.MockedUsers().
		On("RegisterTx", mock.Anything, mock.Anything, mock.MatchedBy(func(u *auth.User) bool {
			return u.Role == auth.RoleAdmin && u.IsActive && u.IsVerified
		})).
		Return(&auth.User{
			ID:         uuid.New(),
			Email:      "admin@kavyakala.app",
			Handle:     "admin",
			Role:       auth.RoleAdmin,
			IsActive:   true,
			IsVerified: true,
		}, nil).Once()

	handler := auth.NewSeedAdminHandler(repo, testLogger{})

	var resp *auth.SeedAdminResponse
	err := handler.Execute(context.Background(), auth.SeedAdminMessage{
		Name:     "Site Admin",
		Email:    "admin@kavyakala.app",
		Handle:   "admin",
		Password: "ChangeMe@123",
		OnResponse: func(r *auth.SeedAdminResponse) {
			resp = r
		},
	})

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.True(t, resp.Created)
	require.NotNil(t, resp.User)
	assert.Equal(t, auth.RoleAdmin, resp.User.Role)
}

func TestSeedAdminSkipsWhenAdminExists(t *testing.T) {
	repo := NewMockRepositoryManager()

	repo.MockedUsers().
		On("AdminExistsTx", mock.Anything, mock.Anything).
		Return(true, nil).Once()

	handler := auth.NewSeedAdminHandler(repo, testLogger{})

	var resp *auth.SeedAdminResponse
	err := handler.Execute(context.Background(), auth.SeedAdminMessage{
		Name:     "Site Admin",
		Email:    "admin@kavyakala.app",
		Handle:   "admin",
		Password: "ChangeMe@123",
		OnResponse: func(r *auth.SeedAdminResponse) {
			resp = r
		},
	})

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.False(t, resp.Created)
	assert.Nil(t, resp.User)

	repo.MockedUsers().AssertNotCalled(t, "RegisterTx", mock.Anything, mock.Anything, mock.Anything)
}
