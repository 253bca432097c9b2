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

func newTestTokenService() auth.TokenService {
	return auth.NewTokenService([]byte("test-signing-key"), 1, "test-issuer", nil, testLogger{})
}

func TestVerifyEmailConsumesToken(t *testing.T) {
	repo := NewMockRepositoryManager()
	tokens := newTestTokenService()

	raw := "raw-token-from-email"
	verified := &auth.User{
		ID:         uuid.New(),
		Email:      "ready@example.com",
		Handle:     "ready",
		Role:       auth.RoleUser,
		IsActive:   true,
		IsVerified: true,
	}

	repo.MockedUsers().
		On("ConsumeVerificationTokenTx", mock.Anything, mock.Anything, auth.HashVerificationToken(raw), mock.Anything).
		Return(verified, nil).Once()

	handler := auth.NewVerifyEmailHandler(repo, tokens)

	var resp *auth.VerifyEmailResponse
	err := handler.Execute(context.Background(), auth.VerifyEmailMessage{
		Token: raw,
		OnResponse: func(r *auth.VerifyEmailResponse) {
			resp = r
		},
	})

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.True(t, resp.User.IsVerified)
	require.NotEmpty(t, resp.Token)

	// the response token is a valid session for the verified account
	claims, err := tokens.Validate(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, verified.ID.String(), claims.UserID())

	repo.MockedUsers().AssertExpectations(t)
}

func TestVerifyEmailUnknownToken(t *testing.T) {
	repo := NewMockRepositoryManager()

	repo.MockedUsers().
		On("ConsumeVerificationTokenTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, auth.ErrVerificationTokenInvalid).Once()

	handler := auth.NewVerifyEmailHandler(repo, newTestTokenService())

	err := handler.Execute(context.Background(), auth.VerifyEmailMessage{Token: "bogus"})
	require.Error(t, err)
	assertTextCode(t, err, auth.TextCodeVerificationInvalid)
}

func TestVerifyEmailEmptyToken(t *testing.T) {
	handler := auth.NewVerifyEmailHandler(NewMockRepositoryManager(), newTestTokenService())

	err := handler.Execute(context.Background(), auth.VerifyEmailMessage{Token: ""})
	require.Error(t, err)
	assertTextCode(t, err, auth.TextCodeVerificationInvalid)
}
