package auth_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kavyakala/kavyakala/auth"
)

func newTestUser(t *testing.T, password string) *auth.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	return &auth.User{
		ID:           uuid.New(),
		Name:         "Mira Kavi",
		Email:        "mira@example.com",
		Handle:       "mira",
		Role:         auth.RoleUser,
		PasswordHash: hash,
		IsActive:     true,
		IsVerified:   true,
	}
}

func TestAutherLogin(t *testing.T) {
	password := "correct-horse-battery"

	tests := []struct {
		name    string
		mutate  func(u *auth.User)
		pass    string
		wantErr *struct{ textCode string }
	}{
		{
			name: "valid credentials",
			pass: password,
		},
		{
			name:    "wrong password",
			pass:    "nope",
			wantErr: &struct{ textCode string }{auth.TextCodeInvalidCreds},
		},
		{
			name:    "disabled account",
			mutate:  func(u *auth.User) { u.IsActive = false },
			pass:    password,
			wantErr: &struct{ textCode string }{auth.TextCodeAccountDisabled},
		},
		{
			name:    "unverified account",
			mutate:  func(u *auth.User) { u.IsVerified = false },
			pass:    password,
			wantErr: &struct{ textCode string }{auth.TextCodeEmailNotVerified},
		},
		{
			name: "disabled wins over unverified",
			mutate: func(u *auth.User) {
				u.IsActive = false
				u.IsVerified = false
			},
			pass:    password,
			wantErr: &struct{ textCode string }{auth.TextCodeAccountDisabled},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := newTestUser(t, password)
			if tt.mutate != nil {
				tt.mutate(user)
			}

			repo := NewMockRepositoryManager()
			repo.MockedUsers().
				On("GetByEmailOrHandle", mock.Anything, user.Email).
				Return(user, nil).Once()

			auther := auth.NewAuthenticator(repo, newMockConfig()).WithLogger(testLogger{})

			token, got, err := auther.Login(context.Background(), user.Email, tt.pass)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Empty(t, token)
				assertTextCode(t, err, tt.wantErr.textCode)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, token)
			assert.Equal(t, user.ID, got.ID)

			claims, err := auther.TokenService().Validate(token)
			require.NoError(t, err)
			assert.Equal(t, user.ID.String(), claims.UserID())
			assert.Equal(t, string(user.Role), claims.Role())
		})
	}
}

func TestAutherLoginUnknownIdentifier(t *testing.T) {
	repo := NewMockRepositoryManager()
	repo.MockedUsers().
		On("GetByEmailOrHandle", mock.Anything, "ghost@example.com").
		Return(nil, repository.NewRecordNotFound()).Once()

	auther := auth.NewAuthenticator(repo, newMockConfig()).WithLogger(testLogger{})

	_, _, err := auther.Login(context.Background(), "ghost@example.com", "whatever")
	require.Error(t, err)
	assertTextCode(t, err, auth.TextCodeInvalidCreds)
}

func TestAutherCurrentUser(t *testing.T) {
	user := newTestUser(t, "pw-irrelevant-1")

	repo := NewMockRepositoryManager()
	repo.MockedUsers().
		On("GetByID", mock.Anything, user.ID.String(), mock.Anything).
		Return(user, nil).Once()

	auther := auth.NewAuthenticator(repo, newMockConfig()).WithLogger(testLogger{})

	got, err := auther.CurrentUser(context.Background(), user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)
}

func TestAutherCurrentUserMissing(t *testing.T) {
	repo := NewMockRepositoryManager()
	repo.MockedUsers().
		On("GetByID", mock.Anything, "nope", mock.Anything).
		Return(nil, repository.NewRecordNotFound()).Once()

	auther := auth.NewAuthenticator(repo, newMockConfig()).WithLogger(testLogger{})

	_, err := auther.CurrentUser(context.Background(), "nope")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}
