package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kavyakala/kavyakala/auth"
	"github.com/kavyakala/kavyakala/server"
)

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

func appReturning(err error) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: server.ErrorHandler(testLogger{}),
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return err
	})
	return app
}

func TestErrorHandlerStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized, auth.TextCodeInvalidCreds},
		{"expired token", auth.ErrTokenExpired, http.StatusUnauthorized, auth.TextCodeTokenExpired},
		{"disabled account", auth.ErrAccountDisabled, http.StatusForbidden, auth.TextCodeAccountDisabled},
		{"unverified email", auth.ErrEmailNotVerified, http.StatusForbidden, auth.TextCodeEmailNotVerified},
		{"bad verification token", auth.ErrVerificationTokenInvalid, http.StatusBadRequest, auth.TextCodeVerificationInvalid},
		{"already verified", auth.ErrAlreadyVerified, http.StatusBadRequest, auth.TextCodeAlreadyVerified},
		{"identifier conflict", auth.ErrIdentifierTaken, http.StatusConflict, auth.TextCodeIdentifierTaken},
		{"last admin", auth.ErrLastActiveAdmin, http.StatusConflict, auth.TextCodeLastActiveAdmin},
		{"missing user", auth.ErrUserNotFound, http.StatusNotFound, auth.TextCodeUserNotFound},
		{"invalid role", auth.ErrRoleNotAllowed, http.StatusBadRequest, auth.TextCodeRoleNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := appReturning(tt.err)

			res, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.StatusCode)

			var body server.ErrorResponse
			require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body.TextCode)
		})
	}
}

func TestErrorHandlerSetsNeedsVerification(t *testing.T) {
	app := appReturning(auth.ErrEmailNotVerified)

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)

	var body server.ErrorResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.True(t, body.NeedsVerification)
}

func TestErrorHandlerValidationErrors(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: server.ErrorHandler(testLogger{}),
	})
	app.Post("/signup", func(c *fiber.Ctx) error {
		payload := server.SignupRequest{}
		if err := c.BodyParser(&payload); err != nil {
			return err
		}
		return payload.Validate()
	})

	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(`{"email":"not-an-email"}`))
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	var body server.ErrorResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.NotEmpty(t, body.Fields)
	assert.Contains(t, body.Fields, "name")
	assert.Contains(t, body.Fields, "email")
	assert.Contains(t, body.Fields, "password")
}

func TestErrorHandlerHidesInternals(t *testing.T) {
	app := appReturning(goerrors.New("pg: connection string rejected", goerrors.CategoryInternal))

	res, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)

	var body server.ErrorResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, "internal server error", body.Message)
	assert.NotContains(t, body.Message, "connection string")
}
