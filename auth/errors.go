package auth

import "github.com/goliatone/go-errors"

const (
	TextCodeInvalidCreds        = "invalid_credentials"
	TextCodeAccountDisabled     = "account_disabled"
	TextCodeEmailNotVerified    = "email_not_verified"
	TextCodeTokenExpired        = "token_expired"
	TextCodeTokenMalformed      = "token_malformed"
	TextCodeVerificationInvalid = "verification_token_invalid"
	TextCodeAlreadyVerified     = "already_verified"
	TextCodeIdentifierTaken     = "identifier_in_use"
	TextCodeLastActiveAdmin     = "last_active_admin"
	TextCodeUserNotFound        = "user_not_found"
	TextCodeRoleNotAllowed      = "role_not_allowed"
	TextCodeMailDispatch        = "mail_dispatch_failed"
	TextCodeEmptyPassword       = "empty_password"
)

// ErrInvalidCredentials covers both an unknown identifier and a wrong
// password so the response never reveals which accounts exist.
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrAccountDisabled is returned when credentials are valid but the account
// has been deactivated by an administrator.
var ErrAccountDisabled = errors.New("account disabled", errors.CategoryAuthz).
	WithTextCode(TextCodeAccountDisabled).
	WithCode(errors.CodeForbidden)

// ErrEmailNotVerified is returned when credentials are valid but the email
// verification cycle has not completed.
var ErrEmailNotVerified = errors.New("email not verified, please verify to continue", errors.CategoryAuthz).
	WithTextCode(TextCodeEmailNotVerified).
	WithCode(errors.CodeForbidden)

// ErrTokenExpired is returned when a session token is past its TTL.
var ErrTokenExpired = errors.New("authentication token expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for tampered, malformed, or wrongly signed
// session tokens.
var ErrTokenMalformed = errors.New("invalid authentication token", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrVerificationTokenInvalid covers unknown, expired, and already consumed
// verification tokens alike; the three cases are deliberately
// indistinguishable to the caller.
var ErrVerificationTokenInvalid = errors.New("verification link is invalid or has expired", errors.CategoryBadInput).
	WithTextCode(TextCodeVerificationInvalid).
	WithCode(errors.CodeBadRequest)

// ErrAlreadyVerified is returned when a resend is requested for a verified
// account.
var ErrAlreadyVerified = errors.New("account is already verified", errors.CategoryBadInput).
	WithTextCode(TextCodeAlreadyVerified).
	WithCode(errors.CodeBadRequest)

// ErrIdentifierTaken is returned when the email or handle is already bound
// to a verified account.
var ErrIdentifierTaken = errors.New("email or handle already in use", errors.CategoryConflict).
	WithTextCode(TextCodeIdentifierTaken).
	WithCode(errors.CodeConflict)

// ErrLastActiveAdmin is returned when a mutation would leave the platform
// without any active administrator.
var ErrLastActiveAdmin = errors.New("cannot remove the last active admin", errors.CategoryConflict).
	WithTextCode(TextCodeLastActiveAdmin).
	WithCode(errors.CodeConflict)

// ErrUserNotFound is returned when a referenced account does not exist.
var ErrUserNotFound = errors.New("user not found", errors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(errors.CodeNotFound)

// ErrRoleNotAllowed is returned when a role change targets anything other
// than user or subadmin.
var ErrRoleNotAllowed = errors.New("invalid role, only user or subadmin allowed", errors.CategoryValidation).
	WithTextCode(TextCodeRoleNotAllowed).
	WithCode(errors.CodeBadRequest)

// ErrNoEmptyPassword rejects empty plaintext before it reaches bcrypt.
var ErrNoEmptyPassword = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the uniform verification failure for a
// wrong password or a malformed stored hash.
var ErrMismatchedHashAndPassword = errors.New("password does not match", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrMailDispatchFailed marks a failed notification send. It is logged and
// surfaced as metadata on the parent response, never as the operation error.
var ErrMailDispatchFailed = errors.New("verification email could not be sent", errors.CategoryOperation).
	WithTextCode(TextCodeMailDispatch)
