package auth

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated identity
type Identity interface {
	ID() string
	Handle() string
	Email() string
	Role() string
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenExpiration() int
	GetTokenLookup() string
	GetAuthScheme() string
	GetIssuer() string
	GetAudience() []string
}

// Email is the message handed to the notification gateway.
type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer is the notification gateway. Send failures are non-fatal to the
// operation that triggered them; callers capture the result and degrade.
type Mailer interface {
	Send(ctx context.Context, msg Email) error
}

type userIdentity struct {
	user *User
}

// IdentityFromUser adapts a user record to the Identity interface.
func IdentityFromUser(u *User) Identity {
	return &userIdentity{user: u}
}

func (i *userIdentity) ID() string     { return i.user.ID.String() }
func (i *userIdentity) Handle() string { return i.user.Handle }
func (i *userIdentity) Email() string  { return i.user.Email }
func (i *userIdentity) Role() string   { return string(i.user.Role) }

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
