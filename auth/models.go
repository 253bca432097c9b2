package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the credential record backing every account on the platform.
// Email and handle are stored lowercase and are interchangeable login
// identifiers. The verification token pair is either both set (a cycle
// is pending) or both cleared.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID                       uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name                     string     `bun:"name,notnull" json:"name,omitempty"`
	Email                    string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Handle                   string     `bun:"handle,notnull,unique" json:"handle,omitempty"`
	Role                     UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	PasswordHash             string     `bun:"password_hash,notnull" json:"-"`
	IsActive                 bool       `bun:"is_active" json:"is_active"`
	IsVerified               bool       `bun:"is_verified" json:"is_verified"`
	VerificationTokenHash    string     `bun:"verification_token_hash,nullzero" json:"-"`
	VerificationTokenExpires *time.Time `bun:"verification_token_expires,nullzero" json:"-"`
	CreatedAt                *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt                *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt                *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"-"`
}

// HasPendingVerification reports whether a verification cycle is outstanding.
func (u *User) HasPendingVerification() bool {
	return u.VerificationTokenHash != "" && u.VerificationTokenExpires != nil
}

// SetVerificationToken stores a new token digest, replacing any previous one.
func (u *User) SetVerificationToken(hash string, expires time.Time) {
	u.VerificationTokenHash = hash
	u.VerificationTokenExpires = &expires
}

// ClearVerificationToken drops the stored digest pair.
func (u *User) ClearVerificationToken() {
	u.VerificationTokenHash = ""
	u.VerificationTokenExpires = nil
}

// PublicUser is the projection safe to serialize outward. It never carries
// the password hash or verification token fields.
type PublicUser struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Handle     string     `json:"handle"`
	Role       UserRole   `json:"role"`
	IsActive   bool       `json:"is_active"`
	IsVerified bool       `json:"is_verified"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

// Public returns the non-sensitive projection of the user.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Handle:     u.Handle,
		Role:       u.Role,
		IsActive:   u.IsActive,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}

// NormalizeKey lowercases and trims a login identifier. Email and handle
// uniqueness is case-insensitive.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
