package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/goliatone/go-errors"
)

// VerificationTokenTTL is the absolute lifetime of an email verification
// token from issuance.
const VerificationTokenTTL = 24 * time.Hour

// verificationTokenBytes yields a 256-bit raw secret.
const verificationTokenBytes = 32

// VerificationToken pairs the raw secret that travels in the emailed link
// with the digest that is persisted. The raw value is never stored.
type VerificationToken struct {
	Raw       string
	Hash      string
	ExpiresAt time.Time
}

// GenerateVerificationToken mints a fresh single-use token with a 24h
// expiry. Only the hash side is meant to touch the database.
func GenerateVerificationToken() (VerificationToken, error) {
	buf := make([]byte, verificationTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return VerificationToken{}, errors.Wrap(err, errors.CategoryInternal, "failed to generate verification token")
	}

	raw := hex.EncodeToString(buf)

	return VerificationToken{
		Raw:       raw,
		Hash:      HashVerificationToken(raw),
		ExpiresAt: time.Now().Add(VerificationTokenTTL),
	}, nil
}

// HashVerificationToken returns the hex sha256 digest of a raw token, the
// only form in which tokens are persisted or looked up.
func HashVerificationToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
