package auth

import (
	"fmt"
	"strings"
)

// BuildVerificationLink returns the absolute URL a recipient follows to
// confirm their address. The raw token rides in the path, never the stored
// digest.
func BuildVerificationLink(apiBaseURL, rawToken string) string {
	return fmt.Sprintf("%s/api/auth/verify/%s", strings.TrimRight(apiBaseURL, "/"), rawToken)
}

// NewVerificationEmail composes the confirmation message for a freshly
// minted token.
func NewVerificationEmail(user *User, link string) Email {
	return Email{
		To:      user.Email,
		Subject: "Verify your email",
		Text:    fmt.Sprintf("Welcome! Please verify your email: %s", link),
		HTML:    verificationEmailHTML(user.Name, link),
	}
}

func verificationEmailHTML(name, link string) string {
	if name == "" {
		name = "there"
	}

	return fmt.Sprintf(`
  <div style="font-family:Arial,Helvetica,sans-serif; line-height:1.6; color:#222;">
    <h2>Welcome to Kavyakala, %[1]s!</h2>
    <p>Please confirm your email address to activate your account.</p>
    <p style="margin:24px 0;">
      <a href="%[2]s"
         style="background:#111827;color:#fff;padding:12px 18px;border-radius:6px;text-decoration:none;display:inline-block">
         Verify Email
      </a>
    </p>
    <p>If the button does not work, paste this link into your browser:</p>
    <p style="word-break:break-all;"><a href="%[2]s">%[2]s</a></p>
    <p>This link will expire in 24 hours.</p>
    <hr />
    <p style="font-size:12px;color:#555;">If you did not request this, ignore this email.</p>
  </div>`, name, link)
}
