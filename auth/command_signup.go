package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type SignupMessage struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Handle     string `json:"handle"`
	Password   string `json:"password"`
	OnResponse func(r *SignupResponse)
}

func (e SignupMessage) Type() string { return "auth.signup" }

type SignupResponse struct {
	User              *PublicUser `json:"user,omitempty"`
	EmailSent         bool        `json:"email_sent"`
	NeedsVerification bool        `json:"needs_verification"`
	Resent            bool        `json:"resent"`
}

// SignupHandler registers a new unverified account and emails its
// verification link. A repeat signup against an unverified account rotates
// the token and re-sends instead of failing.
type SignupHandler struct {
	repo       RepositoryManager
	mailer     Mailer
	apiBaseURL string
	logger     Logger
}

func NewSignupHandler(repo RepositoryManager, mailer Mailer, apiBaseURL string, logger Logger) *SignupHandler {
	if logger == nil {
		logger = defLogger{}
	}
	return &SignupHandler{
		repo:       repo,
		mailer:     mailer,
		apiBaseURL: apiBaseURL,
		logger:     logger,
	}
}

func (h *SignupHandler) Execute(ctx context.Context, event SignupMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during signup",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *SignupHandler) execute(ctx context.Context, event SignupMessage) error {
	user := &User{}
	resp := &SignupResponse{}

	var token VerificationToken

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := h.repo.Users().GetByUniqueIdentifiersTx(ctx, tx, event.Email, event.Handle)
		if err != nil && !repository.IsRecordNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check existing identifiers")
		}

		if existing != nil && err == nil {
			if existing.IsVerified {
				return ErrIdentifierTaken
			}

			// Unverified duplicate: rotate the token and re-send rather
			// than leak which identifier collided.
			if token, err = GenerateVerificationToken(); err != nil {
				return err
			}

			if user, err = h.repo.Users().RotateVerificationTokenTx(ctx, tx, existing.ID, token.Hash, token.ExpiresAt); err != nil {
				return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to rotate verification token")
			}

			resp.NeedsVerification = true
			resp.Resent = true
			return nil
		}

		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		if token, err = GenerateVerificationToken(); err != nil {
			return err
		}

		user.Name = event.Name
		user.Email = event.Email
		user.Handle = event.Handle
		user.PasswordHash = hash
		user.Role = RoleUser
		user.IsActive = true
		user.IsVerified = false
		user.SetVerificationToken(token.Hash, token.ExpiresAt)

		if user, err = h.repo.Users().RegisterTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user").
				WithTextCode(ErrIdentifierTaken.TextCode)
		}

		resp.NeedsVerification = true
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "signup transaction failed")
	}

	// Mail dispatch happens outside the transaction. A failed send leaves
	// the stored token usable through resend-verification.
	link := BuildVerificationLink(h.apiBaseURL, token.Raw)
	if err := h.mailer.Send(ctx, NewVerificationEmail(user, link)); err != nil {
		h.logger.Error("Signup verification email dispatch failed", "email", user.Email, "error", err)
	} else {
		resp.EmailSent = true
	}

	resp.User = user.Public()

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
