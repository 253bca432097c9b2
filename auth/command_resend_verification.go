package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type ResendVerificationMessage struct {
	Email      string `json:"email"`
	OnResponse func(r *ResendVerificationResponse)
}

func (e ResendVerificationMessage) Type() string { return "auth.resend_verification" }

type ResendVerificationResponse struct {
	EmailSent bool `json:"email_sent"`
}

// ResendVerificationHandler rotates the verification token of an unverified
// account and re-sends the confirmation email. Previous links die with the
// rotation.
type ResendVerificationHandler struct {
	repo       RepositoryManager
	mailer     Mailer
	apiBaseURL string
	logger     Logger
}

func NewResendVerificationHandler(repo RepositoryManager, mailer Mailer, apiBaseURL string, logger Logger) *ResendVerificationHandler {
	if logger == nil {
		logger = defLogger{}
	}
	return &ResendVerificationHandler{
		repo:       repo,
		mailer:     mailer,
		apiBaseURL: apiBaseURL,
		logger:     logger,
	}
}

func (h *ResendVerificationHandler) Execute(ctx context.Context, event ResendVerificationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during verification resend",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ResendVerificationHandler) execute(ctx context.Context, event ResendVerificationMessage) error {
	user := &User{}

	var token VerificationToken

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := h.repo.Users().GetByEmailTx(ctx, tx, event.Email)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrUserNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up user")
		}

		if existing.IsVerified {
			return ErrAlreadyVerified
		}

		if token, err = GenerateVerificationToken(); err != nil {
			return err
		}

		if user, err = h.repo.Users().RotateVerificationTokenTx(ctx, tx, existing.ID, token.Hash, token.ExpiresAt); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to rotate verification token")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "verification resend transaction failed")
	}

	resp := &ResendVerificationResponse{}

	link := BuildVerificationLink(h.apiBaseURL, token.Raw)
	if err := h.mailer.Send(ctx, NewVerificationEmail(user, link)); err != nil {
		h.logger.Error("Resend verification email dispatch failed", "email", user.Email, "error", err)
	} else {
		resp.EmailSent = true
	}

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
