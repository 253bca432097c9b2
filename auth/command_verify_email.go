package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type VerifyEmailMessage struct {
	Token      string `json:"token"`
	OnResponse func(r *VerifyEmailResponse)
}

func (e VerifyEmailMessage) Type() string { return "auth.verify_email" }

type VerifyEmailResponse struct {
	User *PublicUser `json:"user,omitempty"`
	// Token auto-logs the verified account in, mirroring the redirect flow.
	Token string `json:"token,omitempty"`
}

// VerifyEmailHandler consumes a verification token. The lookup, expiry
// check, flag flip and token clearing happen in one statement, so the
// first request wins and every replay sees an invalid token.
type VerifyEmailHandler struct {
	repo   RepositoryManager
	tokens TokenService
}

func NewVerifyEmailHandler(repo RepositoryManager, tokens TokenService) *VerifyEmailHandler {
	return &VerifyEmailHandler{repo: repo, tokens: tokens}
}

func (h *VerifyEmailHandler) Execute(ctx context.Context, event VerifyEmailMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during email verification",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerifyEmailHandler) execute(ctx context.Context, event VerifyEmailMessage) error {
	if event.Token == "" {
		return ErrVerificationTokenInvalid
	}

	user := &User{}
	hash := HashVerificationToken(event.Token)

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		if user, err = h.repo.Users().ConsumeVerificationTokenTx(ctx, tx, hash, time.Now()); err != nil {
			return err
		}
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "email verification transaction failed")
	}

	token, err := h.tokens.Generate(IdentityFromUser(user))
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign session token")
	}

	if event.OnResponse != nil {
		event.OnResponse(&VerifyEmailResponse{User: user.Public(), Token: token})
	}

	return nil
}
