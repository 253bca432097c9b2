package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type CreateSubadminMessage struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Handle     string `json:"handle"`
	Password   string `json:"password"`
	OnResponse func(r *CreateSubadminResponse)
}

func (e CreateSubadminMessage) Type() string { return "admin.create_subadmin" }

type CreateSubadminResponse struct {
	User *PublicUser `json:"user,omitempty"`
}

// CreateSubadminHandler provisions a subadmin account. Admin-created
// accounts skip the email verification cycle.
type CreateSubadminHandler struct {
	repo RepositoryManager
}

func NewCreateSubadminHandler(repo RepositoryManager) *CreateSubadminHandler {
	return &CreateSubadminHandler{repo: repo}
}

func (h *CreateSubadminHandler) Execute(ctx context.Context, event CreateSubadminMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during subadmin creation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *CreateSubadminHandler) execute(ctx context.Context, event CreateSubadminMessage) error {
	user := &User{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := h.repo.Users().GetByUniqueIdentifiersTx(ctx, tx, event.Email, event.Handle)
		if err == nil {
			return ErrIdentifierTaken
		}
		if !repository.IsRecordNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check existing identifiers")
		}

		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.Name = event.Name
		user.Email = event.Email
		user.Handle = event.Handle
		user.PasswordHash = hash
		user.Role = RoleSubadmin
		user.IsActive = true
		user.IsVerified = true

		if user, err = h.repo.Users().RegisterTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create subadmin").
				WithTextCode(ErrIdentifierTaken.TextCode)
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "subadmin creation transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(&CreateSubadminResponse{User: user.Public()})
	}

	return nil
}
