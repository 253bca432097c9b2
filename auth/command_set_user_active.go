package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type SetUserActiveMessage struct {
	UserID     uuid.UUID `json:"user_id"`
	Active     bool      `json:"active"`
	OnResponse func(r *SetUserActiveResponse)
}

func (e SetUserActiveMessage) Type() string { return "admin.set_user_active" }

type SetUserActiveResponse struct {
	User *PublicUser `json:"user,omitempty"`
}

// SetUserActiveHandler flips the active flag on an account. Deactivating the
// last active admin is rejected inside the same transaction as the write.
type SetUserActiveHandler struct {
	repo RepositoryManager
}

func NewSetUserActiveHandler(repo RepositoryManager) *SetUserActiveHandler {
	return &SetUserActiveHandler{repo: repo}
}

func (h *SetUserActiveHandler) Execute(ctx context.Context, event SetUserActiveMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user activation change",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *SetUserActiveHandler) execute(ctx context.Context, event SetUserActiveMessage) error {
	user := &User{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		target, err := h.repo.Users().FindByIDTx(ctx, tx, event.UserID)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrUserNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up user")
		}

		if !event.Active {
			if err := ensureAdminRemovable(ctx, tx, h.repo.Users(), target); err != nil {
				return err
			}
		}

		if user, err = h.repo.Users().SetActiveTx(ctx, tx, target.ID, event.Active); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user activation")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "user activation transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(&SetUserActiveResponse{User: user.Public()})
	}

	return nil
}
