package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type DeleteUserMessage struct {
	UserID     uuid.UUID `json:"user_id"`
	OnResponse func(r *DeleteUserResponse)
}

func (e DeleteUserMessage) Type() string { return "admin.delete_user" }

type DeleteUserResponse struct {
	Deleted bool      `json:"deleted"`
	UserID  uuid.UUID `json:"id"`
}

// DeleteUserHandler removes an account. The last active admin cannot be
// deleted.
type DeleteUserHandler struct {
	repo RepositoryManager
}

func NewDeleteUserHandler(repo RepositoryManager) *DeleteUserHandler {
	return &DeleteUserHandler{repo: repo}
}

func (h *DeleteUserHandler) Execute(ctx context.Context, event DeleteUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user deletion",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *DeleteUserHandler) execute(ctx context.Context, event DeleteUserMessage) error {
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

		if err := ensureAdminRemovable(ctx, tx, h.repo.Users(), target); err != nil {
			return err
		}

		if err := h.repo.Users().DeleteByIDTx(ctx, tx, target.ID); err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrUserNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete user")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "user deletion transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(&DeleteUserResponse{Deleted: true, UserID: event.UserID})
	}

	return nil
}
