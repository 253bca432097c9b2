package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type ChangeUserRoleMessage struct {
	UserID     uuid.UUID `json:"user_id"`
	Role       UserRole  `json:"role"`
	OnResponse func(r *ChangeUserRoleResponse)
}

func (e ChangeUserRoleMessage) Type() string { return "admin.change_user_role" }

type ChangeUserRoleResponse struct {
	User *PublicUser `json:"user,omitempty"`
}

// ChangeUserRoleHandler reassigns an account between the user and subadmin
// roles. Admin is never an assignable target, and demoting the last active
// admin is rejected.
type ChangeUserRoleHandler struct {
	repo RepositoryManager
}

func NewChangeUserRoleHandler(repo RepositoryManager) *ChangeUserRoleHandler {
	return &ChangeUserRoleHandler{repo: repo}
}

func (h *ChangeUserRoleHandler) Execute(ctx context.Context, event ChangeUserRoleMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during role change",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ChangeUserRoleHandler) execute(ctx context.Context, event ChangeUserRoleMessage) error {
	if !event.Role.IsAssignable() {
		return ErrRoleNotAllowed
	}

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

		if err := ensureAdminRemovable(ctx, tx, h.repo.Users(), target); err != nil {
			return err
		}

		if user, err = h.repo.Users().ChangeRoleTx(ctx, tx, target.ID, event.Role); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to change user role")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "role change transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(&ChangeUserRoleResponse{User: user.Public()})
	}

	return nil
}
