package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// ensureAdminRemovable rejects any mutation that would leave the platform
// without an active admin. Must run inside the same transaction as the
// mutation it protects so the count and the write are serialized.
func ensureAdminRemovable(ctx context.Context, tx bun.IDB, users Users, target *User) error {
	if target == nil || target.Role != RoleAdmin {
		return nil
	}

	count, err := users.CountActiveAdminsTx(ctx, tx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to count active admins")
	}

	if count <= 1 {
		return ErrLastActiveAdmin
	}

	return nil
}
