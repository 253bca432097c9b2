package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

type SeedAdminMessage struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Handle     string `json:"handle"`
	Password   string `json:"password"`
	OnResponse func(r *SeedAdminResponse)
}

func (e SeedAdminMessage) Type() string { return "admin.seed" }

type SeedAdminResponse struct {
	User    *PublicUser `json:"user,omitempty"`
	Created bool        `json:"created"`
}

// SeedAdminHandler bootstraps the initial admin account. A no-op when any
// admin record already exists, so it is safe to run on every startup.
type SeedAdminHandler struct {
	repo   RepositoryManager
	logger Logger
}

func NewSeedAdminHandler(repo RepositoryManager, logger Logger) *SeedAdminHandler {
	if logger == nil {
		logger = defLogger{}
	}
	return &SeedAdminHandler{repo: repo, logger: logger}
}

func (h *SeedAdminHandler) Execute(ctx context.Context, event SeedAdminMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during admin seeding",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *SeedAdminHandler) execute(ctx context.Context, event SeedAdminMessage) error {
	user := &User{}
	resp := &SeedAdminResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := h.repo.Users().AdminExistsTx(ctx, tx)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for existing admin")
		}

		if exists {
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

		user.Name = event.Name
		user.Email = event.Email
		user.Handle = event.Handle
		user.PasswordHash = hash
		user.Role = RoleAdmin
		user.IsActive = true
		user.IsVerified = true

		// Deterministic ID keeps re-seeded environments stable.
		if id, err := hashid.NewUUID(event.Email); err == nil {
			user.ID = id
		} else {
			h.logger.Warn("Falling back to a random admin ID", "error", err)
		}

		if user, err = h.repo.Users().RegisterTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create admin")
		}

		resp.Created = true
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "admin seeding transaction failed")
	}

	if resp.Created {
		resp.User = user.Public()
		h.logger.Info("Admin account created", "email", user.Email)
	} else {
		h.logger.Info("Admin account already present, seeding skipped")
	}

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}
