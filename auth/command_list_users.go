package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type ListUsersMessage struct {
	OnResponse func(r *ListUsersResponse)
}

func (e ListUsersMessage) Type() string { return "admin.list_users" }

type ListUsersResponse struct {
	Users []*PublicUser `json:"users"`
}

// ListUsersHandler returns every account newest first, projected to the
// public shape.
type ListUsersHandler struct {
	repo RepositoryManager
}

func NewListUsersHandler(repo RepositoryManager) *ListUsersHandler {
	return &ListUsersHandler{repo: repo}
}

func (h *ListUsersHandler) Execute(ctx context.Context, event ListUsersMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user listing",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ListUsersHandler) execute(ctx context.Context, event ListUsersMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	records, err := h.repo.Users().ListUsers(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list users")
	}

	users := make([]*PublicUser, 0, len(records))
	for _, record := range records {
		users = append(users, record.Public())
	}

	if event.OnResponse != nil {
		event.OnResponse(&ListUsersResponse{Users: users})
	}

	return nil
}
