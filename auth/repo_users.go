package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ConsumeVerificationTokenSQL is the single atomic read-modify-write that
// settles concurrent verification attempts: the row is matched by digest and
// unexpired window, flipped to verified, and cleared in one statement. The
// losing request matches zero rows.
var ConsumeVerificationTokenSQL = `UPDATE "users" AS "usr"
SET
	"is_verified" = TRUE,
	"verification_token_hash" = NULL,
	"verification_token_expires" = NULL
WHERE
	"usr"."deleted_at" IS NULL
AND "usr"."verification_token_hash" = ?
AND "usr"."verification_token_expires" > ?
RETURNING *;`

var RotateVerificationTokenSQL = `UPDATE "users" AS "usr"
SET
	"verification_token_hash" = ?,
	"verification_token_expires" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

var SetUserActiveSQL = `UPDATE "users" AS "usr"
SET
	"is_active" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

var ChangeUserRoleSQL = `UPDATE "users" AS "usr"
SET
	"user_role" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

type Users interface {
	repository.Repository[*User]

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)

	GetByEmailOrHandle(ctx context.Context, key string) (*User, error)
	GetByEmailOrHandleTx(ctx context.Context, tx bun.IDB, key string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	GetByUniqueIdentifiersTx(ctx context.Context, tx bun.IDB, email, handle string) (*User, error)
	FindByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error)

	RotateVerificationTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, hash string, expires time.Time) (*User, error)
	ConsumeVerificationTokenTx(ctx context.Context, tx bun.IDB, hash string, now time.Time) (*User, error)

	CountActiveAdmins(ctx context.Context) (int, error)
	CountActiveAdminsTx(ctx context.Context, tx bun.IDB) (int, error)
	AdminExistsTx(ctx context.Context, tx bun.IDB) (bool, error)

	SetActiveTx(ctx context.Context, tx bun.IDB, id uuid.UUID, active bool) (*User, error)
	ChangeRoleTx(ctx context.Context, tx bun.IDB, id uuid.UUID, role UserRole) (*User, error)
	DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error

	ListUsers(ctx context.Context) ([]*User, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	prepareUserDefaults(user)
	return a.Repository.CreateTx(ctx, tx, user)
}

func (a *users) GetByEmailOrHandle(ctx context.Context, key string) (*User, error) {
	return a.GetByEmailOrHandleTx(ctx, a.db, key)
}

// GetByEmailOrHandleTx resolves a login identifier against the email column
// first, then the handle column. Lookup is case-insensitive via
// normalization, both columns store lowercase.
func (a *users) GetByEmailOrHandleTx(ctx context.Context, tx bun.IDB, key string) (*User, error) {
	normalized := NormalizeKey(key)
	if normalized == "" {
		return nil, repository.NewRecordNotFound()
	}

	for _, column := range []string{"email", "handle"} {
		record := &User{}
		err := tx.NewSelect().
			Model(record).
			Where(fmt.Sprintf("?TableAlias.%s = ?", column), normalized).
			Limit(1).
			Scan(ctx)

		if err != nil {
			if repository.IsRecordNotFound(err) {
				continue
			}
			return nil, err
		}

		return record, nil
	}

	return nil, repository.NewRecordNotFound().
		WithMetadata(map[string]any{
			"identifier": key,
		})
}

func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", NormalizeKey(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": email,
				})
		}
		return nil, err
	}

	return record, nil
}

// GetByUniqueIdentifiersTx finds any record that would collide with the
// given email/handle pair, the precondition check for signup and subadmin
// creation.
func (a *users) GetByUniqueIdentifiersTx(ctx context.Context, tx bun.IDB, email, handle string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", NormalizeKey(email)).
		WhereOr("?TableAlias.handle = ?", NormalizeKey(handle)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email":  email,
					"handle": handle,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) FindByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id": id.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) RotateVerificationTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, hash string, expires time.Time) (*User, error) {
	res, err := a.Repository.RawTx(ctx, tx, RotateVerificationTokenSQL, hash, expires, id.String())
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return res[0], nil
}

func (a *users) ConsumeVerificationTokenTx(ctx context.Context, tx bun.IDB, hash string, now time.Time) (*User, error) {
	res, err := a.Repository.RawTx(ctx, tx, ConsumeVerificationTokenSQL, hash, now)
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, ErrVerificationTokenInvalid
	}

	return res[0], nil
}

func (a *users) CountActiveAdmins(ctx context.Context) (int, error) {
	return a.CountActiveAdminsTx(ctx, a.db)
}

func (a *users) CountActiveAdminsTx(ctx context.Context, tx bun.IDB) (int, error) {
	return tx.NewSelect().
		Model((*User)(nil)).
		Where("?TableAlias.user_role = ?", RoleAdmin).
		Where("?TableAlias.is_active = ?", true).
		Count(ctx)
}

func (a *users) AdminExistsTx(ctx context.Context, tx bun.IDB) (bool, error) {
	return tx.NewSelect().
		Model((*User)(nil)).
		Where("?TableAlias.user_role = ?", RoleAdmin).
		Exists(ctx)
}

func (a *users) SetActiveTx(ctx context.Context, tx bun.IDB, id uuid.UUID, active bool) (*User, error) {
	res, err := a.Repository.RawTx(ctx, tx, SetUserActiveSQL, active, id.String())
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return res[0], nil
}

func (a *users) ChangeRoleTx(ctx context.Context, tx bun.IDB, id uuid.UUID, role UserRole) (*User, error) {
	res, err := a.Repository.RawTx(ctx, tx, ChangeUserRoleSQL, string(role), id.String())
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return res[0], nil
}

func (a *users) DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	res, err := tx.NewDelete().
		Model((*User)(nil)).
		Where("?TableAlias.id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

func (a *users) ListUsers(ctx context.Context) ([]*User, error) {
	var records []*User
	err := a.db.NewSelect().
		Model(&records).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return records, nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	record.Email = NormalizeKey(record.Email)
	record.Handle = NormalizeKey(record.Handle)

	if record.Role == "" {
		record.Role = RoleUser
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
