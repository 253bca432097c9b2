package auth_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/kavyakala/kavyakala/auth"
)

// assertTextCode unwraps the rich error and checks its stable code.
func assertTextCode(t *testing.T, err error, code string) {
	t.Helper()

	var richErr *goerrors.Error
	require.True(t, goerrors.As(err, &richErr), "expected a rich error, got %v", err)
	assert.Equal(t, code, richErr.TextCode)
}

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// MockUsers embeds the repository interface so only the methods a test
// exercises need explicit stubs.
type MockUsers struct {
	repository.Repository[*auth.User]
	mock.Mock
}

func (m *MockUsers) Register(ctx context.Context, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, user)
	return userResult(args)
}

func (m *MockUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, tx, user)
	return userResult(args)
}

func (m *MockUsers) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*auth.User, error) {
	args := m.Called(ctx, id, criteria)
	return userResult(args)
}

func (m *MockUsers) GetByEmailOrHandle(ctx context.Context, key string) (*auth.User, error) {
	args := m.Called(ctx, key)
	return userResult(args)
}

func (m *MockUsers) GetByEmailOrHandleTx(ctx context.Context, tx bun.IDB, key string) (*auth.User, error) {
	args := m.Called(ctx, tx, key)
	return userResult(args)
}

func (m *MockUsers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*auth.User, error) {
	args := m.Called(ctx, tx, email)
	return userResult(args)
}

func (m *MockUsers) GetByUniqueIdentifiersTx(ctx context.Context, tx bun.IDB, email, handle string) (*auth.User, error) {
	args := m.Called(ctx, tx, email, handle)
	return userResult(args)
}

func (m *MockUsers) FindByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*auth.User, error) {
	args := m.Called(ctx, tx, id)
	return userResult(args)
}

func (m *MockUsers) RotateVerificationTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, hash string, expires time.Time) (*auth.User, error) {
	args := m.Called(ctx, tx, id, hash, expires)
	return userResult(args)
}

func (m *MockUsers) ConsumeVerificationTokenTx(ctx context.Context, tx bun.IDB, hash string, now time.Time) (*auth.User, error) {
	args := m.Called(ctx, tx, hash, now)
	return userResult(args)
}

func (m *MockUsers) CountActiveAdmins(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockUsers) CountActiveAdminsTx(ctx context.Context, tx bun.IDB) (int, error) {
	args := m.Called(ctx, tx)
	return args.Int(0), args.Error(1)
}

func (m *MockUsers) AdminExistsTx(ctx context.Context, tx bun.IDB) (bool, error) {
	args := m.Called(ctx, tx)
	return args.Bool(0), args.Error(1)
}

func (m *MockUsers) SetActiveTx(ctx context.Context, tx bun.IDB, id uuid.UUID, active bool) (*auth.User, error) {
	args := m.Called(ctx, tx, id, active)
	return userResult(args)
}

func (m *MockUsers) ChangeRoleTx(ctx context.Context, tx bun.IDB, id uuid.UUID, role auth.UserRole) (*auth.User, error) {
	args := m.Called(ctx, tx, id, role)
	return userResult(args)
}

func (m *MockUsers) DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockUsers) ListUsers(ctx context.Context) ([]*auth.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*auth.User), args.Error(1)
}

func userResult(args mock.Arguments) (*auth.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

// MockRepositoryManager runs transaction bodies against a zero bun.Tx so
// command logic can be tested without a database.
type MockRepositoryManager struct {
	mock.Mock
	users *MockUsers
}

func NewMockRepositoryManager() *MockRepositoryManager {
	return &MockRepositoryManager{users: &MockUsers{}}
}

func (m *MockRepositoryManager) Users() auth.Users {
	return m.users
}

func (m *MockRepositoryManager) MockedUsers() *MockUsers {
	return m.users
}

func (m *MockRepositoryManager) Validate() error { return nil }

func (m *MockRepositoryManager) MustValidate() {}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

// MockMailer records outbound messages.
type MockMailer struct {
	mock.Mock
	Sent []auth.Email
}

func (m *MockMailer) Send(ctx context.Context, email auth.Email) error {
	args := m.Called(ctx, email)
	if args.Error(0) == nil {
		m.Sent = append(m.Sent, email)
	}
	return args.Error(0)
}

type mockConfig struct {
	signingKey string
	expiration int
}

func (c mockConfig) GetSigningKey() string    { return c.signingKey }
func (c mockConfig) GetSigningMethod() string { return "HS256" }
func (c mockConfig) GetContextKey() string    { return "user" }
func (c mockConfig) GetTokenExpiration() int  { return c.expiration }
func (c mockConfig) GetTokenLookup() string   { return "header:Authorization" }
func (c mockConfig) GetAuthScheme() string    { return "Bearer" }
func (c mockConfig) GetIssuer() string        { return "test-issuer" }
func (c mockConfig) GetAudience() []string    { return nil }

func newMockConfig() mockConfig {
	return mockConfig{signingKey: "test-signing-key", expiration: 1}
}
