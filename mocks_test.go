package userauth_test

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	userauth "github.com/quillback/go-userauth"
)

// MockIdentity implements userauth.Identity for testing
type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Username() string {
	args := m.Called()
	return args.String(0)
}

// MockIdentityProvider implements userauth.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (userauth.Identity, error) {
	args := m.Called(ctx, identifier, password)
	if identity, ok := args.Get(0).(userauth.Identity); ok {
		return identity, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (userauth.Identity, error) {
	args := m.Called(ctx, identifier)
	if identity, ok := args.Get(0).(userauth.Identity); ok {
		return identity, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockUserTracker implements userauth.UserTracker
type MockUserTracker struct {
	mock.Mock
}

func (m *MockUserTracker) GetByUsername(ctx context.Context, username string) (*userauth.User, error) {
	args := m.Called(ctx, username)
	if user, ok := args.Get(0).(*userauth.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserTracker) TrackAttemptedLogin(ctx context.Context, user *userauth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserTracker) TrackSuccessfulLogin(ctx context.Context, user *userauth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockLogger implements userauth.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

// testConfig satisfies userauth.Config without touching the environment
type testConfig struct {
	secret   string
	lifetime time.Duration
}

func (c testConfig) GetSigningKey() string                { return c.secret }
func (c testConfig) GetSigningMethod() string             { return "HS256" }
func (c testConfig) GetContextKey() string                { return "user" }
func (c testConfig) GetCookieName() string                { return "token" }
func (c testConfig) GetTokenLookup() string               { return "cookie:token,header:Authorization" }
func (c testConfig) GetAuthScheme() string                { return "Bearer" }
func (c testConfig) GetSessionLifetime() time.Duration    { return c.lifetime }
func (c testConfig) GetIssuer() string                    { return "test-issuer" }
func (c testConfig) GetAddress() string                   { return ":0" }
func (c testConfig) GetDatabaseDSN() string               { return "" }

var testDBSeq atomic.Int64

// newTestDB opens a per-call in-memory sqlite store with the users table
// created. MaxOpenConns(1) keeps concurrent writers serialized so constraint
// violations surface instead of lock errors.
func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"), testDBSeq.Add(1))
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = db.NewCreateTable().
		Model((*userauth.User)(nil)).
		IfNotExists().
		Exec(context.Background())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}
