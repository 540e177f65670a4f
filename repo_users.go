package userauth

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the credential store surface the core needs: lookup by username
// and insert-if-absent, plus the login tracking updates.
type Users interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	Register(ctx context.Context, user *User) (*User, error)
	TrackAttemptedLogin(ctx context.Context, user *User) error
	TrackSuccessfulLogin(ctx context.Context, user *User) error
}

type users struct {
	db bun.IDB
}

var _ Users = (*users)(nil)

// NewUsersRepository returns a bun backed Users store.
func NewUsersRepository(db bun.IDB) Users {
	return &users{db: db}
}

func (a *users) GetByUsername(ctx context.Context, username string) (*User, error) {
	record := &User{}

	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.username = ?", username).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, ErrIdentityNotFound
		}
		return nil, storeFault(err, "failed to look up user by username")
	}

	return record, nil
}

// Register inserts the record, assigning the id. Uniqueness is enforced by
// the store's unique constraint, not by a prior lookup: a racing duplicate
// surfaces here as a constraint violation and is reported as a conflict.
func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	if _, err := a.db.NewInsert().Model(user).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, storeFault(err, "failed to insert user")
	}

	return user, nil
}

// TrackAttemptedLogin increments the failed login counter and stamps the
// attempt time.
func (a *users) TrackAttemptedLogin(ctx context.Context, user *User) error {
	now := time.Now()
	user.LoginAttempts = user.LoginAttempts + 1
	user.LoginAttemptAt = &now

	_, err := a.db.NewUpdate().
		Model(user).
		Column("login_attempts", "login_attempt_at").
		WherePK().
		Exec(ctx)

	if err != nil {
		return storeFault(err, "failed to track attempted login")
	}
	return nil
}

// TrackSuccessfulLogin resets the failed login counter.
func (a *users) TrackSuccessfulLogin(ctx context.Context, user *User) error {
	now := time.Now()
	user.LoginAttempts = 0
	user.LoginAttemptAt = nil
	user.LoggedInAt = &now

	_, err := a.db.NewUpdate().
		Model(user).
		Column("login_attempts", "login_attempt_at", "loggedin_at").
		WherePK().
		Exec(ctx)

	if err != nil {
		return storeFault(err, "failed to track successful login")
	}
	return nil
}

func storeFault(err error, msg string) error {
	return errors.Wrap(err, ErrStoreUnavailable.Category, msg).
		WithTextCode(ErrStoreUnavailable.TextCode)
}

// isUniqueViolation matches the constraint error text of the supported
// drivers (sqlite, postgres, mysql).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "constraint failed: users.username") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
