package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-chat-auth"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var _ auth.CredentialStore = (*Users)(nil)

// Users implements auth.CredentialStore using Bun.
type Users struct {
	db bun.IDB
}

// NewUsers creates a new users store.
func NewUsers(db bun.IDB) *Users {
	return &Users{db: db}
}

// LookupByEmail implements auth.CredentialStore.
func (r *Users) LookupByEmail(ctx context.Context, email string) ([]*auth.User, error) {
	var users []*auth.User
	err := r.db.NewSelect().
		Model(&users).
		Where("?TableAlias.email = ?", email).
		OrderExpr("?TableAlias.created_at ASC").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []*auth.User{}, nil
		}
		return nil, err
	}
	return users, nil
}

// FindByID returns the user with the given id.
func (r *Users) FindByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	user := new(auth.User)
	err := r.db.NewSelect().
		Model(user).
		Where("?TableAlias.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// InsertIfAbsent implements auth.CredentialStore. The insert skips on any
// unique conflict, email or a derived id; the winning record is then read
// back by email.
func (r *Users) InsertIfAbsent(ctx context.Context, user *auth.User) (*auth.User, bool, error) {
	if user == nil || user.Email == "" {
		return nil, false, goerrors.New("user email is required", goerrors.CategoryBadInput)
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	res, err := r.db.NewInsert().
		Model(user).
		On("CONFLICT DO NOTHING").
		Returning("NULL").
		Exec(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, false, err
	}

	if err == nil {
		if n, rerr := res.RowsAffected(); rerr == nil && n == 1 {
			return user, true, nil
		}
	}

	existing, err := r.LookupByEmail(ctx, user.Email)
	if err != nil {
		return nil, false, err
	}
	if len(existing) == 0 {
		// the conflict was on the id of a different email
		return nil, false, ErrInsertConflict
	}
	return existing[0], false, nil
}
