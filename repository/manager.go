package repository

import (
	"context"

	"github.com/goliatone/go-chat-auth"
	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Manager owns the Bun handle and the stores built on it.
type Manager struct {
	db    *bun.DB
	users *Users
}

// NewManager returns a Manager for db.
func NewManager(db *bun.DB) *Manager {
	return &Manager{
		db:    db,
		users: NewUsers(db),
	}
}

// Validate reports whether the manager is usable.
func (m *Manager) Validate() error {
	if m.db == nil {
		return errors.New("repository db should be initialized", errors.CategoryInternal)
	}
	if m.users == nil {
		return errors.New("repository users should be initialized", errors.CategoryInternal)
	}
	return nil
}

// Users returns the credential store.
func (m *Manager) Users() *Users {
	return m.users
}

// CreateSchema creates the tables used by the sign-in core if missing.
func (m *Manager) CreateSchema(ctx context.Context) error {
	_, err := m.db.NewCreateTable().
		Model((*auth.User)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to create users table")
	}
	return nil
}
