package auth

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Registrar creates password credential records. Registration screens live
// outside this package; this is the store-facing half.
type Registrar struct {
	store  CredentialStore
	cost   int
	logger Logger
}

// NewRegistrar returns a Registrar backed by store.
func NewRegistrar(store CredentialStore, snapshot *Snapshot) *Registrar {
	return &Registrar{
		store:  store,
		cost:   snapshot.BcryptCost(),
		logger: defLogger{},
	}
}

func (r *Registrar) WithLogger(logger Logger) *Registrar {
	r.logger = normalizeLogger(logger)
	return r
}

// Register stores a new user with a bcrypt hash of password. It returns
// ErrEmailTaken when the email is already present.
func (r *Registrar) Register(ctx context.Context, email, password string) (*User, error) {
	attempt := PasswordAttempt{Email: NormalizeEmail(email), Password: password}
	if err := attempt.Validate(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(attempt.Password, r.cost)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	user, created, err := r.store.InsertIfAbsent(ctx, &User{
		ID:           uuid.New(),
		Email:        attempt.Email,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "could not create user")
	}
	if !created {
		return nil, ErrEmailTaken
	}

	r.logger.Info("registered user", "user_id", user.ID)
	return user, nil
}
