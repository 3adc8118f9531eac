package auth

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// ProvisionResult describes the outcome of EnsureProvisioned.
type ProvisionResult struct {
	UserID  string
	Created bool
	Skipped bool
}

// IdentityProvisioner makes sure a federated identity has a durable
// credential record. It is idempotent: repeated and concurrent calls for the
// same email leave exactly one record.
type IdentityProvisioner struct {
	store            CredentialStore
	cost             int
	deterministicIDs bool
	logger           Logger
}

// NewIdentityProvisioner returns a provisioner backed by store.
func NewIdentityProvisioner(store CredentialStore, snapshot *Snapshot) *IdentityProvisioner {
	return &IdentityProvisioner{
		store:  store,
		cost:   snapshot.BcryptCost(),
		logger: defLogger{},
	}
}

func (p *IdentityProvisioner) WithLogger(logger Logger) *IdentityProvisioner {
	p.logger = normalizeLogger(logger)
	return p
}

// WithDeterministicIDs derives new user ids from the email with hashid, so
// racing inserts for the same email carry the same id.
func (p *IdentityProvisioner) WithDeterministicIDs(enabled bool) *IdentityProvisioner {
	p.deterministicIDs = enabled
	return p
}

// EnsureProvisioned creates a record for candidate unless one already
// exists for its email. Candidates without an email are skipped.
func (p *IdentityProvisioner) EnsureProvisioned(ctx context.Context, candidate *CandidateIdentity) (*ProvisionResult, error) {
	if candidate == nil || candidate.Email == "" {
		return &ProvisionResult{Skipped: true}, nil
	}

	users, err := p.store.LookupByEmail(ctx, candidate.Email)
	if err != nil {
		return nil, provisioningFailed(err, "lookup")
	}
	if len(users) > 0 {
		return &ProvisionResult{UserID: users[0].ID.String()}, nil
	}

	// federated records get a random password nobody knows
	hash, err := HashPassword(RandomPassword(), p.cost)
	if err != nil {
		return nil, provisioningFailed(err, "hash")
	}

	user := &User{
		ID:           uuid.New(),
		Email:        candidate.Email,
		PasswordHash: hash,
		Name:         candidate.Name,
		Image:        candidate.Image,
	}

	if p.deterministicIDs {
		if id, err := hashid.NewUUID(candidate.Email); err == nil {
			user.ID = id
		} else {
			p.logger.Warn("hashid failed, using random id", "error", err)
		}
	}

	stored, created, err := p.store.InsertIfAbsent(ctx, user)
	if err != nil {
		return nil, provisioningFailed(err, "insert")
	}

	if stored == nil {
		stored = user
	}

	if created {
		p.logger.Info("provisioned federated user", "provider", candidate.Provider, "user_id", stored.ID)
	} else {
		p.logger.Debug("federated user already provisioned", "provider", candidate.Provider)
	}

	return &ProvisionResult{UserID: stored.ID.String(), Created: created}, nil
}

func provisioningFailed(err error, step string) error {
	return errors.Wrap(err, ErrProvisioningFailed.Category, ErrProvisioningFailed.Message).
		WithTextCode(ErrProvisioningFailed.TextCode).
		WithMetadata(map[string]any{"step": step})
}
