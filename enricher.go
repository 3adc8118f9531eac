package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenEnricher turns a candidate identity into session claims and carries
// existing claims forward on later reads.
type TokenEnricher struct {
	store    CredentialStore
	snapshot *Snapshot
	logger   Logger
	now      func() time.Time
}

// NewTokenEnricher returns an enricher backed by store.
func NewTokenEnricher(store CredentialStore, snapshot *Snapshot) *TokenEnricher {
	return &TokenEnricher{
		store:    store,
		snapshot: snapshot,
		logger:   defLogger{},
		now:      time.Now,
	}
}

func (e *TokenEnricher) WithLogger(logger Logger) *TokenEnricher {
	e.logger = normalizeLogger(logger)
	return e
}

// WithClock overrides the time source used for iat and exp.
func (e *TokenEnricher) WithClock(now func() time.Time) *TokenEnricher {
	if now != nil {
		e.now = now
	}
	return e
}

// Mint builds claims for a fresh sign-in. Federated candidates without an
// id are resolved by email; if no record exists Mint fails and no token may
// be issued.
func (e *TokenEnricher) Mint(ctx context.Context, candidate *CandidateIdentity) (*JWTClaims, error) {
	if candidate == nil {
		return nil, ErrMissingSubject
	}

	id := candidate.ID
	accountType := candidate.AccountType.OrDefault()

	if candidate.Federated() && id == "" {
		users, err := e.store.LookupByEmail(ctx, candidate.Email)
		if err != nil {
			e.logger.Error("mint lookup failed", "provider", candidate.Provider, "error", err)
			return nil, ErrMissingSubject
		}
		if len(users) == 0 {
			e.logger.Warn("mint found no durable record for federated identity", "provider", candidate.Provider)
			return nil, ErrMissingSubject
		}
		id = users[0].ID.String()
		accountType = AccountTypeRegular
	}

	if id == "" {
		return nil, ErrMissingSubject
	}

	now := e.now()
	return &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    e.snapshot.Issuer(),
			Subject:   id,
			Audience:  e.snapshot.Audience(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(e.snapshot.TokenTTL())),
		},
		UID:     id,
		Type:    accountType,
		Email:   candidate.Email,
		Name:    candidate.Name,
		Picture: candidate.Image,
	}, nil
}

// CarryForward returns the claims of an existing session unchanged. It
// never reads the store.
func (e *TokenEnricher) CarryForward(claims *JWTClaims) (*JWTClaims, error) {
	if claims == nil || claims.UserID() == "" {
		return nil, ErrMissingSubject
	}
	return claims.Clone(), nil
}
