package auth

import (
	"context"
	"time"
)

// SignInResult is returned by a successful sign-in.
type SignInResult struct {
	Token   string
	Claims  *JWTClaims
	Session *Session
}

// Auther wires the sign-in components together and exposes the two entry
// points the application uses: SignIn and GetSession.
type Auther struct {
	verifier     *CredentialVerifier
	provisioner  *IdentityProvisioner
	enricher     *TokenEnricher
	tokenService *TokenService
	password     *PasswordAdapter
	federated    *FederatedAdapter
	logger       Logger
	activitySink ActivitySink
}

// NewAuthenticator returns an Auther backed by store. Federated attempts
// are accepted from the listed providers, google when none are given.
func NewAuthenticator(store CredentialStore, snapshot *Snapshot, providers ...ProviderTag) *Auther {
	if len(providers) == 0 {
		providers = []ProviderTag{ProviderGoogle}
	}

	verifier := NewCredentialVerifier(store, snapshot)

	return &Auther{
		verifier:     verifier,
		provisioner:  NewIdentityProvisioner(store, snapshot),
		enricher:     NewTokenEnricher(store, snapshot),
		tokenService: NewTokenService(snapshot),
		password:     NewPasswordAdapter(verifier),
		federated:    NewFederatedAdapter(providers...),
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = normalizeLogger(logger)
	s.verifier.WithLogger(s.logger)
	s.provisioner.WithLogger(s.logger)
	s.enricher.WithLogger(s.logger)
	s.tokenService.WithLogger(s.logger)
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithPasswordComparer replaces the bcrypt comparer used by the verifier.
func (s *Auther) WithPasswordComparer(comparer PasswordComparer) *Auther {
	s.verifier.WithComparer(comparer)
	return s
}

// WithDeterministicIDs toggles hashid derived ids for provisioned users.
func (s *Auther) WithDeterministicIDs(enabled bool) *Auther {
	s.provisioner.WithDeterministicIDs(enabled)
	return s
}

// WithClock overrides the time source used when minting tokens.
func (s *Auther) WithClock(now func() time.Time) *Auther {
	s.enricher.WithClock(now)
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() *TokenService {
	return s.tokenService
}

// SignIn authenticates attempt and returns a signed session token. Every
// failure is reported as ErrSignInRejected.
func (s *Auther) SignIn(ctx context.Context, attempt SignInAttempt) (*SignInResult, error) {
	attempt = NormalizeAttempt(attempt)
	if attempt == nil {
		return nil, s.reject(ctx, "", "nil attempt", nil)
	}

	provider := attempt.Provider()

	if err := attempt.Validate(); err != nil {
		// keep the cost of a malformed password attempt equal to a real one
		if pa, ok := attempt.(PasswordAttempt); ok {
			s.verifier.Reject(ctx, pa.Email, pa.Password)
		}
		return nil, s.reject(ctx, provider, "invalid attempt", err)
	}

	adapter := s.adapterFor(attempt)
	if adapter == nil {
		return nil, s.reject(ctx, provider, "unsupported provider", nil)
	}

	candidate, err := adapter.Resolve(ctx, attempt)
	if err != nil {
		return nil, s.reject(ctx, provider, "resolve failed", err)
	}

	if candidate.Federated() {
		res, err := s.provisioner.EnsureProvisioned(ctx, candidate)
		if err != nil {
			// not fatal: Mint re-resolves the record and fails closed
			s.logger.Error("federated provisioning failed", "provider", provider, "error", err)
		} else if res.Created {
			s.emit(ctx, ActivityEventProvisioned, provider, res.UserID, map[string]any{
				"email": candidate.Email,
			})
		}
	}

	claims, err := s.enricher.Mint(ctx, candidate)
	if err != nil {
		return nil, s.reject(ctx, provider, "mint failed", err)
	}

	token, err := s.tokenService.Sign(claims)
	if err != nil {
		return nil, s.reject(ctx, provider, "sign failed", err)
	}

	s.emit(ctx, ActivityEventSignInSuccess, provider, claims.UserID(), nil)

	return &SignInResult{
		Token:   token,
		Claims:  claims,
		Session: Project(claims),
	}, nil
}

// GetSession validates token and projects its claims. It never reads the
// credential store.
func (s *Auther) GetSession(ctx context.Context, token string) (*Session, error) {
	claims, err := s.ClaimsFromToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return Project(claims), nil
}

// ClaimsFromToken validates token and returns the carried-forward claims.
func (s *Auther) ClaimsFromToken(ctx context.Context, token string) (*JWTClaims, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	claims, err := s.tokenService.Validate(token)
	if err != nil {
		s.logger.Debug("session token rejected", "error", err)
		s.emit(ctx, ActivityEventSessionRejected, "", "", map[string]any{
			"expired": IsTokenExpiredError(err),
		})
		return nil, ErrNoSession
	}

	carried, err := s.enricher.CarryForward(claims)
	if err != nil {
		return nil, ErrNoSession
	}
	return carried, nil
}

func (s *Auther) adapterFor(attempt SignInAttempt) ProviderAdapter {
	switch a := attempt.(type) {
	case PasswordAttempt:
		return s.password
	case FederatedAttempt:
		if s.federated.Supports(a.Tag) {
			return s.federated
		}
	}
	return nil
}

func (s *Auther) reject(ctx context.Context, provider ProviderTag, reason string, err error) error {
	if err != nil {
		s.logger.Debug("sign in rejected", "provider", provider, "reason", reason, "error", err)
	} else {
		s.logger.Debug("sign in rejected", "provider", provider, "reason", reason)
	}
	s.emit(ctx, ActivityEventSignInFailure, provider, "", map[string]any{
		"reason": reason,
	})
	return ErrSignInRejected
}

func (s *Auther) emit(ctx context.Context, eventType ActivityEventType, provider ProviderTag, userID string, metadata map[string]any) {
	event := ActivityEvent{
		EventType:  eventType,
		Provider:   provider,
		UserID:     userID,
		Metadata:   metadata,
		OccurredAt: time.Now(),
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if err := normalizeActivitySink(s.activitySink).Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error", "error", err)
	}
}
