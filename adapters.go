package auth

import "context"

// ProviderAdapter resolves a validated attempt into a candidate identity.
type ProviderAdapter interface {
	Resolve(ctx context.Context, attempt SignInAttempt) (*CandidateIdentity, error)
}

// PasswordAdapter handles PasswordAttempt through the credential verifier.
type PasswordAdapter struct {
	verifier *CredentialVerifier
}

// NewPasswordAdapter returns the credentials provider adapter.
func NewPasswordAdapter(verifier *CredentialVerifier) *PasswordAdapter {
	return &PasswordAdapter{verifier: verifier}
}

// Resolve implements ProviderAdapter.
func (a *PasswordAdapter) Resolve(ctx context.Context, attempt SignInAttempt) (*CandidateIdentity, error) {
	pa, ok := attempt.(PasswordAttempt)
	if !ok {
		return nil, ErrInvalidAttempt
	}

	candidate, ok := a.verifier.Verify(ctx, pa.Email, pa.Password)
	if !ok {
		return nil, ErrSignInRejected
	}
	return candidate, nil
}

// FederatedAdapter maps a provider asserted profile into a candidate. The
// durable id is left empty; it is resolved at mint time.
type FederatedAdapter struct {
	providers map[ProviderTag]bool
}

// NewFederatedAdapter accepts attempts from the given providers.
func NewFederatedAdapter(providers ...ProviderTag) *FederatedAdapter {
	a := &FederatedAdapter{providers: map[ProviderTag]bool{}}
	for _, p := range providers {
		if p.Federated() {
			a.providers[p] = true
		}
	}
	return a
}

// Supports reports whether tag is an accepted federated provider.
func (a *FederatedAdapter) Supports(tag ProviderTag) bool {
	return a.providers[tag]
}

// Resolve implements ProviderAdapter.
func (a *FederatedAdapter) Resolve(_ context.Context, attempt SignInAttempt) (*CandidateIdentity, error) {
	fa, ok := attempt.(FederatedAttempt)
	if !ok || !a.Supports(fa.Tag) {
		return nil, ErrInvalidAttempt
	}

	return &CandidateIdentity{
		Email:      fa.Email,
		Name:       fa.Name,
		Image:      fa.Image,
		Provider:   fa.Tag,
		ExternalID: fa.Subject,
	}, nil
}
