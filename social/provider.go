package social

import (
	"context"

	"github.com/goliatone/go-chat-auth"
)

// Provider is an OAuth2 identity provider able to run the authorization
// code flow with PKCE.
type Provider interface {
	// Name returns the provider tag (e.g. "google").
	Name() auth.ProviderTag

	// AuthCodeURL returns the consent URL. The S256 challenge is derived
	// from codeVerifier.
	AuthCodeURL(state, codeVerifier string) string

	// Exchange trades an authorization code for the user's profile.
	Exchange(ctx context.Context, code, codeVerifier string) (*Profile, error)
}

// Profile is the identity asserted by a provider.
type Profile struct {
	Provider      auth.ProviderTag
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// Attempt converts the profile into a federated sign-in attempt.
func (p *Profile) Attempt() auth.FederatedAttempt {
	return auth.FederatedAttempt{
		Tag:           p.Provider,
		Email:         p.Email,
		EmailVerified: p.EmailVerified,
		Subject:       p.Subject,
		Name:          p.Name,
		Image:         p.Picture,
	}
}
