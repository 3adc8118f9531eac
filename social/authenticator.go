package social

import (
	"context"
	"strings"

	"github.com/goliatone/go-chat-auth"
	"golang.org/x/oauth2"
)

// SignInService is the part of auth.Auther the federated flow needs.
type SignInService interface {
	SignIn(ctx context.Context, attempt auth.SignInAttempt) (*auth.SignInResult, error)
}

// Authenticator runs the OAuth2 redirect flow for registered providers and
// hands the asserted profile to the sign-in core.
type Authenticator struct {
	providers            map[auth.ProviderTag]Provider
	states               StateCodec
	signin               SignInService
	logger               auth.Logger
	defaultRedirect      string
	requireEmailVerified bool
}

// Option configures the Authenticator.
type Option func(*Authenticator)

// NewAuthenticator creates a new federated authenticator.
func NewAuthenticator(signin SignInService, states StateCodec, opts ...Option) *Authenticator {
	a := &Authenticator{
		providers:            make(map[auth.ProviderTag]Provider),
		states:               states,
		signin:               signin,
		logger:               auth.DefaultLogger(),
		defaultRedirect:      "/",
		requireEmailVerified: true,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	return a
}

// WithProvider registers a provider.
func WithProvider(provider Provider) Option {
	return func(a *Authenticator) {
		if provider == nil {
			return
		}
		a.providers[provider.Name()] = provider
	}
}

// WithLogger sets the logger.
func WithLogger(logger auth.Logger) Option {
	return func(a *Authenticator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithDefaultRedirect sets where users land after sign-in when the flow
// did not ask for a specific path.
func WithDefaultRedirect(path string) Option {
	return func(a *Authenticator) {
		if isLocalPath(path) {
			a.defaultRedirect = path
		}
	}
}

// WithRequireEmailVerified toggles rejection of unverified provider emails.
func WithRequireEmailVerified(required bool) Option {
	return func(a *Authenticator) {
		a.requireEmailVerified = required
	}
}

// AuthRedirect is the consent redirect produced by BeginAuth.
type AuthRedirect struct {
	URL      string
	State    string
	Provider auth.ProviderTag
}

// AuthResult is the outcome of a completed flow.
type AuthResult struct {
	*auth.SignInResult
	Profile     *Profile
	RedirectURL string
}

// Providers returns the registered provider tags.
func (a *Authenticator) Providers() []auth.ProviderTag {
	out := make([]auth.ProviderTag, 0, len(a.providers))
	for tag := range a.providers {
		out = append(out, tag)
	}
	return out
}

// BeginAuth starts the flow for provider. redirectURL must be a local path;
// anything else falls back to the default.
func (a *Authenticator) BeginAuth(ctx context.Context, providerName, redirectURL string) (*AuthRedirect, error) {
	tag := auth.ProviderTag(providerName)
	provider, ok := a.providers[tag]
	if !ok {
		return nil, ErrProviderNotFound
	}
	if a.states == nil {
		return nil, ErrInvalidState
	}

	if !isLocalPath(redirectURL) {
		redirectURL = a.defaultRedirect
	}

	verifier := oauth2.GenerateVerifier()
	token, err := a.states.Encode(&OAuthState{
		Provider:     providerName,
		CodeVerifier: verifier,
		RedirectURL:  redirectURL,
	})
	if err != nil {
		return nil, err
	}

	return &AuthRedirect{
		URL:      provider.AuthCodeURL(token, verifier),
		State:    token,
		Provider: tag,
	}, nil
}

// CompleteAuth validates the callback, exchanges the code and signs the
// user in.
func (a *Authenticator) CompleteAuth(ctx context.Context, providerName, code, stateToken string) (*AuthResult, error) {
	if a.states == nil {
		return nil, ErrInvalidState
	}

	state, err := a.states.Decode(stateToken)
	if err != nil {
		return nil, err
	}

	if state.Provider != providerName {
		return nil, ErrInvalidState
	}

	provider, ok := a.providers[auth.ProviderTag(providerName)]
	if !ok {
		return nil, ErrProviderNotFound
	}

	if code == "" {
		return nil, ErrInvalidState
	}

	profile, err := provider.Exchange(ctx, code, state.CodeVerifier)
	if err != nil {
		a.logger.Warn("provider exchange failed", "provider", providerName, "error", err)
		return nil, err
	}

	if a.requireEmailVerified && !profile.EmailVerified {
		a.logger.Warn("provider email not verified", "provider", providerName)
		return nil, ErrEmailNotVerified
	}

	result, err := a.signin.SignIn(ctx, profile.Attempt())
	if err != nil {
		return nil, err
	}

	redirect := state.RedirectURL
	if !isLocalPath(redirect) {
		redirect = a.defaultRedirect
	}

	return &AuthResult{
		SignInResult: result,
		Profile:      profile,
		RedirectURL:  redirect,
	}, nil
}

func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.Contains(p, "\\")
}
