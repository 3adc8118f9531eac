package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-chat-auth"
	"github.com/goliatone/go-chat-auth/social"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
)

const (
	defaultUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
	// DefaultJWKSURL serves the keys Google signs ID tokens with.
	DefaultJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
)

var validIssuers = map[string]bool{
	"https://accounts.google.com": true,
	"accounts.google.com":         true,
}

// Config holds Google OAuth configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	Scopes       []string

	// Endpoint and UserInfoURL default to Google's.
	Endpoint    oauth2.Endpoint
	UserInfoURL string

	// IDTokenKeyfunc verifies ID tokens. When nil the profile is read
	// from the userinfo endpoint instead.
	IDTokenKeyfunc jwt.Keyfunc

	HTTPClient *http.Client
}

// DefaultScopes returns the default Google scopes.
func DefaultScopes() []string {
	return []string{"openid", "email", "profile"}
}

// Provider implements social.Provider for Google.
type Provider struct {
	oauth       *oauth2.Config
	userInfoURL string
	keyfunc     jwt.Keyfunc
	httpClient  *http.Client
}

var _ social.Provider = (*Provider)(nil)

// New creates a new Google provider.
func New(cfg Config) *Provider {
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = DefaultScopes()
	}
	if cfg.Endpoint.AuthURL == "" && cfg.Endpoint.TokenURL == "" {
		cfg.Endpoint = googleoauth.Endpoint
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = defaultUserInfoURL
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       cfg.Scopes,
			Endpoint:     cfg.Endpoint,
		},
		userInfoURL: cfg.UserInfoURL,
		keyfunc:     cfg.IDTokenKeyfunc,
		httpClient:  client,
	}
}

// NewJWKSKeyfunc fetches Google's signing keys and keeps them refreshed in
// the background. Call the returned stop func on shutdown.
func NewJWKSKeyfunc(jwksURL string) (jwt.Keyfunc, func(), error) {
	if jwksURL == "" {
		jwksURL = DefaultJWKSURL
	}

	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, nil, err
	}

	return jwks.Keyfunc, jwks.EndBackground, nil
}

// Name implements social.Provider.
func (p *Provider) Name() auth.ProviderTag {
	return auth.ProviderGoogle
}

// AuthCodeURL implements social.Provider.
func (p *Provider) AuthCodeURL(state, codeVerifier string) string {
	return p.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(codeVerifier),
	)
}

// Exchange implements social.Provider.
func (p *Provider) Exchange(ctx context.Context, code, codeVerifier string) (*social.Profile, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	token, err := p.oauth.Exchange(ctx, code, oauth2.VerifierOption(codeVerifier))
	if err != nil {
		return nil, social.WrapProviderError(social.ErrTokenExchangeFailed, string(auth.ProviderGoogle), "exchange", exchangeError(err))
	}

	if raw, ok := token.Extra("id_token").(string); ok && raw != "" && p.keyfunc != nil {
		profile, err := p.profileFromIDToken(raw)
		if err != nil {
			return nil, social.WrapProviderError(social.ErrUserInfoFailed, string(auth.ProviderGoogle), "id_token", err)
		}
		return profile, nil
	}

	profile, err := p.userInfo(ctx, token)
	if err != nil {
		return nil, social.WrapProviderError(social.ErrUserInfoFailed, string(auth.ProviderGoogle), "user_info", err)
	}
	return profile, nil
}

func (p *Provider) profileFromIDToken(raw string) (*social.Profile, error) {
	claims := &idTokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, p.keyfunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(p.oauth.ClientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	if !validIssuers[claims.Issuer] {
		return nil, &social.ProviderError{
			Provider:    string(auth.ProviderGoogle),
			Operation:   "id_token",
			Code:        "invalid_issuer",
			Description: "unexpected id token issuer",
		}
	}

	return mapIDToken(claims), nil
}

func (p *Provider) userInfo(ctx context.Context, token *oauth2.Token) (*social.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &social.ProviderError{
			Provider:    string(auth.ProviderGoogle),
			Operation:   "user_info",
			Status:      resp.StatusCode,
			Description: http.StatusText(resp.StatusCode),
		}
	}

	var info googleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, &social.ProviderError{
			Provider:    string(auth.ProviderGoogle),
			Operation:   "user_info",
			Status:      resp.StatusCode,
			Code:        "invalid_response",
			Description: "failed to decode userinfo response",
			Err:         err,
		}
	}

	return mapProfile(&info), nil
}

func exchangeError(err error) error {
	rerr, ok := err.(*oauth2.RetrieveError)
	if !ok {
		return err
	}
	status := 0
	if rerr.Response != nil {
		status = rerr.Response.StatusCode
	}
	return &social.ProviderError{
		Provider:    string(auth.ProviderGoogle),
		Operation:   "exchange",
		Status:      status,
		Code:        rerr.ErrorCode,
		Description: rerr.ErrorDescription,
		Err:         err,
	}
}
