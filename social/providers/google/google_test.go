package google

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-chat-auth"
	"github.com/goliatone/go-chat-auth/social"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type tokenServer struct {
	*httptest.Server
	idToken      string
	userInfoCode int
	lastForm     url.Values
}

func newTokenServer(t *testing.T) *tokenServer {
	t.Helper()

	ts := &tokenServer{userInfoCode: http.StatusOK}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			require.NoError(t, r.ParseForm())
			ts.lastForm = r.PostForm
			if r.PostForm.Get("code") == "bad-code" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error":             "invalid_grant",
					"error_description": "code expired",
				})
				return
			}
			payload := map[string]any{
				"access_token": "access-token",
				"token_type":   "Bearer",
				"expires_in":   3600,
			}
			if ts.idToken != "" {
				payload["id_token"] = ts.idToken
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(payload)
		case "/userinfo":
			if r.Header.Get("Authorization") != "Bearer access-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			if ts.userInfoCode != http.StatusOK {
				w.WriteHeader(ts.userInfoCode)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(googleUserInfo{
				Sub:           "google-123",
				Email:         "user@example.com",
				EmailVerified: true,
				Name:          "Test User",
				Picture:       "https://example.com/a.png",
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *tokenServer) config() Config {
	return Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		CallbackURL:  "https://example.com/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:   ts.URL + "/auth",
			TokenURL:  ts.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		UserInfoURL: ts.URL + "/userinfo",
		HTTPClient:  ts.Client(),
	}
}

func signIDToken(t *testing.T, key *rsa.PrivateKey, claims idTokenClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func validIDClaims() idTokenClaims {
	now := time.Now()
	return idTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://accounts.google.com",
			Subject:   "google-456",
			Audience:  jwt.ClaimStrings{"client-id"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Email:         "id@example.com",
		EmailVerified: true,
		Name:          "ID User",
		Picture:       "https://example.com/id.png",
	}
}

func assertTextCode(t *testing.T, err error, code string) {
	t.Helper()
	var rich *goerrors.Error
	require.True(t, goerrors.As(err, &rich))
	assert.Equal(t, code, rich.TextCode)
}

func TestProviderAuthCodeURL(t *testing.T) {
	provider := New(Config{
		ClientID:    "client-id",
		CallbackURL: "https://example.com/callback",
	})

	assert.Equal(t, auth.ProviderGoogle, provider.Name())

	verifier := oauth2.GenerateVerifier()
	parsed, err := url.Parse(provider.AuthCodeURL("state-token", verifier))
	require.NoError(t, err)

	query := parsed.Query()
	assert.Equal(t, "accounts.google.com", parsed.Host)
	assert.Equal(t, "client-id", query.Get("client_id"))
	assert.Equal(t, "https://example.com/callback", query.Get("redirect_uri"))
	assert.Equal(t, "state-token", query.Get("state"))
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, "offline", query.Get("access_type"))
	assert.Equal(t, oauth2.S256ChallengeFromVerifier(verifier), query.Get("code_challenge"))
	assert.Equal(t, "S256", query.Get("code_challenge_method"))

	scope := query.Get("scope")
	assert.Contains(t, scope, "openid")
	assert.Contains(t, scope, "email")
	assert.Contains(t, scope, "profile")
}

func TestProviderExchangeUserInfo(t *testing.T) {
	ts := newTokenServer(t)
	provider := New(ts.config())

	profile, err := provider.Exchange(context.Background(), "good-code", "verifier-value")
	require.NoError(t, err)

	assert.Equal(t, "verifier-value", ts.lastForm.Get("code_verifier"))
	assert.Equal(t, "client-id", ts.lastForm.Get("client_id"))

	assert.Equal(t, auth.ProviderGoogle, profile.Provider)
	assert.Equal(t, "google-123", profile.Subject)
	assert.Equal(t, "user@example.com", profile.Email)
	assert.True(t, profile.EmailVerified)
	assert.Equal(t, "Test User", profile.Name)
	assert.Equal(t, "https://example.com/a.png", profile.Picture)
}

func TestProviderExchangeIDToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	ts := newTokenServer(t)
	ts.idToken = signIDToken(t, key, validIDClaims())
	// userinfo must not be consulted when the id token verifies
	ts.userInfoCode = http.StatusInternalServerError

	cfg := ts.config()
	cfg.IDTokenKeyfunc = func(*jwt.Token) (any, error) { return &key.PublicKey, nil }

	profile, err := New(cfg).Exchange(context.Background(), "good-code", "verifier")
	require.NoError(t, err)

	assert.Equal(t, "google-456", profile.Subject)
	assert.Equal(t, "id@example.com", profile.Email)
	assert.True(t, profile.EmailVerified)
	assert.Equal(t, "ID User", profile.Name)
}

func TestProviderExchangeIDTokenRejected(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	wrongIssuer := validIDClaims()
	wrongIssuer.Issuer = "https://evil.example.com"

	wrongAudience := validIDClaims()
	wrongAudience.Audience = jwt.ClaimStrings{"someone-else"}

	expired := validIDClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	cases := []struct {
		name  string
		token string
	}{
		{"wrong signer", signIDToken(t, other, validIDClaims())},
		{"wrong issuer", signIDToken(t, key, wrongIssuer)},
		{"wrong audience", signIDToken(t, key, wrongAudience)},
		{"expired", signIDToken(t, key, expired)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTokenServer(t)
			ts.idToken = tc.token

			cfg := ts.config()
			cfg.IDTokenKeyfunc = func(*jwt.Token) (any, error) { return &key.PublicKey, nil }

			profile, err := New(cfg).Exchange(context.Background(), "good-code", "verifier")
			require.Error(t, err)
			assert.Nil(t, profile)
			assertTextCode(t, err, social.TextCodeUserInfoFail)
		})
	}
}

func TestProviderExchangeErrors(t *testing.T) {
	t.Run("token endpoint rejects code", func(t *testing.T) {
		ts := newTokenServer(t)

		_, err := New(ts.config()).Exchange(context.Background(), "bad-code", "verifier")
		require.Error(t, err)
		assertTextCode(t, err, social.TextCodeTokenExchangeFail)

		var perr *social.ProviderError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, "invalid_grant", perr.Code)
		assert.Equal(t, http.StatusBadRequest, perr.Status)

		var rich *goerrors.Error
		require.True(t, goerrors.As(err, &rich))
		assert.Equal(t, "invalid_grant", rich.Metadata["code"])
	})

	t.Run("userinfo failure", func(t *testing.T) {
		ts := newTokenServer(t)
		ts.userInfoCode = http.StatusBadGateway

		_, err := New(ts.config()).Exchange(context.Background(), "good-code", "verifier")
		require.Error(t, err)
		assertTextCode(t, err, social.TextCodeUserInfoFail)

		var perr *social.ProviderError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, http.StatusBadGateway, perr.Status)
	})
}

func TestMapProfileNil(t *testing.T) {
	assert.Nil(t, mapProfile(nil))
}
