package social

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const stateContext = "chat-auth/oauth-state/v1"

// StateCodec handles OAuth state encoding and verification.
type StateCodec interface {
	Encode(state *OAuthState) (string, error)
	Decode(token string) (*OAuthState, error)
}

// OAuthState contains the data stored in the OAuth state parameter.
type OAuthState struct {
	Nonce        string `json:"n"`
	Provider     string `json:"p"`
	CodeVerifier string `json:"cv"`
	RedirectURL  string `json:"r,omitempty"`
	IssuedAt     int64  `json:"iat"`
	ExpiresAt    int64  `json:"exp"`
}

// SealedStateCodec encrypts state with XChaCha20-Poly1305 under a key
// derived from the auth secret. The code verifier never leaves the server
// in clear text.
type SealedStateCodec struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewSealedStateCodec derives the state key from secret with HKDF-SHA256.
func NewSealedStateCodec(secret []byte, ttl time.Duration) (*SealedStateCodec, error) {
	if len(secret) == 0 {
		return nil, goerrors.New("state secret is required", goerrors.CategoryValidation)
	}
	if ttl == 0 {
		ttl = 10 * time.Minute
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(stateContext)), key); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to derive state key")
	}

	return &SealedStateCodec{key: key, ttl: ttl, now: time.Now}, nil
}

// WithClock overrides the time source used for expiry.
func (c *SealedStateCodec) WithClock(now func() time.Time) *SealedStateCodec {
	if now != nil {
		c.now = now
	}
	return c
}

// Encode seals the state. Missing nonce and timestamps are filled in.
func (c *SealedStateCodec) Encode(state *OAuthState) (string, error) {
	if state == nil {
		return "", ErrInvalidState
	}

	now := c.now()
	if state.IssuedAt == 0 {
		state.IssuedAt = now.Unix()
	}
	if state.ExpiresAt == 0 {
		state.ExpiresAt = now.Add(c.ttl).Unix()
	}
	if state.Nonce == "" {
		state.Nonce = generateNonce()
	}

	plaintext, err := json.Marshal(state)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to marshal state")
	}

	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create cipher")
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate nonce")
	}

	sealed := aead.Seal(nonce, nonce, plaintext, []byte(stateContext))
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decode opens and checks the state.
func (c *SealedStateCodec) Decode(token string) (*OAuthState, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidState
	}

	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create cipher")
	}

	if len(data) < aead.NonceSize()+aead.Overhead() {
		return nil, ErrInvalidState
	}

	nonce, sealed := data[:aead.NonceSize()], data[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, sealed, []byte(stateContext))
	if err != nil {
		return nil, ErrInvalidState
	}

	var state OAuthState
	if err := json.Unmarshal(plaintext, &state); err != nil {
		return nil, ErrInvalidState
	}

	if c.now().Unix() > state.ExpiresAt {
		return nil, ErrStateExpired
	}

	return &state, nil
}

func generateNonce() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
