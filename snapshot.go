package auth

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
)

// MinSigningKeyLength is the shortest HS256 secret accepted
const MinSigningKeyLength = 32

// Snapshot is the immutable runtime configuration shared by every sign-in
// component. Build it once at start with NewSnapshot.
type Snapshot struct {
	signingKey []byte
	ttl        time.Duration
	issuer     string
	audience   []string
	cost       int
	decoyHash  string
}

// NewSnapshot validates cfg and precomputes the decoy hash. Any error here
// should stop the process.
func NewSnapshot(cfg Config) (*Snapshot, error) {
	if cfg == nil {
		return nil, ErrInvalidConfig
	}

	cost := cfg.GetBcryptCost()
	if cost == 0 {
		cost = DefaultBcryptCost
	}

	err := validation.Errors{
		"signing_key": validation.Validate(cfg.GetSigningKey(),
			validation.Required,
			validation.Length(MinSigningKeyLength, 0),
		),
		"token_expiration": validation.Validate(cfg.GetTokenExpiration(),
			validation.Required,
			validation.Min(time.Minute),
		),
		"bcrypt_cost": validation.Validate(cost,
			validation.Min(bcrypt.MinCost),
			validation.Max(bcrypt.MaxCost),
		),
	}.Filter()
	if err != nil {
		return nil, errors.Wrap(err, ErrInvalidConfig.Category, ErrInvalidConfig.Message).
			WithTextCode(ErrInvalidConfig.TextCode)
	}

	decoy, err := NewDecoyHash(cost)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to compute decoy hash")
	}

	var aud []string
	if a := cfg.GetAudience(); len(a) > 0 {
		aud = make([]string, len(a))
		copy(aud, a)
	}

	return &Snapshot{
		signingKey: []byte(cfg.GetSigningKey()),
		ttl:        cfg.GetTokenExpiration(),
		issuer:     cfg.GetIssuer(),
		audience:   aud,
		cost:       cost,
		decoyHash:  decoy,
	}, nil
}

// SigningKey returns a copy of the HS256 secret.
func (s *Snapshot) SigningKey() []byte {
	out := make([]byte, len(s.signingKey))
	copy(out, s.signingKey)
	return out
}

// TokenTTL is the session token lifetime.
func (s *Snapshot) TokenTTL() time.Duration { return s.ttl }

// Issuer is the iss claim, may be empty.
func (s *Snapshot) Issuer() string { return s.issuer }

// Audience returns a copy of the aud claim values.
func (s *Snapshot) Audience() []string {
	if len(s.audience) == 0 {
		return nil
	}
	out := make([]string, len(s.audience))
	copy(out, s.audience)
	return out
}

// BcryptCost is the work factor for new hashes and the decoy.
func (s *Snapshot) BcryptCost() int { return s.cost }

// DecoyHash is compared against when no usable record exists.
func (s *Snapshot) DecoyHash() string { return s.decoyHash }
