package config

import (
	"errors"
	"os"
	"sort"
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-chat-auth"
	goerrors "github.com/goliatone/go-errors"
	"github.com/joho/godotenv"
)

// DefaultEnvFiles are read, when present, before the environment is parsed.
// Values already set in the environment win.
var DefaultEnvFiles = []string{".env.local", ".env"}

// DefaultGoogleScopes covers sign-in plus the Meet space creation, Meet
// recording read and app-created calendar access the chat tools need.
var DefaultGoogleScopes = []string{
	"openid",
	"email",
	"profile",
	"https://www.googleapis.com/auth/meetings.space.created",
	"https://www.googleapis.com/auth/drive.meet.readonly",
	"https://www.googleapis.com/auth/calendar.app.created",
}

// Settings holds the process configuration
type Settings struct {
	AuthSecret   string        `env:"AUTH_SECRET"`
	TokenTTL     time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"720h"`
	Issuer       string        `env:"AUTH_ISSUER" envDefault:"chat-auth"`
	Audience     []string      `env:"AUTH_AUDIENCE" envSeparator:","`
	BcryptCost   int           `env:"AUTH_BCRYPT_COST" envDefault:"10"`
	CookieName   string        `env:"AUTH_COOKIE_NAME" envDefault:"chat_session"`
	CookieSecure bool          `env:"AUTH_COOKIE_SECURE" envDefault:"true"`
	HashIDs      bool          `env:"AUTH_HASHID_USERS" envDefault:"false"`

	GoogleClientID     string   `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string   `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string   `env:"GOOGLE_REDIRECT_URL" envDefault:"http://localhost:3000/auth/oauth/google/callback"`
	GoogleScopes       []string `env:"GOOGLE_SCOPES" envSeparator:" "`
	GoogleJWKSURL      string   `env:"GOOGLE_JWKS_URL" envDefault:"https://www.googleapis.com/oauth2/v3/certs"`

	DatabaseDSN string `env:"DATABASE_DSN" envDefault:"file:chat.db?cache=shared"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":3000"`
	Verbose     bool   `env:"LOG_VERBOSE" envDefault:"false"`
}

var _ auth.Config = (*Settings)(nil)

// Load reads the optional env files, parses the environment and validates
// the result. Missing files are skipped.
func Load(files ...string) (*Settings, error) {
	if len(files) == 0 {
		files = DefaultEnvFiles
	}

	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read env file").
				WithMetadata(map[string]any{"file": f})
		}
	}

	return FromEnvironment(nil)
}

// FromEnvironment parses settings from environ, or from the process
// environment when environ is nil.
func FromEnvironment(environ map[string]string) (*Settings, error) {
	s := &Settings{}

	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}

	if err := env.ParseWithOptions(s, opts); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "failed to parse configuration")
	}

	if len(s.GoogleScopes) == 0 {
		s.GoogleScopes = append([]string(nil), DefaultGoogleScopes...)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// MustLoad works like Load but panics on failure.
func MustLoad(files ...string) *Settings {
	s, err := Load(files...)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate reports every missing or malformed setting at once.
func (s *Settings) Validate() error {
	err := validation.ValidateStruct(s,
		validation.Field(&s.AuthSecret, validation.Required, validation.Length(auth.MinSigningKeyLength, 0)),
		validation.Field(&s.TokenTTL, validation.Required, validation.Min(time.Minute)),
		validation.Field(&s.BcryptCost, validation.Min(4), validation.Max(31)),
		validation.Field(&s.CookieName, validation.Required),
		validation.Field(&s.GoogleClientID, validation.Required),
		validation.Field(&s.GoogleClientSecret, validation.Required),
		validation.Field(&s.GoogleRedirectURL, validation.Required, is.URL),
		validation.Field(&s.GoogleJWKSURL, is.URL),
		validation.Field(&s.DatabaseDSN, validation.Required),
		validation.Field(&s.HTTPAddr, validation.Required),
	)
	if err == nil {
		return nil
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return goerrors.Wrap(err, auth.ErrInvalidConfig.Category, auth.ErrInvalidConfig.Message).
			WithTextCode(auth.ErrInvalidConfig.TextCode).
			WithMetadata(map[string]any{"fields": fieldNames(verrs)})
	}

	return goerrors.Wrap(err, auth.ErrInvalidConfig.Category, auth.ErrInvalidConfig.Message).
		WithTextCode(auth.ErrInvalidConfig.TextCode)
}

func fieldNames(errs validation.Errors) []string {
	out := make([]string, 0, len(errs))
	for k := range errs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// GetSigningKey implements auth.Config.
func (s *Settings) GetSigningKey() string { return s.AuthSecret }

// GetTokenExpiration implements auth.Config.
func (s *Settings) GetTokenExpiration() time.Duration { return s.TokenTTL }

// GetIssuer implements auth.Config.
func (s *Settings) GetIssuer() string { return s.Issuer }

// GetAudience implements auth.Config.
func (s *Settings) GetAudience() []string { return s.Audience }

// GetBcryptCost implements auth.Config.
func (s *Settings) GetBcryptCost() int { return s.BcryptCost }
