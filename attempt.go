package auth

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
)

// SignInAttempt is the payload of a sign-in. Only PasswordAttempt and
// FederatedAttempt implement it.
type SignInAttempt interface {
	Provider() ProviderTag
	Validate() error
	signInAttempt()
}

// PasswordAttempt is an email and password sign-in.
type PasswordAttempt struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (PasswordAttempt) signInAttempt() {}

// Provider implements SignInAttempt.
func (PasswordAttempt) Provider() ProviderTag { return ProviderCredentials }

// Validate implements SignInAttempt.
func (a PasswordAttempt) Validate() error {
	if err := validation.ValidateStruct(&a,
		validation.Field(&a.Email, validation.Required, is.Email),
		validation.Field(&a.Password, validation.Required),
	); err != nil {
		return invalidAttempt(err)
	}
	return nil
}

// FederatedAttempt is a sign-in asserted by an external identity provider.
type FederatedAttempt struct {
	Tag           ProviderTag `json:"provider"`
	Email         string      `json:"email"`
	EmailVerified bool        `json:"email_verified"`
	Subject       string      `json:"sub,omitempty"`
	Name          string      `json:"name,omitempty"`
	Image         string      `json:"image,omitempty"`
}

func (FederatedAttempt) signInAttempt() {}

// Provider implements SignInAttempt.
func (a FederatedAttempt) Provider() ProviderTag { return a.Tag }

// Validate implements SignInAttempt.
func (a FederatedAttempt) Validate() error {
	if err := validation.ValidateStruct(&a,
		validation.Field(&a.Tag, validation.Required, validation.NotIn(ProviderCredentials)),
		validation.Field(&a.Email, validation.Required, is.Email),
	); err != nil {
		return invalidAttempt(err)
	}
	return nil
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeAttempt returns a copy of attempt with its email normalized.
// Pointer variants are dereferenced. Unknown types are returned as is.
func NormalizeAttempt(attempt SignInAttempt) SignInAttempt {
	switch a := attempt.(type) {
	case PasswordAttempt:
		a.Email = NormalizeEmail(a.Email)
		return a
	case *PasswordAttempt:
		if a == nil {
			return nil
		}
		return NormalizeAttempt(*a)
	case FederatedAttempt:
		a.Email = NormalizeEmail(a.Email)
		a.Tag = ProviderTag(strings.ToLower(strings.TrimSpace(string(a.Tag))))
		return a
	case *FederatedAttempt:
		if a == nil {
			return nil
		}
		return NormalizeAttempt(*a)
	}
	return attempt
}

func invalidAttempt(err error) error {
	return errors.Wrap(err, ErrInvalidAttempt.Category, ErrInvalidAttempt.Message).
		WithTextCode(ErrInvalidAttempt.TextCode)
}
