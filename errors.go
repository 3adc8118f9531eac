package auth

import "github.com/goliatone/go-errors"

const (
	TextCodeSignInRejected     = "auth_signin_rejected"
	TextCodeInvalidAttempt     = "auth_invalid_attempt"
	TextCodeMissingSubject     = "auth_missing_subject"
	TextCodeProvisioningFailed = "auth_provisioning_failed"
	TextCodeNoSession          = "auth_no_session"
	TextCodeTokenExpired       = "auth_token_expired"
	TextCodeTokenMalformed     = "auth_token_malformed"
	TextCodeInvalidConfig      = "auth_invalid_config"
	TextCodeEmailTaken         = "auth_email_taken"
	TextCodeEmptyString        = "auth_empty_string"
	TextCodePasswordMismatch   = "auth_password_mismatch"
)

// ErrSignInRejected is the only failure a sign-in attempt reports to the
// caller. It never says which check failed.
var ErrSignInRejected = errors.New("sign in rejected", errors.CategoryAuth).
	WithTextCode(TextCodeSignInRejected).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidAttempt is returned when a sign-in payload fails validation.
var ErrInvalidAttempt = errors.New("invalid sign in attempt", errors.CategoryBadInput).
	WithTextCode(TextCodeInvalidAttempt).
	WithCode(errors.CodeBadRequest)

// ErrMissingSubject is returned when a token would be minted without a
// durable user id.
var ErrMissingSubject = errors.New("token subject is missing", errors.CategoryInternal).
	WithTextCode(TextCodeMissingSubject)

// ErrProvisioningFailed is returned when a federated user record could not
// be created.
var ErrProvisioningFailed = errors.New("failed to provision federated user", errors.CategoryInternal).
	WithTextCode(TextCodeProvisioningFailed)

// ErrNoSession is returned when a request carries no valid session token.
var ErrNoSession = errors.New("no such session", errors.CategoryAuth).
	WithTextCode(TextCodeNoSession).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned for tokens past their expiry.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens that fail parsing or signature
// checks.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidConfig is returned when the auth configuration is unusable.
var ErrInvalidConfig = errors.New("invalid auth configuration", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidConfig)

// ErrEmailTaken is returned by Registrar when the email is already stored.
var ErrEmailTaken = errors.New("email already registered", errors.CategoryConflict).
	WithTextCode(TextCodeEmailTaken).
	WithCode(errors.CodeConflict)

// ErrNoEmptyString is returned when hashing an empty password.
var ErrNoEmptyString = errors.New("empty string not allowed", errors.CategoryBadInput).
	WithTextCode(TextCodeEmptyString).
	WithCode(errors.CodeBadRequest)

// ErrMismatchedHashAndPassword is returned when a password does not match
// its hash.
var ErrMismatchedHashAndPassword = errors.New("password does not match", errors.CategoryAuth).
	WithTextCode(TextCodePasswordMismatch).
	WithCode(errors.CodeUnauthorized)

// IsTokenExpiredError reports whether err is ErrTokenExpired.
func IsTokenExpiredError(err error) bool {
	return errors.Is(err, ErrTokenExpired)
}

// IsSignInRejected reports whether err is the generic sign-in failure.
func IsSignInRejected(err error) bool {
	return errors.Is(err, ErrSignInRejected)
}
