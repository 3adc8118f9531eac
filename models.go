package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AccountType classifies a user for downstream authorization. The set is
// closed; regular is the only value today.
type AccountType string

const (
	// AccountTypeRegular is the default classification
	AccountTypeRegular AccountType = "regular"
)

// OrDefault returns the classification, or regular when unset.
func (t AccountType) OrDefault() AccountType {
	if t == "" {
		return AccountTypeRegular
	}
	return t
}

// Valid reports whether t is a known classification.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeRegular:
		return true
	}
	return false
}

// ProviderTag names the provider that produced a sign-in attempt.
type ProviderTag string

const (
	// ProviderCredentials is the email and password provider
	ProviderCredentials ProviderTag = "credentials"
	// ProviderGoogle is the Google federated provider
	ProviderGoogle ProviderTag = "google"
)

// Federated reports whether the tag names an external identity provider.
func (p ProviderTag) Federated() bool {
	return p != "" && p != ProviderCredentials
}

// User is the durable credential record
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Email         string    `bun:"email,notnull,unique" json:"email"`
	PasswordHash  string    `bun:"password_hash,nullzero" json:"-"`
	Name          string    `bun:"name,nullzero" json:"name,omitempty"`
	Image         string    `bun:"image,nullzero" json:"image,omitempty"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// HasPassword reports whether the record can satisfy a password sign-in.
func (u *User) HasPassword() bool {
	return u != nil && u.PasswordHash != ""
}
