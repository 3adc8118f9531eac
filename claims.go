package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims is the payload of a session token
type JWTClaims struct {
	jwt.RegisteredClaims
	UID     string      `json:"uid,omitempty"`
	Type    AccountType `json:"type,omitempty"`
	Email   string      `json:"email,omitempty"`
	Name    string      `json:"name,omitempty"`
	Picture string      `json:"picture,omitempty"`
}

// UserID returns the durable user id
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.RegisteredClaims.Subject
}

// AccountType returns the classification, defaulting to regular
func (c *JWTClaims) AccountType() AccountType {
	return c.Type.OrDefault()
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// Clone returns a deep copy of the claims.
func (c *JWTClaims) Clone() *JWTClaims {
	if c == nil {
		return nil
	}
	out := *c
	if len(c.RegisteredClaims.Audience) > 0 {
		out.RegisteredClaims.Audience = make(jwt.ClaimStrings, len(c.RegisteredClaims.Audience))
		copy(out.RegisteredClaims.Audience, c.RegisteredClaims.Audience)
	}
	return &out
}
