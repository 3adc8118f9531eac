package auth

import "time"

// SessionUser is the user portion of a session view
type SessionUser struct {
	ID    string      `json:"id"`
	Type  AccountType `json:"type"`
	Email string      `json:"email,omitempty"`
	Name  string      `json:"name,omitempty"`
	Image string      `json:"image,omitempty"`
}

// Session is what the application reads for an authenticated request
type Session struct {
	User    SessionUser `json:"user"`
	Expires time.Time   `json:"expires"`
}

// Project maps token claims to a session view. It has no side effects.
func Project(claims *JWTClaims) *Session {
	if claims == nil {
		return nil
	}
	return &Session{
		User: SessionUser{
			ID:    claims.UserID(),
			Type:  claims.AccountType(),
			Email: claims.Email,
			Name:  claims.Name,
			Image: claims.Picture,
		},
		Expires: claims.Expires(),
	}
}
