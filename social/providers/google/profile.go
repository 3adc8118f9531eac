package google

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-chat-auth"
	"github.com/goliatone/go-chat-auth/social"
)

type googleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

type idTokenClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func mapProfile(info *googleUserInfo) *social.Profile {
	if info == nil {
		return nil
	}

	return &social.Profile{
		Provider:      auth.ProviderGoogle,
		Subject:       info.Sub,
		Email:         info.Email,
		EmailVerified: info.EmailVerified,
		Name:          info.Name,
		Picture:       info.Picture,
	}
}

func mapIDToken(claims *idTokenClaims) *social.Profile {
	return &social.Profile{
		Provider:      auth.ProviderGoogle,
		Subject:       claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
		Picture:       claims.Picture,
	}
}
