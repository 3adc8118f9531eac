package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenService signs and validates session tokens with HS256
type TokenService struct {
	signingKey []byte
	issuer     string
	audience   jwt.ClaimStrings
	logger     Logger
}

// NewTokenService creates a TokenService from the runtime snapshot
func NewTokenService(snapshot *Snapshot) *TokenService {
	return &TokenService{
		signingKey: snapshot.SigningKey(),
		issuer:     snapshot.Issuer(),
		audience:   snapshot.Audience(),
		logger:     defLogger{},
	}
}

func (ts *TokenService) WithLogger(logger Logger) *TokenService {
	ts.logger = normalizeLogger(logger)
	return ts
}

// Sign encodes claims into a signed token string.
func (ts *TokenService) Sign(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}
	if claims.UserID() == "" {
		return "", ErrMissingSubject
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and validates a token string, returning its claims
func (ts *TokenService) Validate(tokenString string) (*JWTClaims, error) {
	if tokenString == "" {
		return nil, ErrNoSession
	}

	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience[0]))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		ts.logger.Error("token validate could not decode claims")
		return nil, ErrTokenMalformed
	}

	if claims.UserID() == "" {
		return nil, ErrMissingSubject
	}

	return claims, nil
}
