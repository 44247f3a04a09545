package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("invalid token")
	ErrWrongTokenType = errors.New("invalid token type")
)

type Claims struct {
	UserID    int64  `json:"uid"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies the HS256 access/refresh token pair.
type TokenIssuer struct {
	secret         []byte
	accessExpires  time.Duration
	refreshExpires time.Duration
}

func NewTokenIssuer(secret string, accessMinutes, refreshMinutes int) *TokenIssuer {
	return &TokenIssuer{
		secret:         []byte(secret),
		accessExpires:  time.Duration(accessMinutes) * time.Minute,
		refreshExpires: time.Duration(refreshMinutes) * time.Minute,
	}
}

func (t *TokenIssuer) sign(userID int64, tokenType string, lifetime time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *TokenIssuer) AccessToken(userID int64) (string, error) {
	return t.sign(userID, TokenTypeAccess, t.accessExpires)
}

func (t *TokenIssuer) RefreshToken(userID int64) (string, error) {
	return t.sign(userID, TokenTypeRefresh, t.refreshExpires)
}

// Validate parses the token, checks the signature and expiry, and
// enforces the expected token type.
func (t *TokenIssuer) Validate(token, expectedType string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.TokenType != expectedType {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}
