// Package auth holds the token service, password hashing and the access guard
// used to authenticate requests.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenValidity is how long an issued token stays valid.
const DefaultTokenValidity = 24 * time.Hour

// Claims carries the identity a token was issued for.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
	Email  string `json:"email"`
}

// TokenService issues and verifies HS256-signed identity tokens.
type TokenService struct {
	secretKey []byte
	validity  time.Duration
	now       func() time.Time
}

// NewTokenService builds a token service. A non-positive validity falls back
// to DefaultTokenValidity.
func NewTokenService(secretKey string, validity time.Duration) *TokenService {
	if validity <= 0 {
		validity = DefaultTokenValidity
	}
	return &TokenService{secretKey: []byte(secretKey), validity: validity, now: time.Now}
}

// Issue signs a token for the user that expires after the configured validity.
func (s *TokenService) Issue(userID, email string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.validity)),
		},
		UserID: userID,
		Email:  email,
	})

	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Verify checks signature, algorithm and expiry and returns the embedded
// claims. Expired tokens yield common.ErrTokenExpired; anything else that is
// wrong with the token yields common.ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
