package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "aeroops-api"

// Token-use claim values. Access tokens carry the caller's grants and are
// accepted by the API middleware; refresh tokens carry only the identity and
// are accepted only by the token-refresh endpoint. Validation checks the
// claim so one kind can never be presented where the other is expected.
const (
	tokenUseAccess  = "access"
	tokenUseRefresh = "refresh"
)

// JWTClaims represents the claims in a JWT token
type JWTClaims struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email,omitempty"`
	Roles       []string  `json:"roles,omitempty"`
	Permissions []string  `json:"permissions,omitempty"`
	TokenUse    string    `json:"token_use"`
	jwt.RegisteredClaims
}

// JWTManager handles JWT token generation and validation
type JWTManager struct {
	secretKey          []byte
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secret string, accessExpiry, refreshExpiry time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:          []byte(secret),
		accessTokenExpiry:  accessExpiry,
		refreshTokenExpiry: refreshExpiry,
	}
}

// GenerateAccessToken generates a new access token carrying the member's
// roles and permissions
func (m *JWTManager) GenerateAccessToken(userID uuid.UUID, email string, roles, permissions []string) (string, error) {
	return m.sign(&JWTClaims{
		UserID:           userID,
		Email:            email,
		Roles:            roles,
		Permissions:      permissions,
		TokenUse:         tokenUseAccess,
		RegisteredClaims: m.registeredClaims(userID, m.accessTokenExpiry),
	})
}

// GenerateRefreshToken generates a new refresh token. It carries no grants;
// the current roles and permissions are re-read from the database when the
// token is exchanged.
func (m *JWTManager) GenerateRefreshToken(userID uuid.UUID) (string, error) {
	return m.sign(&JWTClaims{
		UserID:           userID,
		TokenUse:         tokenUseRefresh,
		RegisteredClaims: m.registeredClaims(userID, m.refreshTokenExpiry),
	})
}

// ValidateAccessToken validates an access token and returns the claims
func (m *JWTManager) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	return m.parse(tokenString, tokenUseAccess)
}

// ValidateRefreshToken validates a refresh token and returns the user ID
func (m *JWTManager) ValidateRefreshToken(tokenString string) (uuid.UUID, error) {
	claims, err := m.parse(tokenString, tokenUseRefresh)
	if err != nil {
		return uuid.Nil, err
	}
	if claims.UserID == uuid.Nil {
		return uuid.Nil, errors.New("invalid user ID in token")
	}
	return claims.UserID, nil
}

func (m *JWTManager) registeredClaims(userID uuid.UUID, expiry time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    tokenIssuer,
		Subject:   userID.String(),
	}
}

func (m *JWTManager) sign(claims *JWTClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretKey)
}

func (m *JWTManager) parse(tokenString, expectedUse string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secretKey, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.TokenUse != expectedUse {
		return nil, fmt.Errorf("token use is not %s", expectedUse)
	}
	return claims, nil
}
