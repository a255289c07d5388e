package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType represents the type of JWT token
type TokenType string

const (
	AccessToken       TokenType = "access"
	VerificationToken TokenType = "verification"
)

const issuer = "skybooking"

// Claims is shared by both token types. The pending-registration fields
// are only set on verification tokens.
type Claims struct {
	UserID       int64     `json:"user_id,omitempty"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	PasswordHash string    `json:"password_hash,omitempty"`
	TokenType    TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// Service handles JWT operations
type Service struct {
	secret             string
	accessTokenExpiry  time.Duration
	verificationExpiry time.Duration
}

func NewService(secret string, accessExpiry, verificationExpiry time.Duration) *Service {
	return &Service{
		secret:             secret,
		accessTokenExpiry:  accessExpiry,
		verificationExpiry: verificationExpiry,
	}
}

func (s *Service) AccessTokenExpiry() time.Duration {
	return s.accessTokenExpiry
}

func (s *Service) VerificationExpiry() time.Duration {
	return s.verificationExpiry
}

// GenerateAccessToken issues a bearer token for a verified user.
func (s *Service) GenerateAccessToken(userID int64, email string) (string, error) {
	return s.sign(Claims{
		UserID:    userID,
		Email:     email,
		TokenType: AccessToken,
	}, strconv.FormatInt(userID, 10), s.accessTokenExpiry)
}

// GenerateVerificationToken carries a pending registration until the email
// link is followed.
func (s *Service) GenerateVerificationToken(name, email, passwordHash string) (string, error) {
	return s.sign(Claims{
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		TokenType:    VerificationToken,
	}, email, s.verificationExpiry)
}

func (s *Service) sign(claims Claims, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    issuer,
		Subject:   subject,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", claims.TokenType, err)
	}
	return tokenString, nil
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.validateToken(tokenString, AccessToken)
}

func (s *Service) ValidateVerificationToken(tokenString string) (*Claims, error) {
	return s.validateToken(tokenString, VerificationToken)
}

func (s *Service) validateToken(tokenString string, expectedType TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if claims.TokenType != expectedType {
		return nil, fmt.Errorf("invalid token type: expected %s, got %s", expectedType, claims.TokenType)
	}

	return claims, nil
}

// IsExpired reports whether err from a Validate call was caused by expiry.
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}
