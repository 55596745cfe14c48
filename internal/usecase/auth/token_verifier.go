package auth

import (
	"context"
	"crypto/rsa"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gdugdh24/recapp-backend/internal/config"
	"github.com/gdugdh24/recapp-backend/internal/domain"
)

// TokenVerifier resolves a bearer token to the caller's user id.
// Tokens are signed either with a shared HS256 secret or by the identity
// provider's RS256 key.
type TokenVerifier struct {
	secret    []byte
	publicKey *rsa.PublicKey
	issuer    string
	audience  string
	devTTL    time.Duration
	now       func() time.Time
}

func NewTokenVerifier(cfg config.AuthConfig) (*TokenVerifier, error) {
	v := &TokenVerifier{
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		devTTL:   cfg.DevTTL,
		now:      time.Now,
	}
	if cfg.Secret != "" {
		v.secret = []byte(cfg.Secret)
	}
	if cfg.PublicKey != "" {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKey))
		if err != nil {
			return nil, fmt.Errorf("failed to parse JWT public key: %w", err)
		}
		v.publicKey = key
	}
	if v.secret == nil && v.publicKey == nil {
		return nil, fmt.Errorf("JWT secret or public key is required")
	}
	if v.devTTL <= 0 {
		v.devTTL = 24 * time.Hour
	}
	return v, nil
}

func (v *TokenVerifier) validMethods() []string {
	var methods []string
	if v.secret != nil {
		methods = append(methods, jwt.SigningMethodHS256.Alg())
	}
	if v.publicKey != nil {
		methods = append(methods, jwt.SigningMethodRS256.Alg())
	}
	return methods
}

func (v *TokenVerifier) keyFunc(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if v.secret != nil {
			return v.secret, nil
		}
	case *jwt.SigningMethodRSA:
		if v.publicKey != nil {
			return v.publicKey, nil
		}
	}
	return nil, domain.ErrInvalidToken
}

// VerifyToken validates signature, expiry and the configured issuer and
// audience, and returns the subject.
func (v *TokenVerifier) VerifyToken(ctx context.Context, tokenString string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(v.validMethods()),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.keyFunc, opts...)
	if err != nil || !token.Valid {
		return "", domain.ErrInvalidToken
	}

	userID := subjectOf(claims)
	if userID == "" {
		return "", domain.ErrInvalidToken
	}
	return userID, nil
}

// subjectOf prefers the standard sub claim and falls back to user_id.
func subjectOf(claims jwt.MapClaims) string {
	if sub, err := claims.GetSubject(); err == nil && strings.TrimSpace(sub) != "" {
		return strings.TrimSpace(sub)
	}
	switch id := claims["user_id"].(type) {
	case string:
		return strings.TrimSpace(id)
	case float64:
		return strconv.FormatInt(int64(id), 10)
	}
	return ""
}

// IssueDevToken signs a short-lived HS256 token for local development.
func (v *TokenVerifier) IssueDevToken(userID string) (string, time.Time, error) {
	if v.secret == nil {
		return "", time.Time{}, fmt.Errorf("development tokens require JWT_SECRET")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", time.Time{}, domain.NewError(domain.KindValidation, "user_id is required")
	}

	now := v.now()
	expiresAt := now.Add(v.devTTL)
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	if v.issuer != "" {
		claims.Issuer = v.issuer
	}
	if v.audience != "" {
		claims.Audience = jwt.ClaimStrings{v.audience}
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expiresAt, nil
}
