package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdugdh24/recapp-backend/internal/config"
	"github.com/gdugdh24/recapp-backend/internal/domain"
)

var testSecret = strings.Repeat("k", 32)

func TestDevTokenRoundTrip(t *testing.T) {
	v, err := NewTokenVerifier(config.AuthConfig{Secret: testSecret, Issuer: "recapp", Audience: "mobile"})
	require.NoError(t, err)

	token, expiresAt, err := v.IssueDevToken("user-1")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	userID, err := v.VerifyToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestVerifyTokenRejects(t *testing.T) {
	v, err := NewTokenVerifier(config.AuthConfig{Secret: testSecret, Issuer: "recapp"})
	require.NoError(t, err)

	sign := func(claims jwt.MapClaims, secret string) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", sign(jwt.MapClaims{"sub": "u1", "iss": "recapp", "exp": exp}, strings.Repeat("x", 32))},
		{"expired", sign(jwt.MapClaims{"sub": "u1", "iss": "recapp", "exp": time.Now().Add(-time.Hour).Unix()}, testSecret)},
		{"no expiry", sign(jwt.MapClaims{"sub": "u1", "iss": "recapp"}, testSecret)},
		{"wrong issuer", sign(jwt.MapClaims{"sub": "u1", "iss": "other", "exp": exp}, testSecret)},
		{"no subject", sign(jwt.MapClaims{"iss": "recapp", "exp": exp}, testSecret)},
		{"none alg", func() string {
			s, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "u1", "iss": "recapp", "exp": exp}).
				SignedString(jwt.UnsafeAllowNoneSignatureType)
			require.NoError(t, err)
			return s
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.VerifyToken(context.Background(), tt.token)
			assert.ErrorIs(t, err, domain.ErrInvalidToken)
		})
	}
}

func TestVerifyTokenLegacyUserIDClaim(t *testing.T) {
	v, err := NewTokenVerifier(config.AuthConfig{Secret: testSecret})
	require.NoError(t, err)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": float64(42),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	userID, err := v.VerifyToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "42", userID)
}

func TestVerifyTokenRS256(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	v, err := NewTokenVerifier(config.AuthConfig{PublicKey: string(pemKey)})
	require.NoError(t, err)

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub": "firebase-uid",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(key)
	require.NoError(t, err)

	userID, err := v.VerifyToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "firebase-uid", userID)

	_, _, err = v.IssueDevToken("u1")
	assert.Error(t, err)
}
