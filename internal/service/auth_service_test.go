package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
)

const testJWTSecret = "test-secret"

func signTestToken(t *testing.T, claims models.JWTClaims, method jwt.SigningMethod, key interface{}) string {
	t.Helper()
	token := jwt.NewWithClaims(method, claims)
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func validClaims() models.JWTClaims {
	return models.JWTClaims{
		Email: "coach@example.com",
		Role:  models.RoleAuthenticated,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "coach-1",
			Issuer:    "https://auth.example.com",
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func newTestAuth() *AuthService {
	return NewAuthService(nil, AuthConfig{
		AccessTokenSecret: testJWTSecret,
		Issuer:            "https://auth.example.com",
		Audience:          []string{"authenticated"},
	})
}

func TestValidateTokenSuccess(t *testing.T) {
	token := signTestToken(t, validClaims(), jwt.SigningMethodHS256, []byte(testJWTSecret))

	claims, err := newTestAuth().ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "coach-1", claims.CoachID())
	assert.Equal(t, "coach@example.com", claims.Email)
}

func TestValidateTokenRejections(t *testing.T) {
	svc := newTestAuth()

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	noSubject := validClaims()
	noSubject.Subject = ""

	wrongAudience := validClaims()
	wrongAudience.Audience = jwt.ClaimStrings{"service_role"}

	wrongIssuer := validClaims()
	wrongIssuer.Issuer = "https://evil.example.com"

	cases := map[string]string{
		"expired":        signTestToken(t, expired, jwt.SigningMethodHS256, []byte(testJWTSecret)),
		"no subject":     signTestToken(t, noSubject, jwt.SigningMethodHS256, []byte(testJWTSecret)),
		"wrong audience": signTestToken(t, wrongAudience, jwt.SigningMethodHS256, []byte(testJWTSecret)),
		"wrong issuer":   signTestToken(t, wrongIssuer, jwt.SigningMethodHS256, []byte(testJWTSecret)),
		"wrong secret":   signTestToken(t, validClaims(), jwt.SigningMethodHS256, []byte("other")),
		"garbage":        "not-a-token",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			assert.Error(t, err)
		})
	}
}
