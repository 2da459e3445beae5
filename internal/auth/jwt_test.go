package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return signed
}

func TestJWTVerifier_Verify_ValidTokenNoIssuerCheck(t *testing.T) {
	v := NewJWTVerifier("shared-secret", "")
	tok := signToken(t, "shared-secret", jwt.MapClaims{"sub": "merchant_1", "exp": time.Now().Add(time.Hour).Unix()})

	assert.NoError(t, v.Verify(context.Background(), tok))
}

func TestJWTVerifier_Verify_WrongSecretRejected(t *testing.T) {
	v := NewJWTVerifier("shared-secret", "")
	tok := signToken(t, "other-secret", jwt.MapClaims{"sub": "merchant_1"})

	assert.Error(t, v.Verify(context.Background(), tok))
}

func TestJWTVerifier_Verify_IssuerMismatchRejected(t *testing.T) {
	v := NewJWTVerifier("shared-secret", "acp-gateway")
	tok := signToken(t, "shared-secret", jwt.MapClaims{"iss": "someone-else"})

	assert.Error(t, v.Verify(context.Background(), tok))
}

func TestJWTVerifier_Verify_IssuerMatchAccepted(t *testing.T) {
	v := NewJWTVerifier("shared-secret", "acp-gateway")
	tok := signToken(t, "shared-secret", jwt.MapClaims{"iss": "acp-gateway"})

	assert.NoError(t, v.Verify(context.Background(), tok))
}

func TestJWTVerifier_Verify_EmptyCredential(t *testing.T) {
	v := NewJWTVerifier("shared-secret", "")
	assert.Error(t, v.Verify(context.Background(), ""))
}

func TestJWTVerifier_Verify_WrongSigningMethodRejected(t *testing.T) {
	v := NewJWTVerifier("shared-secret", "")
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "x"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing none-alg token: %v", err)
	}

	assert.Error(t, v.Verify(context.Background(), signed))
}
