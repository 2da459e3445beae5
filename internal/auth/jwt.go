package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"acp-checkout-gateway/internal/core/ports"
)

// JWTVerifier validates HS256-signed bearer tokens against a shared secret.
// Unlike the teacher's token service, this verifier never issues tokens —
// token issuance is an external concern for whatever identity system the
// merchant integrates; this core only verifies.
type JWTVerifier struct {
	secret []byte
	issuer string
}

// NewJWTVerifier builds a verifier checking signature and issuer.
func NewJWTVerifier(secret, issuer string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), issuer: issuer}
}

// Verify parses credential as a JWT, checking signing method and issuer.
func (v *JWTVerifier) Verify(_ context.Context, credential string) error {
	if credential == "" {
		return fmt.Errorf("missing bearer credential")
	}
	token, err := jwt.Parse(credential, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return fmt.Errorf("invalid token")
	}
	if v.issuer == "" {
		return nil
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return fmt.Errorf("invalid token claims")
	}
	iss, _ := claims["iss"].(string)
	if iss != v.issuer {
		return fmt.Errorf("unexpected issuer %q", iss)
	}
	return nil
}

var _ ports.AuthVerifier = (*JWTVerifier)(nil)
