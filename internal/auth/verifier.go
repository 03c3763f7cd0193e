package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"stackit/internal/config"
)

// Identity is the authenticated user as established by the auth service.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Verifier checks GoTrue access tokens offline using the project JWT secret.
type Verifier struct {
	secret []byte
}

func NewVerifier(cfg *config.Config) *Verifier {
	return &Verifier{secret: []byte(cfg.Supabase.JWTSecret)}
}

type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (v *Verifier) Verify(tokenString string) (*Identity, error) {
	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid access token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("invalid access token")
	}
	return &Identity{ID: claims.Subject, Email: claims.Email}, nil
}
