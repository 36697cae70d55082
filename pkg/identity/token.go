package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenResolver accepts HS256 tokens issued by an external auth service. The
// token subject is the identity.
type TokenResolver struct {
	key []byte
}

// NewTokenResolver returns a resolver verifying tokens signed with key.
func NewTokenResolver(key []byte) *TokenResolver {
	return &TokenResolver{key: key}
}

// IssueToken signs a token for identity valid for ttl.
func IssueToken(identity string, key []byte, ttl time.Duration) (string, error) {
	if err := checkName(identity); err != nil {
		return "", err
	}
	if len(key) == 0 {
		return "", errors.New("identity: empty signing key")
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   identity,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	s, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("identity: sign token: %w", err)
	}
	return s, nil
}

// Resolve reports ErrUnknownCredential for anything that is not a valid,
// unexpired token.
func (r *TokenResolver) Resolve(_ context.Context, secret string) (string, error) {
	if len(r.key) == 0 {
		return "", ErrNoIdentities
	}
	if strings.Count(secret, ".") != 2 {
		return "", ErrUnknownCredential
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(secret, claims, func(*jwt.Token) (interface{}, error) {
		return r.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrUnknownCredential, err)
	}
	if err := checkName(claims.Subject); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnknownCredential, err)
	}
	return claims.Subject, nil
}

func checkName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("identity: empty identity")
	}
	if strings.ContainsAny(name, "/\\\x00") {
		return fmt.Errorf("identity: %q contains a path separator", name)
	}
	return nil
}
