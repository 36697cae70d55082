// Package identity resolves a login secret to the identity whose plan history
// is used. Identities are opaque short strings; the workout log only uses them
// as keys.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	// ErrUnknownCredential is returned when no identity matches a secret.
	ErrUnknownCredential = errors.New("identity: unknown credential")

	// ErrNoIdentities is returned by resolvers that have nothing configured.
	ErrNoIdentities = errors.New("identity: no identities configured")
)

// GuestIdentity is the identity the welcome message treats as a visitor.
const GuestIdentity = "guest"

// Resolver maps a secret to an identity.
type Resolver interface {
	Resolve(ctx context.Context, secret string) (string, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, secret string) (string, error)

func (f ResolverFunc) Resolve(ctx context.Context, secret string) (string, error) {
	return f(ctx, secret)
}

// Chain tries each resolver in order and returns the first identity found.
// ErrUnknownCredential and ErrNoIdentities move on to the next resolver; any
// other error is remembered and returned if nothing matches.
func Chain(resolvers ...Resolver) Resolver {
	return ResolverFunc(func(ctx context.Context, secret string) (string, error) {
		var firstErr error
		for _, r := range resolvers {
			id, err := r.Resolve(ctx, secret)
			if err == nil {
				return id, nil
			}
			if errors.Is(err, ErrUnknownCredential) || errors.Is(err, ErrNoIdentities) {
				continue
			}
			if firstErr == nil {
				firstErr = err
			}
		}
		if firstErr != nil {
			return "", firstErr
		}
		return "", ErrUnknownCredential
	})
}

// Welcome is the greeting shown after a successful login.
func Welcome(identity string) string {
	if strings.EqualFold(identity, GuestIdentity) {
		return "Welcome, Guest!"
	}
	return fmt.Sprintf("Welcome back, %s!", displayName(identity))
}

func displayName(identity string) string {
	r := []rune(identity)
	if len(r) == 0 {
		return identity
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
