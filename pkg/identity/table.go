package identity

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/crypto/bcrypt"
)

// hashCost is the bcrypt cost used by HashSecret.
var hashCost = bcrypt.DefaultCost

// HashSecret returns the bcrypt hash stored in the identity table.
func HashSecret(secret string) (string, error) {
	if secret == "" {
		return "", errors.New("identity: empty secret")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(secret), hashCost)
	if err != nil {
		return "", fmt.Errorf("identity: hash secret: %w", err)
	}
	return string(h), nil
}

// SecretOwner reports which identity in hashes, other than except, already
// signs in with secret. Table secrets must be distinct, so a new secret is
// only accepted when no other identity owns it.
func SecretOwner(hashes map[string]string, secret, except string) (string, bool) {
	names := make([]string, 0, len(hashes))
	for name := range hashes {
		if name != except {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		if bcrypt.CompareHashAndPassword([]byte(hashes[name]), []byte(secret)) == nil {
			return name, true
		}
	}
	return "", false
}

type tableEntry struct {
	identity string
	hash     []byte
}

// TableResolver matches a secret against a table of bcrypt hashes, one per
// identity. The secret alone selects the identity, so secrets must be
// distinct.
type TableResolver struct {
	entries []tableEntry
}

// NewTableResolver builds a resolver from identity → bcrypt hash.
func NewTableResolver(hashes map[string]string) (*TableResolver, error) {
	names := make([]string, 0, len(hashes))
	for name := range hashes {
		names = append(names, name)
	}
	sort.Strings(names)

	t := &TableResolver{}
	for _, name := range names {
		if err := checkName(name); err != nil {
			return nil, err
		}
		h := []byte(hashes[name])
		if _, err := bcrypt.Cost(h); err != nil {
			return nil, fmt.Errorf("identity: invalid hash for %q: %w", name, err)
		}
		t.entries = append(t.entries, tableEntry{identity: name, hash: h})
	}
	return t, nil
}

// Len returns the number of identities in the table.
func (t *TableResolver) Len() int {
	return len(t.entries)
}

func (t *TableResolver) Resolve(ctx context.Context, secret string) (string, error) {
	if len(t.entries) == 0 {
		return "", ErrNoIdentities
	}
	if secret == "" {
		return "", ErrUnknownCredential
	}
	for _, e := range t.entries {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if bcrypt.CompareHashAndPassword(e.hash, []byte(secret)) == nil {
			return e.identity, nil
		}
	}
	return "", ErrUnknownCredential
}
