package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	hashCost = bcrypt.MinCost
}

func mustHash(t *testing.T, secret string) string {
	t.Helper()
	h, err := HashSecret(secret)
	require.NoError(t, err)
	return h
}

func TestTableResolver(t *testing.T) {
	ctx := context.Background()
	r, err := NewTableResolver(map[string]string{
		"user":  mustHash(t, "correct horse"),
		"guest": mustHash(t, "welcome"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())

	id, err := r.Resolve(ctx, "welcome")
	require.NoError(t, err)
	assert.Equal(t, "guest", id)

	id, err = r.Resolve(ctx, "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "user", id)

	_, err = r.Resolve(ctx, "wrong")
	assert.ErrorIs(t, err, ErrUnknownCredential)

	_, err = r.Resolve(ctx, "")
	assert.ErrorIs(t, err, ErrUnknownCredential)
}

func TestTableResolver_Empty(t *testing.T) {
	r, err := NewTableResolver(nil)
	require.NoError(t, err)
	_, err = r.Resolve(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrNoIdentities)
}

func TestNewTableResolver_Invalid(t *testing.T) {
	_, err := NewTableResolver(map[string]string{"user": "plaintext"})
	assert.Error(t, err)

	_, err = NewTableResolver(map[string]string{"../x": mustHash(t, "s")})
	assert.Error(t, err)
}

func TestHashSecret(t *testing.T) {
	_, err := HashSecret("")
	assert.Error(t, err)

	h := mustHash(t, "s3cret")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(h), []byte("s3cret")))
}

func TestSecretOwner(t *testing.T) {
	hashes := map[string]string{
		"user":  mustHash(t, "correct horse"),
		"guest": mustHash(t, "welcome"),
	}

	owner, taken := SecretOwner(hashes, "welcome", "sam")
	assert.True(t, taken)
	assert.Equal(t, "guest", owner)

	_, taken = SecretOwner(hashes, "battery staple", "sam")
	assert.False(t, taken)

	// Resetting one's own password to the same value is allowed.
	_, taken = SecretOwner(hashes, "welcome", "guest")
	assert.False(t, taken)

	_, taken = SecretOwner(nil, "welcome", "sam")
	assert.False(t, taken)
}

// With a shared secret only the first identity in sorted order can sign in,
// which is why duplicates are refused when users are added.
func TestTableResolver_SharedSecretShadowsLaterIdentity(t *testing.T) {
	r, err := NewTableResolver(map[string]string{
		"bob":   mustHash(t, "same"),
		"alice": mustHash(t, "same"),
	})
	require.NoError(t, err)

	id, err := r.Resolve(context.Background(), "same")
	require.NoError(t, err)
	assert.Equal(t, "alice", id)
}

func TestTokenResolver(t *testing.T) {
	ctx := context.Background()
	key := []byte("signing-key")
	r := NewTokenResolver(key)

	token, err := IssueToken("girlfriend", key, time.Hour)
	require.NoError(t, err)

	id, err := r.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "girlfriend", id)

	t.Run("wrong key", func(t *testing.T) {
		_, err := NewTokenResolver([]byte("other")).Resolve(ctx, token)
		assert.ErrorIs(t, err, ErrUnknownCredential)
	})

	t.Run("expired", func(t *testing.T) {
		expired, err := IssueToken("guest", key, -time.Minute)
		require.NoError(t, err)
		_, err = r.Resolve(ctx, expired)
		assert.ErrorIs(t, err, ErrUnknownCredential)
	})

	t.Run("not a token", func(t *testing.T) {
		_, err := r.Resolve(ctx, "welcome")
		assert.ErrorIs(t, err, ErrUnknownCredential)
	})

	t.Run("no key", func(t *testing.T) {
		_, err := NewTokenResolver(nil).Resolve(ctx, token)
		assert.ErrorIs(t, err, ErrNoIdentities)
	})

	t.Run("issue rejects bad input", func(t *testing.T) {
		_, err := IssueToken("", key, time.Hour)
		assert.Error(t, err)
		_, err = IssueToken("guest", nil, time.Hour)
		assert.Error(t, err)
	})
}

func TestChain(t *testing.T) {
	ctx := context.Background()
	key := []byte("k")
	table, err := NewTableResolver(map[string]string{"guest": mustHash(t, "welcome")})
	require.NoError(t, err)
	chain := Chain(NewTokenResolver(key), table)

	id, err := chain.Resolve(ctx, "welcome")
	require.NoError(t, err)
	assert.Equal(t, "guest", id)

	token, err := IssueToken("user", key, time.Hour)
	require.NoError(t, err)
	id, err = chain.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user", id)

	_, err = chain.Resolve(ctx, "nope")
	assert.ErrorIs(t, err, ErrUnknownCredential)

	boom := errors.New("auth service down")
	failing := ResolverFunc(func(context.Context, string) (string, error) { return "", boom })
	_, err = Chain(failing, table).Resolve(ctx, "nope")
	assert.ErrorIs(t, err, boom)

	_, err = Chain().Resolve(ctx, "x")
	assert.ErrorIs(t, err, ErrUnknownCredential)
}

func TestWelcome(t *testing.T) {
	assert.Equal(t, "Welcome, Guest!", Welcome("guest"))
	assert.Equal(t, "Welcome back, User!", Welcome("user"))
	assert.Equal(t, "Welcome back, Girlfriend!", Welcome("girlfriend"))
}
