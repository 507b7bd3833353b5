package password

import (
	"testing"

	"github.com/alexedwards/argon2id"
	"github.com/stretchr/testify/require"
)

// cheap parameters keep the suite fast
var testParams = &argon2id.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestHasher_RoundTrip(t *testing.T) {
	h := NewHasher("pepper", testParams)

	for _, pw := range []string{"Secret123", "", "пароль", "a very long passphrase with spaces"} {
		hash, err := h.Hash(pw)
		require.NoError(t, err)
		require.NotEqual(t, pw, hash)
		require.True(t, h.Verify(pw, hash))
		require.False(t, h.Verify(pw+"x", hash))
	}
}

func TestHasher_SaltPerCall(t *testing.T) {
	h := NewHasher("", testParams)
	a, _ := h.Hash("Secret123")
	b, _ := h.Hash("Secret123")
	require.NotEqual(t, a, b)
}

func TestHasher_PepperMatters(t *testing.T) {
	hash, _ := NewHasher("one", testParams).Hash("Secret123")
	require.False(t, NewHasher("two", testParams).Verify("Secret123", hash))
}

func TestHasher_FailsClosed(t *testing.T) {
	h := NewHasher("pepper", testParams)
	require.False(t, h.Verify("Secret123", ""))
	require.False(t, h.Verify("Secret123", "not-a-hash"))
	require.False(t, h.Verify("Secret123", "$argon2id$v=19$m=oops"))
}

func TestNewHasher_DefaultParams(t *testing.T) {
	require.Same(t, DefaultParams, NewHasher("", nil).params)
}
