package security

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastArgon() *ArgonHash {
	return &ArgonHash{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

func TestArgonRoundTrip(t *testing.T) {
	a := fastArgon()

	hash, err := a.Hash("hunter22")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"))

	ok, err := a.Verify("hunter22", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.Verify("hunter23", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	// parameters come from the stored hash, not the hasher
	ok, err = NewArgon().Verify("hunter22", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestArgonSaltsDiffer(t *testing.T) {
	a := fastArgon()

	h1, err := a.Hash("same")
	require.NoError(t, err)
	h2, err := a.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestArgonInvalidHash(t *testing.T) {
	for _, e := range []string{"", "plain", "$bcrypt$v=19$m=1,t=1,p=1$a$b", "$argon2id$v=19$garbage$a$b"} {
		_, err := fastArgon().Verify("x", e)
		assert.ErrorIs(t, err, ErrInvalidHash, e)
	}
}

func TestNewVerificationCode(t *testing.T) {
	for range 1000 {
		code, err := NewVerificationCode()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, code, 100000)
		assert.LessOrEqual(t, code, 999999)
	}
}

func TestTokens(t *testing.T) {
	tokens, err := NewTokens("secret", "HS256", time.Minute, time.Hour)
	require.NoError(t, err)

	pair, err := tokens.Pair(42)
	require.NoError(t, err)
	assert.Equal(t, "bearer", pair.TokenType)

	c, err := tokens.Verify(pair.AccessToken, AccessToken)
	require.NoError(t, err)
	id, err := c.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	c, err = tokens.Verify(pair.RefreshToken, RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "42", c.Subject)

	t.Run("wrong type", func(t *testing.T) {
		_, err := tokens.Verify(pair.AccessToken, RefreshToken)
		assert.ErrorIs(t, err, ErrTokenInvalid)

		_, err = tokens.Verify(pair.RefreshToken, AccessToken)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("tampered", func(t *testing.T) {
		_, err := tokens.Verify(pair.AccessToken+"x", AccessToken)
		assert.ErrorIs(t, err, ErrTokenInvalid)

		_, err = tokens.Verify("not.a.token", AccessToken)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("other secret", func(t *testing.T) {
		other, err := NewTokens("other", "HS256", time.Minute, time.Hour)
		require.NoError(t, err)

		_, err = other.Verify(pair.AccessToken, AccessToken)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("other algorithm", func(t *testing.T) {
		other, err := NewTokens("secret", "HS512", time.Minute, time.Hour)
		require.NoError(t, err)

		_, err = other.Verify(pair.AccessToken, AccessToken)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("expired", func(t *testing.T) {
		tokens.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
		defer func() { tokens.now = time.Now }()

		_, err := tokens.Verify(pair.AccessToken, AccessToken)
		assert.ErrorIs(t, err, ErrTokenExpired)

		// refresh tokens live longer
		_, err = tokens.Verify(pair.RefreshToken, RefreshToken)
		assert.NoError(t, err)
	})
}

func TestNewTokensRejectsNonHMAC(t *testing.T) {
	_, err := NewTokens("secret", "RS256", time.Minute, time.Hour)
	assert.Error(t, err)

	_, err = NewTokens("", "HS256", time.Minute, time.Hour)
	assert.Error(t, err)
}
