package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_IssueAndParse(t *testing.T) {
	j := NewJWT("secret", time.Minute)

	raw, expiresIn, err := j.Issue("user-1", "amy@test.com", false, 3)
	require.NoError(t, err)
	assert.Equal(t, 60, expiresIn)

	claims, err := j.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "amy@test.com", claims.Email)
	assert.False(t, claims.Anonymous)
	assert.Equal(t, 3, claims.TokenVersion)
}

func TestJWT_Anonymous(t *testing.T) {
	j := NewJWT("secret", time.Minute)

	raw, _, err := j.Issue("anon-1", "", true, 0)
	require.NoError(t, err)

	claims, err := j.Parse(raw)
	require.NoError(t, err)
	assert.True(t, claims.Anonymous)
	assert.Empty(t, claims.Email)
}

func TestJWT_Parse_Rejects(t *testing.T) {
	j := NewJWT("secret", time.Minute)
	issued, _, err := j.Issue("user-1", "amy@test.com", false, 0)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewJWT("other", time.Minute).Parse(issued)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		late := NewJWT("secret", time.Minute)
		late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := late.Parse(issued)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none alg", func(t *testing.T) {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "user-1"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = j.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := j.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
