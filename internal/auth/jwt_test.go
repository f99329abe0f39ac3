// AngelaMos | 2026
// jwt_test.go

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/social-backend/internal/config"
	"github.com/carterperez-dev/templates/social-backend/internal/core"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var epoch = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func testJWTConfig(secret string) config.JWTConfig {
	return config.JWTConfig{
		Secret:             secret,
		AccessTokenExpire:  15 * time.Minute,
		RefreshTokenExpire: 7 * 24 * time.Hour,
		Issuer:             "social-api",
		Audience:           "social-clients",
	}
}

// fixedClock returns a codec clock that can be moved by the test.
func fixedClock(start time.Time) (Clock, func(time.Duration)) {
	now := start
	return func() time.Time { return now }, func(d time.Duration) { now = now.Add(d) }
}

func newTestCodec(t *testing.T, secret string) *TokenCodec {
	t.Helper()
	c, err := NewTokenCodec(testJWTConfig(secret))
	require.NoError(t, err)
	return c
}

func TestNewTokenCodec_EmptySecret(t *testing.T) {
	_, err := NewTokenCodec(testJWTConfig(""))
	require.Error(t, err)
}

func TestTokenCodec_SignVerifyRoundTrip(t *testing.T) {
	codec := newTestCodec(t, testSecret)

	for _, typ := range []TokenType{TokenTypeAccess, TokenTypeRefresh} {
		token, signed, err := codec.Sign("user-1", typ)
		require.NoError(t, err)

		claims, err := codec.Verify(token, typ)
		require.NoError(t, err, typ)
		assert.Equal(t, "user-1", claims.UserID)
		assert.Equal(t, typ, claims.Type)
		assert.Equal(t, signed.ID, claims.ID)
		assert.Equal(t, signed.Nonce, claims.Nonce)
	}
}

func TestTokenCodec_RejectsOtherSecret(t *testing.T) {
	token, _, err := newTestCodec(t, testSecret).Sign("user-1", TokenTypeAccess)
	require.NoError(t, err)

	other := newTestCodec(t, "ffffffffffffffffffffffffffffffff")
	_, err = other.Verify(token, TokenTypeAccess)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestTokenCodec_RejectsWrongType(t *testing.T) {
	codec := newTestCodec(t, testSecret)

	access, _, err := codec.Sign("user-1", TokenTypeAccess)
	require.NoError(t, err)
	refresh, _, err := codec.Sign("user-1", TokenTypeRefresh)
	require.NoError(t, err)

	_, err = codec.Verify(access, TokenTypeRefresh)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)

	_, err = codec.Verify(refresh, TokenTypeAccess)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestTokenCodec_RejectsGarbage(t *testing.T) {
	codec := newTestCodec(t, testSecret)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := codec.Verify(token, TokenTypeAccess)
		assert.ErrorIs(t, err, core.ErrTokenInvalid, token)
	}
}

func TestTokenCodec_ExpiryBoundary(t *testing.T) {
	clock, advance := fixedClock(epoch)
	codec := newTestCodec(t, testSecret).WithClock(clock)

	token, claims, err := codec.Sign("user-1", TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, epoch.Add(15*time.Minute), claims.ExpiresAt)

	advance(15*time.Minute - time.Second)
	_, err = codec.Verify(token, TokenTypeAccess)
	require.NoError(t, err)

	advance(time.Second)
	_, err = codec.Verify(token, TokenTypeAccess)
	assert.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestTokenCodec_RefreshLifetime(t *testing.T) {
	clock, _ := fixedClock(epoch)
	codec := newTestCodec(t, testSecret).WithClock(clock)

	_, claims, err := codec.Sign("user-1", TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, epoch.Add(7*24*time.Hour), claims.ExpiresAt)
}

func TestTokenCodec_SameInstantTokensDiffer(t *testing.T) {
	clock, _ := fixedClock(epoch)
	codec := newTestCodec(t, testSecret).WithClock(clock)

	first, _, err := codec.Sign("user-1", TokenTypeRefresh)
	require.NoError(t, err)
	second, _, err := codec.Sign("user-1", TokenTypeRefresh)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestTokenCodec_VerifyAccessToken(t *testing.T) {
	codec := newTestCodec(t, testSecret)

	token, signed, err := codec.Sign("user-9", TokenTypeAccess)
	require.NoError(t, err)

	claims, err := codec.VerifyAccessToken(t.Context(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-9", claims.UserID)
	assert.Equal(t, signed.ID, claims.TokenID)
	assert.WithinDuration(t, signed.ExpiresAt, claims.ExpiresAt, time.Second)
}
