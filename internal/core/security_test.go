// AngelaMos | 2026
// security_test.go

package core

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_Check(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=1,p=4$"))

	check, err := CheckPassword("correct-horse", hash)
	require.NoError(t, err)
	assert.True(t, check.Match)
	assert.Empty(t, check.Upgraded)

	check, err = CheckPassword("wrong-horse", hash)
	require.NoError(t, err)
	assert.False(t, check.Match)

	other, err := HashPassword("correct-horse")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)
}

func TestCheckPassword_UpgradesOutdatedParams(t *testing.T) {
	old := argonParams{memory: 8 * 1024, time: 1, threads: 1, keyLen: 32}
	salt := []byte("0123456789abcdef")
	stored := encodePHC(old, salt, derive("pw", salt, old))

	check, err := CheckPassword("pw", stored)
	require.NoError(t, err)
	require.True(t, check.Match)
	require.NotEmpty(t, check.Upgraded)

	params, _, _, err := decodePHC(check.Upgraded)
	require.NoError(t, err)
	assert.Equal(t, currentParams, params)
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	salt := base64.RawStdEncoding.EncodeToString([]byte("salt"))
	for _, encoded := range []string{
		"not-a-hash",
		"$bcrypt$v=19$m=1,t=1,p=1$" + salt + "$" + salt,
		"$argon2id$v=16$m=1,t=1,p=1$" + salt + "$" + salt,
		"$argon2id$v=19$m=x$" + salt + "$" + salt,
		"$argon2id$v=19$m=1,t=1,p=1$!!$" + salt,
	} {
		_, err := CheckPassword("pw", encoded)
		assert.ErrorIs(t, err, errMalformedHash, encoded)
	}
}

func TestCheckPassword_EmptyHashNeverMatches(t *testing.T) {
	check, err := CheckPassword("decoy-password-for-unknown-accounts", "")
	require.NoError(t, err)
	assert.False(t, check.Match)
}

func TestHashToken(t *testing.T) {
	digest := HashToken("refresh-token")
	assert.Len(t, digest, 64)
	assert.Equal(t, digest, HashToken("refresh-token"))
	assert.NotEqual(t, digest, HashToken("refresh-token2"))
}

func TestNewNonce(t *testing.T) {
	a, err := NewNonce()
	require.NoError(t, err)
	b, err := NewNonce()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, "=")
}
