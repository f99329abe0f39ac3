// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

// Password hashes are stored in PHC string form:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
}

var currentParams = argonParams{
	memory:  64 * 1024,
	time:    1,
	threads: 4,
	keyLen:  32,
}

const (
	saltLength  = 16
	nonceLength = 16
)

var errMalformedHash = errors.New("malformed password hash")

// PasswordCheck is the outcome of comparing a password against a stored
// hash. Upgraded is set when the stored hash used outdated parameters and
// the caller should persist the replacement.
type PasswordCheck struct {
	Match    bool
	Upgraded string
}

func HashPassword(password string) (string, error) {
	salt, err := randomBytes(saltLength)
	if err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return encodePHC(currentParams, salt, derive(password, salt, currentParams)), nil
}

// CheckPassword compares password against an encoded hash in constant time.
// An empty stored hash never matches but still costs one derivation.
func CheckPassword(password, encoded string) (PasswordCheck, error) {
	if encoded == "" {
		BurnPasswordCheck(password)
		return PasswordCheck{}, nil
	}

	params, salt, want, err := decodePHC(encoded)
	if err != nil {
		return PasswordCheck{}, err
	}

	got := derive(password, salt, params)
	if subtle.ConstantTimeCompare(want, got) != 1 {
		return PasswordCheck{}, nil
	}

	check := PasswordCheck{Match: true}
	if params != currentParams {
		if upgraded, hashErr := HashPassword(password); hashErr == nil {
			check.Upgraded = upgraded
		}
	}
	return check, nil
}

var decoyHash = sync.OnceValue(func() string {
	hash, err := HashPassword("decoy-password-for-unknown-accounts")
	if err != nil {
		panic(fmt.Sprintf("security: derive decoy hash: %v", err))
	}
	return hash
})

// BurnPasswordCheck spends the same work as a real comparison so that a
// login for an unknown username takes as long as a wrong password.
func BurnPasswordCheck(password string) {
	params, salt, _, err := decodePHC(decoyHash())
	if err != nil {
		return
	}
	_ = derive(password, salt, params)
}

func derive(password string, salt []byte, p argonParams) []byte {
	return argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, p.keyLen)
}

func encodePHC(p argonParams, salt, key []byte) string {
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.memory,
		p.time,
		p.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
}

func decodePHC(encoded string) (argonParams, []byte, []byte, error) {
	var p argonParams

	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != "argon2id" {
		return p, nil, nil, errMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil {
		return p, nil, nil, fmt.Errorf("%w: version: %w", errMalformedHash, err)
	}
	if version != argon2.Version {
		return p, nil, nil, fmt.Errorf("%w: argon2 version %d", errMalformedHash, version)
	}

	if _, err := fmt.Sscanf(
		fields[3],
		"m=%d,t=%d,p=%d",
		&p.memory,
		&p.time,
		&p.threads,
	); err != nil {
		return p, nil, nil, fmt.Errorf("%w: params: %w", errMalformedHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(fields[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: salt: %w", errMalformedHash, err)
	}

	key, err := base64.RawStdEncoding.DecodeString(fields[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: key: %w", errMalformedHash, err)
	}

	//nolint:gosec // G115: argon2 keys are a few dozen bytes
	p.keyLen = uint32(len(key))

	return p, salt, key, nil
}

// NewNonce returns a random URL-safe string used to make tokens minted in
// the same second distinct.
func NewNonce() (string, error) {
	b, err := randomBytes(nonceLength)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashToken is the digest stored in a user's live refresh token set.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("read random bytes: %w", err)
	}
	return b, nil
}
