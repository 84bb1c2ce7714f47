// Package cryptox hashes and verifies passwords with argon2id.
//
// Encoded hashes have the form
//
//	argon2id$<time>$<memoryKiB>$<threads>$<salt hex>$<key hex>
//
// so parameters can be raised later without invalidating stored users.
package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	scheme    = "argon2id"
	saltLen   = 16
	keyLen    = 32
	timeCost  = 1
	memoryKiB = 64 * 1024
	threads   = 4
)

var ErrMalformedHash = errors.New("malformed password hash")

// randRead is a seam for tests.
var randRead = rand.Read

// DeriveKey stretches password with salt.
func DeriveKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, timeCost, memoryKiB, threads, keyLen)
}

// HashPassword returns an encoded argon2id hash with a fresh random salt.
func HashPassword(password []byte) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := randRead(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := DeriveKey(password, salt)
	return fmt.Sprintf("%s$%d$%d$%d$%s$%s", scheme, timeCost, memoryKiB, threads,
		hex.EncodeToString(salt), hex.EncodeToString(key)), nil
}

// VerifyPassword reports whether password matches encoded.
func VerifyPassword(password []byte, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != scheme {
		return false, ErrMalformedHash
	}

	t, err1 := strconv.ParseUint(parts[1], 10, 32)
	m, err2 := strconv.ParseUint(parts[2], 10, 32)
	p, err3 := strconv.ParseUint(parts[3], 10, 8)
	if err := errors.Join(err1, err2, err3); err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}

	salt, err := hex.DecodeString(parts[4])
	if err != nil {
		return false, ErrMalformedHash
	}
	want, err := hex.DecodeString(parts[5])
	if err != nil {
		return false, ErrMalformedHash
	}

	got := argon2.IDKey(password, salt, uint32(t), uint32(m), uint8(p), uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
