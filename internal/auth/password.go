// Package auth derives and verifies password credentials.
//
// A credential is stored as "salt:hash", both hex-encoded. The salt is
// random per derivation, so hashing the same password twice never yields
// the same credential, and precomputed dictionaries are useless against
// the stored form.
package auth

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltBytes  = 16
	iterations = 100_000
	keyLength  = 64
)

// Derive produces a fresh salted credential for a plaintext password.
// It fails only if the system randomness source does.
func Derive(password string) (string, error) {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}
	saltHex := hex.EncodeToString(salt)
	key := pbkdf2.Key([]byte(password), []byte(saltHex), iterations, keyLength, sha512.New)
	return saltHex + ":" + hex.EncodeToString(key), nil
}

// Verify reports whether password matches a stored credential. A malformed
// credential (missing separator, empty part, bad hex) verifies false rather
// than erroring. The hash comparison is constant-time.
func Verify(password, credential string) bool {
	saltHex, hashHex, ok := strings.Cut(credential, ":")
	if !ok || saltHex == "" || hashHex == "" {
		return false
	}
	stored, err := hex.DecodeString(hashHex)
	if err != nil {
		return false
	}
	derived := pbkdf2.Key([]byte(password), []byte(saltHex), iterations, keyLength, sha512.New)
	if len(stored) != len(derived) {
		return false
	}
	return subtle.ConstantTimeCompare(stored, derived) == 1
}
