package users

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2-HMAC-SHA256 parameters. Changing these invalidates every stored hash,
// so they are fixed constants rather than configuration.
const (
	saltSize       = 16 // 128-bit salt
	derivedKeySize = 32 // 256-bit derived key
	hashIterations = 10000
)

// HashPassword derives a PBKDF2-HMAC-SHA256 hash with a fresh random salt.
// The stored format is "base64(salt):base64(derivedKey)".
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(err, "[HashPassword] rand.Read")
	}

	derivedKey := pbkdf2.Key([]byte(password), salt, hashIterations, derivedKeySize, sha256.New)
	return base64.StdEncoding.EncodeToString(salt) + ":" + base64.StdEncoding.EncodeToString(derivedKey), nil
}

// CheckPasswordHash recomputes the derived key with the stored salt and
// compares in constant time. Malformed stored values verify as false.
func CheckPasswordHash(password, stored string) bool {
	parts := strings.Split(stored, ":")
	if len(parts) != 2 {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}
	storedKey, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil || len(storedKey) == 0 {
		return false
	}

	derivedKey := pbkdf2.Key([]byte(password), salt, hashIterations, len(storedKey), sha256.New)
	return subtle.ConstantTimeCompare(derivedKey, storedKey) == 1
}
