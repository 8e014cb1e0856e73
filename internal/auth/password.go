package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Stored credential format: "<hexSalt>:<hexHash>". The key is derived with
// PBKDF2-SHA512 over the password and the hex-encoded salt string.
const (
	saltBytes      = 16
	hashIterations = 1000
	hashKeyLen     = 64
)

// HashPassword derives a salted credential string for storage.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("auth: generate salt: %w", err)
	}
	hexSalt := hex.EncodeToString(salt)
	key := pbkdf2.Key([]byte(password), []byte(hexSalt), hashIterations, hashKeyLen, sha512.New)
	return hexSalt + ":" + hex.EncodeToString(key), nil
}

// VerifyPassword checks a password against a stored credential using a
// constant-time comparison.
func VerifyPassword(password, encoded string) bool {
	hexSalt, hexHash, ok := strings.Cut(encoded, ":")
	if !ok || hexSalt == "" || hexHash == "" {
		return false
	}
	key := pbkdf2.Key([]byte(password), []byte(hexSalt), hashIterations, hashKeyLen, sha512.New)
	return hmac.Equal([]byte(hex.EncodeToString(key)), []byte(hexHash))
}
