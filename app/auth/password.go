package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// scrypt cost parameters. Digests written with other parameters will not verify.
const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64
	saltLen      = 16
)

// HashPassword returns a digest of the form hex(key) + "." + salt, where salt is
// 16 random bytes in hex and key is scrypt(password, salt).
// The hex salt text itself is the scrypt salt input.
func HashPassword(password string) (string, error) {
	raw := make([]byte, saltLen)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	salt := hex.EncodeToString(raw)

	key, err := deriveKey(password, salt)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(key) + "." + salt, nil
}

// VerifyPassword reports whether candidate matches digest.
// A malformed digest never matches.
func VerifyPassword(candidate, digest string) bool {
	keyHex, salt, ok := strings.Cut(digest, ".")
	if !ok || salt == "" {
		return false
	}
	stored, err := hex.DecodeString(keyHex)
	if err != nil || len(stored) != scryptKeyLen {
		return false
	}

	derived, err := deriveKey(candidate, salt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(stored, derived) == 1
}

func deriveKey(password, salt string) ([]byte, error) {
	key, err := scrypt.Key([]byte(password), []byte(salt), scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}
