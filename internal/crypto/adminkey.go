// Package crypto provides salted digests for the admin API key so the key
// never has to live in plaintext configuration.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// pbkdf2Iterations is the OWASP-recommended minimum for PBKDF2-SHA256.
	pbkdf2Iterations = 480_000
	saltLen          = 16
	keyLen           = 32

	digestScheme = "pbkdf2-sha256"
)

// DigestKey derives a salted digest for the given key, suitable for storing
// in configuration. Format: pbkdf2-sha256$<iterations>$<salt>$<dk>, with salt
// and derived key base64-encoded.
func DigestKey(key string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("crypto: generate salt: %w", err)
	}
	dk := pbkdf2.Key([]byte(key), salt, pbkdf2Iterations, keyLen, sha256.New)
	return fmt.Sprintf("%s$%d$%s$%s",
		digestScheme,
		pbkdf2Iterations,
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(dk),
	), nil
}

// VerifyKey reports whether key matches the stored digest. Comparison of the
// derived key is constant-time.
func VerifyKey(digest, key string) bool {
	parts := strings.Split(digest, "$")
	if len(parts) != 4 || parts[0] != digestScheme {
		return false
	}
	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return false
	}
	salt, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return false
	}
	want, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil {
		return false
	}
	got := pbkdf2.Key([]byte(key), salt, iterations, len(want), sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}
