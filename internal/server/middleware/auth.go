package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/saurrx/priced/internal/crypto"
)

// Admin returns middleware that guards admin routes. The presented token
// (Authorization: Bearer or X-API-Key) is checked against keyDigest when set
// (a salted PBKDF2 digest, see the crypto package), otherwise against the
// plaintext key with a constant-time compare. With neither configured, admin
// routes are disabled outright rather than left open.
func Admin(key, keyDigest string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" && keyDigest == "" {
				writeAuthError(w, http.StatusForbidden, "admin API is not configured")
				return
			}

			token := extractToken(r)
			if token == "" {
				writeAuthError(w, http.StatusUnauthorized, "missing authentication token")
				return
			}

			var ok bool
			if keyDigest != "" {
				ok = crypto.VerifyKey(keyDigest, token)
			} else {
				ok = subtle.ConstantTimeCompare([]byte(token), []byte(key)) == 1
			}
			if !ok {
				writeAuthError(w, http.StatusUnauthorized, "invalid authentication token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractToken looks for a token in the Authorization header (Bearer scheme)
// or in the X-API-Key header.
func extractToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if key := r.Header.Get("X-API-Key"); key != "" {
		return strings.TrimSpace(key)
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
