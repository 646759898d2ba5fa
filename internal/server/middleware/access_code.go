package middleware

import (
	"log/slog"
	"net/http"

	"github.com/saurrx/priced/internal/domain"
)

// AccessCode returns middleware that gates a route behind an access code in
// the X-Access-Code header. Each successful request consumes one use. A nil
// store disables enforcement.
func AccessCode(store domain.AccessCodeStore, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store == nil {
				next.ServeHTTP(w, r)
				return
			}

			code := r.Header.Get("X-Access-Code")
			if code == "" {
				writeAuthError(w, http.StatusUnauthorized, "missing access code")
				return
			}

			status, err := store.Consume(r.Context(), code)
			if err != nil {
				logger.ErrorContext(r.Context(), "access code check failed",
					slog.String("error", err.Error()),
				)
				writeAuthError(w, http.StatusInternalServerError, "access code check failed")
				return
			}
			if status != domain.CodeOK {
				writeAuthError(w, http.StatusForbidden, "access code "+string(status))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
