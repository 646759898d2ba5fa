package middleware_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saurrx/priced/internal/domain"
	"github.com/saurrx/priced/internal/server/middleware"
)

// stubCodeStore returns a fixed status from Consume and records the code.
type stubCodeStore struct {
	status  domain.CodeStatus
	err     error
	gotCode string
}

func (s *stubCodeStore) Consume(_ context.Context, code string) (domain.CodeStatus, error) {
	s.gotCode = code
	return s.status, s.err
}

func (s *stubCodeStore) Create(context.Context, domain.AccessCode) error { return nil }
func (s *stubCodeStore) List(context.Context) ([]domain.AccessCode, error) {
	return nil, nil
}
func (s *stubCodeStore) Update(context.Context, string, domain.AccessCodeUpdate) error { return nil }
func (s *stubCodeStore) Delete(context.Context, string) error                          { return nil }
func (s *stubCodeStore) ResetUsage(context.Context, string) error                      { return nil }

func accessLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestAccessCodeValid(t *testing.T) {
	store := &stubCodeStore{status: domain.CodeOK}
	h := middleware.AccessCode(store, accessLogger())(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/match", nil)
	req.Header.Set("X-Access-Code", "beta-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "beta-42", store.gotCode)
}

func TestAccessCodeMissingHeader(t *testing.T) {
	h := middleware.AccessCode(&stubCodeStore{status: domain.CodeOK}, accessLogger())(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/match", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAccessCodeRejected(t *testing.T) {
	for _, status := range []domain.CodeStatus{
		domain.CodeNotFound, domain.CodeInactive, domain.CodeExhausted,
	} {
		t.Run(string(status), func(t *testing.T) {
			h := middleware.AccessCode(&stubCodeStore{status: status}, accessLogger())(okHandler())

			req := httptest.NewRequest(http.MethodPost, "/api/match", nil)
			req.Header.Set("X-Access-Code", "beta-42")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.Contains(t, rec.Body.String(), string(status))
		})
	}
}

func TestAccessCodeStoreError(t *testing.T) {
	h := middleware.AccessCode(&stubCodeStore{err: errors.New("db down")}, accessLogger())(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/match", nil)
	req.Header.Set("X-Access-Code", "beta-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAccessCodeNilStorePassesThrough(t *testing.T) {
	h := middleware.AccessCode(nil, accessLogger())(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/match", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
