package domain

import (
	"context"
	"time"
)

// AccessCode gates the public match endpoint. MaxUses of zero means the code
// never exhausts.
type AccessCode struct {
	Code      string
	MaxUses   int
	UsedCount int
	Active    bool
	CreatedAt time.Time
}

// CodeStatus is the outcome of an access-code validation attempt.
type CodeStatus string

const (
	CodeOK        CodeStatus = "ok"
	CodeNotFound  CodeStatus = "not_found"
	CodeInactive  CodeStatus = "inactive"
	CodeExhausted CodeStatus = "exhausted"
)

// AccessCodeUpdate carries the mutable fields of an access code. Nil fields
// are left untouched.
type AccessCodeUpdate struct {
	MaxUses *int
	Active  *bool
}

// AccessCodeStore persists access codes and their usage counters.
type AccessCodeStore interface {
	// Consume atomically checks the code and increments its usage counter.
	// It returns CodeOK on success and the failure reason otherwise; the
	// counter is only incremented on success.
	Consume(ctx context.Context, code string) (CodeStatus, error)

	Create(ctx context.Context, code AccessCode) error
	List(ctx context.Context) ([]AccessCode, error)
	Update(ctx context.Context, code string, upd AccessCodeUpdate) error
	Delete(ctx context.Context, code string) error
	ResetUsage(ctx context.Context, code string) error
}
