package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrSnapshotInvalid   = errors.New("snapshot invalid")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrRateLimited       = errors.New("rate limited")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrContextDone       = errors.New("context cancelled")
)
