package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saurrx/priced/internal/domain"
)

// AccessCodeStore implements domain.AccessCodeStore using PostgreSQL.
type AccessCodeStore struct {
	pool *pgxpool.Pool
}

// NewAccessCodeStore creates an AccessCodeStore backed by the given pool.
func NewAccessCodeStore(pool *pgxpool.Pool) *AccessCodeStore {
	return &AccessCodeStore{pool: pool}
}

// Consume atomically validates the code and increments its usage counter in a
// single UPDATE, so concurrent requests can never push a code past its limit.
// On failure a follow-up read classifies the reason.
func (s *AccessCodeStore) Consume(ctx context.Context, code string) (domain.CodeStatus, error) {
	const update = `
		UPDATE access_codes
		   SET used_count = used_count + 1
		 WHERE code = $1
		   AND active
		   AND (max_uses = 0 OR used_count < max_uses)`

	tag, err := s.pool.Exec(ctx, update, code)
	if err != nil {
		return "", fmt.Errorf("postgres: consume access code: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return domain.CodeOK, nil
	}

	var active bool
	var maxUses, usedCount int
	err = s.pool.QueryRow(ctx,
		`SELECT active, max_uses, used_count FROM access_codes WHERE code = $1`,
		code,
	).Scan(&active, &maxUses, &usedCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CodeNotFound, nil
		}
		return "", fmt.Errorf("postgres: inspect access code: %w", err)
	}
	if !active {
		return domain.CodeInactive, nil
	}
	if maxUses > 0 && usedCount >= maxUses {
		return domain.CodeExhausted, nil
	}
	return domain.CodeNotFound, nil
}

// Create inserts a new access code. Returns domain.ErrAlreadyExists when the
// code is taken.
func (s *AccessCodeStore) Create(ctx context.Context, code domain.AccessCode) error {
	const query = `
		INSERT INTO access_codes (code, max_uses, active)
		VALUES ($1, $2, $3)`

	_, err := s.pool.Exec(ctx, query, code.Code, code.MaxUses, code.Active)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("postgres: access code %s: %w", code.Code, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("postgres: create access code: %w", err)
	}
	return nil
}

// List returns all access codes, newest first.
func (s *AccessCodeStore) List(ctx context.Context) ([]domain.AccessCode, error) {
	const query = `
		SELECT code, max_uses, used_count, active, created_at
		  FROM access_codes
		 ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: list access codes: %w", err)
	}
	defer rows.Close()

	var codes []domain.AccessCode
	for rows.Next() {
		var c domain.AccessCode
		if err := rows.Scan(&c.Code, &c.MaxUses, &c.UsedCount, &c.Active, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan access code: %w", err)
		}
		codes = append(codes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list access codes: %w", err)
	}
	return codes, nil
}

// Update applies the non-nil fields of upd to the given code.
func (s *AccessCodeStore) Update(ctx context.Context, code string, upd domain.AccessCodeUpdate) error {
	var (
		sets   []string
		params []any
	)
	if upd.MaxUses != nil {
		params = append(params, *upd.MaxUses)
		sets = append(sets, fmt.Sprintf("max_uses = $%d", len(params)))
	}
	if upd.Active != nil {
		params = append(params, *upd.Active)
		sets = append(sets, fmt.Sprintf("active = $%d", len(params)))
	}
	if len(sets) == 0 {
		return nil
	}
	params = append(params, code)

	query := fmt.Sprintf("UPDATE access_codes SET %s WHERE code = $%d",
		strings.Join(sets, ", "), len(params))

	tag, err := s.pool.Exec(ctx, query, params...)
	if err != nil {
		return fmt.Errorf("postgres: update access code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: access code %s: %w", code, domain.ErrNotFound)
	}
	return nil
}

// Delete removes the code. Deleting an unknown code is not an error.
func (s *AccessCodeStore) Delete(ctx context.Context, code string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM access_codes WHERE code = $1`, code); err != nil {
		return fmt.Errorf("postgres: delete access code: %w", err)
	}
	return nil
}

// ResetUsage zeroes the usage counter for the code.
func (s *AccessCodeStore) ResetUsage(ctx context.Context, code string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE access_codes SET used_count = 0 WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("postgres: reset access code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: access code %s: %w", code, domain.ErrNotFound)
	}
	return nil
}
