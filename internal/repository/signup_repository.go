package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/launchlist/waitlist-service/internal/domain"
)

const uniqueViolation = "23505"

// Querier is the subset of pgx shared by pools and transactions.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB is a Querier that can open transactions, satisfied by *pgxpool.Pool.
type DB interface {
	Querier
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// SignupReader exposes the read-only aggregate queries over signups.
type SignupReader interface {
	Count(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	CountBySource(ctx context.Context) ([]domain.SourceCount, error)
	CountByDay(ctx context.Context, since time.Time, timezone string) ([]domain.DayCount, error)
	ListRecent(ctx context.Context, limit, offset int) ([]domain.SignupRecord, error)
}

// SignupRepository persists waitlist signups.
type SignupRepository interface {
	SignupReader
	// Create inserts rec and fills ID and CreatedAt. It returns
	// domain.ErrDuplicateSignup when the email already exists.
	Create(ctx context.Context, rec *domain.SignupRecord) error
	// WithSnapshot runs fn against one consistent read-only snapshot.
	WithSnapshot(ctx context.Context, fn func(SignupReader) error) error
}

type signupRepository struct {
	signupReader
	db DB
}

// NewSignupRepository returns a Postgres-backed implementation.
func NewSignupRepository(db DB) SignupRepository {
	return &signupRepository{signupReader: signupReader{q: db}, db: db}
}

func (r *signupRepository) Create(ctx context.Context, rec *domain.SignupRecord) error {
	const query = `
        INSERT INTO signups (email, source, referrer)
        VALUES ($1, $2, $3)
        RETURNING id::text, created_at`

	err := r.db.QueryRow(ctx, query, rec.Email, rec.Source, rec.Referrer).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrDuplicateSignup
		}
		return err
	}
	return nil
}

func (r *signupRepository) WithSnapshot(ctx context.Context, fn func(SignupReader) error) (err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(signupReader{q: tx}); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

type signupReader struct {
	q Querier
}

func (r signupReader) Count(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM signups`

	var total int64
	if err := r.q.QueryRow(ctx, query).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r signupReader) CountSince(ctx context.Context, since time.Time) (int64, error) {
	const query = `SELECT COUNT(*) FROM signups WHERE created_at >= $1`

	var total int64
	if err := r.q.QueryRow(ctx, query, since).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r signupReader) CountBySource(ctx context.Context) ([]domain.SourceCount, error) {
	const query = `
        SELECT COALESCE(NULLIF(source, ''), $1) AS label, COUNT(*) AS total
        FROM signups
        GROUP BY label
        ORDER BY total DESC, label ASC`

	rows, err := r.q.Query(ctx, query, domain.DirectSource)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.SourceCount, 0)
	for rows.Next() {
		var sc domain.SourceCount
		if err := rows.Scan(&sc.Source, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan source count: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (r signupReader) CountByDay(ctx context.Context, since time.Time, timezone string) ([]domain.DayCount, error) {
	const query = `
        SELECT to_char((created_at AT TIME ZONE $2)::date, 'YYYY-MM-DD') AS day, COUNT(*) AS total
        FROM signups
        WHERE created_at >= $1
        GROUP BY day
        ORDER BY day ASC`

	rows, err := r.q.Query(ctx, query, since, timezone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.DayCount, 0)
	for rows.Next() {
		var dc domain.DayCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, fmt.Errorf("scan day count: %w", err)
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}

func (r signupReader) ListRecent(ctx context.Context, limit, offset int) ([]domain.SignupRecord, error) {
	const query = `
        SELECT id::text, email, source, referrer, created_at
        FROM signups
        ORDER BY created_at DESC, id DESC
        LIMIT $1 OFFSET $2`

	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.SignupRecord, 0, limit)
	for rows.Next() {
		var rec domain.SignupRecord
		if err := rows.Scan(&rec.ID, &rec.Email, &rec.Source, &rec.Referrer, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan signup: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
