package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchlist/waitlist-service/internal/domain"
	"github.com/launchlist/waitlist-service/internal/repository"
)

func strPtr(s string) *string { return &s }

func TestSignupCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repository.NewSignupRepository(mock)
	ctx := context.Background()
	created := time.Date(2025, 5, 4, 10, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		rec := &domain.SignupRecord{Email: "test@example.com", Source: strPtr("twitter")}
		mock.ExpectQuery("INSERT INTO signups").
			WithArgs(rec.Email, rec.Source, rec.Referrer).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("8b6f0d2e-1111-2222-3333-444455556666", created))

		require.NoError(t, r.Create(ctx, rec))
		assert.Equal(t, "8b6f0d2e-1111-2222-3333-444455556666", rec.ID)
		assert.Equal(t, created, rec.CreatedAt)
	})

	t.Run("unique violation maps to duplicate", func(t *testing.T) {
		rec := &domain.SignupRecord{Email: "test@example.com"}
		mock.ExpectQuery("INSERT INTO signups").
			WithArgs(rec.Email, rec.Source, rec.Referrer).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "signups_email_key"})

		err := r.Create(ctx, rec)
		assert.ErrorIs(t, err, domain.ErrDuplicateSignup)
		assert.Empty(t, rec.ID)
	})

	t.Run("other errors pass through", func(t *testing.T) {
		rec := &domain.SignupRecord{Email: "test@example.com"}
		dbErr := errors.New("connection refused")
		mock.ExpectQuery("INSERT INTO signups").
			WithArgs(rec.Email, rec.Source, rec.Referrer).
			WillReturnError(dbErr)

		err := r.Create(ctx, rec)
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, domain.ErrDuplicateSignup)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignupCounts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repository.NewSignupRepository(mock)
	ctx := context.Background()
	since := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM signups")).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(42)))
	total, err := r.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 42, total)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM signups WHERE created_at >= $1")).
		WithArgs(since).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(7)))
	recent, err := r.CountSince(ctx, since)
	require.NoError(t, err)
	assert.EqualValues(t, 7, recent)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM signups")).
		WillReturnError(errors.New("db down"))
	_, err = r.Count(ctx)
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignupCountBySource(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repository.NewSignupRepository(mock)
	ctx := context.Background()

	t.Run("groups absent source under Direct", func(t *testing.T) {
		mock.ExpectQuery("SELECT COALESCE\\(NULLIF\\(source, ''\\), \\$1\\) AS label").
			WithArgs(domain.DirectSource).
			WillReturnRows(pgxmock.NewRows([]string{"label", "total"}).
				AddRow("Direct", int64(5)).
				AddRow("twitter", int64(3)))

		got, err := r.CountBySource(ctx)
		require.NoError(t, err)
		assert.Equal(t, []domain.SourceCount{{Source: "Direct", Count: 5}, {Source: "twitter", Count: 3}}, got)
	})

	t.Run("scan error", func(t *testing.T) {
		mock.ExpectQuery("SELECT COALESCE").
			WithArgs(domain.DirectSource).
			WillReturnRows(pgxmock.NewRows([]string{"label", "total"}).AddRow("Direct", "many"))

		_, err := r.CountBySource(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scan source count")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignupCountByDay(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repository.NewSignupRepository(mock)
	since := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("AT TIME ZONE \\$2").
		WithArgs(since, "UTC").
		WillReturnRows(pgxmock.NewRows([]string{"day", "total"}).
			AddRow("2025-05-01", int64(2)).
			AddRow("2025-05-03", int64(1)))

	got, err := r.CountByDay(context.Background(), since, "UTC")
	require.NoError(t, err)
	assert.Equal(t, []domain.DayCount{{Date: "2025-05-01", Count: 2}, {Date: "2025-05-03", Count: 1}}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignupListRecent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repository.NewSignupRepository(mock)
	now := time.Date(2025, 5, 4, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery("ORDER BY created_at DESC").
		WithArgs(10, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "source", "referrer", "created_at"}).
			AddRow("id-2", "b@example.com", strPtr("newsletter"), strPtr("https://news.example.com"), now).
			AddRow("id-1", "a@example.com", (*string)(nil), (*string)(nil), now.Add(-time.Hour)))

	got, err := r.ListRecent(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b@example.com", got[0].Email)
	assert.Equal(t, "newsletter", got[0].SourceLabel())
	assert.Nil(t, got[1].Source)
	assert.Equal(t, domain.DirectSource, got[1].SourceLabel())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignupWithSnapshot(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repository.NewSignupRepository(mock)
	ctx := context.Background()
	opts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}

	t.Run("commits after reads", func(t *testing.T) {
		mock.ExpectBeginTx(opts)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM signups")).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))
		mock.ExpectCommit()

		var total int64
		err := r.WithSnapshot(ctx, func(reader repository.SignupReader) error {
			var err error
			total, err = reader.Count(ctx)
			return err
		})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
	})

	t.Run("rolls back when a read fails", func(t *testing.T) {
		mock.ExpectBeginTx(opts)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM signups")).
			WillReturnError(errors.New("timeout"))
		mock.ExpectRollback()

		err := r.WithSnapshot(ctx, func(reader repository.SignupReader) error {
			_, err := reader.Count(ctx)
			return err
		})
		assert.Error(t, err)
	})

	t.Run("begin failure", func(t *testing.T) {
		mock.ExpectBeginTx(opts).WillReturnError(errors.New("too many connections"))

		err := r.WithSnapshot(ctx, func(repository.SignupReader) error { return nil })
		require.Error(t, err)
		assert.Contains(t, err.Error(), "begin snapshot")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
