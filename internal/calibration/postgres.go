package calibration

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Schema is the SQL DDL for the score_history table. Execute it via
// [PostgresStore.Migrate] or apply it manually during deployment.
const Schema = `
CREATE TABLE IF NOT EXISTS score_history (
    id          BIGSERIAL PRIMARY KEY,
    band        DOUBLE PRECISION NOT NULL,
    recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_score_history_band ON score_history(band);
`

// DB is the database interface used by [PostgresStore]. Both *pgxpool.Pool
// and *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore is a [Store] backed by PostgreSQL, for deployments where the
// calibration history must survive process restarts and be shared between
// scoring instances.
type PostgresStore struct {
	db DB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a [PostgresStore] using the given connection or
// pool. Call [PostgresStore.Migrate] once before issuing queries.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate executes the [Schema] DDL, creating the score_history table if it
// does not already exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("calibration: migrate: %w", err)
	}
	return nil
}

// Append records one awarded overall band.
func (s *PostgresStore) Append(ctx context.Context, band float64) error {
	if _, err := s.db.Exec(ctx, `INSERT INTO score_history (band) VALUES ($1)`, band); err != nil {
		return fmt.Errorf("calibration: append band: %w", err)
	}
	return nil
}

// Len returns the number of recorded bands.
func (s *PostgresStore) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM score_history`).Scan(&n); err != nil {
		return 0, fmt.Errorf("calibration: count history: %w", err)
	}
	return n, nil
}

// FractionAtOrAbove returns the fraction of recorded bands ≥ threshold.
func (s *PostgresStore) FractionAtOrAbove(ctx context.Context, threshold float64) (float64, error) {
	var frac float64
	const query = `
		SELECT COALESCE(
			count(*) FILTER (WHERE band >= $1)::float8 / NULLIF(count(*), 0),
			0
		) FROM score_history`
	if err := s.db.QueryRow(ctx, query, threshold).Scan(&frac); err != nil {
		return 0, fmt.Errorf("calibration: fraction at or above %.1f: %w", threshold, err)
	}
	return frac, nil
}
