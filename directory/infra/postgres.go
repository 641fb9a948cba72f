package infra

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"employee-directory/directory/domain"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS employees (
    id            TEXT NOT NULL PRIMARY KEY,
    org_id        TEXT NOT NULL,
    first_name    TEXT NOT NULL,
    last_name     TEXT NOT NULL,
    contact_email TEXT,
    contact_phone TEXT,
    department    TEXT NOT NULL DEFAULT '',
    position      TEXT NOT NULL DEFAULT '',
    location      TEXT,
    status        TEXT
);
CREATE INDEX IF NOT EXISTS idx_employees_org_id ON employees (org_id, id);
`

// PGStore é o store PostgreSQL (pgxpool).
type PGStore struct {
	pool *pgxpool.Pool
}

func OpenPostgres(ctx context.Context, dsn string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}
	return &PGStore{pool: pool}, nil
}

func (s *PGStore) Scan(ctx context.Context, f domain.Filter) ([]domain.Employee, error) {
	query, args, err := searchQuery(f, sq.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build search query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search employees: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Employee])
	if err != nil {
		return nil, fmt.Errorf("scan employees: %w", err)
	}
	return out, nil
}

func (s *PGStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM employees`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count employees: %w", err)
	}
	return n, nil
}

func (s *PGStore) Insert(ctx context.Context, rows ...domain.Employee) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for start := 0; start < len(rows); start += 500 {
		end := min(start+500, len(rows))
		query, args, err := insertQuery(sq.Dollar, rows[start:end]...).
			Suffix("ON CONFLICT (id) DO NOTHING").
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("insert employees: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}
