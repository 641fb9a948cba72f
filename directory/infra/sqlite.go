package infra

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sort"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"employee-directory/directory/domain"
	"employee-directory/directory/infra/migrations"
)

const (
	sqliteInMemory = ":memory:"
	// driver do mattn com lower() Unicode no lugar do nativo
	sqliteDriver = "sqlite3_directory"
)

func init() {
	sql.Register(sqliteDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("lower", sqliteLower, true)
		},
	})
}

// sqliteLower mantém NULL e números como vieram; só texto muda de caixa.
func sqliteLower(v any) any {
	switch s := v.(type) {
	case string:
		return domain.Lower(s)
	case []byte:
		return domain.Lower(string(s))
	default:
		return v
	}
}

// SQLStore é o store relacional padrão (SQLite via sqlx).
type SQLStore struct {
	DB  *sqlx.DB
	log *zap.Logger
}

// OpenSQLite abre (ou cria) o arquivo e aplica as migrations pendentes.
func OpenSQLite(ctx context.Context, path string, log *zap.Logger) (*SQLStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	dsn := path
	if path != sqliteInMemory && !strings.Contains(path, "?") {
		dsn = path + "?_busy_timeout=5000&_journal_mode=WAL"
	}

	db, err := sqlx.Open(sqliteDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	if path == sqliteInMemory {
		// cada conexão nova seria um banco vazio
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %q: %w", path, err)
	}

	s := &SQLStore{DB: db, log: log}
	if err := s.migrate(ctx, migrations.All); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) Scan(ctx context.Context, f domain.Filter) ([]domain.Employee, error) {
	query, args, err := searchQuery(f, sq.Question).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build search query: %w", err)
	}

	rows := []domain.Employee{}
	if err := s.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("search employees: %w", err)
	}
	return rows, nil
}

func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.DB.GetContext(ctx, &n, `SELECT COUNT(*) FROM employees`); err != nil {
		return 0, fmt.Errorf("count employees: %w", err)
	}
	return n, nil
}

func (s *SQLStore) Insert(ctx context.Context, rows ...domain.Employee) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	// lotes pequenos para não estourar o limite de variáveis do SQLite
	for start := 0; start < len(rows); start += 50 {
		end := min(start+50, len(rows))
		query, args, err := insertQuery(sq.Question, rows[start:end]...).ToSql()
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert employees: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLStore) Close() error { return s.DB.Close() }

// migrate aplica os scripts NNNN_*.sql com versão maior que PRAGMA user_version.
func (s *SQLStore) migrate(ctx context.Context, source embed.FS) error {
	list, err := source.ReadDir(".")
	if err != nil {
		return err
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })

	var current int
	if err := s.DB.GetContext(ctx, &current, `PRAGMA user_version`); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	for _, f := range list {
		name := f.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}
		v, err := scriptVersion(name)
		if err != nil {
			return err
		}
		if v <= current {
			continue
		}

		s.log.Debug("Executing migration", zap.String("migration_name", name))
		body, err := source.ReadFile(name)
		if err != nil {
			return err
		}

		tx, err := s.DB.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d`, v)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %s: set user_version: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		current = v
	}
	return nil
}

func scriptVersion(name string) (int, error) {
	prefix, _, ok := strings.Cut(name, "_")
	if !ok {
		return 0, fmt.Errorf("migration %q has no version prefix", name)
	}
	v, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, fmt.Errorf("migration %q: %w", name, err)
	}
	return v, nil
}
