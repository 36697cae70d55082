package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/entrhq/trainer/pkg/workout"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

// Dialect selects the SQL flavour of a SQLStore.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
)

func (d Dialect) driver() (string, error) {
	switch d {
	case DialectSQLite:
		return "sqlite3", nil
	case DialectPostgres:
		return "pgx", nil
	default:
		return "", fmt.Errorf("store: unknown SQL dialect %q", d)
	}
}

func (d Dialect) migrationsDir() string {
	if d == DialectPostgres {
		return "migrations/postgres"
	}
	return "migrations/sqlite"
}

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

// Migrate applies the embedded schema migrations for dialect to db.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("store: set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, dialect.migrationsDir()); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// SQLStore keeps units as rows of the workout_units table. The row sequence
// defines append order; each append is a single INSERT.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	opts    options
	owned   bool

	insertQuery string
	selectQuery string
}

// OpenSQL opens dsn with the driver for dialect and migrates the schema.
func OpenSQL(ctx context.Context, dialect Dialect, dsn string, opts ...Option) (*SQLStore, error) {
	driver, err := dialect.driver()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: db open error: %w", err)
	}
	if dialect == DialectSQLite {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	s, err := NewSQLStore(ctx, db, dialect, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// NewSQLStore wraps an open database and migrates the schema. The caller
// keeps ownership of db.
func NewSQLStore(ctx context.Context, db *sql.DB, dialect Dialect, opts ...Option) (*SQLStore, error) {
	if _, err := dialect.driver(); err != nil {
		return nil, err
	}
	if err := Migrate(ctx, db, dialect); err != nil {
		return nil, err
	}

	s := &SQLStore{db: db, dialect: dialect, opts: newOptions(opts)}
	switch dialect {
	case DialectPostgres:
		s.insertQuery = `INSERT INTO workout_units (identity, unit) VALUES ($1, $2)`
		s.selectQuery = `SELECT seq, unit FROM workout_units WHERE identity = $1 ORDER BY seq`
	default:
		s.insertQuery = `INSERT INTO workout_units (identity, unit) VALUES (?, ?)`
		s.selectQuery = `SELECT seq, unit FROM workout_units WHERE identity = ? ORDER BY seq`
	}
	return s, nil
}

// Append inserts the unit as one row.
func (s *SQLStore) Append(ctx context.Context, identity string, r workout.Record) error {
	if err := checkIdentity(identity); err != nil {
		return writeFailed("invalid identity", err)
	}
	unit, err := encodeUnit(r)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.insertQuery, identity, string(unit[:len(unit)-1])); err != nil {
		return writeFailed("failed to insert unit", err)
	}
	return nil
}

// LoadAll selects the identity's rows in sequence order.
func (s *SQLStore) LoadAll(ctx context.Context, identity string) ([]workout.Record, error) {
	if err := checkIdentity(identity); err != nil {
		return nil, readFailed("invalid identity", err)
	}
	rows, err := s.db.QueryContext(ctx, s.selectQuery, identity)
	if err != nil {
		return nil, readFailed("failed to select units", err)
	}
	defer rows.Close()

	d := decoder{opts: s.opts, source: "workout_units/" + identity}
	records := make([]workout.Record, 0)
	pos := 0
	for rows.Next() {
		var (
			seq  int64
			unit string
		)
		if err := rows.Scan(&seq, &unit); err != nil {
			return nil, readFailed("failed to scan unit", err)
		}
		pos++
		rec, ok, err := d.unit(pos, []byte(unit))
		if err != nil {
			return nil, err
		}
		if ok {
			records = append(records, rec)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, readFailed("failed to iterate units", err)
	}
	return records, nil
}

// DB returns the underlying database.
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

// Close closes the database when the store opened it.
func (s *SQLStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
