package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/entrhq/trainer/pkg/workout"
)

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendS3       = "s3"
	BackendMemory   = "memory"
)

// Backends lists every backend name in the order they are documented.
var Backends = []string{BackendFile, BackendSQLite, BackendPostgres, BackendS3, BackendMemory}

// Store is a workout.Log that holds resources until closed.
type Store interface {
	workout.Log
	Close() error
}

// Settings selects and configures a backend.
type Settings struct {
	Backend string

	// Dir holds history files for the file backend and the default SQLite
	// database.
	Dir string

	// DSN is the database connection string. For SQLite it defaults to
	// workouts.db inside Dir.
	DSN string

	Bucket string
	Prefix string
	S3     S3Settings
}

// SQLiteDSN returns the default SQLite connection string for dir.
func SQLiteDSN(dir string) string {
	return "file:" + filepath.Join(dir, "workouts.db") + "?_journal_mode=WAL&_busy_timeout=5000"
}

// Open builds the backend named by settings.Backend. An empty name selects
// the file backend.
func Open(ctx context.Context, settings Settings, opts ...Option) (Store, error) {
	switch settings.Backend {
	case "", BackendFile:
		if settings.Dir == "" {
			return nil, fmt.Errorf("store: file backend requires a directory")
		}
		return NewFileStore(settings.Dir, opts...)

	case BackendSQLite:
		dsn := settings.DSN
		if dsn == "" {
			if settings.Dir == "" {
				return nil, fmt.Errorf("store: sqlite backend requires a dsn or a directory")
			}
			if err := os.MkdirAll(settings.Dir, 0o750); err != nil {
				return nil, fmt.Errorf("store: init directory %s: %w", settings.Dir, err)
			}
			dsn = SQLiteDSN(settings.Dir)
		}
		return OpenSQL(ctx, DialectSQLite, dsn, opts...)

	case BackendPostgres:
		if settings.DSN == "" {
			return nil, fmt.Errorf("store: postgres backend requires a dsn")
		}
		return OpenSQL(ctx, DialectPostgres, settings.DSN, opts...)

	case BackendS3:
		if settings.Bucket == "" {
			return nil, fmt.Errorf("store: s3 backend requires a bucket")
		}
		client, err := NewS3Client(ctx, settings.S3)
		if err != nil {
			return nil, err
		}
		return NewObjectStore(client, settings.Bucket, settings.Prefix, opts...), nil

	case BackendMemory:
		return NewMemoryStore(opts...), nil

	default:
		return nil, fmt.Errorf("store: unknown backend %q", settings.Backend)
	}
}
