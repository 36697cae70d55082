package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/entrhq/trainer/pkg/workout"
)

// FileSuffix is appended to the identity to form its history file name.
const FileSuffix = "_workouts.json"

// FileStore keeps each identity's history in <dir>/<identity>_workouts.json,
// one JSON object per line. Files written by earlier versions of the app load
// unchanged.
type FileStore struct {
	dir   string
	opts  options
	locks sync.Map // identity -> *sync.Mutex
}

// NewFileStore creates the directory if needed and returns a store rooted at it.
func NewFileStore(dir string, opts ...Option) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("store: init directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir, opts: newOptions(opts)}, nil
}

// Dir returns the directory holding the history files.
func (s *FileStore) Dir() string {
	return s.dir
}

// PathFor returns the history file of identity.
func (s *FileStore) PathFor(identity string) (string, error) {
	if err := checkIdentity(identity); err != nil {
		return "", err
	}
	dir, err := filepath.Abs(s.dir)
	if err != nil {
		return "", fmt.Errorf("store: abs dir: %w", err)
	}
	resolved := filepath.Join(dir, identity+FileSuffix)
	if !strings.HasPrefix(resolved, dir+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: path traversal for %q", errInvalidIdentity, identity)
	}
	return resolved, nil
}

func (s *FileStore) lock(identity string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(identity, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Append writes one unit at the end of the identity's file. Existing bytes
// are never rewritten. If the write or the sync fails the file is truncated
// back to its previous length. On unix the append holds an exclusive flock
// on the file, so concurrent processes sharing the directory are safe.
func (s *FileStore) Append(ctx context.Context, identity string, r workout.Record) error {
	if err := ctx.Err(); err != nil {
		return writeFailed("append canceled", err)
	}
	path, err := s.PathFor(identity)
	if err != nil {
		return writeFailed("invalid identity", err)
	}
	unit, err := encodeUnit(r)
	if err != nil {
		return err
	}

	mu := s.lock(identity)
	mu.Lock()
	defer mu.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o600)
	if err != nil {
		return writeFailed("could not open history file", err)
	}
	defer f.Close()

	// The mutex orders appends within this process; the file lock orders
	// them against other processes sharing the directory, so that a
	// rollback never truncates a unit someone else appended.
	if err := lockFile(f); err != nil {
		return writeFailed("could not lock history file", err)
	}
	defer func() {
		if err := unlockFile(f); err != nil {
			s.opts.logger.Warnf("unlock of %s failed: %v", f.Name(), err)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return writeFailed("could not stat history file", err)
	}
	size := info.Size()

	// A torn unit from an interrupted write is sealed so that the new unit
	// starts on its own line.
	if size > 0 {
		last := make([]byte, 1)
		if _, err := f.ReadAt(last, size-1); err != nil {
			return writeFailed("could not read history file", err)
		}
		if last[0] != '\n' {
			s.opts.logger.Warnf("history of %s ends with a torn unit; sealing it", identity)
			unit = append([]byte{'\n'}, unit...)
		}
	}

	if _, err := f.Write(unit); err != nil {
		return s.rollback(f, size, writeFailed("could not write history file", err))
	}
	if err := f.Sync(); err != nil {
		return s.rollback(f, size, writeFailed("could not sync history file", err))
	}
	return nil
}

func (s *FileStore) rollback(f *os.File, size int64, cause error) error {
	if err := f.Truncate(size); err != nil {
		s.opts.logger.Errorf("rollback of %s to %d bytes failed: %v", f.Name(), size, err)
		return errors.Join(cause, err)
	}
	return cause
}

// LoadAll reads the identity's file. A missing file is an empty history.
func (s *FileStore) LoadAll(ctx context.Context, identity string) ([]workout.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, readFailed("load canceled", err)
	}
	path, err := s.PathFor(identity)
	if err != nil {
		return nil, readFailed("invalid identity", err)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return []workout.Record{}, nil
	}
	if err != nil {
		return nil, readFailed("could not read history file", err)
	}
	return decoder{opts: s.opts, source: filepath.Base(path)}.stream(data)
}

// Close is a no-op; the store holds no open files between calls.
func (s *FileStore) Close() error {
	return nil
}
