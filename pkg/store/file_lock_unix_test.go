//go:build unix

package store

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/trainer/pkg/workout"
)

// A lock held through another open file stands in for a second process.
func TestFileStore_AppendWaitsForFileLock(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	path, err := s.PathFor("guest")
	require.NoError(t, err)

	other, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o600)
	require.NoError(t, err)
	defer other.Close()
	require.NoError(t, lockFile(other))

	done := make(chan error, 1)
	go func() {
		done <- s.Append(ctx, "guest", workout.Record{Goal: workout.String("waited")})
	}()

	select {
	case err := <-done:
		t.Fatalf("append finished while the file was locked: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	_, err = other.Write([]byte(`{"goal":"other process"}` + "\n"))
	require.NoError(t, err)
	require.NoError(t, unlockFile(other))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("append did not finish after the lock was released")
	}

	records, err := s.LoadAll(ctx, "guest")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "other process", *records[0].Goal)
	assert.Equal(t, "waited", *records[1].Goal)
}

func TestFileStore_SharedDirectoryKeepsEveryUnit(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	a, err := NewFileStore(dir)
	require.NoError(t, err)
	b, err := NewFileStore(dir)
	require.NoError(t, err)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		for _, s := range []*FileStore{a, b} {
			wg.Add(1)
			go func(s *FileStore) {
				defer wg.Done()
				assert.NoError(t, s.Append(ctx, "guest", workout.Record{}))
			}(s)
		}
	}
	wg.Wait()

	records, err := a.LoadAll(ctx, "guest")
	require.NoError(t, err)
	assert.Len(t, records, 2*n)
}
