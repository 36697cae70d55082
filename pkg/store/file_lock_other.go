//go:build !unix

package store

import "os"

// lockFile is a no-op where flock is unavailable; appends are then only
// serialized within one process.
func lockFile(f *os.File) error { return nil }

func unlockFile(f *os.File) error { return nil }
