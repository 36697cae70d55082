package config

import (
	"fmt"
	"slices"
	"sync"

	"github.com/entrhq/trainer/pkg/store"
)

const (
	// SectionIDStorage is the identifier for the storage settings section
	SectionIDStorage = "storage"
)

// StorageSection selects where plan histories are kept.
type StorageSection struct {
	Backend   string
	Dir       string
	DSN       string
	Bucket    string
	Region    string
	Endpoint  string
	Prefix    string
	AccessKey string
	SecretKey string
	Strict    bool
	mu        sync.RWMutex
}

// NewStorageSection creates a storage section using the file backend.
func NewStorageSection() *StorageSection {
	return &StorageSection{Backend: store.BackendFile}
}

func (s *StorageSection) ID() string {
	return SectionIDStorage
}

func (s *StorageSection) Title() string {
	return "Storage Settings"
}

func (s *StorageSection) Description() string {
	return fmt.Sprintf("Choose where plan histories are stored. Backends: %v. strict fails a load on the first malformed record instead of skipping it.", store.Backends)
}

func (s *StorageSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"backend":    s.Backend,
		"dir":        s.Dir,
		"dsn":        s.DSN,
		"bucket":     s.Bucket,
		"region":     s.Region,
		"endpoint":   s.Endpoint,
		"prefix":     s.Prefix,
		"access_key": s.AccessKey,
		"secret_key": s.SecretKey,
		"strict":     s.Strict,
	}
}

func (s *StorageSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		var target *string
		switch key {
		case "backend":
			target = &s.Backend
		case "dir":
			target = &s.Dir
		case "dsn":
			target = &s.DSN
		case "bucket":
			target = &s.Bucket
		case "region":
			target = &s.Region
		case "endpoint":
			target = &s.Endpoint
		case "prefix":
			target = &s.Prefix
		case "access_key":
			target = &s.AccessKey
		case "secret_key":
			target = &s.SecretKey
		case "strict":
			strict, ok := value.(bool)
			if !ok {
				return fmt.Errorf("invalid value type for strict: expected bool, got %T", value)
			}
			s.Strict = strict
			continue
		default:
			// Ignore unknown keys for forward compatibility
			continue
		}
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("invalid value type for %s: expected string, got %T", key, value)
		}
		*target = str
	}
	if s.Backend == "" {
		s.Backend = store.BackendFile
	}
	return nil
}

func (s *StorageSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !slices.Contains(store.Backends, s.Backend) {
		return fmt.Errorf("unknown storage backend %q (want one of %v)", s.Backend, store.Backends)
	}
	switch s.Backend {
	case store.BackendPostgres:
		if s.DSN == "" {
			return fmt.Errorf("storage backend postgres requires dsn")
		}
	case store.BackendS3:
		if s.Bucket == "" {
			return fmt.Errorf("storage backend s3 requires bucket")
		}
	}
	return nil
}

func (s *StorageSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Backend = store.BackendFile
	s.Dir, s.DSN = "", ""
	s.Bucket, s.Region, s.Endpoint, s.Prefix = "", "", "", ""
	s.AccessKey, s.SecretKey = "", ""
	s.Strict = false
}

// Settings converts the section to store settings.
func (s *StorageSection) Settings() store.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return store.Settings{
		Backend: s.Backend,
		Dir:     s.Dir,
		DSN:     s.DSN,
		Bucket:  s.Bucket,
		Prefix:  s.Prefix,
		S3: store.S3Settings{
			Region:    s.Region,
			Endpoint:  s.Endpoint,
			AccessKey: s.AccessKey,
			SecretKey: s.SecretKey,
		},
	}
}

// IsStrict reports whether malformed records fail a load.
func (s *StorageSection) IsStrict() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Strict
}
