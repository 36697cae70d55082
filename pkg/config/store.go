package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// fileVersion is written to every saved config file.
const fileVersion = "1.0"

// Store persists section data. The Manager reads and writes sections through
// it and decides when to Load and Save.
type Store interface {
	Load() error
	Save() error

	// GetSection returns a copy of one section; a missing section is empty.
	GetSection(sectionID string) (map[string]any, error)
	SetSection(sectionID string, data map[string]any) error

	GetAll() (map[string]map[string]any, error)
	SetAll(data map[string]map[string]any) error
}

// document is the on-disk layout of the config file.
type document struct {
	Version  string                    `json:"version"`
	Sections map[string]map[string]any `json:"sections"`
}

// FileStore keeps all sections in one JSON file, by default
// ~/.trainer/config.json. The file may hold an API key and password hashes,
// so it is written with mode 0600.
type FileStore struct {
	mu       sync.RWMutex
	path     string
	doc      document
	modified bool
}

// DefaultPath returns ~/.trainer/config.json.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".trainer", "config.json"), nil
}

// NewFileStore opens the config file at path, or DefaultPath when path is
// empty. A missing file is an empty configuration.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	s := &FileStore{path: path, doc: emptyDocument()}
	if err := s.Load(); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return s, nil
}

func emptyDocument() document {
	return document{Version: fileVersion, Sections: make(map[string]map[string]any)}
}

// Load replaces the in-memory sections with the file contents and discards
// unsaved changes.
func (s *FileStore) Load() error {
	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		data = nil
	case err != nil:
		return fmt.Errorf("failed to read config file: %w", err)
	}

	doc := emptyDocument()
	if len(data) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to decode config file: %w", err)
		}
		if doc.Sections == nil {
			doc.Sections = make(map[string]map[string]any)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	s.modified = false
	return nil
}

// Save writes every section to a temp file next to the config and renames it
// into place.
func (s *FileStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(document{Version: fileVersion, Sections: s.doc.Sections}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := writeFileAtomic(s.path, append(data, '\n')); err != nil {
		return err
	}

	s.doc.Version = fileVersion
	s.modified = false
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp config file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to restrict config permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp config file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace config file: %w", err)
	}
	return nil
}

func (s *FileStore) GetSection(sectionID string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySection(s.doc.Sections[sectionID]), nil
}

func (s *FileStore) SetSection(sectionID string, data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Sections[sectionID] = copySection(data)
	s.modified = true
	return nil
}

func (s *FileStore) GetAll() (map[string]map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySections(s.doc.Sections), nil
}

func (s *FileStore) SetAll(data map[string]map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Sections = copySections(data)
	s.modified = true
	return nil
}

// IsModified reports unsaved changes.
func (s *FileStore) IsModified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modified
}

// Path returns the config file path.
func (s *FileStore) Path() string {
	return s.path
}

func copySection(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

func copySections(data map[string]map[string]any) map[string]map[string]any {
	out := make(map[string]map[string]any, len(data))
	for id, section := range data {
		out[id] = copySection(section)
	}
	return out
}
