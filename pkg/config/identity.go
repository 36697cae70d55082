package config

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

const (
	// SectionIDIdentity is the identifier for the identity section
	SectionIDIdentity = "identity"
)

// IdentitySection holds the login table: identity name → bcrypt hash of its
// secret, and the optional key for externally issued tokens.
type IdentitySection struct {
	Users     map[string]string
	JWTSecret string
	mu        sync.RWMutex
}

func NewIdentitySection() *IdentitySection {
	return &IdentitySection{Users: make(map[string]string)}
}

func (s *IdentitySection) ID() string {
	return SectionIDIdentity
}

func (s *IdentitySection) Title() string {
	return "Identity Settings"
}

func (s *IdentitySection) Description() string {
	return "Users allowed to sign in, stored as bcrypt hashes (create one with trainer -add-user), and the HS256 key for tokens issued by an external auth service."
}

func (s *IdentitySection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make(map[string]any, len(s.Users))
	for name, hash := range s.Users {
		users[name] = hash
	}
	return map[string]any{
		"users":      users,
		"jwt_secret": s.JWTSecret,
	}
}

func (s *IdentitySection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if raw, ok := data["users"]; ok {
		entries, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("invalid value type for users: expected object, got %T", raw)
		}
		users := make(map[string]string, len(entries))
		for name, v := range entries {
			hash, ok := v.(string)
			if !ok {
				return fmt.Errorf("invalid hash for user %q: expected string, got %T", name, v)
			}
			users[name] = hash
		}
		s.Users = users
	}
	if secret, ok := data["jwt_secret"].(string); ok {
		s.JWTSecret = secret
	}
	return nil
}

func (s *IdentitySection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for name, hash := range s.Users {
		if strings.TrimSpace(name) == "" || strings.ContainsAny(name, "/\\") {
			return fmt.Errorf("invalid user name %q", name)
		}
		if !strings.HasPrefix(hash, "$2") {
			return fmt.Errorf("user %q: secret must be a bcrypt hash", name)
		}
	}
	return nil
}

func (s *IdentitySection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Users = make(map[string]string)
	s.JWTSecret = ""
}

// GetUsers returns a copy of the login table.
func (s *IdentitySection) GetUsers() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.Users))
	for k, v := range s.Users {
		out[k] = v
	}
	return out
}

// UserNames returns the configured identities in sorted order.
func (s *IdentitySection) UserNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.Users))
	for name := range s.Users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetUser adds or replaces the hash of one identity.
func (s *IdentitySection) SetUser(name, hash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Users == nil {
		s.Users = make(map[string]string)
	}
	s.Users[name] = hash
}

// GetJWTSecret returns the token signing key.
func (s *IdentitySection) GetJWTSecret() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.JWTSecret
}
