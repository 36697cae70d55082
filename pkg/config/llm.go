package config

import (
	"fmt"
	"sync"
	"time"
)

const (
	// SectionIDLLM is the identifier for the LLM settings section
	SectionIDLLM = "llm"

	// DefaultModel and DefaultBaseURL point at Gemini's OpenAI-compatible
	// endpoint.
	DefaultModel   = "gemini-2.0-flash"
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

	// DefaultRequestTimeout bounds one generation call.
	DefaultRequestTimeout = 60 * time.Second
)

// LLMSection manages LLM provider configuration settings.
type LLMSection struct {
	Model          string
	BaseURL        string
	APIKey         string
	SystemPrompt   string // optional; sent ahead of every plan request
	RequestTimeout time.Duration
	MaxTokens      int // zero leaves the service default
	mu             sync.RWMutex
}

// NewLLMSection creates a new LLM section with default settings.
func NewLLMSection() *LLMSection {
	return &LLMSection{RequestTimeout: DefaultRequestTimeout}
}

// ID returns the section identifier.
func (s *LLMSection) ID() string {
	return SectionIDLLM
}

// Title returns the section title.
func (s *LLMSection) Title() string {
	return "LLM Settings"
}

// Description returns the section description.
func (s *LLMSection) Description() string {
	return "Configure the LLM service that writes workout plans: model, base URL, API key, optional system prompt, and request timeout."
}

// Data returns the current configuration data.
func (s *LLMSection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]any{
		"model":           s.Model,
		"base_url":        s.BaseURL,
		"api_key":         s.APIKey,
		"system_prompt":   s.SystemPrompt,
		"request_timeout": s.RequestTimeout.String(),
		"max_tokens":      s.MaxTokens,
	}
}

// SetData updates the configuration from the provided data.
func (s *LLMSection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if model, ok := data["model"].(string); ok {
		s.Model = model
	}
	if baseURL, ok := data["base_url"].(string); ok {
		s.BaseURL = baseURL
	}
	if apiKey, ok := data["api_key"].(string); ok {
		s.APIKey = apiKey
	}
	if prompt, ok := data["system_prompt"].(string); ok {
		s.SystemPrompt = prompt
	}
	if v, ok := data["request_timeout"]; ok {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("request_timeout: %w", err)
		}
		s.RequestTimeout = d
	}
	if v, ok := data["max_tokens"]; ok {
		n, err := toInt(v)
		if err != nil {
			return fmt.Errorf("max_tokens: %w", err)
		}
		s.MaxTokens = n
	}
	return nil
}

// Validate validates the current configuration.
func (s *LLMSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// The API key may come from the environment, so it is checked when the
	// provider is built.
	if s.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative, got %v", s.RequestTimeout)
	}
	if s.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must not be negative, got %d", s.MaxTokens)
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *LLMSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Model = ""
	s.BaseURL = ""
	s.APIKey = ""
	s.SystemPrompt = ""
	s.RequestTimeout = DefaultRequestTimeout
	s.MaxTokens = 0
}

// GetModel returns the configured model name.
func (s *LLMSection) GetModel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Model
}

// SetModel sets the model name.
func (s *LLMSection) SetModel(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Model = model
}

// GetBaseURL returns the configured base URL.
func (s *LLMSection) GetBaseURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.BaseURL
}

// SetBaseURL sets the base URL.
func (s *LLMSection) SetBaseURL(baseURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BaseURL = baseURL
}

// GetAPIKey returns the configured API key.
func (s *LLMSection) GetAPIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.APIKey
}

// SetAPIKey sets the API key.
func (s *LLMSection) SetAPIKey(apiKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.APIKey = apiKey
}

// GetSystemPrompt returns the configured system prompt.
func (s *LLMSection) GetSystemPrompt() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.SystemPrompt
}

// GetRequestTimeout returns the generation timeout; zero means unbounded.
func (s *LLMSection) GetRequestTimeout() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.RequestTimeout
}

// SetRequestTimeout sets the generation timeout.
func (s *LLMSection) SetRequestTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RequestTimeout = d
}

// GetMaxTokens returns the completion length cap; zero means no cap.
func (s *LLMSection) GetMaxTokens() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.MaxTokens
}

// parseDuration accepts a duration string or a JSON number of nanoseconds.
func parseDuration(value any) (time.Duration, error) {
	switch v := value.(type) {
	case string:
		if v == "" {
			return 0, nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid duration string: %w", err)
		}
		return d, nil
	case float64:
		// JSON numbers come as float64
		return time.Duration(v), nil
	case int64:
		return time.Duration(v), nil
	case int:
		return time.Duration(v), nil
	default:
		return 0, fmt.Errorf("expected string or number, got %T", value)
	}
}
