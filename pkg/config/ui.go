package config

import (
	"fmt"
	"sync"

	"github.com/entrhq/trainer/pkg/workout"
)

const (
	// SectionIDUI is the identifier for the UI settings section
	SectionIDUI = "ui"

	// Default values for UI settings
	defaultRenderMarkdown  = true
	defaultDurationMinutes = workout.DefaultDurationMinutes
)

// UISection manages user interface configuration settings.
type UISection struct {
	RenderMarkdown  bool `json:"render_markdown"`
	MinDuration     int  `json:"min_duration"`
	MaxDuration     int  `json:"max_duration"`
	DefaultDuration int  `json:"default_duration"`
	mu              sync.RWMutex
}

// NewUISection creates a new UI section with default settings.
func NewUISection() *UISection {
	return &UISection{
		RenderMarkdown:  defaultRenderMarkdown,
		MinDuration:     workout.MinDurationMinutes,
		MaxDuration:     workout.MaxDurationMinutes,
		DefaultDuration: defaultDurationMinutes,
	}
}

// ID returns the section identifier.
func (s *UISection) ID() string {
	return SectionIDUI
}

// Title returns the section title.
func (s *UISection) Title() string {
	return "UI Settings"
}

// Description returns the section description.
func (s *UISection) Description() string {
	return "Configure the interactive form: duration slider bounds and default, and whether plans are rendered as markdown."
}

// Data returns the current configuration data.
func (s *UISection) Data() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]any{
		"render_markdown":  s.RenderMarkdown,
		"min_duration":     s.MinDuration,
		"max_duration":     s.MaxDuration,
		"default_duration": s.DefaultDuration,
	}
}

// SetData updates the configuration from the provided data.
func (s *UISection) SetData(data map[string]any) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		switch key {
		case "render_markdown":
			enabled, ok := value.(bool)
			if !ok {
				return fmt.Errorf("invalid value type for render_markdown: expected bool, got %T", value)
			}
			s.RenderMarkdown = enabled

		case "min_duration", "max_duration", "default_duration":
			n, err := toInt(value)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", key, err)
			}
			switch key {
			case "min_duration":
				s.MinDuration = n
			case "max_duration":
				s.MaxDuration = n
			default:
				s.DefaultDuration = n
			}

		default:
			// Ignore unknown keys for forward compatibility
			continue
		}
	}

	return nil
}

// Validate validates the current configuration.
func (s *UISection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.MinDuration <= 0 || s.MinDuration > s.MaxDuration {
		return fmt.Errorf("duration bounds must satisfy 0 < min <= max, got %d..%d", s.MinDuration, s.MaxDuration)
	}
	if s.DefaultDuration < s.MinDuration || s.DefaultDuration > s.MaxDuration {
		return fmt.Errorf("default_duration %d is outside %d..%d", s.DefaultDuration, s.MinDuration, s.MaxDuration)
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *UISection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.RenderMarkdown = defaultRenderMarkdown
	s.MinDuration = workout.MinDurationMinutes
	s.MaxDuration = workout.MaxDurationMinutes
	s.DefaultDuration = defaultDurationMinutes
}

// DurationBounds returns (min, max, default) in minutes.
func (s *UISection) DurationBounds() (int, int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.MinDuration, s.MaxDuration, s.DefaultDuration
}

// ShouldRenderMarkdown reports whether plan text is rendered as markdown.
func (s *UISection) ShouldRenderMarkdown() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.RenderMarkdown
}

// SetRenderMarkdown enables or disables markdown rendering.
func (s *UISection) SetRenderMarkdown(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RenderMarkdown = enabled
}

func toInt(value any) (int, error) {
	switch v := value.(type) {
	case float64:
		// JSON numbers come as float64
		if v != float64(int(v)) {
			return 0, fmt.Errorf("expected whole number, got %v", v)
		}
		return int(v), nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("expected number, got %T", value)
	}
}
