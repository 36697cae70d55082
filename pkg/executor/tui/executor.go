// Package tui provides the interactive terminal interface: sign in, browse
// past workouts, fill in a request and read the generated plan.
//
// The TUI codebase is split into multiple files:
// - executor.go: Executor and program lifecycle
// - model.go: Core model structure and messages
// - update.go: Bubble Tea Update function and message handling
// - view.go: Bubble Tea View function and rendering
// - form.go: Request form
// - helpers.go: History items and plan rendering
// - styles.go: Color schemes and styling
package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/trainer/pkg/identity"
	"github.com/entrhq/trainer/pkg/logging"
	"github.com/entrhq/trainer/pkg/workout"
)

type options struct {
	logger          *logging.Logger
	markdown        bool
	minDuration     int
	maxDuration     int
	defaultDuration int
	copy            func(string) error
}

// Option configures an Executor.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMarkdown enables or disables markdown rendering of plans.
func WithMarkdown(enabled bool) Option {
	return func(o *options) { o.markdown = enabled }
}

// WithDurationBounds sets the range and default of the minutes field.
func WithDurationBounds(minMinutes, maxMinutes, defMinutes int) Option {
	return func(o *options) {
		o.minDuration, o.maxDuration, o.defaultDuration = minMinutes, maxMinutes, defMinutes
	}
}

// Executor runs the interactive interface.
type Executor struct {
	resolver identity.Resolver
	log      workout.Log
	pipeline *workout.Pipeline
	opts     options
}

// NewExecutor creates a TUI executor. log is read for history; pipeline
// generates and saves new plans.
func NewExecutor(resolver identity.Resolver, log workout.Log, pipeline *workout.Pipeline, opts ...Option) *Executor {
	o := options{
		markdown:        true,
		minDuration:     workout.MinDurationMinutes,
		maxDuration:     workout.MaxDurationMinutes,
		defaultDuration: workout.DefaultDurationMinutes,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Executor{resolver: resolver, log: log, pipeline: pipeline, opts: o}
}

// Run starts the TUI and blocks until the user exits or ctx is canceled.
func (e *Executor) Run(ctx context.Context) error {
	m := newModel(ctx, e.resolver, e.log, e.pipeline, e.opts)

	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to run TUI program: %w", err)
	}
	return nil
}
