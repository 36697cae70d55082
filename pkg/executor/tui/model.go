package tui

import (
	"context"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/entrhq/trainer/pkg/identity"
	"github.com/entrhq/trainer/pkg/logging"
	"github.com/entrhq/trainer/pkg/workout"
)

// screen is the page currently shown.
type screen int

const (
	screenLogin screen = iota
	screenHistory
	screenForm
	screenGenerating
	screenPlan
)

// cursorMode is the cursor style of every text input.
var cursorMode = cursor.CursorBlink

// model represents the state of the TUI application.
type model struct {
	ctx      context.Context
	resolver identity.Resolver
	log      workout.Log
	pipeline *workout.Pipeline
	logger   *logging.Logger
	copy     func(string) error
	markdown bool

	screen screen
	width  int
	height int

	// Bubble Tea components
	password textinput.Model
	spinner  spinner.Model
	history  list.Model
	viewport viewport.Model
	form     *form

	// Session state
	identity string
	welcome  string
	plans    []workout.Plan
	current  workout.Plan

	// Status line. Errors take precedence over notices.
	notice string
	errMsg string

	loggingIn bool
	cancel    context.CancelFunc // set while a generation is in flight
}

// loginMsg carries the outcome of resolving a secret.
type loginMsg struct {
	identity string
	err      error
}

// historyMsg carries a loaded history in presentation order.
type historyMsg struct {
	identity string
	plans    []workout.Plan
	err      error
}

// generatedMsg carries the outcome of one pipeline run.
type generatedMsg struct {
	result *workout.Result
	err    error
}

// copiedMsg reports a clipboard write.
type copiedMsg struct{ err error }

func newInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 200
	ti.Cursor.SetMode(cursorMode)
	return ti
}

func newModel(ctx context.Context, resolver identity.Resolver, log workout.Log, pipeline *workout.Pipeline, opts options) *model {
	password := newInput("password")
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	delegate := list.NewDefaultDelegate()
	history := list.New(nil, delegate, 0, 0)
	history.Title = "Your Past Workouts"
	history.SetShowStatusBar(false)
	history.SetFilteringEnabled(false)
	history.SetShowHelp(false)
	history.DisableQuitKeybindings()

	copyFn := opts.copy
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	return &model{
		ctx:      ctx,
		resolver: resolver,
		log:      log,
		pipeline: pipeline,
		logger:   logging.OrDiscard(opts.logger),
		copy:     copyFn,
		markdown: opts.markdown,
		screen:   screenLogin,
		password: password,
		spinner:  sp,
		history:  history,
		viewport: viewport.New(0, 0),
		form:     newForm(opts.minDuration, opts.maxDuration, opts.defaultDuration),
	}
}
