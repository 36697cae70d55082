package workout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/entrhq/trainer/pkg/logging"
	"github.com/google/uuid"
)

// Generator is the text generation capability: one prompt in, one text out.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// State is the terminal state of one pipeline run.
type State string

const (
	StateRejectedInput    State = "rejected_input"
	StateCompleted        State = "completed"
	StateGenerationFailed State = "generation_failed"
)

// Observer is notified once per run. observability.Metrics implements it.
type Observer interface {
	GenerationFinished(state State, elapsed time.Duration)
}

// Result is the outcome of one run.
type Result struct {
	State State

	// Prompt is the composed prompt; empty when the input was rejected.
	Prompt string

	// PlanText is the generated text when State is StateCompleted.
	PlanText string

	// Record is the normalized record handed to the log.
	Record Record

	// SaveErr reports a failed append. A completed run keeps its PlanText
	// even when the plan could not be saved.
	SaveErr error
}

// Saved reports whether the generated plan reached the log.
func (r *Result) Saved() bool {
	return r.State == StateCompleted && r.SaveErr == nil
}

// Pipeline turns a Request into one generation call and, on success, one
// appended record. It never retries.
type Pipeline struct {
	generator Generator
	log       Log
	logger    *logging.Logger
	observer  Observer
	timeout   time.Duration
	now       func() time.Time
	newID     func() string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTimeout bounds the generation call. A timeout is reported as
// ErrGenerationFailed. Zero leaves the call unbounded.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		p.timeout = d
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(l *logging.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logging.OrDiscard(l)
	}
}

// WithObserver registers an observer for run outcomes.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) {
		p.observer = o
	}
}

// NewPipeline creates a pipeline backed by the given generator and log.
func NewPipeline(generator Generator, log Log, opts ...Option) *Pipeline {
	p := &Pipeline{
		generator: generator,
		log:       log,
		logger:    logging.Discard(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one request on behalf of identity.
//
// The returned error is ErrRejectedInput or ErrGenerationFailed; in both cases
// nothing was appended. A completed run returns a nil error, and a failed
// append is reported through Result.SaveErr instead.
func (p *Pipeline) Run(ctx context.Context, identity string, req Request) (*Result, error) {
	start := p.now()
	res, err := p.run(ctx, identity, req)
	if p.observer != nil {
		p.observer.GenerationFinished(res.State, p.now().Sub(start))
	}
	return res, err
}

func (p *Pipeline) run(ctx context.Context, identity string, req Request) (*Result, error) {
	logger := p.logger.With("identity", identity)

	if strings.TrimSpace(identity) == "" {
		return &Result{State: StateRejectedInput}, NewError(ErrRejectedInput, "no signed-in user", nil)
	}
	if err := req.Validate(); err != nil {
		logger.Infof("request rejected: %s", Reason(err))
		return &Result{State: StateRejectedInput}, err
	}

	prompt := Compose(req)
	res := &Result{State: StateGenerationFailed, Prompt: prompt}

	text, err := p.generate(ctx, prompt)
	if err != nil {
		logger.Warnf("generation failed: %v", err)
		return res, err
	}

	// The caller gave up while the call was in flight; leave no record behind.
	if err := ctx.Err(); err != nil {
		logger.Infof("request abandoned after generation: %v", err)
		return res, NewError(ErrGenerationFailed, "request was canceled", err)
	}

	createdAt := p.now().UTC()
	rec := Record{
		ID:              String(p.newID()),
		CreatedAt:       &createdAt,
		ActivityType:    String(req.ActivityType()),
		Goal:            String(strings.TrimSpace(req.Goal)),
		DurationMinutes: Int(req.DurationMinutes),
		PlanText:        String(text),
	}
	res.State = StateCompleted
	res.PlanText = text
	res.Record = Normalize(rec)

	if err := p.log.Append(ctx, identity, rec); err != nil {
		if !errors.Is(err, ErrStorageWriteFailed) {
			err = NewError(ErrStorageWriteFailed, "could not save the plan", err)
		}
		logger.Errorf("plan generated but not saved: %v", err)
		res.SaveErr = err
		return res, nil
	}

	logger.Infof("plan %s saved (%s, %d minutes)", *rec.ID, *rec.ActivityType, *rec.DurationMinutes)
	return res, nil
}

func (p *Pipeline) generate(ctx context.Context, prompt string) (string, error) {
	callCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	text, err := p.generator.Generate(callCtx, prompt)
	switch {
	case err == nil && strings.TrimSpace(text) == "":
		return "", NewError(ErrGenerationFailed, "the generation service returned an empty plan", nil)
	case err == nil:
		return text, nil
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		return "", NewError(ErrGenerationFailed, fmt.Sprintf("the generation service did not answer within %s", p.timeout), err)
	case errors.Is(err, context.Canceled):
		return "", NewError(ErrGenerationFailed, "request was canceled", err)
	default:
		return "", NewError(ErrGenerationFailed, "the generation service returned an error", err)
	}
}
