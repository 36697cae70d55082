package headless

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/entrhq/trainer/pkg/workout"
)

const (
	statusSuccess        = "success"
	statusFailed         = "failed"
	statusPartialSuccess = "partial_success"
)

// Executor implements the headless mode executor
type Executor struct {
	pipeline       *workout.Pipeline
	log            workout.Log
	config         *Config
	logger         *Logger
	artifactWriter *ArtifactWriter
	out            io.Writer
	now            func() time.Time
}

// NewExecutor creates a headless executor. Plans are printed to stdout and
// progress to stderr.
func NewExecutor(pipeline *workout.Pipeline, log workout.Log, config *Config) *Executor {
	if config == nil {
		config = DefaultConfig()
	}
	e := &Executor{
		pipeline: pipeline,
		log:      log,
		config:   config,
		logger:   NewLogger(ParseLogLevel(config.Logging.Verbosity)),
		out:      os.Stdout,
		now:      time.Now,
	}
	if config.Artifacts.Enabled {
		e.artifactWriter = NewArtifactWriter(config.Artifacts.OutputDir)
	}
	return e
}

// SetOutput redirects the plan text and the console logger. Colors are
// disabled for the redirected logger.
func (e *Executor) SetOutput(out, console io.Writer) {
	e.out = out
	e.logger = NewPlainLogger(ParseLogLevel(e.config.Logging.Verbosity), console)
}

// Generate runs the configured request for identity and prints the plan.
//
// The error is the pipeline's rejection or generation failure. A plan that
// was generated but not saved is printed, reported as partial success, and
// returns a nil error; the caller inspects summary.Saved.
func (e *Executor) Generate(ctx context.Context, identity string) (*ExecutionSummary, error) {
	start := e.now()
	summary := &ExecutionSummary{
		Identity:  identity,
		StartTime: start,
	}

	req := e.config.Request()
	e.logger.Header(fmt.Sprintf("Generating a %d minute %s workout", req.DurationMinutes, req.ActivityType()))

	res, err := e.pipeline.Run(ctx, identity, req)
	summary.State = res.State
	if res.Prompt != "" {
		e.logger.Verbosef("prompt: %s", res.Prompt)
	}

	switch {
	case err != nil:
		summary.Status = statusFailed
		summary.Error = workout.Reason(err)
		e.logger.Errorf("%s", summary.Error)
	case res.SaveErr != nil:
		summary.Status = statusPartialSuccess
		summary.Error = workout.Reason(res.SaveErr)
		e.logger.Warningf("workout generated but not saved: %s", summary.Error)
	default:
		summary.Status = statusSuccess
		summary.Saved = true
		e.logger.Successf("New workout generated and saved!")
	}

	if res.State == workout.StateCompleted {
		plan := res.Record.Plan()
		summary.Record = &plan
		fmt.Fprintln(e.out, res.PlanText)
	}

	e.finish(summary)
	return summary, err
}

func (e *Executor) finish(summary *ExecutionSummary) {
	summary.EndTime = e.now()
	summary.Duration = summary.EndTime.Sub(summary.StartTime)

	if e.artifactWriter != nil {
		if err := e.artifactWriter.WriteAll(summary); err != nil {
			e.logger.Warningf("failed to write artifacts: %v", err)
		} else {
			e.logger.Verbosef("artifacts written to %s", e.artifactWriter.outputDir)
		}
	}

	e.logger.Summary(summary)
}

// History prints the identity's past plans, newest first. With detail set
// every plan is printed in full, otherwise one label per line.
func (e *Executor) History(ctx context.Context, identity string, detail bool) ([]workout.Plan, error) {
	records, err := e.log.LoadAll(ctx, identity)
	if err != nil {
		e.logger.Errorf("could not load your past workouts: %s", workout.Reason(err))
		return nil, err
	}

	plans := workout.NewestFirst(records)
	if len(plans) == 0 {
		e.logger.Infof("No past workouts yet.")
		return plans, nil
	}

	e.logger.Verbosef("%d plans for %s", len(plans), identity)
	for i, p := range plans {
		if !detail {
			fmt.Fprintln(e.out, p.Label())
			continue
		}
		if i > 0 {
			fmt.Fprintln(e.out)
		}
		fmt.Fprint(e.out, PlanMarkdown(p))
	}
	return plans, nil
}
