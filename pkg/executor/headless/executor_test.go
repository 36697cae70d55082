package headless

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/trainer/pkg/store"
	"github.com/entrhq/trainer/pkg/workout"
)

type stubGenerator struct {
	text string
	err  error
}

func (g stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.text, g.err
}

type failingLog struct{}

func (failingLog) Append(ctx context.Context, identity string, r workout.Record) error {
	return workout.NewError(workout.ErrStorageWriteFailed, "disk full", nil)
}

func (failingLog) LoadAll(ctx context.Context, identity string) ([]workout.Record, error) {
	return nil, workout.NewError(workout.ErrStorageReadFailed, "history is unreadable", nil)
}

func requestConfig() *Config {
	cfg := DefaultConfig()
	cfg.Activity = "running"
	cfg.Goal = "Increase Speed"
	cfg.Duration = 25
	cfg.FocusArea = "intervals"
	return cfg
}

func newTestExecutor(gen workout.Generator, log workout.Log, cfg *Config) (*Executor, *bytes.Buffer, *bytes.Buffer) {
	e := NewExecutor(workout.NewPipeline(gen, log), log, cfg)
	var out, console bytes.Buffer
	e.SetOutput(&out, &console)
	return e, &out, &console
}

func TestGenerate_Success(t *testing.T) {
	log := store.NewMemoryStore()
	e, out, console := newTestExecutor(stubGenerator{text: "Run 5 x 400m."}, log, requestConfig())

	summary, err := e.Generate(context.Background(), "sam")
	require.NoError(t, err)

	assert.Equal(t, statusSuccess, summary.Status)
	assert.Equal(t, workout.StateCompleted, summary.State)
	assert.True(t, summary.Saved)
	require.NotNil(t, summary.Record)
	assert.Equal(t, "Running - Increase Speed - 25 minutes", summary.Record.Label())
	assert.Equal(t, "Run 5 x 400m.\n", out.String())
	assert.Contains(t, console.String(), "New workout generated and saved!")
	assert.NotContains(t, console.String(), "\033[", "redirected console has no colors")

	records, err := log.LoadAll(context.Background(), "sam")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestGenerate_Rejected(t *testing.T) {
	cfg := requestConfig()
	cfg.FocusArea = ""
	e, out, console := newTestExecutor(stubGenerator{text: "unused"}, store.NewMemoryStore(), cfg)

	summary, err := e.Generate(context.Background(), "sam")
	require.Error(t, err)
	assert.True(t, errors.Is(err, workout.ErrRejectedInput))
	assert.Equal(t, statusFailed, summary.Status)
	assert.Equal(t, "please fill out: focus area", summary.Error)
	assert.Nil(t, summary.Record)
	assert.Empty(t, out.String())
	assert.Contains(t, console.String(), "please fill out: focus area")
}

func TestGenerate_GenerationFailed(t *testing.T) {
	e, out, _ := newTestExecutor(stubGenerator{err: errors.New("boom")}, store.NewMemoryStore(), requestConfig())

	summary, err := e.Generate(context.Background(), "sam")
	require.Error(t, err)
	assert.True(t, errors.Is(err, workout.ErrGenerationFailed))
	assert.Equal(t, workout.StateGenerationFailed, summary.State)
	assert.Equal(t, "the generation service returned an error", summary.Error)
	assert.Empty(t, out.String())
}

func TestGenerate_NotSaved(t *testing.T) {
	e, out, console := newTestExecutor(stubGenerator{text: "Swim 1km."}, failingLog{}, requestConfig())

	summary, err := e.Generate(context.Background(), "sam")
	require.NoError(t, err)
	assert.Equal(t, statusPartialSuccess, summary.Status)
	assert.False(t, summary.Saved)
	assert.Equal(t, "disk full", summary.Error)
	assert.Equal(t, "Swim 1km.\n", out.String(), "the plan is still shown")
	assert.Contains(t, console.String(), "generated but not saved")
}

func TestGenerate_WritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	cfg := requestConfig()
	cfg.Artifacts = ArtifactConfig{Enabled: true, OutputDir: dir}

	e, _, _ := newTestExecutor(stubGenerator{text: "Row 2km."}, store.NewMemoryStore(), cfg)
	_, err := e.Generate(context.Background(), "sam")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "result.json"))
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, statusSuccess, decoded["status"])
	assert.Equal(t, "sam", decoded["identity"])
	assert.Equal(t, true, decoded["saved"])

	plan, err := os.ReadFile(filepath.Join(dir, "plan.md"))
	require.NoError(t, err)
	assert.Contains(t, string(plan), "# Running - Increase Speed - 25 minutes")
	assert.Contains(t, string(plan), "Row 2km.")
}

func TestGenerate_RejectedWritesOnlyResult(t *testing.T) {
	dir := t.TempDir()
	cfg := requestConfig()
	cfg.Goal = ""
	cfg.Artifacts = ArtifactConfig{Enabled: true, OutputDir: dir}

	e, _, _ := newTestExecutor(stubGenerator{text: "unused"}, store.NewMemoryStore(), cfg)
	_, err := e.Generate(context.Background(), "sam")
	require.Error(t, err)

	assert.FileExists(t, filepath.Join(dir, "result.json"))
	assert.NoFileExists(t, filepath.Join(dir, "plan.md"))
}

func TestHistory(t *testing.T) {
	log := store.NewMemoryStore()
	ctx := context.Background()
	first := time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC)
	require.NoError(t, log.Append(ctx, "sam", workout.Record{
		CreatedAt: &first, ActivityType: workout.String("Cardio"), Goal: workout.String("Lose Weight"),
		DurationMinutes: workout.Int(40), PlanText: workout.String("Bike."),
	}))
	require.NoError(t, log.Append(ctx, "sam", workout.Record{PlanText: workout.String("Old plan.")}))

	e, out, _ := newTestExecutor(stubGenerator{}, log, DefaultConfig())

	plans, err := e.History(ctx, "sam", false)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t,
		"Unknown Type - Unknown Goal - 30 minutes\nCardio - Lose Weight - 40 minutes\n",
		out.String())

	out.Reset()
	_, err = e.History(ctx, "sam", true)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Old plan.")
	assert.Contains(t, out.String(), "**Created:** 2026-01-02T08:00:00Z")
}

func TestHistory_Empty(t *testing.T) {
	e, out, console := newTestExecutor(stubGenerator{}, store.NewMemoryStore(), DefaultConfig())

	plans, err := e.History(context.Background(), "sam", false)
	require.NoError(t, err)
	assert.Empty(t, plans)
	assert.Empty(t, out.String())
	assert.Contains(t, console.String(), "No past workouts yet.")
}

func TestHistory_Unreadable(t *testing.T) {
	e, _, console := newTestExecutor(stubGenerator{}, failingLog{}, DefaultConfig())

	_, err := e.History(context.Background(), "sam", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, workout.ErrStorageReadFailed))
	assert.Contains(t, console.String(), "history is unreadable")
}

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := NewPlainLogger(LogLevelQuiet, &buf)
	l.Infof("info")
	l.Successf("done")
	l.Verbosef("detail")
	l.Summary(&ExecutionSummary{Status: statusSuccess})
	assert.Empty(t, buf.String())

	l.Warningf("careful")
	l.Errorf("broken")
	assert.Contains(t, buf.String(), "⚠ Warning: careful")
	assert.Contains(t, buf.String(), "✗ Error: broken")

	buf.Reset()
	l = NewPlainLogger(LogLevelVerbose, &buf)
	l.Verbosef("detail %d", 1)
	assert.Equal(t, "→ detail 1\n", buf.String())
}
