package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/trainer/pkg/workout"
)

func press(f *form, keys ...tea.KeyType) (submit bool) {
	for _, k := range keys {
		submit, _ = f.Update(tea.KeyMsg{Type: k})
	}
	return submit
}

func TestForm_Defaults(t *testing.T) {
	f := newForm(10, 120, 30)
	req := f.Request()

	assert.Equal(t, workout.Categories[0], req.ActivityCategory)
	assert.Equal(t, workout.Goals[0], req.Goal)
	assert.Equal(t, 30, req.DurationMinutes)
	assert.Empty(t, req.FocusArea)
	assert.Equal(t, workout.StyleFullSession, req.OutputStyle)
	assert.False(t, f.visible(fieldProblem))
}

func TestForm_InvalidBoundsFallBack(t *testing.T) {
	f := newForm(0, -1, 500)
	assert.Equal(t, workout.MinDurationMinutes, f.minDuration)
	assert.Equal(t, workout.MaxDurationMinutes, f.maxDuration)
	assert.Equal(t, workout.DefaultDurationMinutes, f.duration)
}

func TestForm_DescribeOwnNeed(t *testing.T) {
	f := newForm(10, 120, 30)

	press(f, tea.KeyLeft)
	require.True(t, f.describing())
	assert.True(t, f.visible(fieldProblem))

	press(f, tea.KeyTab)
	require.Equal(t, fieldProblem, f.focus)
	f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("  tired after a long week ")})

	req := f.Request()
	assert.Equal(t, "tired after a long week", req.ActivityCategory)
	assert.Equal(t, workout.CustomActivityType, req.ActivityType())
}

func TestForm_Choices(t *testing.T) {
	f := newForm(10, 120, 30)

	press(f, tea.KeyTab) // goal
	require.Equal(t, fieldGoal, f.focus)
	press(f, tea.KeyLeft)
	assert.Equal(t, workout.Goals[len(workout.Goals)-1], f.Request().Goal)
	press(f, tea.KeyRight, tea.KeyRight)
	assert.Equal(t, workout.Goals[1], f.Request().Goal)

	press(f, tea.KeyTab, tea.KeyTab, tea.KeyTab) // style
	require.Equal(t, fieldStyle, f.focus)
	press(f, tea.KeyRight)
	assert.Equal(t, workout.StyleSetsAndReps, f.Request().OutputStyle)
}

func TestForm_DurationIsClamped(t *testing.T) {
	f := newForm(10, 120, 30)
	press(f, tea.KeyTab, tea.KeyTab) // duration
	require.Equal(t, fieldDuration, f.focus)

	press(f, tea.KeyRight)
	assert.Equal(t, 35, f.duration)

	for i := 0; i < 50; i++ {
		press(f, tea.KeyRight)
	}
	assert.Equal(t, 120, f.duration)

	for i := 0; i < 50; i++ {
		press(f, tea.KeyLeft)
	}
	assert.Equal(t, 10, f.duration)

	f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("+")})
	assert.Equal(t, 11, f.duration)
	f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("-")})
	assert.Equal(t, 10, f.duration)
}

func TestForm_Navigation(t *testing.T) {
	f := newForm(10, 120, 30)

	press(f, tea.KeyShiftTab)
	assert.Equal(t, fieldSubmit, f.focus, "focus wraps backwards")
	assert.True(t, press(f, tea.KeyEnter), "enter on the button submits")

	press(f, tea.KeyTab)
	assert.Equal(t, fieldActivity, f.focus)
	assert.False(t, press(f, tea.KeyEnter), "enter elsewhere moves on")
	assert.Equal(t, fieldGoal, f.focus, "hidden rows are skipped")

	assert.True(t, press(f, tea.KeyCtrlS))
}

func TestForm_ResetKeepsBounds(t *testing.T) {
	f := newForm(15, 60, 20)
	press(f, tea.KeyTab, tea.KeyTab, tea.KeyRight)
	f.reset()

	assert.Equal(t, 20, f.duration)
	assert.Equal(t, fieldActivity, f.focus)
	assert.Contains(t, f.View(), "(15-60)")
}

func TestRenderPlan(t *testing.T) {
	p := workout.Plan{
		ActivityType:    "Cardio",
		Goal:            "Lose Weight",
		DurationMinutes: 40,
		PlanText:        "Row 20 minutes.",
	}

	raw := renderPlan(p, 80, false)
	assert.True(t, strings.HasPrefix(raw, "# Cardio - Lose Weight - 40 minutes"))
	assert.Contains(t, raw, "Row 20 minutes.")
	assert.NotContains(t, raw, "Created")

	p.CreatedAt = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	assert.Contains(t, renderPlan(p, 80, false), "**Created:**")

	assert.NotEmpty(t, renderPlan(p, 80, true))
}

func TestPlanItem(t *testing.T) {
	item := planItem{plan: workout.Plan{ActivityType: "Running", Goal: "Increase Speed", DurationMinutes: 25}}
	assert.Equal(t, "Running - Increase Speed - 25 minutes", item.Title())
	assert.Equal(t, item.Title(), item.FilterValue())
	assert.Equal(t, "saved by an earlier version", item.Description())
}
