package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/trainer/pkg/workout"
)

// Form rows in focus order.
const (
	fieldActivity = iota
	fieldProblem
	fieldGoal
	fieldDuration
	fieldFocus
	fieldStyle
	fieldSubmit
	fieldCount
)

// describeOwn is the activity choice that reveals the free-text field.
const describeOwn = "Describe my own need"

// durationStep is the change applied by left/right on the duration row.
const durationStep = 5

// form collects the parameters of one plan request.
type form struct {
	focus int

	activities []string
	activity   int
	problem    textinput.Model

	goal int

	duration    int
	minDuration int
	maxDuration int
	defDuration int

	focusArea textinput.Model
	style     int
}

func newForm(minDuration, maxDuration, defDuration int) *form {
	if minDuration <= 0 {
		minDuration = workout.MinDurationMinutes
	}
	if maxDuration < minDuration {
		maxDuration = workout.MaxDurationMinutes
	}
	if defDuration < minDuration || defDuration > maxDuration {
		defDuration = clamp(workout.DefaultDurationMinutes, minDuration, maxDuration)
	}

	f := &form{
		activities:  append(append([]string{}, workout.Categories...), describeOwn),
		problem:     newInput("e.g. I feel fatigued and need recovery"),
		minDuration: minDuration,
		maxDuration: maxDuration,
		defDuration: defDuration,
		focusArea:   newInput("e.g. legs, arms, cardio, flexibility"),
	}
	f.reset()
	return f
}

// reset clears every field and focuses the first row.
func (f *form) reset() {
	f.activity = 0
	f.problem.Reset()
	f.goal = 0
	f.duration = f.defDuration
	f.focusArea.Reset()
	f.style = 0
	f.setFocus(fieldActivity)
}

func (f *form) describing() bool {
	return f.activities[f.activity] == describeOwn
}

func (f *form) visible(field int) bool {
	return field != fieldProblem || f.describing()
}

func (f *form) setFocus(field int) tea.Cmd {
	f.focus = field
	f.problem.Blur()
	f.focusArea.Blur()
	switch field {
	case fieldProblem:
		return f.problem.Focus()
	case fieldFocus:
		return f.focusArea.Focus()
	}
	return nil
}

func (f *form) move(delta int) tea.Cmd {
	next := f.focus
	for {
		next = (next + delta + fieldCount) % fieldCount
		if f.visible(next) {
			return f.setFocus(next)
		}
	}
}

// Update applies one key. submit is true when the user asked to generate.
func (f *form) Update(msg tea.KeyMsg) (submit bool, cmd tea.Cmd) {
	switch msg.String() {
	case "ctrl+s":
		return true, nil
	case "tab", "down":
		return false, f.move(1)
	case "shift+tab", "up":
		return false, f.move(-1)
	case "enter":
		if f.focus == fieldSubmit {
			return true, nil
		}
		return false, f.move(1)
	case "left", "right":
		delta := 1
		if msg.String() == "left" {
			delta = -1
		}
		if f.adjust(delta) {
			return false, nil
		}
	}

	switch f.focus {
	case fieldProblem:
		f.problem, cmd = f.problem.Update(msg)
	case fieldFocus:
		f.focusArea, cmd = f.focusArea.Update(msg)
	case fieldDuration:
		switch msg.String() {
		case "+", "=":
			f.duration = clamp(f.duration+1, f.minDuration, f.maxDuration)
		case "-":
			f.duration = clamp(f.duration-1, f.minDuration, f.maxDuration)
		}
	}
	return false, cmd
}

// adjust changes the focused choice row. It reports false for rows that are
// not choices.
func (f *form) adjust(delta int) bool {
	switch f.focus {
	case fieldActivity:
		f.activity = cycle(f.activity, delta, len(f.activities))
	case fieldGoal:
		f.goal = cycle(f.goal, delta, len(workout.Goals))
	case fieldStyle:
		f.style = cycle(f.style, delta, len(workout.OutputStyles))
	case fieldDuration:
		f.duration = clamp(f.duration+delta*durationStep, f.minDuration, f.maxDuration)
	default:
		return false
	}
	return true
}

// Request builds the pipeline request from the current field values.
func (f *form) Request() workout.Request {
	activity := f.activities[f.activity]
	if f.describing() {
		activity = strings.TrimSpace(f.problem.Value())
	}
	return workout.Request{
		ActivityCategory: activity,
		Goal:             workout.Goals[f.goal],
		DurationMinutes:  f.duration,
		FocusArea:        strings.TrimSpace(f.focusArea.Value()),
		OutputStyle:      workout.OutputStyles[f.style],
	}
}

func (f *form) View() string {
	var b strings.Builder
	row := func(field int, label, value string) {
		if !f.visible(field) {
			return
		}
		marker := "  "
		style := labelStyle
		if f.focus == field {
			marker = focusStyle.Render("› ")
			style = focusStyle
		}
		fmt.Fprintf(&b, "%s%s %s\n", marker, style.Render(label), value)
	}
	choice := func(field int, value string) string {
		if f.focus == field {
			return "◂ " + value + " ▸"
		}
		return value
	}

	row(fieldActivity, "Activity:", choice(fieldActivity, f.activities[f.activity]))
	row(fieldProblem, "Your need:", f.problem.View())
	row(fieldGoal, "Goal:", choice(fieldGoal, workout.Goals[f.goal]))
	row(fieldDuration, "Minutes:", choice(fieldDuration, fmt.Sprintf("%d", f.duration))+
		subtleStyle.Render(fmt.Sprintf("  (%d-%d)", f.minDuration, f.maxDuration)))
	row(fieldFocus, "Focus area:", f.focusArea.View())
	row(fieldStyle, "Output:", choice(fieldStyle, string(workout.OutputStyles[f.style])))
	b.WriteString("\n")
	row(fieldSubmit, "[ Generate Workout ]", "")
	return b.String()
}

func cycle(i, delta, n int) int {
	return (i + delta + n) % n
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
