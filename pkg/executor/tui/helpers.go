package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/glamour"

	"github.com/entrhq/trainer/pkg/workout"
)

// planItem adapts a plan to the history list.
type planItem struct {
	plan workout.Plan
}

func (i planItem) Title() string       { return i.plan.Label() }
func (i planItem) FilterValue() string { return i.plan.Label() }

func (i planItem) Description() string {
	if i.plan.CreatedAt.IsZero() {
		return "saved by an earlier version"
	}
	return i.plan.CreatedAt.Local().Format("Mon 2 Jan 2006 15:04")
}

func planItems(plans []workout.Plan) []list.Item {
	items := make([]list.Item, len(plans))
	for i, p := range plans {
		items[i] = planItem{plan: p}
	}
	return items
}

// planMarkdown is the detail view of one plan.
func planMarkdown(p workout.Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", p.Label())
	fmt.Fprintf(&b, "- **Type:** %s\n", p.ActivityType)
	fmt.Fprintf(&b, "- **Duration:** %d minutes\n", p.DurationMinutes)
	fmt.Fprintf(&b, "- **Goal:** %s\n", p.Goal)
	if !p.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "- **Created:** %s\n", p.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	b.WriteString("\n---\n\n")
	b.WriteString(p.PlanText)
	b.WriteString("\n")
	return b.String()
}

// renderPlan renders the detail view for the terminal. Rendering failures fall
// back to the raw markdown.
func renderPlan(p workout.Plan, width int, markdown bool) string {
	text := planMarkdown(p)
	if !markdown {
		return text
	}
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return out
}
