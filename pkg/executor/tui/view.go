package tui

import (
	"strings"
)

const title = "Fitness Trainer"

func (m *model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(title))
	if m.welcome != "" {
		b.WriteString("  ")
		b.WriteString(welcomeStyle.Render(m.welcome))
	}
	b.WriteString("\n\n")

	switch m.screen {
	case screenLogin:
		b.WriteString(labelStyle.Render("Enter your password"))
		b.WriteString("\n")
		b.WriteString(inputBoxStyle.Render(m.password.View()))
		b.WriteString("\n")
	case screenHistory:
		if len(m.plans) == 0 {
			b.WriteString(subtleStyle.Render("No past workouts yet. Press n to generate your first one."))
			b.WriteString("\n")
		} else {
			b.WriteString(m.history.View())
			b.WriteString("\n")
		}
	case screenForm:
		b.WriteString(labelStyle.Render("Generate a new workout!"))
		b.WriteString("\n\n")
		b.WriteString(m.form.View())
	case screenGenerating:
		b.WriteString(m.spinner.View())
		b.WriteString(" Generating your workout…\n")
	case screenPlan:
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.errMsg != "":
		b.WriteString(errorStyle.Render(m.errMsg))
		b.WriteString("\n")
	case m.notice != "":
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(m.help()))
	return b.String()
}

func (m *model) help() string {
	switch m.screen {
	case screenLogin:
		return "enter sign in • esc quit"
	case screenHistory:
		return "↑/↓ select • enter view • n new workout • r reload • esc sign out • q quit"
	case screenForm:
		return "tab/↑/↓ move • ←/→ change • enter next • ctrl+s generate • esc back"
	case screenGenerating:
		return "esc cancel"
	case screenPlan:
		return "↑/↓ scroll • c copy plan • esc back"
	}
	return ""
}
