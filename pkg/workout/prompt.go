package workout

import (
	"fmt"
	"strings"
)

// Compose builds the prompt for r. The wording is fixed, and every non-empty
// parameter appears verbatim.
func Compose(r Request) string {
	var b strings.Builder
	b.WriteString("You are an expert fitness coach. ")

	if preset, ok := presetCategory(r.ActivityCategory); ok {
		fmt.Fprintf(&b, "Recommend a %s workout for today", preset)
	} else {
		fmt.Fprintf(&b, "I am %s. Recommend a workout for today", strings.TrimRight(strings.TrimSpace(r.ActivityCategory), "."))
	}
	fmt.Fprintf(&b, " tailored for someone aiming to %s.", strings.TrimSpace(r.Goal))

	fmt.Fprintf(&b, " I have %d minutes", r.DurationMinutes)
	if focus := strings.TrimSpace(r.FocusArea); focus != "" {
		fmt.Fprintf(&b, ", focusing primarily on %s", focus)
	}
	b.WriteString(".")

	fmt.Fprintf(&b, " I want you to %s.", r.Style())
	return b.String()
}
