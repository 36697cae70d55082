package workout

import (
	"strings"
)

// OutputStyle is a formatting preference passed to the generation service.
// It is advisory; the returned text is not checked against it.
type OutputStyle string

const (
	StyleFullSession OutputStyle = "Include warm-up, main workout, and cool-down"
	StyleSetsAndReps OutputStyle = "Provide sets, reps, and rest time"
	StyleSimple      OutputStyle = "Simple plan without too many details"
)

// OutputStyles lists the styles offered to users; the first is the default.
var OutputStyles = []OutputStyle{StyleFullSession, StyleSetsAndReps, StyleSimple}

// Goals lists the goals offered to users.
var Goals = []string{"Build Muscle", "Improve Endurance", "Increase Speed", "Lose Weight", "Flexibility"}

// Categories lists the preset activity categories. Any other activity text is
// treated as a free-form description and stored as CustomActivityType.
var Categories = []string{"Running", "Weightlifting", "Cardio", "Swimming"}

// CustomActivityType is the stored activity type for free-form descriptions.
const CustomActivityType = "Custom"

// Duration bounds enforced by the interactive form. The pipeline only requires
// a positive duration.
const (
	MinDurationMinutes = 10
	MaxDurationMinutes = 120
)

// Request holds the user supplied parameters for one plan.
type Request struct {
	// ActivityCategory is a preset category or a free-text description of the
	// user's current state or problem.
	ActivityCategory string

	Goal            string
	DurationMinutes int
	FocusArea       string

	// OutputStyle defaults to StyleFullSession when empty.
	OutputStyle OutputStyle
}

// Validate reports ErrRejectedInput naming every missing parameter.
func (r Request) Validate() error {
	var missing []string
	if strings.TrimSpace(r.ActivityCategory) == "" {
		missing = append(missing, "activity")
	}
	if strings.TrimSpace(r.Goal) == "" {
		missing = append(missing, "goal")
	}
	if r.DurationMinutes <= 0 {
		missing = append(missing, "duration")
	}
	if strings.TrimSpace(r.FocusArea) == "" {
		missing = append(missing, "focus area")
	}
	if len(missing) > 0 {
		return NewError(ErrRejectedInput, "please fill out: "+strings.Join(missing, ", "), nil)
	}
	return nil
}

// Style returns the requested output style or the default.
func (r Request) Style() OutputStyle {
	if strings.TrimSpace(string(r.OutputStyle)) == "" {
		return OutputStyles[0]
	}
	return r.OutputStyle
}

// ActivityType is the activity type recorded for the request: the canonical
// preset name, or CustomActivityType for a free-form description.
func (r Request) ActivityType() string {
	if preset, ok := presetCategory(r.ActivityCategory); ok {
		return preset
	}
	return CustomActivityType
}

func presetCategory(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(c, s) {
			return c, true
		}
	}
	return "", false
}
