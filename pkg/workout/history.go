package workout

import "fmt"

// NewestFirst flattens a history loaded in append order into presentation
// order.
func NewestFirst(history []Record) []Plan {
	plans := make([]Plan, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		plans = append(plans, history[i].Plan())
	}
	return plans
}

// Label is the one-line summary shown in history lists.
func (p Plan) Label() string {
	return fmt.Sprintf("%s - %s - %d minutes", p.ActivityType, p.Goal, p.DurationMinutes)
}
