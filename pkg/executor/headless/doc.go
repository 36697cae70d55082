// Package headless runs plan requests without the interactive interface.
//
// A request is described by a YAML file:
//
//	activity: Running            # a preset category or a free-text need
//	goal: Improve Endurance
//	duration: 45
//	focus_area: legs
//	output_style: Provide sets, reps, and rest time
//	artifacts:
//	  enabled: true
//	  output_dir: ./plans
//	logging:
//	  verbosity: normal          # quiet, normal, verbose
//
// The executor signs nobody in: the caller resolves the identity first and
// passes it to Generate or History.
//
// Artifacts:
//
// When enabled, the artifact writer stores the outcome of a run:
// - result.json: state, reason, save status and the saved record
// - plan.md: the plan in the same layout the TUI shows
//
// Example usage:
//
//	cfg, _ := headless.LoadConfig("request.yaml")
//	exec := headless.NewExecutor(pipeline, log, cfg)
//	summary, err := exec.Generate(ctx, "sam")
package headless
