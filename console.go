package storyrunner

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

const (
	successColor   = color.FgGreen
	failureColor   = color.FgRed
	skippedColor   = color.FgCyan
	undefinedColor = color.FgYellow
	pendingColor   = color.FgYellow
	ambiguousColor = color.FgMagenta
)

var statusColors = map[Status]color.Attribute{
	StatusPassed:    successColor,
	StatusFailed:    failureColor,
	StatusPending:   pendingColor,
	StatusUndefined: undefinedColor,
	StatusSkipped:   skippedColor,
	StatusAmbiguous: ambiguousColor,
}

// consoleReporter prints a story as it runs.
type consoleReporter struct {
	out     io.Writer
	colored bool
}

// NewConsoleReporter writes to out, colored for interactive terminals.
func NewConsoleReporter(out io.Writer, colored bool) StoryReporter {
	return &consoleReporter{
		out:     out,
		colored: colored,
	}
}

func (cr *consoleReporter) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if !cr.colored {
		c.DisableColor()
	}
	return c
}

func (cr *consoleReporter) BeforeStory(path string) {
	cr.paint(color.Bold).Fprintf(cr.out, "\nStory: %s\n", path)
}

func (cr *consoleReporter) BeforeScenario(title string) {
	fmt.Fprintf(cr.out, "\n  Scenario: %s\n", title)
}

func (cr *consoleReporter) Step(o StepOutcome) {
	c := cr.paint(statusColors[o.Status])
	switch o.Status {
	case StatusPassed:
		c.Fprintf(cr.out, "    %s\n", o.Text)
	case StatusSkipped:
		c.Fprintf(cr.out, "    %s (NOT PERFORMED)\n", o.Text)
	default:
		c.Fprintf(cr.out, "    %s (%s)\n", o.Text, strings.ToUpper(o.Status.String()))
	}
	if o.Error != "" {
		cr.paint(color.FgHiRed).Fprintf(cr.out, "      Error: %s\n", o.Error)
	}
}

func (cr *consoleReporter) AfterScenario(Status) {}

func (cr *consoleReporter) AfterStory() error {
	return nil
}

// DisplaySummary prints the run totals and every failed step.
func DisplaySummary(out io.Writer, s Summary) {
	if len(s.FailedSteps) > 0 {
		color.New(failureColor).Fprint(out, "\n\nFailed steps:\n")
		for _, fs := range s.FailedSteps {
			color.New(failureColor).Fprintf(out, "\n  Scenario: %s", fs.Scenario)
			color.New(color.FgHiBlack).Fprintf(out, " # %s\n", locationOr(fs.ScenarioLocation, fs.Story))
			color.New(failureColor).Fprintf(out, "    %s", fs.Step)
			color.New(color.FgHiBlack).Fprintf(out, " # %s\n", locationOr(fs.StepLocation, fs.Story))
			color.New(failureColor).Fprint(out, "      Error: ")
			color.New(color.FgHiRed).Fprintf(out, "%s\n", fs.Error)
		}
	}

	fmt.Fprint(out, "\n")
	fmt.Fprintf(out, "%d stories\n", s.StoriesTotal)
	scenarioStatusSummary := statusSummary(s.ScenariosPassed, s.ScenariosFailed, s.ScenariosPending, s.ScenariosUndefined, s.ScenariosSkipped)
	fmt.Fprintf(out, "%d scenarios (%s)\n", s.ScenariosTotal, scenarioStatusSummary)

	stepStatusSummary := statusSummary(s.StepsPassed, s.StepsFailed, s.StepsPending, s.StepsUndefined, s.StepsSkipped)
	fmt.Fprintf(out, "%d steps (%s)\n", s.StepsTotal, stepStatusSummary)
	fmt.Fprintln(out, s.Duration)
}

func locationOr(location, fallback string) string {
	if location == "" {
		return fallback
	}
	return location
}

func statusSummary(passed, failed, pending, undefined, skipped int) string {
	var acc []string

	if passed > 0 {
		acc = append(acc, color.New(successColor).Sprintf("%d passed", passed))
	}

	if failed > 0 {
		acc = append(acc, color.New(failureColor).Sprintf("%d failed", failed))
	}

	if pending > 0 {
		acc = append(acc, color.New(pendingColor).Sprintf("%d pending", pending))
	}

	if undefined > 0 {
		acc = append(acc, color.New(undefinedColor).Sprintf("%d undefined", undefined))
	}

	if skipped > 0 {
		acc = append(acc, color.New(skippedColor).Sprintf("%d skipped", skipped))
	}

	return strings.Join(acc, ", ")
}
