package storyrunner

import (
	"time"
)

type Summary struct {
	Success  bool
	ExitCode int
	Duration time.Duration

	StoriesTotal  int
	StoriesFailed int

	ScenariosTotal     int
	ScenariosPassed    int
	ScenariosFailed    int
	ScenariosPending   int
	ScenariosUndefined int
	ScenariosSkipped   int

	StepsTotal     int
	StepsPassed    int
	StepsFailed    int
	StepsPending   int
	StepsUndefined int
	StepsSkipped   int

	FailedSteps []StepFailure
}

type StepFailure struct {
	Story            string
	Scenario         string
	ScenarioLocation string
	Step             string
	StepLocation     string
	Error            string
}

// add folds the summary of one story into a run summary.
func (s *Summary) add(story Summary) {
	s.StoriesTotal += story.StoriesTotal
	s.StoriesFailed += story.StoriesFailed
	s.ScenariosTotal += story.ScenariosTotal
	s.ScenariosPassed += story.ScenariosPassed
	s.ScenariosFailed += story.ScenariosFailed
	s.ScenariosPending += story.ScenariosPending
	s.ScenariosUndefined += story.ScenariosUndefined
	s.ScenariosSkipped += story.ScenariosSkipped
	s.StepsTotal += story.StepsTotal
	s.StepsPassed += story.StepsPassed
	s.StepsFailed += story.StepsFailed
	s.StepsPending += story.StepsPending
	s.StepsUndefined += story.StepsUndefined
	s.StepsSkipped += story.StepsSkipped
	s.FailedSteps = append(s.FailedSteps, story.FailedSteps...)
}
