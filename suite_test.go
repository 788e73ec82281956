package storyrunner

import (
	"testing"

	messages "github.com/cucumber/cucumber-messages-go/v3"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newStepSuite(steps Steps) *suite {
	s := newSuite(&Configuration{Logger: zap.NewNop()}, "unit.story", "/unit.story", []Bundle{steps}, nopReporter{})
	s.scenarios.Store("pickle-1", newScenario("Unit"))
	return s
}

func TestCallStepHandlerRecoversPanic(t *testing.T) {
	s := newStepSuite(Steps{
		{Pattern: `^boom$`, Handler: func(Scenario, ...string) error { panic("kaboom") }},
	})

	err := s.callStepHandler(&messages.CommandRunTestStep{StepDefinitionId: "0", PickleId: "pickle-1"})
	assert.EqualError(t, err, "step panicked: kaboom")
}

func TestCallStepHandlerKeepsWrappedPending(t *testing.T) {
	s := newStepSuite(Steps{
		{Pattern: `^later$`, Handler: func(Scenario, ...string) error { return errors.Wrap(ErrPending, "checkout") }},
	})

	err := s.callStepHandler(&messages.CommandRunTestStep{StepDefinitionId: "0", PickleId: "pickle-1"})
	assert.True(t, errors.Is(err, ErrPending))
}

func TestCallStepHandlerWithoutScenario(t *testing.T) {
	s := newStepSuite(Steps{
		{Pattern: `^x$`, Handler: func(Scenario, ...string) error { return nil }},
	})

	err := s.callStepHandler(&messages.CommandRunTestStep{StepDefinitionId: "0", PickleId: "unknown"})
	assert.EqualError(t, err, "no scenario for pickle unknown")
}
