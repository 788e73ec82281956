package storyrunner

import (
	"github.com/pkg/errors"

	"github.com/pranas/storyrunner/browser"
)

var (
	ErrPending = errors.New("implementation pending")
)

// StepFunc handles one matched step. args holds the pattern captures.
type StepFunc func(sc Scenario, args ...string) error

// StepDefinition binds a regular expression to a handler.
type StepDefinition struct {
	Pattern string
	Handler StepFunc
}

// Bundle is a set of step definitions registered together.
type Bundle interface {
	StepDefinitions() []StepDefinition
}

// BeforeStoryHook is run before the first scenario of a story.
type BeforeStoryHook interface {
	BeforeStory(path string) error
}

// AfterStoryHook is run after the last scenario of a story.
type AfterStoryHook interface {
	AfterStory(path string) error
}

// AfterScenarioHook is run after every scenario, failed or not.
type AfterScenarioHook interface {
	AfterScenario(sc Scenario, failed bool) error
}

// SupportsDriverInjection is implemented by bundles that drive the browser.
// The loader hands them the shared provider after instantiation.
type SupportsDriverInjection interface {
	SetDriverProvider(p browser.Provider)
}

// Steps adapts a plain list of definitions to a Bundle.
type Steps []StepDefinition

func (s Steps) StepDefinitions() []StepDefinition {
	return s
}

// placeholder stands in for candidates that are not step bundles.
type placeholder struct {
	name string
}

func (placeholder) StepDefinitions() []StepDefinition {
	return nil
}

// IsPlaceholder reports whether b is the inert stand-in the loader returns
// for page objects and candidates that failed to load.
func IsPlaceholder(b Bundle) bool {
	_, ok := b.(placeholder)
	return ok
}
