package storyrunner

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cucumber/cucumber-engine/src/runner"
	messages "github.com/cucumber/cucumber-messages-go/v3"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// suite runs a single story file through cucumber-engine.
type suite struct {
	conf            *Configuration
	story           string
	file            string
	bundles         []Bundle
	stepDefinitions []StepDefinition
	reporter        StoryReporter
	logger          *zap.Logger

	// touched only by listen
	pickles  map[string]*messages.Pickle
	keywords map[uint32]string

	scenarios sync.Map
	incoming  chan *messages.Envelope
	outgoing  chan *messages.Envelope
}

func newSuite(conf *Configuration, story, file string, bundles []Bundle, reporter StoryReporter) *suite {
	var defs []StepDefinition
	for _, b := range bundles {
		defs = append(defs, b.StepDefinitions()...)
	}

	return &suite{
		conf:            conf,
		story:           story,
		file:            file,
		bundles:         bundles,
		stepDefinitions: defs,
		reporter:        reporter,
		logger:          conf.Logger.With(zap.String("story", story)),
		pickles:         map[string]*messages.Pickle{},
		keywords:        map[uint32]string{},
	}
}

// run executes the story between the bundles' story hooks.
func (s *suite) run() Summary {
	summary := Summary{StoriesTotal: 1}

	s.reporter.BeforeStory(s.story)

	if err := s.beforeStory(); err != nil {
		s.logger.Error("story not run", zap.Error(err))
		summary.FailedSteps = append(summary.FailedSteps, StepFailure{
			Story: s.story,
			Step:  "before story",
			Error: err.Error(),
		})
	} else {
		summary = s.execute()
	}

	s.afterStory()

	if !summary.Success {
		summary.StoriesFailed = 1
	}
	return summary
}

func (s *suite) beforeStory() error {
	for _, b := range s.bundles {
		if h, ok := b.(BeforeStoryHook); ok {
			if err := h.BeforeStory(s.story); err != nil {
				return err
			}
		}
	}
	return nil
}

// afterStory runs hooks last bundle first, so the browser lifecycle bundle
// tears down after everything that may still use the session.
func (s *suite) afterStory() {
	for i := len(s.bundles) - 1; i >= 0; i-- {
		if h, ok := s.bundles[i].(AfterStoryHook); ok {
			if err := h.AfterStory(s.story); err != nil {
				s.logger.Warn("after story hook failed", zap.Error(err))
			}
		}
	}
}

func (s *suite) execute() Summary {
	e := runner.NewRunner()
	s.incoming, s.outgoing = e.GetCommandChannels()

	resultCh := make(chan Summary)
	go s.listen(resultCh)

	var stepDefinitionConfig []*messages.StepDefinitionConfig

	for i, sd := range s.stepDefinitions {
		stepDefinitionConfig = append(stepDefinitionConfig, &messages.StepDefinitionConfig{
			Id: strconv.Itoa(i),
			Pattern: &messages.StepDefinitionPattern{
				Source: sd.Pattern,
				Type:   messages.StepDefinitionPatternType_REGULAR_EXPRESSION,
			},
		})
	}

	supportCodeConfig := messages.SupportCodeConfig{
		StepDefinitionConfigs: stepDefinitionConfig,
	}

	cfg := s.conf.Config

	order := messages.SourcesOrderType_ORDER_OF_DEFINITION
	if cfg.Order == OrderRandom {
		order = messages.SourcesOrderType_RANDOM
	}

	language := cfg.Language
	if language == "" {
		language = "en"
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().Unix())
	}

	s.respond(&messages.Envelope{
		Message: &messages.Envelope_CommandStart{
			CommandStart: &messages.CommandStart{
				BaseDirectory: s.conf.CodeLocation,
				RuntimeConfig: &messages.RuntimeConfig{
					IsFailFast:  cfg.FailFast,
					IsDryRun:    cfg.DryRun,
					IsStrict:    s.conf.Failure.FailsOnPending(),
					MaxParallel: 1,
				},
				SupportCodeConfig: &supportCodeConfig,
				SourcesConfig: &messages.SourcesConfig{
					Language:      language,
					AbsolutePaths: []string{s.file},
					Filters: &messages.SourcesFilterConfig{
						TagExpression: cfg.TagExpression,
					},
					Order: &messages.SourcesOrder{
						Type: order,
						Seed: seed,
					},
				},
			},
		},
	})

	result := <-resultCh

	if s.conf.Failure.FailsOnPending() && result.StepsPending+result.StepsUndefined > 0 {
		result.Success = false
	}

	return result
}

func (s *suite) listen(resultCh chan Summary) {
	summary := Summary{StoriesTotal: 1}

	for command := range s.outgoing {
		switch x := command.Message.(type) {
		case *messages.Envelope_TestRunFinished:
			summary.Success = x.TestRunFinished.Success
		case *messages.Envelope_CommandRunBeforeTestRunHooks:
			s.complete(x.CommandRunBeforeTestRunHooks.ActionId, messages.TestResult_PASSED, "")
		case *messages.Envelope_CommandRunAfterTestRunHooks:
			s.complete(x.CommandRunAfterTestRunHooks.ActionId, messages.TestResult_PASSED, "")
		case *messages.Envelope_CommandGenerateSnippet:
			s.respond(&messages.Envelope{
				Message: &messages.Envelope_CommandActionComplete{
					CommandActionComplete: &messages.CommandActionComplete{
						CompletedId: x.CommandGenerateSnippet.ActionId,
						Result: &messages.CommandActionComplete_Snippet{
							Snippet: "",
						},
					},
				},
			})
		case *messages.Envelope_GherkinDocument:
			s.recordKeywords(x.GherkinDocument)
		case *messages.Envelope_Pickle:
			s.pickles[x.Pickle.Id] = x.Pickle
		case *messages.Envelope_TestCaseStarted:
			summary.ScenariosTotal += 1

			name := s.pickleName(x.TestCaseStarted.PickleId)
			s.scenarios.Store(x.TestCaseStarted.PickleId, newScenario(name))
			s.reporter.BeforeScenario(name)
		case *messages.Envelope_CommandInitializeTestCase:
			go s.complete(x.CommandInitializeTestCase.ActionId, messages.TestResult_PASSED, "")
		case *messages.Envelope_TestStepStarted:
			if step := s.stepText(x.TestStepStarted.PickleId, int(x.TestStepStarted.Index)); step != "" {
				s.conf.Monitor.Performing(step, s.conf.Config.DryRun)
			}
		case *messages.Envelope_TestCaseFinished:
			pickleId := x.TestCaseFinished.PickleId
			status := statusOf(x.TestCaseFinished.TestResult.Status)

			switch status {
			case StatusPassed:
				summary.ScenariosPassed += 1
			case StatusFailed, StatusAmbiguous:
				summary.ScenariosFailed += 1
			case StatusPending:
				summary.ScenariosPending += 1
			case StatusUndefined:
				summary.ScenariosUndefined += 1
			case StatusSkipped:
				summary.ScenariosSkipped += 1
			}

			s.afterScenario(pickleId, status == StatusFailed || status == StatusAmbiguous)
			s.reporter.AfterScenario(status)
			s.scenarios.Delete(pickleId)
			delete(s.pickles, pickleId)
		case *messages.Envelope_TestStepFinished:
			summary.StepsTotal += 1

			result := x.TestStepFinished.TestResult
			pickleId, index := x.TestStepFinished.PickleId, int(x.TestStepFinished.Index)
			text := s.stepText(pickleId, index)
			outcome := StepOutcome{
				Text:   text,
				Status: statusOf(result.Status),
			}

			switch outcome.Status {
			case StatusPassed:
				summary.StepsPassed += 1
			case StatusFailed, StatusAmbiguous:
				summary.StepsFailed += 1
				outcome.Error = result.Message
				summary.FailedSteps = append(summary.FailedSteps, StepFailure{
					Story:            s.story,
					Scenario:         s.pickleName(pickleId),
					ScenarioLocation: s.scenarioLocation(pickleId),
					Step:             text,
					StepLocation:     s.stepLocation(pickleId, index),
					Error:            result.Message,
				})
			case StatusPending:
				summary.StepsPending += 1
			case StatusUndefined:
				summary.StepsUndefined += 1
			case StatusSkipped:
				summary.StepsSkipped += 1
			}

			s.reporter.Step(outcome)
		case *messages.Envelope_CommandRunTestStep:
			go s.runTestStep(x.CommandRunTestStep)
		}
	}
	resultCh <- summary
}

func (s *suite) respond(m *messages.Envelope) {
	s.incoming <- m
}

func (s *suite) complete(actionId string, status messages.TestResult_Status, message string) {
	s.respond(&messages.Envelope{
		Message: &messages.Envelope_CommandActionComplete{
			CommandActionComplete: &messages.CommandActionComplete{
				CompletedId: actionId,
				Result: &messages.CommandActionComplete_TestResult{
					TestResult: &messages.TestResult{
						Status:  status,
						Message: message,
					},
				},
			},
		},
	})
}

func (s *suite) afterScenario(pickleId string, failed bool) {
	v, ok := s.scenarios.Load(pickleId)
	if !ok {
		return
	}
	sc := v.(*scenario)

	for _, b := range s.bundles {
		if h, ok := b.(AfterScenarioHook); ok {
			if err := h.AfterScenario(sc, failed); err != nil {
				s.logger.Warn("after scenario hook failed",
					zap.String("scenario", sc.Title()),
					zap.Error(err))
			}
		}
	}
}

func (s *suite) runTestStep(command *messages.CommandRunTestStep) {
	err := s.callStepHandler(command)
	switch {
	case err == nil:
		s.complete(command.ActionId, messages.TestResult_PASSED, "")
	case errors.Is(err, ErrPending):
		s.complete(command.ActionId, messages.TestResult_PENDING, "")
	default:
		s.complete(command.ActionId, messages.TestResult_FAILED, err.Error())
	}
}

func (s *suite) callStepHandler(command *messages.CommandRunTestStep) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("step panicked: %v", r)
		}
	}()

	i, err := strconv.Atoi(command.StepDefinitionId)
	if err != nil {
		return err
	}

	var captures []string

	for _, patternMatch := range command.PatternMatches {
		captures = append(captures, patternMatch.Captures...)
	}

	v, ok := s.scenarios.Load(command.PickleId)
	if !ok {
		return errors.Errorf("no scenario for pickle %s", command.PickleId)
	}
	return s.stepDefinitions[i].Handler(v.(*scenario), captures...)
}

// recordKeywords remembers the keyword of every step by line, so step text
// can be reported the way it is written in the story.
func (s *suite) recordKeywords(doc *messages.GherkinDocument) {
	if doc.Feature == nil {
		return
	}

	record := func(steps []*messages.GherkinDocument_Feature_Step) {
		for _, step := range steps {
			if step.Location != nil {
				s.keywords[step.Location.Line] = step.Keyword
			}
		}
	}

	for _, child := range doc.Feature.Children {
		switch x := child.Value.(type) {
		case *messages.GherkinDocument_Feature_FeatureChild_Background:
			record(x.Background.Steps)
		case *messages.GherkinDocument_Feature_FeatureChild_Scenario:
			record(x.Scenario.Steps)
		case *messages.GherkinDocument_Feature_FeatureChild_Rule_:
			for _, ruleChild := range x.Rule.Children {
				switch y := ruleChild.Value.(type) {
				case *messages.GherkinDocument_Feature_FeatureChild_RuleChild_Background:
					record(y.Background.Steps)
				case *messages.GherkinDocument_Feature_FeatureChild_RuleChild_Scenario:
					record(y.Scenario.Steps)
				}
			}
		}
	}
}

func (s *suite) pickleStep(pickleId string, index int) *messages.Pickle_PickleStep {
	pickle, ok := s.pickles[pickleId]
	if !ok || index < 0 || index >= len(pickle.Steps) {
		return nil
	}
	return pickle.Steps[index]
}

func (s *suite) stepText(pickleId string, index int) string {
	step := s.pickleStep(pickleId, index)
	if step == nil {
		return ""
	}
	if len(step.Locations) > 0 {
		return s.keywords[step.Locations[0].Line] + step.Text
	}
	return step.Text
}

func (s *suite) stepLocation(pickleId string, index int) string {
	step := s.pickleStep(pickleId, index)
	if step == nil || len(step.Locations) == 0 {
		return s.story
	}
	return fmt.Sprintf("%s:%d", s.story, step.Locations[len(step.Locations)-1].Line)
}

func (s *suite) scenarioLocation(pickleId string) string {
	pickle, ok := s.pickles[pickleId]
	if !ok || len(pickle.Locations) == 0 {
		return s.story
	}
	return fmt.Sprintf("%s:%d", s.story, pickle.Locations[len(pickle.Locations)-1].Line)
}

func (s *suite) pickleName(pickleId string) string {
	if pickle, ok := s.pickles[pickleId]; ok {
		return pickle.Name
	}
	return ""
}

func statusOf(status messages.TestResult_Status) Status {
	switch status {
	case messages.TestResult_PASSED:
		return StatusPassed
	case messages.TestResult_PENDING:
		return StatusPending
	case messages.TestResult_UNDEFINED:
		return StatusUndefined
	case messages.TestResult_SKIPPED:
		return StatusSkipped
	case messages.TestResult_AMBIGUOUS:
		return StatusAmbiguous
	default:
		return StatusFailed
	}
}
