package storyrunner

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// CandidateSource lists the step candidates to load for a story.
type CandidateSource interface {
	Candidates() ([]Candidate, error)
}

// Candidates is a fixed CandidateSource.
type Candidates []Candidate

func (c Candidates) Candidates() ([]Candidate, error) {
	return c, nil
}

// Runner finds stories and runs them one after another.
type Runner struct {
	conf    *Configuration
	locator *StoryLocator
	source  CandidateSource
}

func NewRunner(conf *Configuration, source CandidateSource) *Runner {
	return &Runner{
		conf:    conf,
		locator: NewStoryLocator(conf.Fs),
		source:  source,
	}
}

// StoryPaths returns the stories selected by the configured filter.
func (r *Runner) StoryPaths() ([]string, error) {
	return r.locator.Find(r.conf.CodeLocation, r.conf.Config.StoryFilter)
}

// Run executes every selected story. The error is about the run itself
// (discovery, step sources, report writing); story failures are in the
// summary.
func (r *Runner) Run() (Summary, error) {
	started := time.Now()
	logger := r.conf.Logger

	paths, err := r.StoryPaths()
	if err != nil {
		return Summary{ExitCode: 1}, err
	}

	logger.Info("running stories",
		zap.Int("count", len(paths)),
		zap.String("filter", r.conf.Config.StoryFilter))

	var (
		result Summary
		errs   error
	)

	for _, path := range paths {
		story, err := r.runStory(path)
		result.add(story)
		errs = multierr.Append(errs, err)

		if story.StoriesFailed > 0 && r.conf.Config.FailFast {
			break
		}
	}

	result.Success = result.StoriesFailed == 0 && errs == nil
	if !result.Success {
		result.ExitCode = 1
	}
	result.Duration = time.Since(started)

	DisplaySummary(r.conf.Out, result)

	return result, errs
}

func (r *Runner) runStory(path string) (Summary, error) {
	file, err := r.conf.Loader.Resolve(path)
	if err != nil {
		return Summary{StoriesTotal: 1, StoriesFailed: 1}, err
	}

	candidates, err := r.source.Candidates()
	if err != nil {
		return Summary{StoriesTotal: 1, StoriesFailed: 1}, errors.Wrap(err, "list step candidates")
	}

	bundles, loadErrs := r.conf.CandidateSteps(candidates)
	if loadErrs != nil {
		r.conf.Logger.Debug("step candidates replaced by placeholders",
			zap.String("story", path),
			zap.Int("count", len(multierr.Errors(loadErrs))))
	}

	reporter := r.conf.Reporters.Build(path)
	summary := newSuite(r.conf, path, file, bundles, reporter).run()

	return summary, reporter.AfterStory()
}
