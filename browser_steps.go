package storyrunner

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/pranas/storyrunner/browser"
)

// PerStoryBrowserSteps opens a browser session before each story and ends
// it afterwards. It has to be the first bundle so the session exists before
// any other bundle's hooks or steps run.
type PerStoryBrowserSteps struct {
	provider browser.Provider
}

func NewPerStoryBrowserSteps(provider browser.Provider) *PerStoryBrowserSteps {
	return &PerStoryBrowserSteps{provider: provider}
}

func (s *PerStoryBrowserSteps) StepDefinitions() []StepDefinition {
	return nil
}

func (s *PerStoryBrowserSteps) BeforeStory(string) error {
	return errors.Wrap(s.provider.Initialize(), "initialize browser")
}

func (s *PerStoryBrowserSteps) AfterStory(string) error {
	s.provider.End()
	return nil
}

// ScreenshotOnFailure saves a screenshot of the page after every failed
// scenario. It has to be the last bundle so it sees failures of all others.
type ScreenshotOnFailure struct {
	provider browser.Provider
	fs       afero.Fs
	dir      string
	logger   *zap.Logger
	taken    int
}

func NewScreenshotOnFailure(provider browser.Provider, fs afero.Fs, dir string, logger *zap.Logger) *ScreenshotOnFailure {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScreenshotOnFailure{
		provider: provider,
		fs:       fs,
		dir:      dir,
		logger:   logger,
	}
}

func (s *ScreenshotOnFailure) StepDefinitions() []StepDefinition {
	return nil
}

func (s *ScreenshotOnFailure) AfterScenario(sc Scenario, failed bool) error {
	if !failed {
		return nil
	}

	png, err := s.provider.Screenshot()
	if err != nil {
		return errors.Wrapf(err, "screenshot of %q", sc.Title())
	}

	s.taken++
	file := path.Join(s.dir, fmt.Sprintf("failed-scenario-%d-%s.png", s.taken, slug(sc.Title())))
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrap(err, "create screenshot directory")
	}
	if err := afero.WriteFile(s.fs, file, png, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", file)
	}

	s.logger.Info("screenshot saved",
		zap.String("scenario", sc.Title()),
		zap.String("file", file))
	return nil
}

var nonWord = regexp.MustCompile(`[^a-z0-9]+`)

func slug(s string) string {
	return strings.Trim(nonWord.ReplaceAllString(strings.ToLower(s), "-"), "-")
}
