package storyrunner

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/pranas/storyrunner/browser"
)

// PendingStepStrategy decides whether pending and undefined steps fail a
// run.
type PendingStepStrategy interface {
	FailsOnPending() bool
}

type FailingUponPendingStep struct{}

func (FailingUponPendingStep) FailsOnPending() bool { return true }

type PassingUponPendingStep struct{}

func (PassingUponPendingStep) FailsOnPending() bool { return false }

// StoryLoader resolves a story path to the file the engine reads.
type StoryLoader interface {
	Resolve(storyPath string) (string, error)
}

// LoadFromCodeLocation resolves story paths against a root directory.
type LoadFromCodeLocation struct {
	Fs   afero.Fs
	Root string
}

func (l LoadFromCodeLocation) Resolve(storyPath string) (string, error) {
	file := filepath.Join(l.Root, filepath.FromSlash(storyPath))
	if _, err := l.Fs.Stat(file); err != nil {
		return "", errors.Wrapf(err, "load story %s", storyPath)
	}
	return filepath.Abs(file)
}

// Configuration is everything a run needs, built once per run.
type Configuration struct {
	Config       Config
	CodeLocation string
	Fs           afero.Fs
	Out          io.Writer
	Provider     browser.Provider
	Failure      PendingStepStrategy
	Monitor      StepMonitor
	Loader       StoryLoader
	Reporters    *ReporterBuilder
	Context      *ScenarioContext
	Logger       *zap.Logger
}

// MakeConfiguration assembles the run configuration. Reports go to out and
// the live scenario display to view.
func MakeConfiguration(cfg Config, fs afero.Fs, out io.Writer, provider browser.Provider, view ContextView, logger *zap.Logger) (*Configuration, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if view == nil {
		view = NopContextView{}
	}

	codeLocation := cfg.CodeLocation
	if codeLocation == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		codeLocation = wd
	}

	context := NewScenarioContext()

	reporters := NewReporterBuilder(fs, out).
		WithCodeLocation(filepath.ToSlash(codeLocation)).
		WithDefaultFormats().
		WithFormats(FormatInteractiveConsole, FormatTxt, FormatHTML, FormatXML)
	if cfg.OutputDir != "" {
		reporters.WithOutputDir(filepath.ToSlash(cfg.OutputDir))
	}
	reporters.WithReporterFactory(NewScenarioContextDispatcher(reporters, context, view))

	return &Configuration{
		Config:       cfg,
		CodeLocation: codeLocation,
		Fs:           fs,
		Out:          out,
		Provider:     provider,
		Failure:      FailingUponPendingStep{},
		Monitor:      NewContextStepMonitor(view, context, SilentStepMonitor{}),
		Loader:       LoadFromCodeLocation{Fs: fs, Root: codeLocation},
		Reporters:    reporters,
		Context:      context,
		Logger:       logger,
	}, nil
}

// CandidateSteps loads candidates and places them between the browser
// lifecycle bundle and the screenshot bundle. Load errors are logged by the
// loader and returned for diagnostics; the bundles are usable regardless.
func (c *Configuration) CandidateSteps(candidates []Candidate) ([]Bundle, error) {
	dynamic, errs := NewLoader(c.Provider, c.Logger).Load(candidates)

	screenshots := NewScreenshotOnFailure(c.Provider, c.Fs, c.Reporters.OutputDirectory()+"/screenshots", c.Logger)

	return AssembleBundles(NewPerStoryBrowserSteps(c.Provider), dynamic, screenshots), errs
}

// AssembleBundles orders bundles for registration: lifecycle first,
// screenshot last, dynamic ones in between in their given order.
func AssembleBundles(lifecycle Bundle, dynamic []Bundle, screenshot Bundle) []Bundle {
	bundles := make([]Bundle, 0, len(dynamic)+2)
	bundles = append(bundles, lifecycle)
	bundles = append(bundles, dynamic...)
	return append(bundles, screenshot)
}
