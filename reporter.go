package storyrunner

import (
	"io"
	"path"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

type Status uint8

const (
	StatusPassed Status = iota
	StatusFailed
	StatusPending
	StatusUndefined
	StatusSkipped
	StatusAmbiguous
)

func (s Status) String() string {
	switch s {
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusPending:
		return "pending"
	case StatusUndefined:
		return "undefined"
	case StatusSkipped:
		return "skipped"
	case StatusAmbiguous:
		return "ambiguous"
	default:
		return "unknown"
	}
}

// StepOutcome is the result of one step as reporters see it.
type StepOutcome struct {
	Text   string
	Status Status
	Error  string
}

// StoryReporter receives the lifecycle of one story. Only AfterStory
// returns an error; that is where file based reporters write.
type StoryReporter interface {
	BeforeStory(path string)
	BeforeScenario(title string)
	Step(outcome StepOutcome)
	AfterScenario(status Status)
	AfterStory() error
}

type Format string

const (
	FormatInteractiveConsole Format = "interactive-console"
	FormatConsole            Format = "console"
	FormatTxt                Format = "txt"
	FormatHTML               Format = "html"
	FormatXML                Format = "xml"
	FormatStats              Format = "stats"
)

// ReporterFactory builds the reporter of one format for one story.
type ReporterFactory interface {
	ReporterFor(storyPath string, format Format) StoryReporter
}

// ReporterBuilder assembles the reporters of every configured format.
type ReporterBuilder struct {
	fs           afero.Fs
	out          io.Writer
	codeLocation string
	outputDir    string
	formats      []Format
	factory      ReporterFactory
}

func NewReporterBuilder(fs afero.Fs, out io.Writer) *ReporterBuilder {
	return &ReporterBuilder{
		fs:        fs,
		out:       out,
		outputDir: "target/stories",
	}
}

func (b *ReporterBuilder) WithCodeLocation(dir string) *ReporterBuilder {
	b.codeLocation = dir
	return b
}

// WithOutputDir sets where file reports go, relative to the code location.
func (b *ReporterBuilder) WithOutputDir(dir string) *ReporterBuilder {
	b.outputDir = dir
	return b
}

func (b *ReporterBuilder) WithDefaultFormats() *ReporterBuilder {
	return b.WithFormats(FormatStats)
}

func (b *ReporterBuilder) WithFormats(formats ...Format) *ReporterBuilder {
	for _, f := range formats {
		if !b.hasFormat(f) {
			b.formats = append(b.formats, f)
		}
	}
	return b
}

// WithReporterFactory overrides ReporterFor when building story reporters.
func (b *ReporterBuilder) WithReporterFactory(f ReporterFactory) *ReporterBuilder {
	b.factory = f
	return b
}

func (b *ReporterBuilder) Formats() []Format {
	return append([]Format(nil), b.formats...)
}

// OutputDirectory is the resolved directory file reports are written to.
func (b *ReporterBuilder) OutputDirectory() string {
	if b.codeLocation == "" || path.IsAbs(b.outputDir) {
		return b.outputDir
	}
	return path.Join(b.codeLocation, b.outputDir)
}

func (b *ReporterBuilder) hasFormat(f Format) bool {
	for _, have := range b.formats {
		if have == f {
			return true
		}
	}
	return false
}

// ReporterFor is the default reporter of a format.
func (b *ReporterBuilder) ReporterFor(storyPath string, format Format) StoryReporter {
	switch format {
	case FormatInteractiveConsole:
		return NewConsoleReporter(b.out, true)
	case FormatConsole:
		return NewConsoleReporter(b.out, false)
	case FormatTxt:
		return newTextReporter(b.fs, b.reportFile(storyPath, "txt"))
	case FormatHTML:
		return newHTMLReporter(b.fs, b.reportFile(storyPath, "html"))
	case FormatXML:
		return newXMLReporter(b.fs, b.reportFile(storyPath, "xml"))
	case FormatStats:
		return newStatsReporter(b.fs, b.reportFile(storyPath, "stats"))
	default:
		return nopReporter{}
	}
}

// Build returns a reporter fanning out to every configured format.
func (b *ReporterBuilder) Build(storyPath string) StoryReporter {
	var factory ReporterFactory = b
	if b.factory != nil {
		factory = b.factory
	}

	reporters := make(delegatingReporter, 0, len(b.formats))
	for _, f := range b.formats {
		reporters = append(reporters, factory.ReporterFor(storyPath, f))
	}
	return reporters
}

// reportFile names a story report: stories/etsy/search.story becomes
// stories.etsy.search.<ext>.
func (b *ReporterBuilder) reportFile(storyPath, ext string) string {
	name := strings.TrimSuffix(storyPath, path.Ext(storyPath))
	name = strings.ReplaceAll(strings.TrimPrefix(name, "/"), "/", ".")
	return path.Join(b.OutputDirectory(), name+"."+ext)
}

type delegatingReporter []StoryReporter

func (d delegatingReporter) BeforeStory(path string) {
	for _, r := range d {
		r.BeforeStory(path)
	}
}

func (d delegatingReporter) BeforeScenario(title string) {
	for _, r := range d {
		r.BeforeScenario(title)
	}
}

func (d delegatingReporter) Step(outcome StepOutcome) {
	for _, r := range d {
		r.Step(outcome)
	}
}

func (d delegatingReporter) AfterScenario(status Status) {
	for _, r := range d {
		r.AfterScenario(status)
	}
}

func (d delegatingReporter) AfterStory() error {
	var err error
	for _, r := range d {
		err = multierr.Append(err, r.AfterStory())
	}
	return err
}

type nopReporter struct{}

func (nopReporter) BeforeStory(string) {}

func (nopReporter) BeforeScenario(string) {}

func (nopReporter) Step(StepOutcome) {}

func (nopReporter) AfterScenario(Status) {}

func (nopReporter) AfterStory() error { return nil }
