package storyrunner

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
)

// probeReporter records what the shared state looked like when it was
// called.
type probeReporter struct {
	nopReporter
	context          *ScenarioContext
	view             *recordingView
	titleOnScenario  string
	closedAfterStory int
}

func (p *probeReporter) BeforeScenario(string) {
	p.titleOnScenario = p.context.CurrentScenario()
}

func (p *probeReporter) AfterStory() error {
	p.closedAfterStory = p.view.closed
	return nil
}

func TestContextReporterOrdering(t *testing.T) {
	context, view := NewScenarioContext(), &recordingView{}
	probe := &probeReporter{context: context, view: view}
	r := &contextReporter{StoryReporter: probe, context: context, view: view}

	r.BeforeStory("etsy/search.story")
	r.BeforeScenario("Search for a hat")
	assert.Equal(t, "Search for a hat", probe.titleOnScenario)

	assert.NoError(t, r.AfterStory())
	assert.Equal(t, 0, probe.closedAfterStory)
	assert.Equal(t, 1, view.closed)
	assert.Equal(t, "", context.CurrentScenario())
}

func TestDispatcherInteractiveConsole(t *testing.T) {
	var out bytes.Buffer
	context, view := NewScenarioContext(), &recordingView{}
	d := NewScenarioContextDispatcher(NewReporterBuilder(afero.NewMemMapFs(), &out), context, view)

	r := d.ReporterFor("etsy/search.story", FormatInteractiveConsole)
	r.BeforeStory("etsy/search.story")
	r.BeforeScenario("Search for a hat")
	assert.Equal(t, "Search for a hat", context.CurrentScenario())

	r.Step(StepOutcome{Text: `When I search for "hat"`, Status: StatusPassed})
	r.AfterScenario(StatusPassed)
	assert.NoError(t, r.AfterStory())

	assert.Equal(t, 1, view.closed)
	assert.Contains(t, out.String(), "Story: etsy/search.story")
	assert.Contains(t, out.String(), "Scenario: Search for a hat")
	assert.Contains(t, out.String(), `When I search for "hat"`)
}

func TestDispatcherOtherFormatsDelegate(t *testing.T) {
	context, view := NewScenarioContext(), &recordingView{}
	d := NewScenarioContextDispatcher(NewReporterBuilder(afero.NewMemMapFs(), &bytes.Buffer{}), context, view)

	for _, f := range []Format{FormatConsole, FormatTxt, FormatHTML, FormatXML, FormatStats} {
		r := d.ReporterFor("etsy/search.story", f)
		_, wrapped := r.(*contextReporter)
		assert.False(t, wrapped, f)

		r.BeforeStory("etsy/search.story")
		r.BeforeScenario("Search for a hat")
		assert.NoError(t, r.AfterStory())
	}

	assert.Equal(t, "", context.CurrentScenario())
	assert.Equal(t, 0, view.closed)
}

func TestBuildUsesDispatcher(t *testing.T) {
	context, view := NewScenarioContext(), &recordingView{}
	b := NewReporterBuilder(afero.NewMemMapFs(), &bytes.Buffer{}).
		WithFormats(FormatInteractiveConsole, FormatTxt)
	b.WithReporterFactory(NewScenarioContextDispatcher(b, context, view))

	r := b.Build("basket.story")
	r.BeforeStory("basket.story")
	r.BeforeScenario("Basket starts empty")
	assert.Equal(t, "Basket starts empty", context.CurrentScenario())

	assert.NoError(t, r.AfterStory())
	assert.Equal(t, 1, view.closed)
}
