package storyrunner

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func playStory(r StoryReporter) error {
	r.BeforeStory("etsy/search.story")
	r.BeforeScenario("Search for a hat")
	r.Step(StepOutcome{Text: "Given I am on the Etsy home page", Status: StatusPassed})
	r.Step(StepOutcome{Text: `Then the results mention "hat"`, Status: StatusFailed, Error: "page title is \"Etsy\""})
	r.AfterScenario(StatusFailed)
	r.BeforeScenario("Buy a hat")
	r.Step(StepOutcome{Text: "When I check out", Status: StatusPending})
	r.AfterScenario(StatusPending)
	return r.AfterStory()
}

func readReport(t *testing.T, fs afero.Fs, file string) string {
	b, err := afero.ReadFile(fs, file)
	require.NoError(t, err)
	return string(b)
}

func TestFileReports(t *testing.T) {
	fs := afero.NewMemMapFs()
	b := NewReporterBuilder(fs, &bytes.Buffer{}).
		WithCodeLocation("/work").
		WithDefaultFormats().
		WithFormats(FormatTxt, FormatHTML, FormatXML)

	require.NoError(t, playStory(b.Build("etsy/search.story")))

	txt := readReport(t, fs, "/work/target/stories/etsy.search.txt")
	assert.Contains(t, txt, "Story: etsy/search.story")
	assert.Contains(t, txt, "Scenario: Search for a hat")
	assert.Contains(t, txt, `Then the results mention "hat" (failed)`)
	assert.Contains(t, txt, "When I check out (pending)")

	html := readReport(t, fs, "/work/target/stories/etsy.search.html")
	assert.Contains(t, html, "<h2>Scenario: Buy a hat</h2>")
	assert.Contains(t, html, `<div class="step pending">When I check out</div>`)

	xml := readReport(t, fs, "/work/target/stories/etsy.search.xml")
	assert.Contains(t, xml, `<story path="etsy/search.story">`)
	assert.Contains(t, xml, `<scenario title="Search for a hat" outcome="failed">`)

	stats := readReport(t, fs, "/work/target/stories/etsy.search.stats")
	assert.Contains(t, stats, "scenarios=2\n")
	assert.Contains(t, stats, "scenariosFailed=2\n")
	assert.Contains(t, stats, "steps.passed=1\n")
	assert.Contains(t, stats, "steps.pending=1\n")
}

func TestReportWriteFailurePropagates(t *testing.T) {
	b := NewReporterBuilder(afero.NewReadOnlyFs(afero.NewMemMapFs()), &bytes.Buffer{}).
		WithFormats(FormatTxt)

	assert.Error(t, playStory(b.Build("etsy/search.story")))
}

func TestWithFormatsIgnoresDuplicates(t *testing.T) {
	b := NewReporterBuilder(afero.NewMemMapFs(), &bytes.Buffer{}).
		WithDefaultFormats().
		WithFormats(FormatStats, FormatTxt, FormatTxt)

	assert.Equal(t, []Format{FormatStats, FormatTxt}, b.Formats())
}

func TestPlainConsole(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, playStory(NewConsoleReporter(&out, false)))

	assert.Contains(t, out.String(), "    Given I am on the Etsy home page\n")
	assert.Contains(t, out.String(), "    When I check out (PENDING)\n")
	assert.Contains(t, out.String(), "      Error: page title is \"Etsy\"\n")
}
