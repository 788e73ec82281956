package storyrunner

import (
	"bytes"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfiguration(t *testing.T, fs afero.Fs, provider *fakeProvider, view ContextView) (*Configuration, *bytes.Buffer) {
	var out bytes.Buffer
	conf, err := MakeConfiguration(Config{CodeLocation: "/work", OutputDir: "target/stories"}, fs, &out, provider, view, nil)
	require.NoError(t, err)
	return conf, &out
}

func TestMakeConfiguration(t *testing.T) {
	conf, _ := newTestConfiguration(t, afero.NewMemMapFs(), &fakeProvider{}, nil)

	assert.True(t, conf.Failure.FailsOnPending())
	assert.IsType(t, &ContextStepMonitor{}, conf.Monitor)
	assert.Equal(t, "/work", conf.CodeLocation)
	assert.Equal(t, "/work/target/stories", conf.Reporters.OutputDirectory())
	assert.ElementsMatch(t, []Format{
		FormatStats,
		FormatInteractiveConsole,
		FormatTxt,
		FormatHTML,
		FormatXML,
	}, conf.Reporters.Formats())
}

func TestMakeConfigurationDefaultsToWorkingDirectory(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	conf, err := MakeConfiguration(Config{}, afero.NewMemMapFs(), &bytes.Buffer{}, &fakeProvider{}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, wd, conf.CodeLocation)
}

func TestLoadFromCodeLocation(t *testing.T) {
	fs := memStories(t, "/work/etsy/search.story")
	loader := LoadFromCodeLocation{Fs: fs, Root: "/work"}

	file, err := loader.Resolve("etsy/search.story")
	assert.NoError(t, err)
	assert.Equal(t, "/work/etsy/search.story", file)

	_, err = loader.Resolve("etsy/basket.story")
	assert.Error(t, err)
}

func TestMonitorShowsCurrentScenario(t *testing.T) {
	view := &recordingView{}
	conf, _ := newTestConfiguration(t, afero.NewMemMapFs(), &fakeProvider{}, view)

	conf.Context.SetCurrentScenario("Search for a hat")
	conf.Monitor.Performing(`When I search for "hat"`, false)

	assert.Equal(t, 1, view.shown)
	assert.Equal(t, "Search for a hat", view.scenario)
	assert.Equal(t, `When I search for "hat"`, view.step)
}

func TestAssembleBundlesOrder(t *testing.T) {
	lifecycle, screenshot := &namedBundle{"lifecycle"}, &namedBundle{"screenshot"}

	for _, n := range []int{0, 1, 5} {
		var dynamic []Bundle
		for i := 0; i < n; i++ {
			dynamic = append(dynamic, &namedBundle{name: string(rune('a' + i))})
		}

		bundles := AssembleBundles(lifecycle, dynamic, screenshot)

		require.Len(t, bundles, n+2)
		assert.Same(t, lifecycle, bundles[0])
		assert.Same(t, screenshot, bundles[len(bundles)-1])
		for i, b := range dynamic {
			assert.Same(t, b, bundles[i+1])
		}
	}
}

func TestCandidateSteps(t *testing.T) {
	conf, _ := newTestConfiguration(t, afero.NewMemMapFs(), &fakeProvider{}, nil)
	search := &browserBundle{}

	bundles, err := conf.CandidateSteps([]Candidate{
		NewCandidate("etsy.pages.Home", nil),
		NewCandidate("etsy.Search", func() (Bundle, error) { return search, nil }),
		NewCandidate("etsy.Broken", func() (Bundle, error) { return nil, ErrUninstantiable }),
	})

	assert.Error(t, err)
	require.Len(t, bundles, 5)
	assert.IsType(t, &PerStoryBrowserSteps{}, bundles[0])
	assert.True(t, IsPlaceholder(bundles[1]))
	assert.Same(t, search, bundles[2])
	assert.True(t, IsPlaceholder(bundles[3]))
	assert.IsType(t, &ScreenshotOnFailure{}, bundles[4])
	assert.Same(t, conf.Provider, search.provider)
}
