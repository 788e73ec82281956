package storyrunner

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerStoryBrowserSteps(t *testing.T) {
	provider := &fakeProvider{}
	steps := NewPerStoryBrowserSteps(provider)

	require.NoError(t, steps.BeforeStory("etsy/search.story"))
	require.NoError(t, steps.AfterStory("etsy/search.story"))

	assert.Equal(t, 1, provider.initialized)
	assert.Equal(t, 1, provider.ended)
	assert.Empty(t, steps.StepDefinitions())
}

func TestPerStoryBrowserStepsInitializeFailure(t *testing.T) {
	provider := &fakeProvider{initErr: errors.New("no chrome")}

	err := NewPerStoryBrowserSteps(provider).BeforeStory("etsy/search.story")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no chrome")
}

func TestScreenshotOnFailure(t *testing.T) {
	fs := afero.NewMemMapFs()
	provider := &fakeProvider{}
	s := NewScreenshotOnFailure(provider, fs, "/out/screenshots", nil)

	require.NoError(t, s.AfterScenario(newScenario("Search for a hat"), false))
	assert.Equal(t, 0, provider.screenshots)

	require.NoError(t, s.AfterScenario(newScenario("Search for a hat!"), true))
	assert.Equal(t, 1, provider.screenshots)

	png, err := afero.ReadFile(fs, "/out/screenshots/failed-scenario-1-search-for-a-hat.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), png)
}
