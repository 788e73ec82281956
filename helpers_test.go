package storyrunner

import (
	"context"

	"github.com/chromedp/chromedp"
)

type fakeProvider struct {
	initErr     error
	initialized int
	ended       int
	runs        int
	screenshots int
}

func (p *fakeProvider) Initialize() error {
	if p.initErr != nil {
		return p.initErr
	}
	p.initialized++
	return nil
}

func (p *fakeProvider) Get() (context.Context, error) {
	return context.Background(), nil
}

func (p *fakeProvider) Run(actions ...chromedp.Action) error {
	p.runs++
	return nil
}

func (p *fakeProvider) Screenshot() ([]byte, error) {
	p.screenshots++
	return []byte("png"), nil
}

func (p *fakeProvider) End() {
	p.ended++
}

type recordingView struct {
	scenario string
	step     string
	shown    int
	closed   int
}

func (v *recordingView) Show(scenario, step string) {
	v.scenario, v.step = scenario, step
	v.shown++
}

func (v *recordingView) Close() {
	v.closed++
}

// namedBundle is comparable by pointer, unlike Steps.
type namedBundle struct {
	name string
}

func (*namedBundle) StepDefinitions() []StepDefinition {
	return nil
}
