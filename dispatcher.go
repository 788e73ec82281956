package storyrunner

// ScenarioContextDispatcher hands out the builder's reporters, except for
// the interactive console, whose reporter also keeps the scenario context
// and its view up to date.
type ScenarioContextDispatcher struct {
	builder *ReporterBuilder
	context *ScenarioContext
	view    ContextView
}

func NewScenarioContextDispatcher(builder *ReporterBuilder, context *ScenarioContext, view ContextView) *ScenarioContextDispatcher {
	return &ScenarioContextDispatcher{
		builder: builder,
		context: context,
		view:    view,
	}
}

func (d *ScenarioContextDispatcher) ReporterFor(storyPath string, format Format) StoryReporter {
	r := d.builder.ReporterFor(storyPath, format)
	if format != FormatInteractiveConsole {
		return r
	}
	return &contextReporter{
		StoryReporter: r,
		context:       d.context,
		view:          d.view,
	}
}

type contextReporter struct {
	StoryReporter
	context *ScenarioContext
	view    ContextView
}

func (r *contextReporter) BeforeScenario(title string) {
	r.context.SetCurrentScenario(title)
	r.StoryReporter.BeforeScenario(title)
}

func (r *contextReporter) AfterStory() error {
	err := r.StoryReporter.AfterStory()
	r.view.Close()
	r.context.Reset()
	return err
}
