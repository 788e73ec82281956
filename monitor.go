package storyrunner

// ScenarioContext holds the title of the scenario currently running. It is
// shared by the step monitor and the interactive console reporter.
type ScenarioContext struct {
	current string
}

func NewScenarioContext() *ScenarioContext {
	return &ScenarioContext{}
}

func (c *ScenarioContext) SetCurrentScenario(title string) {
	c.current = title
}

func (c *ScenarioContext) CurrentScenario() string {
	return c.current
}

func (c *ScenarioContext) Reset() {
	c.current = ""
}

// StepMonitor is told about every step before it runs.
type StepMonitor interface {
	Performing(step string, dryRun bool)
}

type SilentStepMonitor struct{}

func (SilentStepMonitor) Performing(string, bool) {}

// ContextStepMonitor shows the running scenario and step in a ContextView
// before passing the event on.
type ContextStepMonitor struct {
	view     ContextView
	context  *ScenarioContext
	delegate StepMonitor
}

func NewContextStepMonitor(view ContextView, context *ScenarioContext, delegate StepMonitor) *ContextStepMonitor {
	return &ContextStepMonitor{
		view:     view,
		context:  context,
		delegate: delegate,
	}
}

func (m *ContextStepMonitor) Performing(step string, dryRun bool) {
	m.view.Show(m.context.CurrentScenario(), step)
	m.delegate.Performing(step, dryRun)
}
