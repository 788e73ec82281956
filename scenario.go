package storyrunner

// Scenario is the state of one running scenario, handed to every step
// handler of that scenario.
type Scenario interface {
	Title() string
	Set(key string, value interface{})
	Get(key string) interface{}
}

type scenario struct {
	title  string
	values map[string]interface{}
}

func newScenario(title string) *scenario {
	return &scenario{
		title:  title,
		values: map[string]interface{}{},
	}
}

func (sc *scenario) Title() string {
	return sc.title
}

func (sc *scenario) Set(key string, value interface{}) {
	sc.values[key] = value
}

func (sc *scenario) Get(key string) interface{} {
	return sc.values[key]
}
