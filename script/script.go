// Package script compiles YAML step scripts into step bundles that drive
// the browser.
//
// A script lists steps, each a regular expression and the browser actions
// it performs. Captures are available to actions as $1, $2 and so on.
//
//	steps:
//	  - pattern: '^I search for "([^"]*)"$'
//	    actions:
//	      - sendKeys: {selector: '#search-query', value: '$1'}
//	      - submit: '#search-query'
//	  - pattern: '^I check out$'
//	    pending: true
package script

import (
	"bytes"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/pranas/storyrunner"
	"github.com/pranas/storyrunner/browser"
)

var ErrNoProvider = errors.New("step script has no driver provider")

type document struct {
	Steps []stepSpec `yaml:"steps"`
}

type stepSpec struct {
	Pattern string       `yaml:"pattern"`
	Pending bool         `yaml:"pending"`
	Actions []actionSpec `yaml:"actions"`
}

type target struct {
	Selector string `yaml:"selector"`
	Value    string `yaml:"value"`
}

type actionSpec struct {
	Navigate      string  `yaml:"navigate"`
	Click         string  `yaml:"click"`
	Submit        string  `yaml:"submit"`
	WaitVisible   string  `yaml:"waitVisible"`
	SendKeys      *target `yaml:"sendKeys"`
	TextContains  *target `yaml:"textContains"`
	TitleContains string  `yaml:"titleContains"`
}

// Bundle is a compiled step script.
type Bundle struct {
	name     string
	steps    []stepSpec
	provider browser.Provider
}

// Compile parses and validates a step script. Scripts without steps are
// reported as storyrunner.ErrUninstantiable.
func Compile(name string, src []byte) (*Bundle, error) {
	var doc document

	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrapf(err, "parse %s", name)
	}

	if len(doc.Steps) == 0 {
		return nil, errors.Wrapf(storyrunner.ErrUninstantiable, "%s defines no steps", name)
	}

	for i, st := range doc.Steps {
		if st.Pattern == "" {
			return nil, errors.Errorf("%s: step %d has no pattern", name, i+1)
		}
		if _, err := regexp.Compile(st.Pattern); err != nil {
			return nil, errors.Wrapf(err, "%s: step %d", name, i+1)
		}
		for j, a := range st.Actions {
			if n := a.kinds(); n != 1 {
				return nil, errors.Errorf("%s: step %d action %d names %d actions, want 1", name, i+1, j+1, n)
			}
		}
		if !st.Pending && len(st.Actions) == 0 {
			return nil, errors.Errorf("%s: step %d has no actions and is not pending", name, i+1)
		}
	}

	return &Bundle{name: name, steps: doc.Steps}, nil
}

func (b *Bundle) Name() string {
	return b.name
}

func (b *Bundle) SetDriverProvider(p browser.Provider) {
	b.provider = p
}

func (b *Bundle) StepDefinitions() []storyrunner.StepDefinition {
	defs := make([]storyrunner.StepDefinition, 0, len(b.steps))
	for _, st := range b.steps {
		defs = append(defs, storyrunner.StepDefinition{
			Pattern: st.Pattern,
			Handler: b.handler(st),
		})
	}
	return defs
}

func (b *Bundle) handler(st stepSpec) storyrunner.StepFunc {
	return func(sc storyrunner.Scenario, args ...string) error {
		if st.Pending {
			return storyrunner.ErrPending
		}
		if b.provider == nil {
			return ErrNoProvider
		}

		var checks []func() error
		actions := make([]chromedp.Action, 0, len(st.Actions))
		for _, a := range st.Actions {
			action, check := a.build(args)
			actions = append(actions, action)
			if check != nil {
				checks = append(checks, check)
			}
		}

		if err := b.provider.Run(actions...); err != nil {
			return err
		}
		for _, check := range checks {
			if err := check(); err != nil {
				return err
			}
		}
		return nil
	}
}

func (a actionSpec) kinds() int {
	n := 0
	for _, set := range []bool{
		a.Navigate != "",
		a.Click != "",
		a.Submit != "",
		a.WaitVisible != "",
		a.SendKeys != nil,
		a.TextContains != nil,
		a.TitleContains != "",
	} {
		if set {
			n++
		}
	}
	return n
}

// build turns the action into chromedp. Assertions come back with a check
// to run once the actions have filled in what they read from the page.
func (a actionSpec) build(args []string) (chromedp.Action, func() error) {
	switch {
	case a.Navigate != "":
		return chromedp.Navigate(expand(a.Navigate, args)), nil
	case a.Click != "":
		return chromedp.Click(expand(a.Click, args), chromedp.ByQuery), nil
	case a.Submit != "":
		return chromedp.Submit(expand(a.Submit, args), chromedp.ByQuery), nil
	case a.WaitVisible != "":
		return chromedp.WaitVisible(expand(a.WaitVisible, args), chromedp.ByQuery), nil
	case a.SendKeys != nil:
		return chromedp.SendKeys(expand(a.SendKeys.Selector, args), expand(a.SendKeys.Value, args), chromedp.ByQuery), nil
	case a.TextContains != nil:
		sel, want := expand(a.TextContains.Selector, args), expand(a.TextContains.Value, args)
		var got string
		return chromedp.Text(sel, &got, chromedp.ByQuery), func() error {
			if !strings.Contains(got, want) {
				return errors.Errorf("text of %s is %q, want it to contain %q", sel, got, want)
			}
			return nil
		}
	default:
		want := expand(a.TitleContains, args)
		var got string
		return chromedp.Title(&got), func() error {
			if !strings.Contains(got, want) {
				return errors.Errorf("page title is %q, want it to contain %q", got, want)
			}
			return nil
		}
	}
}

var argRef = regexp.MustCompile(`\$(\d+)`)

// expand replaces $n with the nth capture. Unknown references are kept.
func expand(s string, args []string) string {
	return argRef.ReplaceAllStringFunc(s, func(ref string) string {
		n, err := strconv.Atoi(ref[1:])
		if err != nil || n < 1 || n > len(args) {
			return ref
		}
		return args[n-1]
	})
}
