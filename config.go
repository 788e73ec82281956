package storyrunner

import (
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"

	"github.com/pranas/storyrunner/browser"
)

// Configuration options
type Config struct {
	// Language (default "en")
	Language string `envconfig:"STORY_LANGUAGE" default:"en"`

	// Scenarios within a story run in the order they are written unless
	// OrderRandom is requested. (default OrderDefinition)
	Order OrderType `envconfig:"STORY_ORDER" default:"definition"`

	// Seed for OrderRandom, 0 assigns one from the clock
	Seed uint64 `envconfig:"STORY_SEED"`

	// Stop on first failure
	FailFast bool `envconfig:"FAIL_FAST"`

	// Do not execute steps
	DryRun bool `envconfig:"DRY_RUN"`

	// Filter scenarios by tags
	TagExpression string `envconfig:"TAG_EXPRESSION"`

	// Substring of story file names to run, "" runs all of them
	StoryFilter string `envconfig:"STORY_FILTER"`

	// Root searched for stories, defaults to the working directory
	CodeLocation string `envconfig:"CODE_LOCATION"`

	// Directory of step scripts, relative to CodeLocation
	StepsDir string `envconfig:"STEPS_DIR" default:"steps"`

	// Report and screenshot output, relative to CodeLocation
	OutputDir string `envconfig:"OUTPUT_DIR" default:"target/stories"`

	Browser browser.Config
}

// LoadConfig reads Config from the process environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type OrderType uint8

const (
	OrderDefinition OrderType = iota
	OrderRandom
)

func (o OrderType) String() string {
	if o == OrderRandom {
		return "random"
	}
	return "definition"
}

// Decode implements envconfig.Decoder.
func (o *OrderType) Decode(value string) error {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "definition":
		*o = OrderDefinition
	case "random":
		*o = OrderRandom
	default:
		return errors.Errorf("unknown story order %q", value)
	}
	return nil
}
