package storyrunner

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/pranas/storyrunner/browser"
)

// PageObjectMarker marks candidate names that model pages rather than steps.
const PageObjectMarker = "pages."

// ErrUninstantiable is returned by candidates that cannot produce a bundle
// at all, as opposed to ones whose construction failed.
var ErrUninstantiable = errors.New("candidate cannot be instantiated")

// Candidate is a step bundle source discovered at run time.
type Candidate interface {
	Name() string
	Instantiate() (Bundle, error)
}

type factoryCandidate struct {
	name string
	fn   func() (Bundle, error)
}

// NewCandidate wraps a constructor as a Candidate.
func NewCandidate(name string, fn func() (Bundle, error)) Candidate {
	return factoryCandidate{name: name, fn: fn}
}

func (c factoryCandidate) Name() string {
	return c.name
}

func (c factoryCandidate) Instantiate() (Bundle, error) {
	if c.fn == nil {
		return nil, ErrUninstantiable
	}
	return c.fn()
}

type LoadErrorKind uint8

const (
	LoadAccessDenied LoadErrorKind = iota + 1
	LoadConstructionFailed
	LoadUninstantiable
)

func (k LoadErrorKind) String() string {
	switch k {
	case LoadAccessDenied:
		return "access denied"
	case LoadConstructionFailed:
		return "construction failed"
	case LoadUninstantiable:
		return "uninstantiable"
	default:
		return "unknown"
	}
}

// LoadError describes a candidate that was replaced by a placeholder.
type LoadError struct {
	Candidate string
	Kind      LoadErrorKind
	Err       error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %s: %v", e.Candidate, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadResult is either a usable Bundle or a LoadError with a placeholder.
type LoadResult struct {
	Bundle Bundle
	Err    *LoadError
}

// Loader turns candidates into bundles, injecting the shared driver
// provider into those that ask for it.
type Loader struct {
	provider browser.Provider
	logger   *zap.Logger
}

func NewLoader(provider browser.Provider, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		provider: provider,
		logger:   logger,
	}
}

// Instantiate never fails: page objects and broken candidates come back as
// placeholders, the latter with Err set.
func (l *Loader) Instantiate(c Candidate) LoadResult {
	name := c.Name()
	if strings.Contains(name, PageObjectMarker) {
		return LoadResult{Bundle: placeholder{name: name}}
	}

	b, err := instantiate(c)
	if err != nil {
		le := &LoadError{Candidate: name, Kind: classify(err), Err: err}
		l.logger.Warn("step candidate not loaded",
			zap.String("candidate", name),
			zap.String("kind", le.Kind.String()),
			zap.Error(err))
		return LoadResult{Bundle: placeholder{name: name}, Err: le}
	}

	if inj, ok := b.(SupportsDriverInjection); ok {
		inj.SetDriverProvider(l.provider)
	}

	return LoadResult{Bundle: b}
}

// Load returns one bundle per candidate, in candidate order, together with
// every load error combined.
func (l *Loader) Load(candidates []Candidate) ([]Bundle, error) {
	bundles := make([]Bundle, 0, len(candidates))
	var errs error

	for _, c := range candidates {
		res := l.Instantiate(c)
		bundles = append(bundles, res.Bundle)
		if res.Err != nil {
			errs = multierr.Append(errs, res.Err)
		}
	}

	return bundles, errs
}

func instantiate(c Candidate) (b Bundle, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, err = nil, errors.Errorf("panic: %v", r)
		}
	}()

	b, err = c.Instantiate()
	if err == nil && b == nil {
		err = ErrUninstantiable
	}
	return b, err
}

func classify(err error) LoadErrorKind {
	switch {
	case errors.Is(err, os.ErrPermission):
		return LoadAccessDenied
	case errors.Is(err, ErrUninstantiable):
		return LoadUninstantiable
	default:
		return LoadConstructionFailed
	}
}
