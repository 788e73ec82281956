// Package browser supplies browser sessions to step bundles.
package browser

import (
	"context"
	"path/filepath"

	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"
)

var ErrNoSession = errors.New("browser session not initialized")

// Provider hands out the browser session shared by every step bundle of a
// run. Sessions are created lazily and released by End.
type Provider interface {
	Initialize() error
	Get() (context.Context, error)
	Run(actions ...chromedp.Action) error
	Screenshot() ([]byte, error)
	End()
}

// TypeProvider creates sessions of the browser named by Config.Type.
type TypeProvider struct {
	cfg    Config
	parent context.Context

	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
}

func NewTypeProvider(cfg Config) *TypeProvider {
	return &TypeProvider{
		cfg:    cfg,
		parent: context.Background(),
	}
}

// Initialize starts a fresh session, ending the current one if any.
func (p *TypeProvider) Initialize() error {
	p.End()

	alloc, cancelAlloc, err := p.allocator(p.parent)
	if err != nil {
		return err
	}

	ctx, cancelTab := chromedp.NewContext(alloc)

	// an empty Run launches the browser so start-up failures surface here
	if err := chromedp.Run(ctx); err != nil {
		cancelTab()
		cancelAlloc()
		return errors.Wrapf(err, "start %s browser", p.cfg.Type)
	}

	p.ctx = ctx
	p.cancelTab = cancelTab
	p.cancelAlloc = cancelAlloc
	return nil
}

// Get returns the current session context, starting one if needed.
func (p *TypeProvider) Get() (context.Context, error) {
	if p.ctx == nil {
		if err := p.Initialize(); err != nil {
			return nil, err
		}
	}
	return p.ctx, nil
}

// Run executes actions in the current session, bounded by Config.Timeout.
func (p *TypeProvider) Run(actions ...chromedp.Action) error {
	ctx, err := p.Get()
	if err != nil {
		return err
	}

	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	return chromedp.Run(ctx, actions...)
}

// Screenshot captures the whole page as PNG.
func (p *TypeProvider) Screenshot() ([]byte, error) {
	if p.ctx == nil {
		return nil, ErrNoSession
	}

	var buf []byte
	if err := p.Run(chromedp.FullScreenshot(&buf, 100)); err != nil {
		return nil, errors.Wrap(err, "capture screenshot")
	}
	return buf, nil
}

// End closes the browser. It is safe to call without a session.
func (p *TypeProvider) End() {
	if p.cancelTab != nil {
		p.cancelTab()
	}
	if p.cancelAlloc != nil {
		p.cancelAlloc()
	}
	p.ctx, p.cancelTab, p.cancelAlloc = nil, nil, nil
}

func (p *TypeProvider) allocator(parent context.Context) (context.Context, context.CancelFunc, error) {
	switch p.cfg.Type {
	case TypeRemote:
		if p.cfg.RemoteURL == "" {
			return nil, nil, errors.New("remote browser needs BROWSER_REMOTE_URL")
		}
		ctx, cancel := chromedp.NewRemoteAllocator(parent, p.cfg.RemoteURL)
		return ctx, cancel, nil
	case TypeChrome, TypeChromeHeadless:
		opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
		if p.cfg.Width > 0 && p.cfg.Height > 0 {
			opts = append(opts, chromedp.WindowSize(p.cfg.Width, p.cfg.Height))
		}
		dir, err := p.userDataDir()
		if err != nil {
			return nil, nil, err
		}
		if dir != "" {
			opts = append(opts, chromedp.UserDataDir(dir))
		}
		if p.cfg.Type == TypeChrome {
			opts = append(opts, chromedp.Flag("headless", false))
		}
		ctx, cancel := chromedp.NewExecAllocator(parent, opts...)
		return ctx, cancel, nil
	default:
		return nil, nil, errors.Errorf("unknown browser type %q", p.cfg.Type)
	}
}

// userDataDir resolves the configured profile to an absolute directory.
func (p *TypeProvider) userDataDir() (string, error) {
	if p.cfg.Profile == "" {
		return "", nil
	}
	dir, err := filepath.Abs(p.cfg.Profile)
	if err != nil {
		return "", errors.Wrapf(err, "resolve browser profile %s", p.cfg.Profile)
	}
	return dir, nil
}
