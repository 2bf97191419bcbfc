package browser

import (
	"context"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Config configures the rod session.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string

	Headless bool

	// Stealth applies go-rod/stealth evasions to every new tab.
	Stealth bool

	// BlockResources lists resource types to block (images, fonts, media, stylesheets).
	BlockResources []string
}

// RodSession is a Session backed by a single Chrome process.
type RodSession struct {
	cfg     Config
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

// Launch starts Chrome (or connects to a remote instance) and returns a
// session ready to open tabs.
func Launch(ctx context.Context, cfg Config) (*RodSession, error) {
	s := &RodSession{cfg: cfg}

	var wsURL string
	if cfg.RemoteURL != "" {
		wsURL = cfg.RemoteURL
		zap.L().Info("browser: connecting to remote", zap.String("url", wsURL))
	} else {
		l := launcher.New().Context(ctx).Headless(cfg.Headless)

		// Anti-detection flags.
		l = l.Set("disable-blink-features", "AutomationControlled")

		u, err := l.Launch()
		if err != nil {
			return nil, eris.Wrap(err, "browser: launch")
		}
		wsURL = u
		s.lnch = l
		zap.L().Info("browser: launched local chrome",
			zap.String("url", wsURL),
			zap.Bool("headless", cfg.Headless),
		)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		s.cleanup()
		return nil, eris.Wrap(err, "browser: connect")
	}
	s.browser = b

	if err := b.IgnoreCertErrors(true); err != nil {
		zap.L().Warn("browser: ignore cert errors failed", zap.Error(err))
	}

	return s, nil
}

// NewTab opens a page inside a fresh incognito context so tabs share no
// cookies or storage.
func (s *RodSession) NewTab(ctx context.Context) (Tab, error) {
	s.mu.Lock()
	b := s.browser
	closed := s.closed
	s.mu.Unlock()
	if closed || b == nil {
		return nil, eris.New("browser: session is closed")
	}

	incognito, err := b.Context(ctx).Incognito()
	if err != nil {
		return nil, eris.Wrap(err, "browser: create incognito context")
	}

	var page *rod.Page
	if s.cfg.Stealth {
		page, err = stealth.Page(incognito)
	} else {
		page, err = incognito.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		_ = incognito.Close()
		return nil, eris.Wrap(err, "browser: create tab")
	}

	t := &rodTab{page: page, incognito: incognito}
	if len(s.cfg.BlockResources) > 0 {
		t.router = applyResourceBlocking(page, s.cfg.BlockResources)
	}
	return t, nil
}

// Close shuts down Chrome.
func (s *RodSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.cleanup()
}

func (s *RodSession) cleanup() error {
	var err error
	if s.browser != nil {
		err = s.browser.Close()
		s.browser = nil
	}
	if s.lnch != nil {
		s.lnch.Cleanup()
		s.lnch = nil
	}
	return eris.Wrap(err, "browser: close")
}
