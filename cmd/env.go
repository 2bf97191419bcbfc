package main

import (
	"context"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/planner-contacts/internal/browser"
	"github.com/sells-group/planner-contacts/internal/config"
	"github.com/sells-group/planner-contacts/internal/contact"
	"github.com/sells-group/planner-contacts/internal/directory"
	"github.com/sells-group/planner-contacts/internal/profile"
	"github.com/sells-group/planner-contacts/internal/store"
)

// signalContext cancels on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// initStore opens and migrates the run store selected by config.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initBrowser launches the shared rendering session.
func initBrowser(ctx context.Context) (*browser.RodSession, error) {
	session, err := browser.Launch(ctx, browser.Config{
		RemoteURL:      cfg.Browser.RemoteURL,
		Headless:       cfg.Browser.Headless,
		Stealth:        cfg.Browser.Stealth,
		BlockResources: cfg.Browser.BlockResources,
	})
	if err != nil {
		return nil, eris.Wrap(err, "launch browser")
	}
	zap.L().Info("browser launched",
		zap.Bool("headless", cfg.Browser.Headless),
		zap.Bool("stealth", cfg.Browser.Stealth),
	)
	return session, nil
}

func newWalker(session browser.Session, c *config.Config) *directory.Walker {
	return directory.NewWalker(session, directory.Options{
		BaseURL:      c.Directory.BaseURL,
		CardSelector: c.Directory.CardSelector,
		NextSelector: c.Directory.NextSelector,
		WaitTimeout:  c.Directory.WaitTimeout(),
		NavTimeout:   c.Directory.NavTimeout(),
	})
}

func newExtractor(session browser.Session, c *config.Config) *profile.Extractor {
	return profile.NewExtractor(session, profile.Options{
		FooterSelector: c.Profile.FooterSelector,
		WaitTimeout:    c.Profile.WaitTimeout(),
		NavTimeout:     c.Profile.NavTimeout(),
		Classifier: profile.Classifier{
			OutboundMarker: c.Profile.OutboundMarker,
			SocialDomain:   c.Profile.SocialDomain,
		},
	})
}

func newResolver(session browser.Session, c *config.Config) (*contact.Resolver, error) {
	pattern, err := regexp.Compile(c.Contact.LinkPattern)
	if err != nil {
		return nil, eris.Wrap(err, "compile contact.link_pattern")
	}
	return contact.NewResolver(session, contact.Options{
		Paths:       c.Contact.Paths,
		Denylist:    c.Contact.Denylist,
		LinkPattern: pattern,
		NavTimeout:  c.Contact.NavTimeout(),
	}), nil
}
