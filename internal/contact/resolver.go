// Package contact probes a listing's website for an email address: first a
// fixed list of contact-like paths, then contact-like links found on the
// homepage.
package contact

import (
	"context"
	"regexp"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/planner-contacts/internal/browser"
	"github.com/sells-group/planner-contacts/internal/model"
)

// Options configures a Resolver.
type Options struct {
	Paths       []string
	Denylist    []string
	LinkPattern *regexp.Regexp
	NavTimeout  time.Duration
}

// Resolver finds emails on websites. It is safe for concurrent use; every
// Resolve call owns its own tab.
type Resolver struct {
	session browser.Session
	opts    Options
}

// NewResolver creates a Resolver that opens tabs from session.
func NewResolver(session browser.Session, opts Options) *Resolver {
	if opts.LinkPattern == nil {
		opts.LinkPattern = DefaultLinkPattern
	}
	if opts.NavTimeout <= 0 {
		opts.NavTimeout = 15 * time.Second
	}
	return &Resolver{session: session, opts: opts}
}

// Resolve returns rec with Email set to the first address found, or rec
// unchanged when the website is missing, denylisted, or yields nothing.
// It never fails.
func (r *Resolver) Resolve(ctx context.Context, rec model.PlannerRecord) model.PlannerRecord {
	if !rec.HasWebsite() {
		return rec
	}
	if IsDenylisted(rec.Website, r.opts.Denylist) {
		zap.L().Warn("contact: skipping broken site", zap.String("website", rec.Website))
		return rec
	}

	log := zap.L().With(zap.String("name", rec.Name))

	tab, err := r.session.NewTab(ctx)
	if err != nil {
		log.Warn("contact: open tab failed", zap.Error(err))
		return rec
	}
	defer func() {
		if cerr := tab.Close(); cerr != nil {
			log.Warn("contact: close tab failed",
				zap.Error(&model.CleanupError{Owner: rec.Name, Err: cerr}),
			)
		}
	}()

	base := NormalizeBase(rec.Website)

	if email, ok := r.firstEmail(ctx, tab, CandidateURLs(base, r.opts.Paths), "contact: trying"); ok {
		log.Info("contact: email found", zap.String("email", email))
		return rec.WithEmail(email)
	}

	log.Info("contact: no email from paths, scanning links", zap.String("base", base))
	links, err := r.dynamicLinks(ctx, tab, base)
	if err != nil {
		log.Warn("contact: error scanning dynamic links", zap.Error(err))
		return rec
	}

	if email, ok := r.firstEmail(ctx, tab, links, "contact: trying dynamic contact page"); ok {
		log.Info("contact: email found", zap.String("email", email))
		return rec.WithEmail(email)
	}

	log.Info("contact: still no email found")
	return rec
}

// firstEmail visits urls in order and returns the first email found. Pages
// that fail to load are logged and skipped.
func (r *Resolver) firstEmail(ctx context.Context, tab browser.Tab, urls []string, msg string) (string, bool) {
	for _, u := range urls {
		if ctx.Err() != nil {
			return "", false
		}
		zap.L().Info(msg, zap.String("url", u))

		email, ok, err := r.scanPage(ctx, tab, u)
		if err != nil {
			zap.L().Warn("contact: page failed",
				zap.Error(&model.ContactError{URL: u, Err: err}),
			)
			continue
		}
		if ok {
			return email, true
		}
	}
	return "", false
}

func (r *Resolver) navigate(ctx context.Context, tab browser.Tab, u string) error {
	return tab.Navigate(ctx, u, browser.NavigateOptions{
		Wait:    browser.WaitDOMContentLoaded,
		Timeout: r.opts.NavTimeout,
	})
}

func (r *Resolver) scanPage(ctx context.Context, tab browser.Tab, u string) (string, bool, error) {
	if err := r.navigate(ctx, tab, u); err != nil {
		return "", false, err
	}
	text, err := tab.BodyText(ctx)
	if err != nil {
		return "", false, eris.Wrap(err, "contact: read body text")
	}
	email, ok := FindEmail(text)
	return email, ok, nil
}

// dynamicLinks loads base and collects same-origin contact-like links. The
// origin is taken from the rendered page so redirects (e.g. to www.) still
// match.
func (r *Resolver) dynamicLinks(ctx context.Context, tab browser.Tab, base string) ([]string, error) {
	if err := r.navigate(ctx, tab, base); err != nil {
		return nil, err
	}

	origin := Origin(base)
	if loc, err := tab.Location(ctx); err == nil && Origin(loc) != "" {
		origin = Origin(loc)
	}

	anchors, err := tab.Anchors(ctx, "a")
	if err != nil {
		return nil, eris.Wrap(err, "contact: read anchors")
	}
	return ContactLinks(anchors, origin, r.opts.LinkPattern), nil
}
