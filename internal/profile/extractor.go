// Package profile extracts the outbound website and social link from each
// listing's profile page.
package profile

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/planner-contacts/internal/browser"
	"github.com/sells-group/planner-contacts/internal/model"
)

// Options configures an Extractor.
type Options struct {
	FooterSelector string
	WaitTimeout    time.Duration
	NavTimeout     time.Duration
	Classifier     Classifier
}

// Extractor visits profile pages. It is safe for concurrent use; every
// Extract call owns its own tab.
type Extractor struct {
	session browser.Session
	opts    Options
}

// NewExtractor creates an Extractor that opens tabs from session.
func NewExtractor(session browser.Session, opts Options) *Extractor {
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = 10 * time.Second
	}
	if opts.NavTimeout <= 0 {
		opts.NavTimeout = 30 * time.Second
	}
	return &Extractor{session: session, opts: opts}
}

// Extract returns the record for stub. It never fails: any error degrades
// the record to empty website and social fields and is logged.
func (e *Extractor) Extract(ctx context.Context, stub model.ListingStub) model.PlannerRecord {
	rec, err := e.extract(ctx, stub)
	if err != nil {
		zap.L().Warn("profile: failed to scrape",
			zap.String("name", stub.Name),
			zap.Error(&model.ProfileError{ProfileURL: stub.ProfileURL, Err: err}),
		)
		return model.NewPlannerRecord(stub)
	}

	zap.L().Info("profile: scraped",
		zap.String("name", stub.Name),
		zap.String("website", rec.Website),
		zap.String("instagram", rec.Instagram),
	)
	return rec
}

func (e *Extractor) extract(ctx context.Context, stub model.ListingStub) (model.PlannerRecord, error) {
	rec := model.NewPlannerRecord(stub)

	tab, err := e.session.NewTab(ctx)
	if err != nil {
		return rec, eris.Wrap(err, "profile: open tab")
	}
	defer func() {
		if cerr := tab.Close(); cerr != nil {
			zap.L().Warn("profile: close tab failed",
				zap.Error(&model.CleanupError{Owner: stub.Name, Err: cerr}),
			)
		}
	}()

	if err := tab.Navigate(ctx, stub.ProfileURL, browser.NavigateOptions{
		Wait:    browser.WaitNetworkAlmostIdle,
		Timeout: e.opts.NavTimeout,
	}); err != nil {
		return rec, eris.Wrap(err, "profile: navigate")
	}
	if err := tab.WaitForSelector(ctx, e.opts.FooterSelector, e.opts.WaitTimeout); err != nil {
		return rec, eris.Wrap(err, "profile: wait for details footer")
	}

	anchors, err := tab.Anchors(ctx, "a")
	if err != nil {
		return rec, eris.Wrap(err, "profile: read anchors")
	}

	rec.Website, rec.Instagram = e.opts.Classifier.Classify(anchors)
	return rec, nil
}
