// Package directory walks the paginated listing directory and collects one
// stub per listing card, in the order the site ranks them.
package directory

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/planner-contacts/internal/browser"
	"github.com/sells-group/planner-contacts/internal/model"
)

// Options configures a Walker.
type Options struct {
	BaseURL      string
	CardSelector string
	NextSelector string
	WaitTimeout  time.Duration
	NavTimeout   time.Duration
}

// Walker pages through the directory one render at a time.
type Walker struct {
	session browser.Session
	opts    Options
}

// NewWalker creates a Walker that opens its tab from session.
func NewWalker(session browser.Session, opts Options) *Walker {
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = 10 * time.Second
	}
	if opts.NavTimeout <= 0 {
		opts.NavTimeout = 30 * time.Second
	}
	return &Walker{session: session, opts: opts}
}

// Discover visits pages startPage, startPage+1, ... while the page number is
// below maxPage, stopping early when a page has no next-page link. Any render
// failure returns a *model.DirectoryError and no stubs.
//
// Duplicate listings across pages are kept.
func (w *Walker) Discover(ctx context.Context, startPage, maxPage int) ([]model.ListingStub, error) {
	tab, err := w.session.NewTab(ctx)
	if err != nil {
		return nil, eris.Wrap(&model.DirectoryError{Page: startPage, URL: w.opts.BaseURL, Err: err}, "directory: open tab")
	}
	defer func() {
		if cerr := tab.Close(); cerr != nil {
			zap.L().Warn("directory: close tab failed",
				zap.Error(&model.CleanupError{Owner: "directory", Err: cerr}),
			)
		}
	}()

	frontier := &model.PageFrontier{CurrentPage: startPage, MaxPage: maxPage}
	for !frontier.Done() {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "directory: cancelled")
		}

		stubs, hasNext, err := w.scrapePage(ctx, tab, frontier.CurrentPage)
		if err != nil {
			return nil, err
		}
		frontier.Collected = append(frontier.Collected, stubs...)

		zap.L().Info("directory: page scraped",
			zap.Int("page", frontier.CurrentPage),
			zap.Int("listings", len(stubs)),
			zap.Int("total", len(frontier.Collected)),
		)

		if !hasNext {
			zap.L().Info("directory: no more pages", zap.Int("page", frontier.CurrentPage))
			break
		}
		frontier.CurrentPage++
	}

	return frontier.Collected, nil
}

// scrapePage renders one directory page and returns its stubs and whether
// a next-page link is present.
func (w *Walker) scrapePage(ctx context.Context, tab browser.Tab, page int) ([]model.ListingStub, bool, error) {
	pageURL := PageURL(w.opts.BaseURL, page)
	fail := func(err error) ([]model.ListingStub, bool, error) {
		return nil, false, &model.DirectoryError{Page: page, URL: pageURL, Err: err}
	}

	zap.L().Info("directory: scraping list page", zap.Int("page", page), zap.String("url", pageURL))

	if err := tab.Navigate(ctx, pageURL, browser.NavigateOptions{
		Wait:    browser.WaitNetworkAlmostIdle,
		Timeout: w.opts.NavTimeout,
	}); err != nil {
		return fail(err)
	}
	if err := tab.WaitForSelector(ctx, w.opts.CardSelector, w.opts.WaitTimeout); err != nil {
		if text, terr := tab.BodyText(ctx); terr == nil {
			if kind := browser.DetectChallenge(text); kind != browser.ChallengeNone {
				zap.L().Warn("directory: challenge page rendered",
					zap.Int("page", page),
					zap.String("challenge", string(kind)),
				)
				err = eris.Wrapf(err, "blocked by %s challenge", kind)
			}
		}
		return fail(err)
	}

	anchors, err := tab.Anchors(ctx, w.opts.CardSelector)
	if err != nil {
		return fail(err)
	}
	stubs := make([]model.ListingStub, 0, len(anchors))
	for _, a := range anchors {
		stubs = append(stubs, model.ListingStub{
			Name:       CleanName(a.Text),
			ProfileURL: a.Href,
		})
	}

	hasNext, err := tab.Has(ctx, w.opts.NextSelector)
	if err != nil {
		return fail(err)
	}
	return stubs, hasNext, nil
}

// PageURL sets the page query parameter on the directory base URL.
func PageURL(baseURL string, page int) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Sprintf("%s?page=%d", baseURL, page)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

// CleanName trims a card title and normalizes it to NFC so names that differ
// only in Unicode composition compare equal downstream.
func CleanName(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}
