package browser

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rotisserie/eris"

	"github.com/sells-group/planner-contacts/internal/model"
)

// anchorsJS collects text and resolved href for every element matching the
// selector passed as the first argument.
const anchorsJS = `(sel) => Array.from(document.querySelectorAll(sel)).map((el) => ({
	text: (el.textContent || "").trim(),
	href: el.href || "",
}))`

const bodyTextJS = `() => document.body ? document.body.innerText : ""`

const locationJS = `() => location.href`

// rodTab is a Tab backed by a rod page in its own incognito context.
type rodTab struct {
	page      *rod.Page
	incognito *rod.Browser
	router    *rod.HijackRouter
}

func lifecycleEvent(w WaitCriterion) proto.PageLifecycleEventName {
	switch w {
	case WaitDOMContentLoaded:
		return proto.PageLifecycleEventNameDOMContentLoaded
	case WaitNetworkAlmostIdle:
		return proto.PageLifecycleEventNameNetworkAlmostIdle
	default:
		return proto.PageLifecycleEventNameLoad
	}
}

// withTimeout derives a bounded context when timeout is positive.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

// timeoutErr rewrites a deadline failure into ErrTimeout so callers can
// classify it without knowing rod's error types.
func timeoutErr(ctx context.Context, err error, msg string) error {
	if ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return eris.Wrap(ErrTimeout, msg)
	}
	return eris.Wrap(err, msg)
}

func (t *rodTab) Navigate(ctx context.Context, url string, opts NavigateOptions) error {
	navCtx, cancel := withTimeout(ctx, opts.Timeout)
	defer cancel()

	p := t.page.Context(navCtx)
	wait := p.WaitNavigation(lifecycleEvent(opts.Wait))
	if err := p.Navigate(url); err != nil {
		return timeoutErr(navCtx, err, "browser: navigate "+url)
	}
	wait()
	if err := navCtx.Err(); err != nil {
		return timeoutErr(navCtx, err, "browser: wait "+opts.Wait.String()+" "+url)
	}
	return nil
}

func (t *rodTab) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	waitCtx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	if _, err := t.page.Context(waitCtx).Element(selector); err != nil {
		return timeoutErr(waitCtx, err, "browser: wait for "+selector)
	}
	return nil
}

func (t *rodTab) Has(ctx context.Context, selector string) (bool, error) {
	found, _, err := t.page.Context(ctx).Has(selector)
	if err != nil {
		return false, eris.Wrap(err, "browser: query "+selector)
	}
	return found, nil
}

func (t *rodTab) Anchors(ctx context.Context, selector string) ([]model.Anchor, error) {
	res, err := t.page.Context(ctx).Eval(anchorsJS, selector)
	if err != nil {
		return nil, eris.Wrap(err, "browser: eval anchors")
	}

	items := res.Value.Arr()
	anchors := make([]model.Anchor, 0, len(items))
	for _, item := range items {
		anchors = append(anchors, model.Anchor{
			Text: strings.TrimSpace(item.Get("text").Str()),
			Href: item.Get("href").Str(),
		})
	}
	return anchors, nil
}

func (t *rodTab) BodyText(ctx context.Context) (string, error) {
	res, err := t.page.Context(ctx).Eval(bodyTextJS)
	if err != nil {
		return "", eris.Wrap(err, "browser: eval body text")
	}
	return res.Value.Str(), nil
}

func (t *rodTab) Location(ctx context.Context) (string, error) {
	res, err := t.page.Context(ctx).Eval(locationJS)
	if err != nil {
		return "", eris.Wrap(err, "browser: eval location")
	}
	return res.Value.Str(), nil
}

// Close closes the page and disposes its incognito context.
func (t *rodTab) Close() error {
	var errs []error
	if t.router != nil {
		if err := t.router.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := t.page.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := t.incognito.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return eris.Wrap(errors.Join(errs...), "browser: close tab")
	}
	return nil
}
