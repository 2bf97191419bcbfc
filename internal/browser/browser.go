// Package browser wraps the rendering engine behind a small Session/Tab
// interface. Every unit of work opens its own Tab from a shared Session and
// closes it when done; tabs are never shared between goroutines.
package browser

import (
	"context"
	"errors"
	"time"

	"github.com/sells-group/planner-contacts/internal/model"
)

// WaitCriterion selects the page lifecycle event a navigation waits for.
type WaitCriterion int

const (
	// WaitLoad waits for the window load event.
	WaitLoad WaitCriterion = iota
	// WaitDOMContentLoaded returns once the document is parsed, without
	// waiting for slow third-party assets.
	WaitDOMContentLoaded
	// WaitNetworkAlmostIdle waits until at most two requests are in flight.
	WaitNetworkAlmostIdle
)

func (w WaitCriterion) String() string {
	switch w {
	case WaitDOMContentLoaded:
		return "domcontentloaded"
	case WaitNetworkAlmostIdle:
		return "networkidle2"
	default:
		return "load"
	}
}

// NavigateOptions controls a single navigation.
type NavigateOptions struct {
	Wait    WaitCriterion
	Timeout time.Duration // 0 = bounded only by the caller's context
}

// Session is a long-lived browser process. It is safe for concurrent use,
// but only to spawn tabs.
type Session interface {
	NewTab(ctx context.Context) (Tab, error)
	Close() error
}

// Tab is an isolated browsing context with its own cookies and storage.
// A Tab must be used by one goroutine at a time.
type Tab interface {
	// Navigate loads url and waits for the configured lifecycle event.
	Navigate(ctx context.Context, url string, opts NavigateOptions) error
	// WaitForSelector blocks until an element matches selector or timeout elapses.
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error
	// Has reports whether any element currently matches selector.
	Has(ctx context.Context, selector string) (bool, error)
	// Anchors returns the elements matching selector in document order, with
	// their trimmed text and resolved href.
	Anchors(ctx context.Context, selector string) ([]model.Anchor, error)
	// BodyText returns the visible text of the document body.
	BodyText(ctx context.Context) (string, error)
	// Location returns the URL of the currently rendered document.
	Location(ctx context.Context) (string, error)
	Close() error
}

// ErrTimeout is returned (wrapped) when a navigation or wait exceeds its
// timeout.
var ErrTimeout = errors.New("browser: timeout")

// IsTimeout reports whether err was caused by a navigation or wait timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}
