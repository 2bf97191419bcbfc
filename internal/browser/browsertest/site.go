// Package browsertest provides an in-memory browser.Session backed by a map
// of fixture pages, for tests that must not launch Chrome.
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sells-group/planner-contacts/internal/browser"
	"github.com/sells-group/planner-contacts/internal/model"
)

// Page is a fixture document.
type Page struct {
	// Body is the visible text returned by BodyText.
	Body string
	// Elements maps a selector to the anchors it matches, in document order.
	Elements map[string][]model.Anchor
	// Present lists extra selectors that match a non-anchor element.
	Present []string
	// Location overrides the reported URL after navigation (redirects).
	Location string
	// NavErr makes navigation to this page fail.
	NavErr error
	// Delay is how long navigation takes. A delay beyond the navigation
	// timeout produces browser.ErrTimeout.
	Delay time.Duration
	// EvalErr makes every in-page evaluation on this page fail.
	EvalErr error
}

// Site is a fake browser.Session. All methods are safe for concurrent use.
type Site struct {
	mu          sync.Mutex
	pages       map[string]Page
	navigations []string
	tabsOpened  int
	tabsClosed  int
	openTabs    int
	maxOpenTabs int

	// NewTabErr, when set, fails every NewTab call.
	NewTabErr error
	// CloseErr, when set, is returned by every Tab.Close.
	CloseErr error
}

// NewSite returns an empty fixture site.
func NewSite() *Site {
	return &Site{pages: make(map[string]Page)}
}

// Add registers a page at url and returns the site for chaining.
func (s *Site) Add(url string, p Page) *Site {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[url] = p
	return s
}

// NewTab implements browser.Session.
func (s *Site) NewTab(_ context.Context) (browser.Tab, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.NewTabErr != nil {
		return nil, s.NewTabErr
	}
	s.tabsOpened++
	s.openTabs++
	if s.openTabs > s.maxOpenTabs {
		s.maxOpenTabs = s.openTabs
	}
	return &tab{site: s}, nil
}

// Close implements browser.Session.
func (s *Site) Close() error { return nil }

// Navigations returns every URL navigated to, in call order.
func (s *Site) Navigations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.navigations...)
}

// NavigationsWithPrefix returns the navigations whose URL starts with prefix.
func (s *Site) NavigationsWithPrefix(prefix string) []string {
	var out []string
	for _, u := range s.Navigations() {
		if strings.HasPrefix(u, prefix) {
			out = append(out, u)
		}
	}
	return out
}

// TabsOpened returns how many tabs were created.
func (s *Site) TabsOpened() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tabsOpened
}

// TabsClosed returns how many tabs were closed.
func (s *Site) TabsClosed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tabsClosed
}

// MaxOpenTabs returns the peak number of simultaneously open tabs.
func (s *Site) MaxOpenTabs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxOpenTabs
}

func (s *Site) lookup(url string) (Page, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.navigations = append(s.navigations, url)
	p, ok := s.pages[url]
	return p, ok
}

type tab struct {
	site    *Site
	current *Page
	url     string
	closed  bool
}

func (t *tab) Navigate(ctx context.Context, url string, opts browser.NavigateOptions) error {
	if t.closed {
		return errors.New("browsertest: tab closed")
	}
	p, ok := t.site.lookup(url)
	if !ok {
		t.current = nil
		return fmt.Errorf("browsertest: navigate %s: net::ERR_NAME_NOT_RESOLVED", url)
	}

	if p.Delay > 0 {
		if opts.Timeout > 0 && p.Delay > opts.Timeout {
			t.current = nil
			return fmt.Errorf("browsertest: navigate %s: %w", url, browser.ErrTimeout)
		}
		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			t.current = nil
			return ctx.Err()
		}
	}

	if p.NavErr != nil {
		t.current = nil
		return p.NavErr
	}

	t.current = &p
	t.url = url
	if p.Location != "" {
		t.url = p.Location
	}
	return nil
}

func (t *tab) page() (*Page, error) {
	if t.current == nil {
		return nil, errors.New("browsertest: no document loaded")
	}
	if t.current.EvalErr != nil {
		return nil, t.current.EvalErr
	}
	return t.current, nil
}

func (t *tab) matches(p *Page, selector string) bool {
	if len(p.Elements[selector]) > 0 {
		return true
	}
	for _, s := range p.Present {
		if s == selector {
			return true
		}
	}
	return false
}

func (t *tab) WaitForSelector(_ context.Context, selector string, _ time.Duration) error {
	p, err := t.page()
	if err != nil {
		return err
	}
	if !t.matches(p, selector) {
		return fmt.Errorf("browsertest: wait for %s: %w", selector, browser.ErrTimeout)
	}
	return nil
}

func (t *tab) Has(_ context.Context, selector string) (bool, error) {
	p, err := t.page()
	if err != nil {
		return false, err
	}
	return t.matches(p, selector), nil
}

func (t *tab) Anchors(_ context.Context, selector string) ([]model.Anchor, error) {
	p, err := t.page()
	if err != nil {
		return nil, err
	}
	return append([]model.Anchor(nil), p.Elements[selector]...), nil
}

func (t *tab) BodyText(_ context.Context) (string, error) {
	p, err := t.page()
	if err != nil {
		return "", err
	}
	return p.Body, nil
}

func (t *tab) Location(_ context.Context) (string, error) {
	if _, err := t.page(); err != nil {
		return "", err
	}
	return t.url, nil
}

func (t *tab) Close() error {
	t.site.mu.Lock()
	defer t.site.mu.Unlock()
	if !t.closed {
		t.closed = true
		t.site.tabsClosed++
		t.site.openTabs--
	}
	return t.site.CloseErr
}
