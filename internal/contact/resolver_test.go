package contact

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/planner-contacts/internal/browser/browsertest"
	"github.com/sells-group/planner-contacts/internal/config"
	"github.com/sells-group/planner-contacts/internal/fanout"
	"github.com/sells-group/planner-contacts/internal/model"
)

func testResolver(site *browsertest.Site) *Resolver {
	return NewResolver(site, Options{
		Paths:      config.DefaultContactPaths,
		Denylist:   config.DefaultDenylist,
		NavTimeout: 50 * time.Millisecond,
	})
}

func record(website string) model.PlannerRecord {
	return model.PlannerRecord{Name: "Acme", ProfileURL: "https://dir.example/vendors/acme", Website: website}
}

func TestResolve_NoWebsiteIsNoop(t *testing.T) {
	site := browsertest.NewSite()
	rec := model.PlannerRecord{Name: "Acme"}

	got := testResolver(site).Resolve(context.Background(), rec)

	assert.Equal(t, rec, got)
	assert.Empty(t, got.Email)
	assert.Empty(t, site.Navigations())
	assert.Zero(t, site.TabsOpened())
}

func TestResolve_DenylistedSiteNeverNavigates(t *testing.T) {
	site := browsertest.NewSite()
	rec := record("https://www.viaggiodeifiori.co.za/")

	got := testResolver(site).Resolve(context.Background(), rec)

	assert.Empty(t, got.Email)
	assert.Empty(t, site.Navigations())
	assert.Zero(t, site.TabsOpened())
}

func TestResolve_ContactPathFoundOnSecondAttempt(t *testing.T) {
	site := browsertest.NewSite().
		Add("https://acme.com", browsertest.Page{Body: "Welcome to Acme"}).
		Add("https://acme.com/contact", browsertest.Page{Body: "Write to hello@acme.com today"}).
		Add("https://acme.com/about", browsertest.Page{Body: "about: other@acme.com"})

	got := testResolver(site).Resolve(context.Background(), record("https://acme.com/"))

	assert.Equal(t, "hello@acme.com", got.Email)
	assert.Equal(t, []string{"https://acme.com", "https://acme.com/contact"}, site.Navigations())
	assert.Equal(t, 1, site.TabsClosed())
}

func TestResolve_RootWinsOverLaterPaths(t *testing.T) {
	site := browsertest.NewSite().
		Add("https://acme.com", browsertest.Page{Body: "root@acme.com"}).
		Add("https://acme.com/contact", browsertest.Page{Body: "contact@acme.com"})

	got := testResolver(site).Resolve(context.Background(), record("https://acme.com"))

	assert.Equal(t, "root@acme.com", got.Email)
	assert.Len(t, site.Navigations(), 1)
}

func TestResolve_FailedPathsAreSkipped(t *testing.T) {
	site := browsertest.NewSite().
		Add("https://acme.com", browsertest.Page{Delay: time.Second}).
		Add("https://acme.com/contact", browsertest.Page{NavErr: errors.New("net::ERR_CONNECTION_RESET")}).
		Add("https://acme.com/contact-us", browsertest.Page{Body: "us@acme.com"})

	got := testResolver(site).Resolve(context.Background(), record("https://acme.com"))

	assert.Equal(t, "us@acme.com", got.Email)
	assert.Equal(t, []string{
		"https://acme.com",
		"https://acme.com/contact",
		"https://acme.com/contact-us",
	}, site.Navigations())
}

func TestResolve_DynamicLinkFallback(t *testing.T) {
	home := browsertest.Page{
		Body:     "Welcome",
		Location: "https://www.acme.com/",
		Elements: map[string][]model.Anchor{"a": {
			{Href: "https://www.acme.com/services"},
			{Href: "https://other.com/contact"},
			{Href: "https://www.acme.com/get-in-touch"},
			{Href: "https://www.acme.com/connect-with-us"},
		}},
	}
	site := browsertest.NewSite().
		Add("https://acme.com", home).
		Add("https://www.acme.com/get-in-touch", browsertest.Page{Body: "nothing here"}).
		Add("https://www.acme.com/connect-with-us", browsertest.Page{Body: "events@acme.com"})

	got := testResolver(site).Resolve(context.Background(), record("https://acme.com"))

	assert.Equal(t, "events@acme.com", got.Email)

	navs := site.Navigations()
	// Root, then the 7 remaining static paths, then root again for the scan.
	assert.Equal(t, "https://acme.com", navs[0])
	assert.Equal(t, "https://acme.com/inquire", navs[7])
	assert.Equal(t, "https://acme.com", navs[8])
	assert.Equal(t, []string{
		"https://www.acme.com/get-in-touch",
		"https://www.acme.com/connect-with-us",
	}, navs[9:])
	assert.Empty(t, site.NavigationsWithPrefix("https://other.com"))
}

func TestResolve_NothingFound(t *testing.T) {
	site := browsertest.NewSite().Add("https://acme.com", browsertest.Page{Body: "no contact info"})

	got := testResolver(site).Resolve(context.Background(), record("https://acme.com"))

	assert.Empty(t, got.Email)
	assert.Equal(t, 1, site.TabsOpened())
	assert.Equal(t, 1, site.TabsClosed())
}

func TestResolve_HomepageUnreachable(t *testing.T) {
	site := browsertest.NewSite()

	got := testResolver(site).Resolve(context.Background(), record("https://gone.example"))

	assert.Empty(t, got.Email)
	// Eight static paths plus one dynamic scan attempt.
	assert.Len(t, site.Navigations(), 9)
	assert.Equal(t, 1, site.TabsClosed())
}

func TestResolve_DoesNotMutateInput(t *testing.T) {
	site := browsertest.NewSite().Add("https://acme.com", browsertest.Page{Body: "a@acme.com"})
	rec := record("https://acme.com")

	got := testResolver(site).Resolve(context.Background(), rec)

	assert.Empty(t, rec.Email)
	assert.Equal(t, "a@acme.com", got.Email)
}

func TestResolve_FanOutAlignment(t *testing.T) {
	site := browsertest.NewSite()
	records := []model.PlannerRecord{
		{Name: "none"},
		record("https://a.com"),
		record("https://b.com"),
		record("https://www.viaggiodeifiori.co.za/"),
	}
	site.Add("https://a.com", browsertest.Page{Body: "x@a.com"})
	site.Add("https://b.com", browsertest.Page{Body: "y@b.com"})

	res := testResolver(site)
	out := fanout.Map(context.Background(), records, 5, res.Resolve)

	assert.Len(t, out, 4)
	assert.Empty(t, out[0].Email)
	assert.Equal(t, "x@a.com", out[1].Email)
	assert.Equal(t, "y@b.com", out[2].Email)
	assert.Empty(t, out[3].Email)
}
