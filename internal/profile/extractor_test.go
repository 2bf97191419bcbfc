package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/planner-contacts/internal/browser/browsertest"
	"github.com/sells-group/planner-contacts/internal/fanout"
	"github.com/sells-group/planner-contacts/internal/model"
)

const footer = "div[class*='DetailsFooter']"

func testExtractor(site *browsertest.Site) *Extractor {
	return NewExtractor(site, Options{
		FooterSelector: footer,
		WaitTimeout:    10 * time.Second,
		NavTimeout:     50 * time.Millisecond,
		Classifier:     testClassifier,
	})
}

func profilePage(anchors ...model.Anchor) browsertest.Page {
	return browsertest.Page{
		Elements: map[string][]model.Anchor{"a": anchors},
		Present:  []string{footer},
	}
}

func TestExtract_Success(t *testing.T) {
	stub := model.ListingStub{Name: "Acme", ProfileURL: "https://dir.example/vendors/acme"}
	site := browsertest.NewSite().Add(stub.ProfileURL, profilePage(
		outbound("https%3A%2F%2Facme-events.com"),
		model.Anchor{Href: "https://www.instagram.com/acme"},
	))

	rec := testExtractor(site).Extract(context.Background(), stub)

	assert.Equal(t, "Acme", rec.Name)
	assert.Equal(t, stub.ProfileURL, rec.ProfileURL)
	assert.Equal(t, "https://acme-events.com", rec.Website)
	assert.Equal(t, "https://www.instagram.com/acme", rec.Instagram)
	assert.Empty(t, rec.Email)
	assert.Equal(t, 1, site.TabsOpened())
	assert.Equal(t, 1, site.TabsClosed())
}

func TestExtract_TimeoutYieldsEmptyRecord(t *testing.T) {
	stub := model.ListingStub{Name: "Slow", ProfileURL: "https://dir.example/vendors/slow"}
	page := profilePage(outbound("https%3A%2F%2Fslow.com"))
	page.Delay = time.Second
	site := browsertest.NewSite().Add(stub.ProfileURL, page)

	rec := testExtractor(site).Extract(context.Background(), stub)

	assert.Equal(t, model.NewPlannerRecord(stub), rec)
	assert.Equal(t, 1, site.TabsClosed(), "tab closed on failure")
}

func TestExtract_MissingFooterYieldsEmptyRecord(t *testing.T) {
	stub := model.ListingStub{Name: "NoFooter", ProfileURL: "https://dir.example/vendors/nofooter"}
	site := browsertest.NewSite().Add(stub.ProfileURL, browsertest.Page{
		Elements: map[string][]model.Anchor{"a": {outbound("https%3A%2F%2Fx.com")}},
	})

	rec := testExtractor(site).Extract(context.Background(), stub)

	assert.Empty(t, rec.Website)
	assert.Empty(t, rec.Instagram)
	assert.Equal(t, "NoFooter", rec.Name)
}

func TestExtract_EvalErrorYieldsEmptyRecord(t *testing.T) {
	stub := model.ListingStub{Name: "Broken", ProfileURL: "https://dir.example/vendors/broken"}
	page := profilePage()
	page.EvalErr = errors.New("execution context was destroyed")
	site := browsertest.NewSite().Add(stub.ProfileURL, page)

	rec := testExtractor(site).Extract(context.Background(), stub)

	assert.Equal(t, model.NewPlannerRecord(stub), rec)
}

func TestExtract_CloseFailureDoesNotAffectRecord(t *testing.T) {
	stub := model.ListingStub{Name: "Acme", ProfileURL: "https://dir.example/vendors/acme"}
	site := browsertest.NewSite().Add(stub.ProfileURL, profilePage(outbound("https%3A%2F%2Facme.com")))
	site.CloseErr = errors.New("target closed")

	rec := testExtractor(site).Extract(context.Background(), stub)

	assert.Equal(t, "https://acme.com", rec.Website)
}

func TestExtract_NewTabFailure(t *testing.T) {
	stub := model.ListingStub{Name: "Acme", ProfileURL: "https://dir.example/vendors/acme"}
	site := browsertest.NewSite()
	site.NewTabErr = errors.New("browser gone")

	rec := testExtractor(site).Extract(context.Background(), stub)

	assert.Equal(t, model.NewPlannerRecord(stub), rec)
}

func TestExtract_FanOutKeepsEveryStub(t *testing.T) {
	site := browsertest.NewSite()
	var stubs []model.ListingStub
	for i, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		stub := model.ListingStub{Name: name, ProfileURL: "https://dir.example/vendors/" + name}
		stubs = append(stubs, stub)
		if i%2 == 0 {
			site.Add(stub.ProfileURL, profilePage(outbound("https%3A%2F%2F"+name+".com")))
		}
		// odd stubs have no page and fail navigation
	}

	ext := testExtractor(site)
	records := fanout.Map(context.Background(), stubs, 5, ext.Extract)

	assert.Len(t, records, len(stubs))
	for i, rec := range records {
		assert.Equal(t, stubs[i].Name, rec.Name)
		if i%2 == 0 {
			assert.Equal(t, "https://"+stubs[i].Name+".com", rec.Website)
		} else {
			assert.Empty(t, rec.Website)
		}
	}
	assert.LessOrEqual(t, site.MaxOpenTabs(), 5)
	assert.Equal(t, site.TabsOpened(), site.TabsClosed())
}
