package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPlannerRecord(t *testing.T) {
	t.Parallel()

	stub := ListingStub{Name: "Acme Events", ProfileURL: "https://www.partyslate.com/vendors/acme"}
	rec := NewPlannerRecord(stub)

	assert.Equal(t, "Acme Events", rec.Name)
	assert.Equal(t, stub.ProfileURL, rec.ProfileURL)
	assert.Empty(t, rec.Website)
	assert.Empty(t, rec.Instagram)
	assert.Empty(t, rec.Email)
	assert.False(t, rec.HasWebsite())
	assert.False(t, rec.HasEmail())
}

func TestPlannerRecord_WithEmailReturnsCopy(t *testing.T) {
	t.Parallel()

	orig := PlannerRecord{Name: "Acme", Website: "https://acme.com"}
	updated := orig.WithEmail("hi@acme.com")

	assert.Empty(t, orig.Email)
	assert.Equal(t, "hi@acme.com", updated.Email)
	assert.Equal(t, orig.Website, updated.Website)
}

func TestPageFrontier_Done(t *testing.T) {
	t.Parallel()

	tests := []struct {
		current, max int
		want         bool
	}{
		{41, 61, false},
		{60, 61, false},
		{61, 61, true},
		{62, 61, true},
	}
	for _, tt := range tests {
		f := PageFrontier{CurrentPage: tt.current, MaxPage: tt.max}
		assert.Equal(t, tt.want, f.Done(), "current=%d max=%d", tt.current, tt.max)
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	records := []PlannerRecord{
		{Name: "a", Website: "https://a.com", Email: "x@a.com"},
		{Name: "b", Website: "https://b.com"},
		{Name: "c"},
	}
	s := Summarize(3, records)

	assert.Equal(t, 3, s.Stubs)
	assert.Equal(t, 3, s.Records)
	assert.Equal(t, 2, s.Websites)
	assert.Equal(t, 1, s.EmailsFound)
}
