// Package model defines the shared types that flow through the directory,
// profile, and contact stages.
package model

// ListingStub is a single directory entry as rendered on a listing page.
type ListingStub struct {
	Name       string `json:"name"`
	ProfileURL string `json:"profile_url"`
}

// PlannerRecord holds the contact data discovered for one listing. Empty
// strings mean the field was not found.
type PlannerRecord struct {
	Name       string `json:"name"`
	ProfileURL string `json:"profile_url"`
	Website    string `json:"website,omitempty"`
	Instagram  string `json:"instagram,omitempty"`
	Email      string `json:"email,omitempty"`
}

// NewPlannerRecord returns the empty record for a stub. It is also the
// degraded record used when profile extraction fails.
func NewPlannerRecord(stub ListingStub) PlannerRecord {
	return PlannerRecord{
		Name:       stub.Name,
		ProfileURL: stub.ProfileURL,
	}
}

// HasWebsite reports whether the record carries a website to probe.
func (r PlannerRecord) HasWebsite() bool { return r.Website != "" }

// HasEmail reports whether an email was discovered.
func (r PlannerRecord) HasEmail() bool { return r.Email != "" }

// WithEmail returns a copy of the record with Email set.
func (r PlannerRecord) WithEmail(email string) PlannerRecord {
	r.Email = email
	return r
}

// PageFrontier is the directory walker's traversal state.
type PageFrontier struct {
	CurrentPage int
	MaxPage     int
	Collected   []ListingStub
}

// Done reports whether the page bound has been reached. MaxPage is exclusive.
func (f *PageFrontier) Done() bool { return f.CurrentPage >= f.MaxPage }

// Anchor is a rendered <a> element. Href is the resolved absolute URL.
type Anchor struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// CountEmails returns how many records carry an email.
func CountEmails(records []PlannerRecord) int {
	n := 0
	for _, r := range records {
		if r.HasEmail() {
			n++
		}
	}
	return n
}

// CountWebsites returns how many records carry a website.
func CountWebsites(records []PlannerRecord) int {
	n := 0
	for _, r := range records {
		if r.HasWebsite() {
			n++
		}
	}
	return n
}
