package model

import "time"

// RunStatus represents the current state of a scrape run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one end-to-end pass over the directory.
type Run struct {
	ID          string    `json:"id" yaml:"id"`
	Status      RunStatus `json:"status" yaml:"status"`
	StartPage   int       `json:"start_page" yaml:"start_page"`
	MaxPage     int       `json:"max_page" yaml:"max_page"`
	Stubs       int       `json:"stubs" yaml:"stubs"`
	Records     int       `json:"records" yaml:"records"`
	Websites    int       `json:"websites" yaml:"websites"`
	EmailsFound int       `json:"emails_found" yaml:"emails_found"`
	Error       string    `json:"error,omitempty" yaml:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
}

// RunSummary holds the counts recorded when a run completes.
type RunSummary struct {
	Stubs       int `json:"stubs"`
	Records     int `json:"records"`
	Websites    int `json:"websites"`
	EmailsFound int `json:"emails_found"`
}

// Summarize computes the completion counts for a set of records.
func Summarize(stubs int, records []PlannerRecord) RunSummary {
	return RunSummary{
		Stubs:       stubs,
		Records:     len(records),
		Websites:    CountWebsites(records),
		EmailsFound: CountEmails(records),
	}
}

// Recipient is one row of an outreach mailing list.
type Recipient struct {
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
