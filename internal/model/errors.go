package model

import (
	"fmt"
)

// DirectoryError is fatal: the directory could not be rendered or no listing
// cards appeared. It aborts the run before any output is written.
type DirectoryError struct {
	Page int
	URL  string
	Err  error
}

func (e *DirectoryError) Error() string {
	return fmt.Sprintf("directory page %d (%s): %v", e.Page, e.URL, e.Err)
}

func (e *DirectoryError) Unwrap() error { return e.Err }

// ProfileError is a recoverable failure while extracting one profile.
type ProfileError struct {
	ProfileURL string
	Err        error
}

func (e *ProfileError) Error() string {
	return fmt.Sprintf("profile %s: %v", e.ProfileURL, e.Err)
}

func (e *ProfileError) Unwrap() error { return e.Err }

// ContactError is a recoverable failure on a single candidate contact page.
type ContactError struct {
	URL string
	Err error
}

func (e *ContactError) Error() string {
	return fmt.Sprintf("contact page %s: %v", e.URL, e.Err)
}

func (e *ContactError) Unwrap() error { return e.Err }

// CleanupError is a failure to release a browsing context. Logged only.
type CleanupError struct {
	Owner string
	Err   error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("close context for %s: %v", e.Owner, e.Err)
}

func (e *CleanupError) Unwrap() error { return e.Err }
