package contact

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/sells-group/planner-contacts/internal/model"
)

var emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

// DefaultLinkPattern matches contact-like URL paths.
var DefaultLinkPattern = regexp.MustCompile(`(?i)contact|about|connect|get-in-touch`)

// FindEmail returns the first email address in text.
func FindEmail(text string) (string, bool) {
	m := emailRe.FindString(text)
	return m, m != ""
}

// IsDenylisted reports whether website contains any denylist entry.
func IsDenylisted(website string, denylist []string) bool {
	for _, bad := range denylist {
		if bad != "" && strings.Contains(website, bad) {
			return true
		}
	}
	return false
}

// NormalizeBase strips trailing slashes from a website URL.
func NormalizeBase(website string) string {
	return strings.TrimRight(website, "/")
}

// CandidateURLs joins base with each suffix, preserving suffix order.
func CandidateURLs(base string, suffixes []string) []string {
	out := make([]string, 0, len(suffixes))
	for _, s := range suffixes {
		out = append(out, base+s)
	}
	return out
}

// Origin returns scheme://host for a URL, or "" if it cannot be parsed.
func Origin(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Scheme + "://" + u.Host)
}

// ContactLinks returns the hrefs of anchors on origin whose path matches
// pattern, in document order. Duplicates are kept.
func ContactLinks(anchors []model.Anchor, origin string, pattern *regexp.Regexp) []string {
	if origin == "" {
		return nil
	}
	var out []string
	for _, a := range anchors {
		if a.Href == "" || Origin(a.Href) != origin {
			continue
		}
		u, err := url.Parse(a.Href)
		if err != nil {
			continue
		}
		if pattern.MatchString(u.Path) {
			out = append(out, a.Href)
		}
	}
	return out
}
