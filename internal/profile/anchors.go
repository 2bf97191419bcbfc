package profile

import (
	"net/url"
	"strings"

	"github.com/sells-group/planner-contacts/internal/model"
)

// FindFirstMatchingAnchor returns the first anchor, in document order, for
// which pred holds.
func FindFirstMatchingAnchor(anchors []model.Anchor, pred func(model.Anchor) bool) (model.Anchor, bool) {
	for _, a := range anchors {
		if pred(a) {
			return a, true
		}
	}
	return model.Anchor{}, false
}

// Classifier sorts profile anchors into the website and social buckets.
type Classifier struct {
	// OutboundMarker identifies the directory's redirect links,
	// e.g. "partyslate.com/outbound".
	OutboundMarker string
	// SocialDomain identifies social profile links, e.g. "instagram.com".
	SocialDomain string
}

// OutboundTarget returns the decoded target of an outbound redirect anchor.
// It reports false for anchors that are not redirects, carry no target, or
// whose target is a social profile.
func (c Classifier) OutboundTarget(a model.Anchor) (string, bool) {
	if !strings.Contains(a.Href, c.OutboundMarker) || !strings.Contains(a.Href, "target=") {
		return "", false
	}
	u, err := url.Parse(a.Href)
	if err != nil {
		return "", false
	}
	target := u.Query().Get("target")
	if target == "" || strings.Contains(target, c.SocialDomain) {
		return "", false
	}
	return target, true
}

// IsSocial reports whether the anchor links to the social network.
func (c Classifier) IsSocial(a model.Anchor) bool {
	return strings.Contains(a.Href, c.SocialDomain)
}

// Classify picks the website and social link from a page's anchors. Each
// bucket takes its first qualifying anchor; later ones are ignored. The
// first outbound redirect wins even when it is a partner or ad link.
func (c Classifier) Classify(anchors []model.Anchor) (website, instagram string) {
	if a, ok := FindFirstMatchingAnchor(anchors, func(a model.Anchor) bool {
		_, ok := c.OutboundTarget(a)
		return ok
	}); ok {
		website, _ = c.OutboundTarget(a)
	}
	if a, ok := FindFirstMatchingAnchor(anchors, c.IsSocial); ok {
		instagram = a.Href
	}
	return website, instagram
}
