package browser

import "strings"

// ChallengeType describes the kind of anti-bot wall a page rendered.
type ChallengeType string

const (
	ChallengeNone       ChallengeType = ""
	ChallengeCloudflare ChallengeType = "cloudflare"
	ChallengeCaptcha    ChallengeType = "captcha"
	ChallengeJSShell    ChallengeType = "js_shell"
)

// DetectChallenge inspects the visible text of a rendered page for signs of
// an interstitial instead of real content.
func DetectChallenge(bodyText string) ChallengeType {
	lower := strings.ToLower(bodyText)

	// Cloudflare interstitial markers.
	if strings.Contains(lower, "checking your browser") ||
		strings.Contains(lower, "verify you are human") ||
		strings.Contains(lower, "cloudflare") && strings.Contains(lower, "ray id") {
		return ChallengeCloudflare
	}

	if strings.Contains(lower, "captcha") {
		return ChallengeCaptcha
	}

	// Script-gated shell: almost no text and a request to enable JavaScript.
	if len(strings.TrimSpace(lower)) < 200 && strings.Contains(lower, "enable javascript") {
		return ChallengeJSShell
	}

	return ChallengeNone
}
