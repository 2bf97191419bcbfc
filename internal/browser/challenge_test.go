package browser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectChallenge(t *testing.T) {
	tests := []struct {
		name string
		body string
		want ChallengeType
	}{
		{"normal page", "Acme Events\nWedding planning in Austin. Contact us today.", ChallengeNone},
		{"empty", "", ChallengeNone},
		{"cloudflare check", "Checking your browser before accessing partyslate.com", ChallengeCloudflare},
		{"cloudflare turnstile", "Verify you are human by completing the action below.", ChallengeCloudflare},
		{"cloudflare footer", "Performance & security by Cloudflare\nRay ID: 8a1b2c3d4e", ChallengeCloudflare},
		{"captcha", "Please solve the CAPTCHA to continue", ChallengeCaptcha},
		{"js shell", "You need to enable JavaScript to run this app.", ChallengeJSShell},
		{"long page mentioning javascript", strings.Repeat("planner ", 50) + "enable JavaScript for the gallery", ChallengeNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectChallenge(tt.body))
		})
	}
}
