package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://www.partyslate.com/find-vendors/event-planner", cfg.Directory.BaseURL)
	assert.Equal(t, 41, cfg.Directory.StartPage)
	assert.Equal(t, 61, cfg.Directory.MaxPage)
	assert.Equal(t, `a[data-testid="next-page-link"]`, cfg.Directory.NextSelector)
	assert.Equal(t, 10, cfg.Directory.WaitTimeoutSecs)
	assert.Equal(t, 30, cfg.Directory.NavTimeoutSecs)
	assert.Equal(t, 5, cfg.Profile.Concurrency)
	assert.Equal(t, "div[class*='DetailsFooter']", cfg.Profile.FooterSelector)
	assert.Equal(t, 10, cfg.Profile.WaitTimeoutSecs)
	assert.Equal(t, 30, cfg.Profile.NavTimeoutSecs)
	assert.Equal(t, "partyslate.com/outbound", cfg.Profile.OutboundMarker)
	assert.Equal(t, "instagram.com", cfg.Profile.SocialDomain)
	assert.Equal(t, 5, cfg.Contact.Concurrency)
	assert.Equal(t, 15, cfg.Contact.NavTimeoutSecs)
	assert.Equal(t, DefaultContactPaths, cfg.Contact.Paths)
	assert.Equal(t, DefaultDenylist, cfg.Contact.Denylist)
	assert.Equal(t, "planners_full.csv", cfg.Output.Path)
	assert.Equal(t, "csv", cfg.Output.Format)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "smtp.gmail.com", cfg.SMTP.Host)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, 5, cfg.SMTP.DelaySecs)
	assert.Equal(t, 3, cfg.SMTP.MaxAttempts)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Empty(t, cfg.Server.AllowedOrigins)
	assert.Empty(t, cfg.Monitoring.WebhookURL)
	assert.InDelta(t, 0.5, cfg.Monitoring.FailureRateThreshold, 1e-9)
	assert.InDelta(t, 0.1, cfg.Monitoring.MinEmailYield, 1e-9)
	assert.Equal(t, 168, cfg.Monitoring.LookbackWindowHours)
	assert.Equal(t, 3600, cfg.Monitoring.CheckIntervalSecs)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.True(t, cfg.Browser.Stealth)
	assert.False(t, cfg.Browser.Headless)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
directory:
  start_page: 1
  max_page: 3
contact:
  concurrency: 2
  denylist:
    - https://broken.example
log:
  level: debug
output:
  format: xlsx
  path: out.xlsx
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Directory.StartPage)
	assert.Equal(t, 3, cfg.Directory.MaxPage)
	assert.Equal(t, 2, cfg.Contact.Concurrency)
	assert.Equal(t, []string{"https://broken.example"}, cfg.Contact.Denylist)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "xlsx", cfg.Output.Format)
	// Defaults still apply for unset values
	assert.Equal(t, 5, cfg.Profile.Concurrency)
	assert.Equal(t, DefaultContactPaths, cfg.Contact.Paths)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("PLANNERS_STORE_DRIVER", "postgres")
	t.Setenv("PLANNERS_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("PLANNERS_DIRECTORY_START_PAGE", "7")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Directory.StartPage)
}

func TestTimeoutHelpers(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "10s", cfg.Directory.WaitTimeout().String())
	assert.Equal(t, "10s", cfg.Profile.WaitTimeout().String())
	assert.Equal(t, "30s", cfg.Directory.NavTimeout().String())
	assert.Equal(t, "30s", cfg.Profile.NavTimeout().String())
	assert.Equal(t, "15s", cfg.Contact.NavTimeout().String())
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with the scrape defaults populated.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Directory.BaseURL = "https://www.partyslate.com/find-vendors/event-planner"
	cfg.Directory.StartPage = 41
	cfg.Directory.MaxPage = 61
	cfg.Profile.Concurrency = 5
	cfg.Contact.Concurrency = 5
	cfg.Contact.LinkPattern = `(?i)contact|about`
	cfg.Output.Format = "csv"
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateScrape_Defaults(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("scrape"))
}

func TestValidateScrape_PageBounds(t *testing.T) {
	cfg := validDefaults()
	cfg.Directory.StartPage = 61

	err := cfg.Validate("scrape")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be below directory.max_page")
}

func TestValidateScrape_Concurrency(t *testing.T) {
	cfg := validDefaults()
	cfg.Profile.Concurrency = 0
	cfg.Contact.Concurrency = -1

	err := cfg.Validate("scrape")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile.concurrency must be > 0")
	assert.Contains(t, err.Error(), "contact.concurrency must be > 0")
}

func TestValidateScrape_BadPatternAndFormat(t *testing.T) {
	cfg := validDefaults()
	cfg.Contact.LinkPattern = "(["
	cfg.Output.Format = "parquet"

	err := cfg.Validate("scrape")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contact.link_pattern")
	assert.Contains(t, err.Error(), `unsupported output.format "parquet"`)
}

func TestValidateResolve_IgnoresDirectory(t *testing.T) {
	cfg := validDefaults()
	cfg.Directory.BaseURL = ""

	assert.NoError(t, cfg.Validate("resolve"))
}

func TestValidateSend_RequiresCredentials(t *testing.T) {
	cfg := validDefaults()
	cfg.SMTP.Host = "smtp.example.com"
	cfg.SMTP.Port = 587

	err := cfg.Validate("send")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp.username and smtp.password are required")

	cfg.SMTP.Username = "me@example.com"
	cfg.SMTP.Password = "secret"
	assert.NoError(t, cfg.Validate("send"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
