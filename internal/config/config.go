package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Directory  DirectoryConfig  `yaml:"directory" mapstructure:"directory"`
	Profile    ProfileConfig    `yaml:"profile" mapstructure:"profile"`
	Contact    ContactConfig    `yaml:"contact" mapstructure:"contact"`
	Browser    BrowserConfig    `yaml:"browser" mapstructure:"browser"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	SMTP       SMTPConfig       `yaml:"smtp" mapstructure:"smtp"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// DirectoryConfig configures the listing directory walk.
type DirectoryConfig struct {
	BaseURL         string `yaml:"base_url" mapstructure:"base_url"`
	StartPage       int    `yaml:"start_page" mapstructure:"start_page"`
	MaxPage         int    `yaml:"max_page" mapstructure:"max_page"`
	CardSelector    string `yaml:"card_selector" mapstructure:"card_selector"`
	NextSelector    string `yaml:"next_selector" mapstructure:"next_selector"`
	WaitTimeoutSecs int    `yaml:"wait_timeout_secs" mapstructure:"wait_timeout_secs"`
	NavTimeoutSecs  int    `yaml:"nav_timeout_secs" mapstructure:"nav_timeout_secs"`
}

// WaitTimeout returns the listing card wait as a duration.
func (c DirectoryConfig) WaitTimeout() time.Duration {
	return time.Duration(c.WaitTimeoutSecs) * time.Second
}

// NavTimeout returns the directory page navigation timeout as a duration.
func (c DirectoryConfig) NavTimeout() time.Duration {
	return time.Duration(c.NavTimeoutSecs) * time.Second
}

// ProfileConfig configures per-listing profile extraction.
type ProfileConfig struct {
	Concurrency     int    `yaml:"concurrency" mapstructure:"concurrency"`
	FooterSelector  string `yaml:"footer_selector" mapstructure:"footer_selector"`
	WaitTimeoutSecs int    `yaml:"wait_timeout_secs" mapstructure:"wait_timeout_secs"`
	NavTimeoutSecs  int    `yaml:"nav_timeout_secs" mapstructure:"nav_timeout_secs"`
	OutboundMarker  string `yaml:"outbound_marker" mapstructure:"outbound_marker"`
	SocialDomain    string `yaml:"social_domain" mapstructure:"social_domain"`
}

// WaitTimeout returns the footer wait as a duration.
func (c ProfileConfig) WaitTimeout() time.Duration {
	return time.Duration(c.WaitTimeoutSecs) * time.Second
}

// NavTimeout returns the profile page navigation timeout as a duration.
func (c ProfileConfig) NavTimeout() time.Duration {
	return time.Duration(c.NavTimeoutSecs) * time.Second
}

// ContactConfig configures website email discovery.
type ContactConfig struct {
	Concurrency    int      `yaml:"concurrency" mapstructure:"concurrency"`
	NavTimeoutSecs int      `yaml:"nav_timeout_secs" mapstructure:"nav_timeout_secs"`
	Paths          []string `yaml:"paths" mapstructure:"paths"`
	Denylist       []string `yaml:"denylist" mapstructure:"denylist"`
	LinkPattern    string   `yaml:"link_pattern" mapstructure:"link_pattern"`
}

// NavTimeout returns the per-page navigation timeout as a duration.
func (c ContactConfig) NavTimeout() time.Duration {
	return time.Duration(c.NavTimeoutSecs) * time.Second
}

// BrowserConfig configures the rendering engine.
type BrowserConfig struct {
	Headless       bool     `yaml:"headless" mapstructure:"headless"`
	RemoteURL      string   `yaml:"remote_url" mapstructure:"remote_url"`
	Stealth        bool     `yaml:"stealth" mapstructure:"stealth"`
	BlockResources []string `yaml:"block_resources" mapstructure:"block_resources"`
}

// OutputConfig configures the result sink.
type OutputConfig struct {
	Path   string `yaml:"path" mapstructure:"path"`
	Format string `yaml:"format" mapstructure:"format"`
}

// StoreConfig configures the run history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// SMTPConfig configures the outreach mailer.
type SMTPConfig struct {
	Host        string `yaml:"host" mapstructure:"host"`
	Port        int    `yaml:"port" mapstructure:"port"`
	Username    string `yaml:"username" mapstructure:"username"`
	Password    string `yaml:"password" mapstructure:"password"`
	From        string `yaml:"from" mapstructure:"from"`
	DelaySecs   int    `yaml:"delay_secs" mapstructure:"delay_secs"`
	MaxAttempts int    `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// ServerConfig configures the status API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// MonitoringConfig configures run health alerts.
type MonitoringConfig struct {
	WebhookURL           string  `yaml:"webhook_url" mapstructure:"webhook_url"`
	FailureRateThreshold float64 `yaml:"failure_rate_threshold" mapstructure:"failure_rate_threshold"`
	MinEmailYield        float64 `yaml:"min_email_yield" mapstructure:"min_email_yield"`
	LookbackWindowHours  int     `yaml:"lookback_window_hours" mapstructure:"lookback_window_hours"`
	CheckIntervalSecs    int     `yaml:"check_interval_secs" mapstructure:"check_interval_secs"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultContactPaths are the suffixes probed on every website, in order.
var DefaultContactPaths = []string{
	"",
	"/contact",
	"/contact-us",
	"/about",
	"/about-us",
	"/team",
	"/connect",
	"/inquire",
}

// DefaultDenylist lists websites known to hang or never resolve.
var DefaultDenylist = []string{
	"https://www.viaggiodeifiori.co.za/",
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PLANNERS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("directory.base_url", "https://www.partyslate.com/find-vendors/event-planner")
	v.SetDefault("directory.start_page", 41)
	v.SetDefault("directory.max_page", 61)
	v.SetDefault("directory.card_selector", "h3.src-components-CompanyDirectoryCard-components-Header-Header-module__title__2okBV a")
	v.SetDefault("directory.next_selector", `a[data-testid="next-page-link"]`)
	v.SetDefault("directory.wait_timeout_secs", 10)
	v.SetDefault("directory.nav_timeout_secs", 30)
	v.SetDefault("profile.concurrency", 5)
	v.SetDefault("profile.footer_selector", "div[class*='DetailsFooter']")
	v.SetDefault("profile.wait_timeout_secs", 10)
	v.SetDefault("profile.nav_timeout_secs", 30)
	v.SetDefault("profile.outbound_marker", "partyslate.com/outbound")
	v.SetDefault("profile.social_domain", "instagram.com")
	v.SetDefault("contact.concurrency", 5)
	v.SetDefault("contact.nav_timeout_secs", 15)
	v.SetDefault("contact.paths", DefaultContactPaths)
	v.SetDefault("contact.denylist", DefaultDenylist)
	v.SetDefault("contact.link_pattern", `(?i)contact|about|connect|get-in-touch`)
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.stealth", true)
	v.SetDefault("browser.block_resources", []string{})
	v.SetDefault("output.path", "planners_full.csv")
	v.SetDefault("output.format", "csv")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "planners.db")
	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.delay_secs", 5)
	v.SetDefault("smtp.max_attempts", 3)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("monitoring.failure_rate_threshold", 0.5)
	v.SetDefault("monitoring.min_email_yield", 0.1)
	v.SetDefault("monitoring.lookback_window_hours", 168)
	v.SetDefault("monitoring.check_interval_secs", 3600)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the configuration required by the given command mode:
// "scrape", "resolve", "send", or "serve".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "scrape":
		if c.Directory.BaseURL == "" {
			errs = append(errs, "directory.base_url is required")
		}
		if c.Directory.StartPage >= c.Directory.MaxPage {
			errs = append(errs, fmt.Sprintf("directory.start_page (%d) must be below directory.max_page (%d)",
				c.Directory.StartPage, c.Directory.MaxPage))
		}
		if c.Profile.Concurrency <= 0 {
			errs = append(errs, "profile.concurrency must be > 0")
		}
		errs = append(errs, c.validateContact()...)
		errs = append(errs, c.validateOutput()...)
	case "resolve":
		errs = append(errs, c.validateContact()...)
		errs = append(errs, c.validateOutput()...)
	case "send":
		if c.SMTP.Host == "" || c.SMTP.Port <= 0 {
			errs = append(errs, "smtp.host and smtp.port are required")
		}
		if c.SMTP.Username == "" || c.SMTP.Password == "" {
			errs = append(errs, "smtp.username and smtp.password are required")
		}
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateContact() []string {
	var errs []string
	if c.Contact.Concurrency <= 0 {
		errs = append(errs, "contact.concurrency must be > 0")
	}
	if _, err := regexp.Compile(c.Contact.LinkPattern); err != nil {
		errs = append(errs, fmt.Sprintf("contact.link_pattern: %v", err))
	}
	return errs
}

func (c *Config) validateOutput() []string {
	switch c.Output.Format {
	case "csv", "xlsx":
		return nil
	default:
		return []string{fmt.Sprintf("unsupported output.format %q", c.Output.Format)}
	}
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
