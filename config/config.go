package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Submission modes
const (
	SubmissionSimulated = "simulated"
	SubmissionEndpoint  = "endpoint"
	SubmissionDatabase  = "database"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	Site          SiteConfig
	Submission    SubmissionConfig
	Timing        TimingConfig
	Session       SessionConfig
	Database      DatabaseConfig
	ReCAPTCHA     ReCAPTCHAConfig
	EventTriggers EventTriggersConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	BaseURL        string
	AllowedOrigins []string
	TrustedProxies []string
}

type SiteConfig struct {
	Lang         string
	RedirectURL  string
	DatastarURL  string
	CookieSecure bool
}

type SubmissionConfig struct {
	Mode        string
	EndpointURL string
	APIKey      string
	Timeout     time.Duration
}

type TimingConfig struct {
	MinBusy       time.Duration
	RedirectDelay time.Duration
	NoticeTTL     time.Duration
	NoticeFade    time.Duration
}

type SessionConfig struct {
	TTL        time.Duration
	OutboxSize int
}

type DatabaseConfig struct {
	URL        string
	MaxConns   int32
	MinConns   int32
	CACertPath string
}

type ReCAPTCHAConfig struct {
	SecretKey string
	SiteKey   string
	MinScore  float64
}

type EventTriggersConfig struct {
	SubmissionCreatedTriggerURL string
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	AlloyEndpoint     string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("BASE_URL", "https://www.drsite.nl")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "https://www.drsite.nl,https://drsite.nl")
	v.SetDefault("SITE_LANG", "nl")
	v.SetDefault("REDIRECT_URL", "thank_you.html")
	v.SetDefault("DATASTAR_URL", "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js")
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("SUBMISSION_MODE", SubmissionSimulated)
	v.SetDefault("SUBMISSION_TIMEOUT", "10s")
	v.SetDefault("SUBMIT_MIN_BUSY", "1500ms")
	v.SetDefault("SUBMIT_REDIRECT_DELAY", "1000ms")
	v.SetDefault("NOTICE_TTL", "5s")
	v.SetDefault("NOTICE_FADE", "150ms")
	v.SetDefault("PAGE_SESSION_TTL", "30m")
	v.SetDefault("PAGE_OUTBOX_SIZE", 64)
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("RECAPTCHA_MIN_SCORE", 0.5)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "/app/logs")
	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "") // tracing stays off unless an OTLP endpoint is set
	v.SetDefault("O11Y_BE_SERVICE_NAME", "drsite-web")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "drsite")
	v.SetDefault("O11Y_BE_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "drsite-web")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,goroutines")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			BaseURL:        v.GetString("BASE_URL"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_CORS_ORIGINS")),
			TrustedProxies: splitList(v.GetString("TRUSTED_PROXIES")),
		},
		Site: SiteConfig{
			Lang:         v.GetString("SITE_LANG"),
			RedirectURL:  v.GetString("REDIRECT_URL"),
			DatastarURL:  v.GetString("DATASTAR_URL"),
			CookieSecure: v.GetBool("COOKIE_SECURE"),
		},
		Submission: SubmissionConfig{
			Mode:        strings.ToLower(strings.TrimSpace(v.GetString("SUBMISSION_MODE"))),
			EndpointURL: v.GetString("SUBMISSION_ENDPOINT_URL"),
			APIKey:      v.GetString("SUBMISSION_API_KEY"),
			Timeout:     v.GetDuration("SUBMISSION_TIMEOUT"),
		},
		Timing: TimingConfig{
			MinBusy:       v.GetDuration("SUBMIT_MIN_BUSY"),
			RedirectDelay: v.GetDuration("SUBMIT_REDIRECT_DELAY"),
			NoticeTTL:     v.GetDuration("NOTICE_TTL"),
			NoticeFade:    v.GetDuration("NOTICE_FADE"),
		},
		Session: SessionConfig{
			TTL:        v.GetDuration("PAGE_SESSION_TTL"),
			OutboxSize: v.GetInt("PAGE_OUTBOX_SIZE"),
		},
		Database: DatabaseConfig{
			URL:        v.GetString("DATABASE_URL"),
			MaxConns:   v.GetInt32("DB_MAX_CONNS"),
			MinConns:   v.GetInt32("DB_MIN_CONNS"),
			CACertPath: v.GetString("DATABASE_CA_CERT"),
		},
		ReCAPTCHA: ReCAPTCHAConfig{
			SecretKey: v.GetString("RECAPTCHA_SECRET_KEY"),
			SiteKey:   v.GetString("RECAPTCHA_SITE_KEY"),
			MinScore:  v.GetFloat64("RECAPTCHA_MIN_SCORE"),
		},
		EventTriggers: EventTriggersConfig{
			SubmissionCreatedTriggerURL: v.GetString("SUBMISSION_CREATED_TRIGGER_URL"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			AlloyEndpoint:     v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_BE_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_BE_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func splitList(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	// Server configuration
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Server.BaseURL == "" {
		return fmt.Errorf("BASE_URL is required")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_CORS_ORIGINS is required")
	}

	// Submission configuration
	switch c.Submission.Mode {
	case SubmissionSimulated:
	case SubmissionEndpoint:
		if c.Submission.EndpointURL == "" {
			return fmt.Errorf("SUBMISSION_ENDPOINT_URL is required when SUBMISSION_MODE=endpoint")
		}
	case SubmissionDatabase:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when SUBMISSION_MODE=database")
		}
	default:
		return fmt.Errorf("unsupported SUBMISSION_MODE: %q", c.Submission.Mode)
	}

	// Timing configuration
	if c.Timing.MinBusy < 0 || c.Timing.RedirectDelay < 0 {
		return fmt.Errorf("SUBMIT_MIN_BUSY and SUBMIT_REDIRECT_DELAY must not be negative")
	}
	if c.Timing.NoticeTTL <= 0 {
		return fmt.Errorf("NOTICE_TTL must be positive")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("PAGE_SESSION_TTL must be positive")
	}
	if c.Session.OutboxSize <= 0 {
		return fmt.Errorf("PAGE_OUTBOX_SIZE must be positive")
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}

// CaptchaEnabled reports whether JSON submissions must carry a reCAPTCHA token.
func (c *Config) CaptchaEnabled() bool {
	return c.ReCAPTCHA.SecretKey != ""
}
