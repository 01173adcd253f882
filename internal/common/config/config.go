// Package config provides configuration management for the archiver.
// It supports loading configuration from environment variables, a .env file,
// config files, and defaults.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kandev/archiver/internal/common/logger"
	"github.com/kandev/archiver/internal/common/stringutil"
)

// Config holds all configuration sections for the archiver.
type Config struct {
	Tracker TrackerConfig `mapstructure:"tracker"`
	Slack   SlackConfig   `mapstructure:"slack"`
	Archive ArchiveConfig `mapstructure:"archive"`
	NATS    NATSConfig    `mapstructure:"nats"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// TrackerConfig holds the project tracker (Jira) connection settings.
type TrackerConfig struct {
	BaseURL        string `mapstructure:"baseUrl"`
	APIPath        string `mapstructure:"apiPath"`
	Email          string `mapstructure:"email"`
	APIToken       string `mapstructure:"apiToken"`
	ArchivedStatus string `mapstructure:"archivedStatus"`
	TimeoutSeconds int    `mapstructure:"timeoutSeconds"`
}

// SlackConfig holds the incoming-webhook settings used for the run summary.
type SlackConfig struct {
	// WebhookToken is the path part after /services/. Empty disables Slack
	// and the summary is written to the log instead.
	WebhookToken   string `mapstructure:"webhookToken"`
	WebhookBaseURL string `mapstructure:"webhookBaseUrl"`
	Channel        string `mapstructure:"channel"`
	TimeoutSeconds int    `mapstructure:"timeoutSeconds"`
}

// ArchiveConfig controls which projects are eligible for archiving.
type ArchiveConfig struct {
	RetentionMonths int      `mapstructure:"retentionMonths"`
	ExcludeKeys     []string `mapstructure:"excludeKeys"`
}

// NATSConfig holds NATS settings for lifecycle events.
// An empty URL keeps events on the in-memory bus.
type NATSConfig struct {
	URL           string `mapstructure:"url"`
	ClientID      string `mapstructure:"clientId"`
	SubjectPrefix string `mapstructure:"subjectPrefix"`
	MaxReconnects int    `mapstructure:"maxReconnects"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"outputPath"`
}

// Timeout returns the tracker HTTP timeout as a time.Duration.
func (t *TrackerConfig) Timeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}

// Timeout returns the webhook send timeout as a time.Duration.
func (s *SlackConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Enabled reports whether a Slack webhook is configured.
func (s *SlackConfig) Enabled() bool {
	return strings.TrimSpace(s.WebhookToken) != ""
}

// setDefaults configures default values for all configuration options.
func setDefaults(v *viper.Viper) {
	// Tracker defaults
	v.SetDefault("tracker.baseUrl", "")
	v.SetDefault("tracker.apiPath", "/rest/api/3")
	v.SetDefault("tracker.email", "")
	v.SetDefault("tracker.apiToken", "")
	v.SetDefault("tracker.archivedStatus", "archived")
	v.SetDefault("tracker.timeoutSeconds", 30)

	// Slack defaults
	v.SetDefault("slack.webhookToken", "")
	v.SetDefault("slack.webhookBaseUrl", "https://hooks.slack.com/services/")
	v.SetDefault("slack.channel", "")
	v.SetDefault("slack.timeoutSeconds", 10)

	// Archive defaults
	v.SetDefault("archive.retentionMonths", 6)
	v.SetDefault("archive.excludeKeys", []string{})

	// NATS defaults - empty URL means use in-memory event bus
	v.SetDefault("nats.url", "")
	v.SetDefault("nats.clientId", "archiver")
	v.SetDefault("nats.subjectPrefix", "archiver")
	v.SetDefault("nats.maxReconnects", 10)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", logger.DetectFormat())
	v.SetDefault("logging.outputPath", "stdout")
}

// Load reads configuration from a .env file, environment variables, config file, and defaults.
// Environment variables use the prefix ARCHIVER_ with snake_case naming.
func Load() (*Config, error) {
	return LoadWithPath("")
}

// LoadWithPath reads configuration from the specified directory or the default locations.
func LoadWithPath(configPath string) (*Config, error) {
	// A missing .env is the normal case outside local development.
	// godotenv never overrides variables that are already set.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ARCHIVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv does not split camelCase keys, so bind the snake_case names explicitly.
	_ = v.BindEnv("tracker.baseUrl", "ARCHIVER_TRACKER_BASE_URL")
	_ = v.BindEnv("tracker.apiPath", "ARCHIVER_TRACKER_API_PATH")
	_ = v.BindEnv("tracker.apiToken", "ARCHIVER_TRACKER_API_TOKEN")
	_ = v.BindEnv("tracker.archivedStatus", "ARCHIVER_TRACKER_ARCHIVED_STATUS")
	_ = v.BindEnv("tracker.timeoutSeconds", "ARCHIVER_TRACKER_TIMEOUT_SECONDS")
	_ = v.BindEnv("slack.webhookToken", "ARCHIVER_SLACK_WEBHOOK_TOKEN", "SLACK_BOT_TOKEN")
	_ = v.BindEnv("slack.webhookBaseUrl", "ARCHIVER_SLACK_WEBHOOK_BASE_URL")
	_ = v.BindEnv("slack.channel", "ARCHIVER_SLACK_CHANNEL", "SLACK_CHANNEL")
	_ = v.BindEnv("slack.timeoutSeconds", "ARCHIVER_SLACK_TIMEOUT_SECONDS")
	_ = v.BindEnv("archive.retentionMonths", "ARCHIVER_ARCHIVE_RETENTION_MONTHS")
	_ = v.BindEnv("archive.excludeKeys", "ARCHIVER_ARCHIVE_EXCLUDE_KEYS")
	_ = v.BindEnv("nats.clientId", "ARCHIVER_NATS_CLIENT_ID")
	_ = v.BindEnv("nats.subjectPrefix", "ARCHIVER_NATS_SUBJECT_PREFIX")
	_ = v.BindEnv("nats.maxReconnects", "ARCHIVER_NATS_MAX_RECONNECTS")
	_ = v.BindEnv("logging.outputPath", "ARCHIVER_LOGGING_OUTPUT_PATH")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.archiver")
	v.AddConfigPath("/etc/archiver/")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	normalize(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// normalize trims values that commonly pick up stray whitespace from env files.
func normalize(cfg *Config) {
	cfg.Tracker.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Tracker.BaseURL), "/")
	cfg.Tracker.Email = strings.TrimSpace(cfg.Tracker.Email)
	cfg.Tracker.APIToken = strings.TrimSpace(cfg.Tracker.APIToken)
	cfg.Slack.WebhookToken = strings.Trim(strings.TrimSpace(cfg.Slack.WebhookToken), "/")

	keys := make([]string, 0, len(cfg.Archive.ExcludeKeys))
	for _, k := range cfg.Archive.ExcludeKeys {
		// Env values arrive as one space or comma separated string.
		keys = append(keys, stringutil.SplitList(k)...)
	}
	cfg.Archive.ExcludeKeys = keys
}

// validate checks that all required configuration fields are set.
func validate(cfg *Config) error {
	var errs []string

	if cfg.Tracker.BaseURL == "" {
		errs = append(errs, "tracker.baseUrl is required")
	} else if u, err := url.Parse(cfg.Tracker.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "tracker.baseUrl must be an absolute URL")
	}
	if cfg.Tracker.Email == "" {
		errs = append(errs, "tracker.email is required")
	}
	if cfg.Tracker.APIToken == "" {
		errs = append(errs, "tracker.apiToken is required")
	}
	if strings.TrimSpace(cfg.Tracker.ArchivedStatus) == "" {
		errs = append(errs, "tracker.archivedStatus must not be empty")
	}
	if cfg.Tracker.TimeoutSeconds <= 0 {
		errs = append(errs, "tracker.timeoutSeconds must be positive")
	}

	if cfg.Slack.Enabled() && cfg.Slack.TimeoutSeconds <= 0 {
		errs = append(errs, "slack.timeoutSeconds must be positive")
	}

	if cfg.Archive.RetentionMonths <= 0 {
		errs = append(errs, "archive.retentionMonths must be positive")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, "logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if !validFormats[strings.ToLower(cfg.Logging.Format)] {
		errs = append(errs, "logging.format must be one of: json, text, console")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}

	return nil
}
