package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/hamed0406/twitchalerts/internal/auth"
	"github.com/hamed0406/twitchalerts/internal/domain"
	"github.com/hamed0406/twitchalerts/internal/notify"
	"github.com/hamed0406/twitchalerts/internal/probe"
)

const (
	DefaultConfigFile = "twitch-alerts.toml"
	DefaultStateFile  = "temp_twitch-alerts-state.json"
)

type Config struct {
	ClientID     string   `toml:"twitch_client_id" yaml:"twitch_client_id"`
	ClientSecret string   `toml:"twitch_client_secret" yaml:"twitch_client_secret"`
	Channels     []string `toml:"twitch_channel_names" yaml:"twitch_channel_names"`

	DiscordWebhookURL string `toml:"discord_webhook_url" yaml:"discord_webhook_url"`
	SlackWebhookURL   string `toml:"slack_webhook_url" yaml:"slack_webhook_url"`
	PagerDutyKey      string `toml:"pagerduty_key" yaml:"pagerduty_key"`

	StateFile           string `toml:"state_file" yaml:"state_file"`
	ScanIntervalSeconds int    `toml:"scan_interval_seconds" yaml:"scan_interval_seconds"`
	RequestTimeoutMS    int    `toml:"request_timeout_ms" yaml:"request_timeout_ms"`

	LogLevel string `toml:"log_level" yaml:"log_level"`
	LogDir   string `toml:"log_dir" yaml:"log_dir"` // empty: stderr only

	StatusAddr   string   `toml:"status_addr" yaml:"status_addr"` // empty: no status server
	StatusTokens []string `toml:"status_tokens" yaml:"status_tokens"`

	TwitchAuthURL    string `toml:"twitch_auth_url" yaml:"twitch_auth_url"`
	TwitchStreamsURL string `toml:"twitch_streams_url" yaml:"twitch_streams_url"`
	PagerDutyURL     string `toml:"pagerduty_url" yaml:"pagerduty_url"`
}

func Default() Config {
	return Config{
		StateFile:           DefaultStateFile,
		ScanIntervalSeconds: 300,
		RequestTimeoutMS:    3000,
		LogLevel:            "info",
		TwitchAuthURL:       auth.DefaultTokenURL,
		TwitchStreamsURL:    probe.DefaultStreamsURL,
		PagerDutyURL:        notify.DefaultPagerDutyURL,
	}
}

func (c Config) ScanInterval() time.Duration {
	return time.Duration(c.ScanIntervalSeconds) * time.Second
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// ResolvePath picks the first CLI argument when it names an existing file,
// otherwise the default config file in the working directory.
func ResolvePath(args []string) string {
	if len(args) > 0 {
		if info, err := os.Stat(args[0]); err == nil && !info.IsDir() {
			return args[0]
		}
	}
	return DefaultConfigFile
}

// Load reads the config file, applies environment overrides, then
// normalizes and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	default:
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	override := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	override(&c.ClientSecret, "TWITCH_ALERT_CLIENT_SECRET")
	override(&c.DiscordWebhookURL, "TWITCH_ALERT_DISCORD_WEBHOOK")
	override(&c.PagerDutyKey, "TWITCH_ALERT_PAGERDUTY_KEY")
	override(&c.SlackWebhookURL, "TWITCH_ALERT_SLACK_WEBHOOK")
	override(&c.LogLevel, "TWITCH_ALERT_LOG_LEVEL")
}

func (c *Config) normalize() {
	c.ClientID = strings.TrimSpace(c.ClientID)
	c.ClientSecret = strings.TrimSpace(c.ClientSecret)
	c.DiscordWebhookURL = strings.TrimSpace(c.DiscordWebhookURL)
	c.SlackWebhookURL = strings.TrimSpace(c.SlackWebhookURL)
	c.PagerDutyKey = strings.TrimSpace(c.PagerDutyKey)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))

	seen := make(map[string]struct{}, len(c.Channels))
	channels := make([]string, 0, len(c.Channels))
	for _, ch := range c.Channels {
		n := domain.NormalizeChannel(ch)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		channels = append(channels, n)
	}
	sort.Strings(channels)
	c.Channels = channels

	if c.StateFile == "" {
		c.StateFile = DefaultStateFile
	}
	if c.ScanIntervalSeconds <= 0 {
		c.ScanIntervalSeconds = 300
	}
	if c.RequestTimeoutMS <= 0 {
		c.RequestTimeoutMS = 3000
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c Config) Validate() error {
	var problems []string
	if c.ClientID == "" {
		problems = append(problems, "twitch_client_id is required")
	}
	if c.ClientSecret == "" {
		problems = append(problems, "twitch_client_secret is required (or TWITCH_ALERT_CLIENT_SECRET)")
	}
	if len(c.Channels) == 0 {
		problems = append(problems, "twitch_channel_names must list at least one channel")
	}
	if len(problems) > 0 {
		return errors.New("invalid config: " + strings.Join(problems, "; "))
	}
	return nil
}
