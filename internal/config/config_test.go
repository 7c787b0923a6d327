package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_TOMLParsesAndDefaults(t *testing.T) {
	p := writeFile(t, "twitch-alerts.toml", `
twitch_client_id = "cid"
twitch_client_secret = "from-file"
twitch_channel_names = ["all", "The", "streamers", "the "]
discord_webhook_url = "https://example.com"
`)
	t.Setenv("TWITCH_ALERT_CLIENT_SECRET", "")

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DiscordWebhookURL != "https://example.com" {
		t.Fatalf("webhook wrong: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Channels, []string{"all", "streamers", "the"}) {
		t.Fatalf("channels not normalized: %v", cfg.Channels)
	}
	if cfg.ClientSecret != "from-file" {
		t.Fatalf("secret wrong: %q", cfg.ClientSecret)
	}
	if cfg.ScanInterval() != 300*time.Second || cfg.RequestTimeout() != 3*time.Second {
		t.Fatalf("defaults wrong: %v %v", cfg.ScanInterval(), cfg.RequestTimeout())
	}
	if cfg.StateFile != DefaultStateFile || cfg.LogLevel != "info" || cfg.TwitchAuthURL == "" {
		t.Fatalf("defaults wrong: %+v", cfg)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	p := writeFile(t, "c.toml", `
twitch_client_id = "cid"
twitch_client_secret = "file"
twitch_channel_names = ["a"]
`)
	t.Setenv("TWITCH_ALERT_CLIENT_SECRET", "env-secret")
	t.Setenv("TWITCH_ALERT_DISCORD_WEBHOOK", "https://discord.example/hook")
	t.Setenv("TWITCH_ALERT_PAGERDUTY_KEY", "pdkey")
	t.Setenv("TWITCH_ALERT_SLACK_WEBHOOK", "https://slack.example/hook")
	t.Setenv("TWITCH_ALERT_LOG_LEVEL", "DEBUG")

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ClientSecret != "env-secret" || cfg.PagerDutyKey != "pdkey" ||
		cfg.DiscordWebhookURL != "https://discord.example/hook" || cfg.SlackWebhookURL != "https://slack.example/hook" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log level not normalized: %q", cfg.LogLevel)
	}
}

func TestLoad_YAML(t *testing.T) {
	p := writeFile(t, "c.yaml", `
twitch_client_id: cid
twitch_client_secret: s
twitch_channel_names: [b, a]
scan_interval_seconds: 60
status_addr: "127.0.0.1:9090"
status_tokens: [tok]
`)
	t.Setenv("TWITCH_ALERT_CLIENT_SECRET", "")

	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ScanInterval() != time.Minute || cfg.StatusAddr != "127.0.0.1:9090" || len(cfg.StatusTokens) != 1 {
		t.Fatalf("yaml fields wrong: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.Channels, []string{"a", "b"}) {
		t.Fatalf("channels wrong: %v", cfg.Channels)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	p := writeFile(t, "c.toml", `twitch_channel_names = []`)
	t.Setenv("TWITCH_ALERT_CLIENT_SECRET", "")

	_, err := Load(p)
	if err == nil {
		t.Fatal("want validation error")
	}
	for _, want := range []string{"twitch_client_id", "twitch_client_secret", "twitch_channel_names"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q should mention %s", err, want)
		}
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("want error for missing file")
	}
}

func TestResolvePath(t *testing.T) {
	p := writeFile(t, "custom.toml", "")
	if got := ResolvePath([]string{p}); got != p {
		t.Fatalf("want %s, got %s", p, got)
	}
	if got := ResolvePath([]string{"/does/not/exist.toml"}); got != DefaultConfigFile {
		t.Fatalf("want default, got %s", got)
	}
	if got := ResolvePath(nil); got != DefaultConfigFile {
		t.Fatalf("want default, got %s", got)
	}
}

func TestPreflight(t *testing.T) {
	cfg := Default()
	cfg.ClientID = "cid"
	cfg.Channels = []string{"a"}

	findings := Preflight(cfg)
	if !Failed(findings) {
		t.Fatalf("empty secret should fail preflight: %+v", findings)
	}

	cfg.ClientSecret = "s"
	cfg.PagerDutyKey = "k"
	cfg.LogDir = t.TempDir()
	findings = Preflight(cfg)
	if Failed(findings) {
		t.Fatalf("unexpected failure: %+v", findings)
	}
	for _, f := range findings {
		if f.Severity == Warn && strings.Contains(f.Message, "no notification sink") {
			t.Fatalf("sink configured but warned: %+v", f)
		}
	}
}
