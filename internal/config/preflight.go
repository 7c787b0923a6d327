package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Severity int

const (
	OK Severity = iota
	Warn
	Fail
)

func (s Severity) Symbol() string {
	switch s {
	case Fail:
		return "✖"
	case Warn:
		return "⚠"
	default:
		return "✔"
	}
}

type Finding struct {
	Severity Severity
	Message  string
}

// Preflight inspects a loaded config for problems that do not stop it from
// loading but will surprise an operator at runtime.
func Preflight(cfg Config) []Finding {
	var out []Finding
	add := func(s Severity, format string, args ...any) {
		out = append(out, Finding{Severity: s, Message: fmt.Sprintf(format, args...)})
	}

	if cfg.ClientSecret == "" {
		add(Fail, "twitch_client_secret is empty (token exchange will fail).")
	} else {
		add(OK, "client credentials present")
	}

	if len(cfg.Channels) == 0 {
		add(Fail, "no channels to watch.")
	} else {
		add(OK, "watching %d channel(s): %s", len(cfg.Channels), strings.Join(cfg.Channels, ","))
	}

	sinks := 0
	for _, kv := range [][2]string{
		{"discord_webhook_url", cfg.DiscordWebhookURL},
		{"slack_webhook_url", cfg.SlackWebhookURL},
		{"pagerduty_key", cfg.PagerDutyKey},
	} {
		if kv[1] == "" {
			continue
		}
		sinks++
		if strings.Contains(kv[1], " ") {
			add(Warn, "%s contains spaces", kv[0])
		}
	}
	if sinks == 0 {
		add(Warn, "no notification sink configured; transitions will only be logged.")
	} else {
		add(OK, "%d notification sink(s) configured", sinks)
	}

	if dir := filepath.Dir(cfg.StateFile); dir != "." {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			add(Warn, "state directory %q does not exist yet; it will be created.", dir)
		}
	}

	if cfg.LogDir == "" {
		add(Warn, "log_dir empty; logs go to stderr only.")
	} else {
		add(OK, "log_dir=%s", cfg.LogDir)
	}

	if cfg.StatusAddr != "" && len(cfg.StatusTokens) == 0 {
		add(Warn, "status server on %s has no status_tokens; /api is open.", cfg.StatusAddr)
	}

	return out
}

// Failed reports whether any finding is fatal.
func Failed(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == Fail {
			return true
		}
	}
	return false
}
