package domain

import (
	"net/http"
	"strings"
	"time"
)

// Credential is an app access token from the client-credentials grant.
// Values are never mutated; a refresh produces a new Credential.
type Credential struct {
	Token     string    `json:"-"`
	ClientID  string    `json:"client_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Valid reports whether the credential can still be used at now.
func (c Credential) Valid(now time.Time) bool {
	return c.Token != "" && now.Before(c.ExpiresAt)
}

// Apply sets the bearer and client-id headers on an outgoing request.
func (c Credential) Apply(h http.Header) {
	h.Set("Authorization", "Bearer "+c.Token)
	h.Set("Client-Id", c.ClientID)
}

// StreamType is the platform's stream status for a channel.
type StreamType int

const (
	StreamUnknown StreamType = iota // probe failed, nothing known
	StreamOffline
	StreamLive
)

// ParseStreamType maps the raw "type" field of a stream record.
// Only the exact value "live" is live; anything else counts as offline.
func ParseStreamType(raw string) StreamType {
	if raw == "live" {
		return StreamLive
	}
	return StreamOffline
}

func (t StreamType) String() string {
	switch t {
	case StreamLive:
		return "live"
	case StreamOffline:
		return "offline"
	default:
		return "unknown"
	}
}

func (t StreamType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *StreamType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "live":
		*t = StreamLive
	case "offline":
		*t = StreamOffline
	default:
		*t = StreamUnknown
	}
	return nil
}

// ChannelStatus is the result of probing one channel in one cycle.
// Title, Category and ThumbnailURL are only set when the channel is live.
type ChannelStatus struct {
	Name         string     `json:"name"`
	DisplayName  string     `json:"display_name,omitempty"`
	Title        string     `json:"title,omitempty"`
	Category     string     `json:"category,omitempty"`
	ThumbnailURL string     `json:"thumbnail_url,omitempty"`
	Type         StreamType `json:"type"`
}

func (c ChannelStatus) IsLive() bool { return c.Type == StreamLive }

// URL is the public channel page.
func (c ChannelStatus) URL() string { return "https://twitch.tv/" + c.Name }

// Label is the name shown to humans in notifications.
func (c ChannelStatus) Label() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.Name
}

// NormalizeChannel canonicalizes a channel login for use as a map key.
func NormalizeChannel(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
