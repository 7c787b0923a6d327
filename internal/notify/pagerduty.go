package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hamed0406/twitchalerts/internal/domain"
)

const DefaultPagerDutyURL = "https://events.pagerduty.com/v2/enqueue"

// PagerDuty triggers one Events v2 alert per batch.
type PagerDuty struct {
	RoutingKey string
	EventsURL  string
	Client     *http.Client
	Now        func() time.Time
}

func NewPagerDuty(routingKey, eventsURL string) *PagerDuty {
	if eventsURL == "" {
		eventsURL = DefaultPagerDutyURL
	}
	return &PagerDuty{
		RoutingKey: strings.TrimSpace(routingKey),
		EventsURL:  eventsURL,
		Client:     &http.Client{Timeout: defaultTimeout},
		Now:        time.Now,
	}
}

func (p *PagerDuty) Name() string  { return "pagerduty" }
func (p *PagerDuty) Enabled() bool { return p != nil && p.RoutingKey != "" }

type pagerDutyDetails struct {
	Summary       string            `json:"summary"`
	Source        string            `json:"source"`
	Severity      string            `json:"severity"`
	CustomDetails map[string]string `json:"custom_details"`
}

type pagerDutyEvent struct {
	RoutingKey  string           `json:"routing_key"`
	EventAction string           `json:"event_action"`
	DedupKey    string           `json:"dedup_key"`
	Payload     pagerDutyDetails `json:"payload"`
}

func (p *PagerDuty) Send(ctx context.Context, batch []domain.ChannelStatus) error {
	if !p.Enabled() {
		return nil
	}
	return postJSON(ctx, p.Client, p.Name(), p.EventsURL, p.event(batch))
}

func (p *PagerDuty) event(batch []domain.ChannelStatus) pagerDutyEvent {
	details := make(map[string]string, len(batch))
	for _, ch := range batch {
		details[ch.Name] = ch.URL()
	}

	// fresh per call so alerts from different cycles are never coalesced
	now := p.Now()
	dedup := fmt.Sprintf("%d.%06d", now.Unix(), now.Nanosecond()/1000)

	return pagerDutyEvent{
		RoutingKey:  p.RoutingKey,
		EventAction: "trigger",
		DedupKey:    dedup,
		Payload: pagerDutyDetails{
			Summary:       "New TwitchTV channel(s) detected as live.",
			Source:        sourceName,
			Severity:      "info",
			CustomDetails: details,
		},
	}
}
