package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/hamed0406/twitchalerts/internal/domain"
)

// Slack posts a plain text message to an incoming webhook.
type Slack struct {
	Webhook string
	Client  *http.Client
}

func NewSlack(webhook string) *Slack {
	return &Slack{
		Webhook: strings.TrimSpace(webhook),
		Client:  &http.Client{Timeout: defaultTimeout},
	}
}

func (s *Slack) Name() string  { return "slack" }
func (s *Slack) Enabled() bool { return s != nil && s.Webhook != "" }

type slackPayload struct {
	Text string `json:"text"`
}

func (s *Slack) Send(ctx context.Context, batch []domain.ChannelStatus) error {
	if !s.Enabled() {
		return nil
	}
	return postJSON(ctx, s.Client, s.Name(), s.Webhook, slackPayload{Text: slackText(batch)})
}

func slackText(batch []domain.ChannelStatus) string {
	var sb strings.Builder
	sb.WriteString("*Now live on Twitch*")
	for _, ch := range batch {
		fmt.Fprintf(&sb, "\n• <%s|%s>", ch.URL(), ch.Label())
		if ch.Title != "" {
			fmt.Fprintf(&sb, ": %s", ch.Title)
		}
	}
	return sb.String()
}
