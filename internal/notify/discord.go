package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hamed0406/twitchalerts/internal/domain"
)

const discordColor = 0x9C5D7F

// Discord posts a single embed per batch to a webhook.
type Discord struct {
	WebhookURL string
	Client     *http.Client
	// Interval is the scan interval, quoted in the message text.
	Interval time.Duration
	Now      func() time.Time
}

func NewDiscord(webhook string, interval time.Duration) *Discord {
	return &Discord{
		WebhookURL: strings.TrimSpace(webhook),
		Client:     &http.Client{Timeout: defaultTimeout},
		Interval:   interval,
		Now:        time.Now,
	}
}

func (d *Discord) Name() string  { return "discord" }
func (d *Discord) Enabled() bool { return d != nil && d.WebhookURL != "" }

type discordAuthor struct {
	Name string `json:"name"`
}

type discordEmbed struct {
	Author      discordAuthor `json:"author"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Color       int           `json:"color"`
}

type discordPayload struct {
	Username string         `json:"username"`
	Embeds   []discordEmbed `json:"embeds"`
}

func (d *Discord) Send(ctx context.Context, batch []domain.ChannelStatus) error {
	if !d.Enabled() {
		return nil
	}
	return postJSON(ctx, d.Client, d.Name(), d.WebhookURL, d.payload(batch))
}

func (d *Discord) payload(batch []domain.ChannelStatus) discordPayload {
	minutes := int(d.Interval / time.Minute)

	var sb strings.Builder
	for _, ch := range batch {
		fmt.Fprintf(&sb, "The following stream has gone live within the last %d minutes:\n", minutes)
		fmt.Fprintf(&sb, "## [%s](%s)\n\n", ch.Label(), ch.URL())
	}

	return discordPayload{
		Username: sourceName,
		Embeds: []discordEmbed{{
			Author:      discordAuthor{Name: sourceName},
			Title:       fmt.Sprintf("<t:%d:R>", d.Now().Unix()),
			Description: sb.String(),
			Color:       discordColor,
		}},
	}
}
