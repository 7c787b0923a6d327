package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hamed0406/twitchalerts/internal/domain"
)

const DefaultStreamsURL = "https://api.twitch.tv/helix/streams"

// HelixProber queries the Helix streams endpoint.
type HelixProber struct {
	Client     *http.Client
	StreamsURL string
}

func NewHelixProber(streamsURL string, timeout time.Duration) *HelixProber {
	if streamsURL == "" {
		streamsURL = DefaultStreamsURL
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &HelixProber{
		Client:     &http.Client{Timeout: timeout},
		StreamsURL: streamsURL,
	}
}

type streamsResponse struct {
	Data []streamRecord `json:"data"`
}

type streamRecord struct {
	UserLogin    string `json:"user_login"`
	UserName     string `json:"user_name"`
	GameName     string `json:"game_name"`
	Type         string `json:"type"`
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail_url"`
}

func (h *HelixProber) Probe(ctx context.Context, channel string, cred domain.Credential) (domain.ChannelStatus, error) {
	u, err := url.Parse(h.StreamsURL)
	if err != nil {
		return domain.ChannelStatus{}, &ProbeError{Channel: channel, Err: err}
	}
	q := u.Query()
	q.Set("user_login", channel)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.ChannelStatus{}, &ProbeError{Channel: channel, Err: err}
	}
	cred.Apply(req.Header)

	resp, err := h.Client.Do(req)
	if err != nil {
		return domain.ChannelStatus{}, &ProbeError{Channel: channel, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.ChannelStatus{}, &ProbeError{Channel: channel, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode/100 != 2 {
		return domain.ChannelStatus{}, &ProbeError{
			Channel:    channel,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var sr streamsResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return domain.ChannelStatus{}, &ProbeError{Channel: channel, Err: fmt.Errorf("decode streams response: %w", err)}
	}

	out := domain.ChannelStatus{Name: channel, Type: domain.StreamOffline}
	if len(sr.Data) == 0 {
		return out, nil
	}

	first := sr.Data[0]
	out.Type = domain.ParseStreamType(first.Type)
	if out.IsLive() {
		out.DisplayName = first.UserName
		out.Title = first.Title
		out.Category = first.GameName
		out.ThumbnailURL = first.ThumbnailURL
	}
	return out, nil
}
