package probe

import (
	"context"
	"fmt"

	"github.com/hamed0406/twitchalerts/internal/domain"
)

// Prober looks up the current stream status of a single channel.
type Prober interface {
	Probe(ctx context.Context, channel string, cred domain.Credential) (domain.ChannelStatus, error)
}

// ProbeError describes a failed lookup. StatusCode is 0 for transport and
// decode errors.
type ProbeError struct {
	Channel    string
	StatusCode int
	Body       string
	Err        error
}

func (e *ProbeError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("probe %s: status %d: %s", e.Channel, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("probe %s: %v", e.Channel, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }
