package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/twitchalerts/internal/domain"
)

const (
	defaultTimeout = 3 * time.Second
	sourceName     = "Twitch-Alerts"
)

// Sink is one outbound notification route.
type Sink interface {
	Name() string
	// Enabled is false when the sink has no target configured.
	Enabled() bool
	Send(ctx context.Context, batch []domain.ChannelStatus) error
}

// SinkError is a non-2xx delivery response.
type SinkError struct {
	Sink       string
	StatusCode int
	Body       string
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Sink, e.StatusCode, e.Body)
}

// Dispatcher fans a batch out to every sink. Sinks never affect each other.
type Dispatcher struct {
	Logger *zap.Logger
	Sinks  []Sink
}

func NewDispatcher(logger *zap.Logger, sinks ...Sink) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{Logger: logger, Sinks: sinks}
}

// Dispatch delivers batch to each enabled sink. The returned error combines
// every sink failure; each failure has already been logged.
func (d *Dispatcher) Dispatch(ctx context.Context, batch []domain.ChannelStatus) error {
	if len(batch) == 0 {
		return nil
	}

	var errs error
	for _, s := range d.Sinks {
		if s == nil {
			continue
		}
		if !s.Enabled() {
			d.Logger.Info("notify_skipped", zap.String("sink", s.Name()), zap.String("reason", "not configured"))
			continue
		}

		if err := s.Send(ctx, batch); err != nil {
			fields := []zap.Field{zap.String("sink", s.Name()), zap.Error(err)}
			var se *SinkError
			if errors.As(err, &se) {
				fields = append(fields, zap.Int("status", se.StatusCode), zap.String("body", se.Body))
			}
			d.Logger.Error("notify_failed", fields...)
			errs = multierr.Append(errs, err)
			continue
		}
		d.Logger.Info("notify_sent", zap.String("sink", s.Name()), zap.Int("channels", len(batch)))
	}
	return errs
}

// postJSON is shared by all sinks. A non-2xx reply becomes a *SinkError.
func postJSON(ctx context.Context, client *http.Client, sink, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: encode payload: %w", sink, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", sink, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", sink, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &SinkError{Sink: sink, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return nil
}
