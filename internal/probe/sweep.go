package probe

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/hamed0406/twitchalerts/internal/domain"
)

// ProbeAll probes every channel one after another in name order. A channel
// whose probe fails is recorded as offline so it still appears in the
// snapshot. Only live channels are returned in the status map. Probing
// stops early once ctx is done, leaving the snapshot incomplete.
func ProbeAll(
	ctx context.Context,
	p Prober,
	channels []string,
	cred domain.Credential,
	logger *zap.Logger,
) (domain.Snapshot, map[string]domain.ChannelStatus) {
	names := append([]string(nil), channels...)
	sort.Strings(names)

	snap := make(domain.Snapshot, len(names))
	live := make(map[string]domain.ChannelStatus)

	for _, name := range names {
		if ctx.Err() != nil {
			break
		}
		logger.Info("probe_channel", zap.String("channel", name))

		st, err := p.Probe(ctx, name, cred)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			logger.Error("probe_failed", zap.String("channel", name), zap.Error(err))
			snap[name] = false
			continue
		}

		snap[name] = st.IsLive()
		if st.IsLive() {
			live[name] = st
		}
		logger.Info("probe_result",
			zap.String("channel", name),
			zap.Stringer("type", st.Type),
			zap.Bool("live", st.IsLive()),
		)
	}
	return snap, live
}
