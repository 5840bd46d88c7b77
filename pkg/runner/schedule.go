package runner

import (
	"context"
	"time"

	"github.com/tracksync/bridge/pkg/errors"
)

// Schedule runs passes on a fixed interval until the context is canceled.
// A tick arriving while a pass is still running is skipped, never queued:
// two concurrent passes would double-create entities against a stale
// previously-known snapshot.
func (r *Runner) Schedule(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			report, err := r.RunOnce(ctx)
			switch {
			case errors.Is(err, errors.ErrRunInProgress):
				r.logger.Warn().Msg("Previous pass still running, skipping tick")
			case errors.Is(err, errors.ErrUnreachable):
				r.logger.Error().Err(err).Msg("Server not reachable, skipping pass")
			case err != nil:
				r.logger.Error().Err(err).Msg("Pass failed")
			default:
				r.logger.Info().Str("run", report.RunID).Msg(report.Summary())
			}
		}
	}
}
