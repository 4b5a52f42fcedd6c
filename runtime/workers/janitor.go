package workers

import (
	"context"
	"log/slog"
	"time"

	"relay-lab/state"
)

// DedupJanitor periodically sweeps expired entries out of the dedup cache.
// Expiry is a single background sweep rather than one deferred removal per
// message, so the hot admission path never schedules work and the sweep
// never holds a lock the hot path needs for long.
type DedupJanitor struct {
	log      *slog.Logger
	cache    *state.DedupCache
	interval time.Duration
}

func NewDedupJanitor(log *slog.Logger, cache *state.DedupCache, interval time.Duration) *DedupJanitor {
	return &DedupJanitor{log: log, cache: cache, interval: interval}
}

func (w *DedupJanitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if removed := w.cache.Sweep(); removed > 0 {
				w.log.Debug("Swept expired dedup entries",
					"removed", removed,
					"remaining", w.cache.Len())
			}
		}
	}
}
