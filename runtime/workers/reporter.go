package workers

import (
	"context"
	"log/slog"
	"time"

	"relay-lab/observability"
)

// TelemetryReporter logs a relay counter snapshot at a fixed interval.
type TelemetryReporter struct {
	log      *slog.Logger
	metrics  *observability.Metrics
	interval time.Duration
}

func NewTelemetryReporter(log *slog.Logger, metrics *observability.Metrics, interval time.Duration) *TelemetryReporter {
	return &TelemetryReporter{log: log, metrics: metrics, interval: interval}
}

func (w *TelemetryReporter) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.report()
			return ctx.Err()
		case <-ticker.C:
			w.report()
		}
	}
}

func (w *TelemetryReporter) report() {
	snapshot := w.metrics.Snapshot()
	w.log.Info("Relay telemetry",
		"relayed", snapshot.Relayed,
		"duplicates", snapshot.Duplicates,
		"invites", snapshot.Invites,
		"rejected_payloads", snapshot.RejectedPayloads)
}
