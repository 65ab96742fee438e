package monitor

import (
	"context"
	"log/slog"
	"time"

	"seowatch/internal/metrics"
)

// DefaultWindow is the suppression window applied when a rule carries no
// override.
const DefaultWindow = 24 * time.Hour

// AlertCounter is the slice of the alert history store the deduplicator
// needs: how many open alerts exist for a rule inside a window.
type AlertCounter interface {
	CountRecentAlerts(ctx context.Context, ruleID, property, pagePath string, since time.Time) (int, error)
}

type Deduplicator struct {
	Store  AlertCounter
	Logger *slog.Logger
}

func NewDeduplicator(store AlertCounter, logger *slog.Logger) *Deduplicator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Deduplicator{Store: store, Logger: logger}
}

// IsDuplicate reports whether a matching alert already fired inside the
// suppression window. A failed lookup is fail-open: over-notifying beats
// silently dropping a possibly real alert, so the error is logged as a
// degraded-mode decision and the alert proceeds.
func (d *Deduplicator) IsDuplicate(ctx context.Context, ruleID, property, pagePath string, window time.Duration) bool {
	if window <= 0 {
		window = DefaultWindow
	}
	since := time.Now().UTC().Add(-window)
	count, err := d.Store.CountRecentAlerts(ctx, ruleID, property, pagePath, since)
	if err != nil {
		d.Logger.Warn("duplicate check failed, proceeding without suppression",
			slog.String("ruleId", ruleID),
			slog.String("property", property),
			slog.String("error", err.Error()))
		metrics.DedupFailOpen.Inc()
		return false
	}
	return count > 0
}
